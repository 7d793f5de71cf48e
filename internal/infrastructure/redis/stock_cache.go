package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/pkg/config"
	"github.com/jmrobles/ventas-api/pkg/logger"
)

// StockCache caché de lectura de productos sobre Redis. Los procesadores lo
// invalidan tras cada commit que cambió stock; el catálogo lo usa
// read-through. Los errores de Redis se degradan a miss: el caché nunca
// interrumpe una operación.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewStockCache conecta con Redis y devuelve el caché, o error si no responde.
func NewStockCache(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*StockCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StockCache{client: client, ttl: ttl, log: log}, nil
}

func key(productID string) string {
	return "product:" + productID
}

// Get devuelve el producto cacheado o (nil, nil) en miss.
func (c *StockCache) Get(ctx context.Context, id string) (*entity.Product, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.log.Warn().Err(err).Str("product_id", id).Msg("redis get falló, tratado como miss")
		return nil, nil
	}
	var p entity.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil
	}
	return &p, nil
}

// Set cachea el producto con el TTL configurado.
func (c *StockCache) Set(ctx context.Context, p *entity.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(p.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", p.ID).Msg("redis set falló")
	}
}

// InvalidateProducts elimina las entradas de los productos dados.
func (c *StockCache) InvalidateProducts(ctx context.Context, productIDs ...string) {
	if len(productIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, key(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Int("count", len(keys)).Msg("redis del falló")
	}
}

// Close cierra la conexión con Redis.
func (c *StockCache) Close() error {
	return c.client.Close()
}
