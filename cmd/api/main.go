package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmrobles/ventas-api/internal/application/catalog"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/application/purchases"
	"github.com/jmrobles/ventas-api/internal/application/sales"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/infrastructure/postgres"
	infraredis "github.com/jmrobles/ventas-api/internal/infrastructure/redis"
	httpRouter "github.com/jmrobles/ventas-api/internal/interfaces/http"
	"github.com/jmrobles/ventas-api/pkg/config"
	"github.com/jmrobles/ventas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Caché de lectura de productos: opcional, la API opera igual sin Redis.
	var stockCache *infraredis.StockCache
	if cfg.Redis.Addr != "" {
		stockCache, err = infraredis.NewStockCache(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer stockCache.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de productos habilitado")
	}

	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	saleNumbering := entity.Numbering{Prefix: cfg.Documents.SalePrefix, Width: cfg.Documents.SuffixWidth}
	purchaseNumbering := entity.Numbering{Prefix: cfg.Documents.PurchasePrefix, Width: cfg.Documents.SuffixWidth}

	var invalidator movements.StockInvalidator
	var productCache catalog.ProductCache
	if stockCache != nil {
		invalidator = stockCache
		productCache = stockCache
	}

	salesUC := sales.NewUseCase(txRunner, saleRepo, productRepo, userRepo, clientRepo, saleNumbering, invalidator)
	purchasesUC := purchases.NewUseCase(txRunner, purchaseRepo, productRepo, userRepo, purchaseNumbering, invalidator)
	movementsUC := movements.NewUseCase(txRunner, movementRepo, productRepo, userRepo, invalidator)
	catalogUC := catalog.NewUseCase(productRepo, productCache)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesUC:     salesUC,
		PurchasesUC: purchasesUC,
		MovementsUC: movementsUC,
		CatalogUC:   catalogUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
