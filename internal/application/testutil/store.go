// Package testutil provee dobles en memoria de los puertos de persistencia:
// un Store con disciplina de copia por valor, repositorios que lo comparten y
// un TxRunner con snapshot/rollback que reproduce la semántica
// todo-o-nada de las transacciones reales.
package testutil

import (
	"sync"
	"time"

	"github.com/jmrobles/ventas-api/internal/domain/entity"
)

// Store estado compartido de los fakes. El mutex serializa las transacciones
// (como lo haría el lock de fila del consecutivo) y protege las lecturas
// directas de los casos de uso.
type Store struct {
	mu sync.Mutex

	products        map[string]entity.Product
	users           map[string]entity.User
	clients         map[string]entity.Client
	sales           map[string]entity.Sale
	saleDetails     map[string][]entity.SaleDetail
	purchases       map[string]entity.Purchase
	purchaseDetails map[string][]entity.PurchaseDetail
	movements       []entity.InventoryMovement
	sequences       map[string]int
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		products:        make(map[string]entity.Product),
		users:           make(map[string]entity.User),
		clients:         make(map[string]entity.Client),
		sales:           make(map[string]entity.Sale),
		saleDetails:     make(map[string][]entity.SaleDetail),
		purchases:       make(map[string]entity.Purchase),
		purchaseDetails: make(map[string][]entity.PurchaseDetail),
		sequences:       make(map[string]int),
	}
}

// enter toma el lock si lock es true y devuelve la función de salida.
// Los repos atados a una "tx" del TxRunner no lockean: el runner ya lo hizo.
func (s *Store) enter(lock bool) func() {
	if !lock {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// AddProduct siembra un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.products[p.ID] = p
}

// AddUser siembra un usuario.
func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// AddClient siembra un cliente.
func (s *Store) AddClient(c entity.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

// StockOf devuelve el stock actual de un producto sembrado.
func (s *Store) StockOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].StockActual
}

// MovementCount cantidad de entradas en el libro de movimientos.
func (s *Store) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// Movements copia del libro de movimientos en orden de inserción.
func (s *Store) Movements() []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.InventoryMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

// SaleCount cantidad de ventas persistidas.
func (s *Store) SaleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// PurchaseCount cantidad de compras persistidas.
func (s *Store) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}

// snapshot copia profunda del estado mutable por las transacciones.
// Llamar con el lock tomado.
type snapshot struct {
	products        map[string]entity.Product
	sales           map[string]entity.Sale
	saleDetails     map[string][]entity.SaleDetail
	purchases       map[string]entity.Purchase
	purchaseDetails map[string][]entity.PurchaseDetail
	movements       []entity.InventoryMovement
	sequences       map[string]int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		products:        make(map[string]entity.Product, len(s.products)),
		sales:           make(map[string]entity.Sale, len(s.sales)),
		saleDetails:     make(map[string][]entity.SaleDetail, len(s.saleDetails)),
		purchases:       make(map[string]entity.Purchase, len(s.purchases)),
		purchaseDetails: make(map[string][]entity.PurchaseDetail, len(s.purchaseDetails)),
		movements:       make([]entity.InventoryMovement, len(s.movements)),
		sequences:       make(map[string]int, len(s.sequences)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.sales {
		snap.sales[k] = v
	}
	for k, v := range s.saleDetails {
		details := make([]entity.SaleDetail, len(v))
		copy(details, v)
		snap.saleDetails[k] = details
	}
	for k, v := range s.purchases {
		snap.purchases[k] = v
	}
	for k, v := range s.purchaseDetails {
		details := make([]entity.PurchaseDetail, len(v))
		copy(details, v)
		snap.purchaseDetails[k] = details
	}
	copy(snap.movements, s.movements)
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.sales = snap.sales
	s.saleDetails = snap.saleDetails
	s.purchases = snap.purchases
	s.purchaseDetails = snap.purchaseDetails
	s.movements = snap.movements
	s.sequences = snap.sequences
}
