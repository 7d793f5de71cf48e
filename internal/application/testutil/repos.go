package testutil

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.ClientRepository   = (*ClientRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.SaleRepository     = (*SaleRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// ProductRepo fake en memoria. lock=false para repos atados a una tx.
type ProductRepo struct {
	s    *Store
	lock bool
}

func NewProductRepo(s *Store) *ProductRepo { return &ProductRepo{s: s, lock: true} }

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	defer r.s.enter(r.lock)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) AdjustStock(productID string, delta int) error {
	defer r.s.enter(r.lock)()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.StockActual+delta < 0 {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Available: p.StockActual,
			Requested: -delta,
		}
	}
	p.StockActual += delta
	p.UpdatedAt = time.Now()
	r.s.products[productID] = p
	return nil
}

func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, int, error) {
	defer r.s.enter(r.lock)()
	all := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	return pageOf(all, limit, offset), total, nil
}

func (r *ProductRepo) ListLowStock() ([]*entity.Product, error) {
	defer r.s.enter(r.lock)()
	var out []*entity.Product
	ids := sortedKeys(r.s.products)
	for _, id := range ids {
		p := r.s.products[id]
		if p.StockActual <= p.StockMinimo {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UserRepo fake en memoria.
type UserRepo struct {
	s *Store
}

func NewUserRepo(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	defer r.s.enter(true)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// ClientRepo fake en memoria.
type ClientRepo struct {
	s *Store
}

func NewClientRepo(s *Store) *ClientRepo { return &ClientRepo{s: s} }

func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	defer r.s.enter(true)()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// MovementRepo fake en memoria del libro de movimientos.
type MovementRepo struct {
	s    *Store
	lock bool
}

func NewMovementRepo(s *Store) *MovementRepo { return &MovementRepo{s: s, lock: true} }

func (r *MovementRepo) Create(m *entity.InventoryMovement) error {
	defer r.s.enter(r.lock)()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *MovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	defer r.s.enter(r.lock)()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByIDForUpdate: la mutex del Store ya serializa las transacciones, así
// que el lock por fila es una lectura normal.
func (r *MovementRepo) GetByIDForUpdate(id string) (*entity.InventoryMovement, error) {
	return r.GetByID(id)
}

func (r *MovementRepo) HasReversal(movementID string) (bool, error) {
	defer r.s.enter(r.lock)()
	for _, m := range r.s.movements {
		if m.Reference == movementID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MovementRepo) Update(m *entity.InventoryMovement) error {
	defer r.s.enter(r.lock)()
	for i, existing := range r.s.movements {
		if existing.ID == m.ID {
			// Solo campos descriptivos, como el adaptador real.
			existing.UnitPrice = m.UnitPrice
			existing.Reference = m.Reference
			existing.Observations = m.Observations
			existing.Date = m.Date
			r.s.movements[i] = existing
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *MovementRepo) List(filter repository.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	defer r.s.enter(r.lock)()
	var matched []entity.InventoryMovement
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.UserID != "" && m.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		matched = append(matched, m)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
	total := len(matched)
	return pageOf(matched, filter.Limit, filter.Offset), total, nil
}

// SaleRepo fake en memoria.
type SaleRepo struct {
	s    *Store
	lock bool
}

func NewSaleRepo(s *Store) *SaleRepo { return &SaleRepo{s: s, lock: true} }

func (r *SaleRepo) Create(s *entity.Sale) error {
	defer r.s.enter(r.lock)()
	for _, existing := range r.s.sales {
		if existing.Number == s.Number {
			return domain.ErrConflict
		}
	}
	header := *s
	header.Details = nil
	r.s.sales[s.ID] = header
	return nil
}

func (r *SaleRepo) CreateDetail(d *entity.SaleDetail) error {
	defer r.s.enter(r.lock)()
	r.s.saleDetails[d.SaleID] = append(r.s.saleDetails[d.SaleID], *d)
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	defer r.s.enter(r.lock)()
	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// GetByIDForUpdate: la mutex del Store ya serializa las transacciones.
func (r *SaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *SaleRepo) GetDetails(saleID string) ([]*entity.SaleDetail, error) {
	defer r.s.enter(r.lock)()
	var out []*entity.SaleDetail
	for _, d := range r.s.saleDetails[saleID] {
		cp := d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *SaleRepo) Update(s *entity.Sale) error {
	defer r.s.enter(r.lock)()
	existing, ok := r.s.sales[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.ClientID = s.ClientID
	existing.Status = s.Status
	existing.Observations = s.Observations
	existing.Discount = s.Discount
	existing.Tax = s.Tax
	existing.Total = s.Total
	existing.UpdatedAt = s.UpdatedAt
	r.s.sales[s.ID] = existing
	return nil
}

func (r *SaleRepo) DeleteDetails(saleID string) error {
	defer r.s.enter(r.lock)()
	delete(r.s.saleDetails, saleID)
	return nil
}

func (r *SaleRepo) Delete(id string) error {
	defer r.s.enter(r.lock)()
	delete(r.s.sales, id)
	return nil
}

func (r *SaleRepo) List(filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	defer r.s.enter(r.lock)()
	var matched []entity.Sale
	for _, s := range r.s.sales {
		if filter.ClientID != "" && (s.ClientID == nil || *s.ClientID != filter.ClientID) {
			continue
		}
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Number != "" && !strings.Contains(s.Number, filter.Number) {
			continue
		}
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		matched = append(matched, s)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
	total := len(matched)
	return pageOf(matched, filter.Limit, filter.Offset), total, nil
}

func (r *SaleRepo) DailyTotals(from, to time.Time) ([]*entity.DailySalesTotal, error) {
	defer r.s.enter(r.lock)()
	byDay := make(map[time.Time]*entity.DailySalesTotal)
	for _, s := range r.s.sales {
		if s.Status != entity.SaleStatusCompletada || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		day := s.Date.Truncate(24 * time.Hour)
		t, ok := byDay[day]
		if !ok {
			t = &entity.DailySalesTotal{Day: day}
			byDay[day] = t
		}
		t.Count++
		t.Total = t.Total.Add(s.Total)
	}
	out := make([]*entity.DailySalesTotal, 0, len(byDay))
	for _, t := range byDay {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// PurchaseRepo fake en memoria.
type PurchaseRepo struct {
	s    *Store
	lock bool
}

func NewPurchaseRepo(s *Store) *PurchaseRepo { return &PurchaseRepo{s: s, lock: true} }

func (r *PurchaseRepo) Create(p *entity.Purchase) error {
	defer r.s.enter(r.lock)()
	for _, existing := range r.s.purchases {
		if existing.Number == p.Number {
			return domain.ErrConflict
		}
	}
	header := *p
	header.Details = nil
	r.s.purchases[p.ID] = header
	return nil
}

func (r *PurchaseRepo) CreateDetail(d *entity.PurchaseDetail) error {
	defer r.s.enter(r.lock)()
	r.s.purchaseDetails[d.PurchaseID] = append(r.s.purchaseDetails[d.PurchaseID], *d)
	return nil
}

func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	defer r.s.enter(r.lock)()
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByIDForUpdate: la mutex del Store ya serializa las transacciones.
func (r *PurchaseRepo) GetByIDForUpdate(id string) (*entity.Purchase, error) {
	return r.GetByID(id)
}

func (r *PurchaseRepo) GetDetails(purchaseID string) ([]*entity.PurchaseDetail, error) {
	defer r.s.enter(r.lock)()
	var out []*entity.PurchaseDetail
	for _, d := range r.s.purchaseDetails[purchaseID] {
		cp := d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *PurchaseRepo) Update(p *entity.Purchase) error {
	defer r.s.enter(r.lock)()
	existing, ok := r.s.purchases[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Status = p.Status
	existing.Observations = p.Observations
	existing.Total = p.Total
	existing.UpdatedAt = p.UpdatedAt
	r.s.purchases[p.ID] = existing
	return nil
}

func (r *PurchaseRepo) DeleteDetails(purchaseID string) error {
	defer r.s.enter(r.lock)()
	delete(r.s.purchaseDetails, purchaseID)
	return nil
}

func (r *PurchaseRepo) Delete(id string) error {
	defer r.s.enter(r.lock)()
	delete(r.s.purchases, id)
	return nil
}

func (r *PurchaseRepo) List(filter repository.PurchaseFilter) ([]*entity.Purchase, int, error) {
	defer r.s.enter(r.lock)()
	var matched []entity.Purchase
	for _, p := range r.s.purchases {
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Number != "" && !strings.Contains(p.Number, filter.Number) {
			continue
		}
		if filter.From != nil && p.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && p.Date.After(*filter.To) {
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
	total := len(matched)
	return pageOf(matched, filter.Limit, filter.Offset), total, nil
}

// SequenceRepo fake del consecutivo: misma semántica que el adaptador real,
// incluida la siembra desde el documento más reciente de la familia.
type SequenceRepo struct {
	s    *Store
	lock bool
}

func NewSequenceRepo(s *Store) *SequenceRepo { return &SequenceRepo{s: s, lock: true} }

func (r *SequenceRepo) Next(family string) (int, error) {
	defer r.s.enter(r.lock)()
	last, ok := r.s.sequences[family]
	if !ok {
		last = r.seedLocked(family)
	}
	next := last + 1
	r.s.sequences[family] = next
	return next, nil
}

func (r *SequenceRepo) seedLocked(family string) int {
	var newest time.Time
	var number string
	switch family {
	case entity.DocumentFamilySales:
		for _, s := range r.s.sales {
			if s.CreatedAt.After(newest) || number == "" {
				newest = s.CreatedAt
				number = s.Number
			}
		}
	case entity.DocumentFamilyPurchases:
		for _, p := range r.s.purchases {
			if p.CreatedAt.After(newest) || number == "" {
				newest = p.CreatedAt
				number = p.Number
			}
		}
	}
	return entity.ParseDocumentSuffix(number)
}

func pageOf[T any](list []T, limit, offset int) []*T {
	if limit <= 0 {
		limit = len(list)
	}
	var out []*T
	for i := offset; i < len(list) && len(out) < limit; i++ {
		cp := list[i]
		out = append(out, &cp)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
