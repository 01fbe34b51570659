package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/order-service/internal/domain"
)

// MemoryOrderRepo — репозиторий в памяти для локального запуска и тестов.
// Семантика совпадает с PostgresOrderRepo, включая конфликт уникальности.
type MemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *MemoryOrderRepo) Create(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.OrderID]; ok {
		return fmt.Errorf("order %s: %w", o.OrderID, domain.ErrDuplicate)
	}
	r.orders[o.OrderID] = cloneOrder(o)
	return nil
}

func (r *MemoryOrderRepo) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, &domain.NotFoundError{OrderID: orderID}
	}
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepo) List(_ context.Context, f domain.ListFilters) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var orders []domain.Order
	for _, o := range r.orders {
		if f.MinValue != nil && o.Value < *f.MinValue {
			continue
		}
		if f.MaxValue != nil && o.Value > *f.MaxValue {
			continue
		}
		if f.StartDate != nil && o.CreationDate.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && o.CreationDate.After(*f.EndDate) {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreationDate.After(orders[j].CreationDate)
	})
	return orders, nil
}

func (r *MemoryOrderRepo) Update(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.OrderID]; !ok {
		return &domain.NotFoundError{OrderID: o.OrderID}
	}
	r.orders[o.OrderID] = cloneOrder(o)
	return nil
}

func (r *MemoryOrderRepo) Delete(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[orderID]; !ok {
		return &domain.NotFoundError{OrderID: orderID}
	}
	delete(r.orders, orderID)
	return nil
}

// cloneOrder копирует срез позиций, чтобы вызывающий не разделял память
// с хранилищем.
func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

var _ domain.OrderRepository = (*MemoryOrderRepo)(nil)
