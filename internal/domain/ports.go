package domain

import (
	"context"
	"time"
)

// ListFilters — необязательные фильтры списка заказов, границы включительны.
type ListFilters struct {
	MinValue  *int64
	MaxValue  *int64
	StartDate *time.Time
	EndDate   *time.Time
}

// OrderRepository — порт для операций персистентности заказов.
// Create возвращает ошибку, оборачивающую ErrDuplicate, при конфликте
// order_id; FindByID, Update и Delete возвращают NotFoundError для
// отсутствующего заказа. List отдаёт заказы по убыванию даты создания.
type OrderRepository interface {
	Create(ctx context.Context, o Order) error
	FindByID(ctx context.Context, orderID string) (Order, error)
	List(ctx context.Context, f ListFilters) ([]Order, error)
	Update(ctx context.Context, o Order) error
	Delete(ctx context.Context, orderID string) error
}

// OrderCache — порт быстрого доступа к заказам (кэш).
type OrderCache interface {
	Get(id string) (Order, bool)
	Set(id string, o Order)
	Delete(id string)
}

// OrderEvent — событие изменения заказа для внешних потребителей.
type OrderEvent struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
	Value   int64  `json:"value,omitempty"`
}

// OrderEventPublisher — порт публикации событий заказов.
type OrderEventPublisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}
