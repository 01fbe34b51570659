package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/validate"
)

// CreateOrder — создать заказ из необработанного тела запроса.
type CreateOrder struct {
	Repo    domain.OrderRepository
	Cache   domain.OrderCache
	Events  domain.OrderEventPublisher
	BaseURL string
}

func (uc CreateOrder) Execute(ctx context.Context, body io.Reader) (CreateResult, error) {
	in, err := validate.ParseOrderInput(body)
	if err != nil {
		return CreateResult{}, err
	}
	entity, err := domain.AssembleOrder(in)
	if err != nil {
		return CreateResult{}, err
	}
	if err := uc.Repo.Create(ctx, entity); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return CreateResult{}, &domain.DuplicateOrderError{OrderID: entity.OrderID}
		}
		return CreateResult{}, err
	}
	if uc.Cache != nil {
		uc.Cache.Set(entity.OrderID, entity)
	}
	publish(ctx, uc.Events, domain.OrderEvent{Type: "order.created", OrderID: entity.OrderID, Value: entity.Value})
	return CreateResult{OrderID: entity.OrderID, Links: selfLinks(uc.BaseURL, entity.OrderID)}, nil
}

// GetOrder — получить заказ по идентификатору во внешнем представлении.
type GetOrder struct {
	Repo  domain.OrderRepository
	Cache domain.OrderCache
}

func (uc GetOrder) Execute(ctx context.Context, orderID string) (OrderView, error) {
	if uc.Cache != nil {
		if o, ok := uc.Cache.Get(orderID); ok {
			return viewOf(o), nil
		}
	}
	o, err := uc.Repo.FindByID(ctx, orderID)
	if err != nil {
		return OrderView{}, err
	}
	if uc.Cache != nil {
		uc.Cache.Set(orderID, o)
	}
	return viewOf(o), nil
}

// ListOrders — список заказов по необязательным фильтрам,
// по убыванию даты создания.
type ListOrders struct {
	Repo    domain.OrderRepository
	BaseURL string
}

func (uc ListOrders) Execute(ctx context.Context, f domain.ListFilters) ([]ListEntry, error) {
	orders, err := uc.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	entries := make([]ListEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, ListEntry{
			OrderID:      o.OrderID,
			Value:        o.Value,
			CreationDate: o.CreationDate.Format(time.RFC3339Nano),
			Links:        selfLinks(uc.BaseURL, o.OrderID),
		})
	}
	return entries, nil
}

// UpdateOrder — полная замена суммы и позиций существующего заказа.
type UpdateOrder struct {
	Repo   domain.OrderRepository
	Cache  domain.OrderCache
	Events domain.OrderEventPublisher
}

func (uc UpdateOrder) Execute(ctx context.Context, orderID string, body io.Reader) (OrderView, error) {
	upd, err := validate.ParseOrderUpdate(body)
	if err != nil {
		return OrderView{}, err
	}
	existing, err := uc.Repo.FindByID(ctx, orderID)
	if err != nil {
		return OrderView{}, err
	}
	entity, err := domain.AssembleReplacement(existing, upd)
	if err != nil {
		return OrderView{}, err
	}
	if err := uc.Repo.Update(ctx, entity); err != nil {
		return OrderView{}, err
	}
	if uc.Cache != nil {
		uc.Cache.Set(entity.OrderID, entity)
	}
	publish(ctx, uc.Events, domain.OrderEvent{Type: "order.updated", OrderID: entity.OrderID, Value: entity.Value})
	return viewOf(entity), nil
}

// DeleteOrder — удалить заказ вместе с позициями.
type DeleteOrder struct {
	Repo   domain.OrderRepository
	Cache  domain.OrderCache
	Events domain.OrderEventPublisher
}

func (uc DeleteOrder) Execute(ctx context.Context, orderID string) (DeleteResult, error) {
	if _, err := uc.Repo.FindByID(ctx, orderID); err != nil {
		return DeleteResult{}, err
	}
	if err := uc.Repo.Delete(ctx, orderID); err != nil {
		return DeleteResult{}, err
	}
	if uc.Cache != nil {
		uc.Cache.Delete(orderID)
	}
	publish(ctx, uc.Events, domain.OrderEvent{Type: "order.deleted", OrderID: orderID})
	return DeleteResult{Message: "order deleted"}, nil
}

// publish отправляет событие, не влияя на исход операции:
// источник истины — хранилище, события носят уведомительный характер.
func publish(ctx context.Context, p domain.OrderEventPublisher, ev domain.OrderEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish order event", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}

func viewOf(o domain.Order) OrderView {
	items := make([]LineItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, LineItemView{
			ItemID:    strconv.FormatInt(it.ProductID, 10),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return OrderView{
		OrderNumber:   o.OrderID,
		DeclaredTotal: o.Value,
		CreatedAt:     o.CreationDate.Format(time.RFC3339Nano),
		Items:         items,
	}
}

func selfLinks(baseURL, orderID string) []Link {
	return []Link{{Rel: "self", Href: fmt.Sprintf("%s/order/%s", baseURL, orderID), Method: "GET"}}
}
