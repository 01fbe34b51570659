package domain

import (
	"fmt"
	"strconv"
	"time"
)

// AssembleOrder строит сущность заказа из проверенного входа: парсит
// идентификаторы позиций, нормализует их и сверяет итоговую сумму.
// Единственная точка, где инвариант суммы проверяется перед сохранением.
func AssembleOrder(in OrderInput) (Order, error) {
	items, err := mapItems(in.Items)
	if err != nil {
		return Order{}, err
	}
	items = Normalize(items)
	if err := EnsureTotalsMatch(in.DeclaredTotal, items); err != nil {
		return Order{}, err
	}
	created, err := time.Parse(time.RFC3339, in.CreatedAt)
	if err != nil {
		return Order{}, &ValidationError{Violations: []string{
			fmt.Sprintf("created_at %q is not a valid RFC3339 timestamp", in.CreatedAt),
		}}
	}
	return Order{
		OrderID:      in.OrderNumber,
		Value:        in.DeclaredTotal,
		CreationDate: created,
		Items:        items,
	}, nil
}

// AssembleReplacement строит обновлённую сущность через тот же конвейер:
// order_id и дата создания берутся из существующего заказа, позиции
// заменяются полностью.
func AssembleReplacement(existing Order, upd OrderUpdateInput) (Order, error) {
	items, err := mapItems(upd.Items)
	if err != nil {
		return Order{}, err
	}
	items = Normalize(items)
	if err := EnsureTotalsMatch(upd.DeclaredTotal, items); err != nil {
		return Order{}, err
	}
	return Order{
		OrderID:      existing.OrderID,
		Value:        upd.DeclaredTotal,
		CreationDate: existing.CreationDate,
		Items:        items,
	}, nil
}

func mapItems(in []LineItemInput) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(in))
	for _, it := range in {
		id, err := strconv.ParseInt(it.ItemID, 10, 64)
		if err != nil {
			return nil, &ValidationError{Violations: []string{
				fmt.Sprintf("item_id %q is not a valid product id", it.ItemID),
			}}
		}
		items = append(items, OrderItem{ProductID: id, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return items, nil
}
