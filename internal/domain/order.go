package domain

import "time"

// LineItemInput — позиция заказа во внешнем представлении API.
type LineItemInput struct {
	ItemID    string `json:"item_id" validate:"required,digits"`
	Quantity  int64  `json:"quantity" validate:"gte=0"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
}

// OrderInput — полное тело создания заказа.
type OrderInput struct {
	OrderNumber   string          `json:"order_number" validate:"required"`
	DeclaredTotal int64           `json:"declared_total" validate:"gte=0"`
	CreatedAt     string          `json:"created_at" validate:"required,rfc3339"`
	Items         []LineItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderUpdateInput — усечённое тело обновления: только сумма и позиции,
// идентификатор и дата создания заказа неизменяемы.
type OrderUpdateInput struct {
	DeclaredTotal int64           `json:"declared_total" validate:"gte=0"`
	Items         []LineItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderItem — нормализованная позиция заказа.
type OrderItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

// Order — доменная сущность заказа. Инвариант: Value равно сумме
// Quantity*UnitPrice по нормализованным позициям.
type Order struct {
	OrderID      string
	Value        int64
	CreationDate time.Time
	Items        []OrderItem
}
