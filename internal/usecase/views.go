package usecase

// Link — HATEOAS-ссылка в ответах API.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// CreateResult — ответ на создание заказа.
type CreateResult struct {
	OrderID string `json:"order_id"`
	Links   []Link `json:"links"`
}

// LineItemView — позиция заказа во внешнем представлении ответа.
type LineItemView struct {
	ItemID    string `json:"item_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderView — заказ, приведённый обратно к форме входа.
type OrderView struct {
	OrderNumber   string         `json:"order_number"`
	DeclaredTotal int64          `json:"declared_total"`
	CreatedAt     string         `json:"created_at"`
	Items         []LineItemView `json:"items"`
}

// ListEntry — элемент списка заказов, без позиций.
type ListEntry struct {
	OrderID      string `json:"order_id"`
	Value        int64  `json:"value"`
	CreationDate string `json:"creation_date"`
	Links        []Link `json:"links"`
}

// DeleteResult — подтверждение удаления.
type DeleteResult struct {
	Message string `json:"message"`
}
