package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate — репозиторий сигнализирует конфликт уникальности order_id.
var ErrDuplicate = errors.New("duplicate order id")

// ValidationError — входные данные нарушают ограничения схемы.
// Собирает все нарушения сразу, а не только первое.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Violations, "; ") }

// TotalMismatchError — заявленная сумма не совпадает с суммой позиций.
type TotalMismatchError struct {
	Declared   int64
	Calculated int64
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("inconsistent order total: declared %d, but the item sum is %d", e.Declared, e.Calculated)
}

// DuplicateOrderError — заказ с таким order_id уже существует.
type DuplicateOrderError struct {
	OrderID string
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("order %q already exists", e.OrderID)
}

// NotFoundError — заказ не найден.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %q not found", e.OrderID)
}
