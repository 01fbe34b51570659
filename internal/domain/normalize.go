package domain

// Normalize объединяет позиции с одинаковым product_id: количества
// суммируются, цена берётся из последнего вхождения (одинаковая цена
// на товар подразумевается, но не проверяется). Порядок результата —
// порядок первых вхождений.
func Normalize(items []OrderItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			out[i].UnitPrice = it.UnitPrice
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

// EnsureTotalsMatch сверяет заявленную сумму с суммой позиций.
// Сравнение целочисленное, без допусков.
func EnsureTotalsMatch(declared int64, items []OrderItem) error {
	var calculated int64
	for _, it := range items {
		calculated += it.Quantity * it.UnitPrice
	}
	if calculated != declared {
		return &TotalMismatchError{Declared: declared, Calculated: calculated}
	}
	return nil
}
