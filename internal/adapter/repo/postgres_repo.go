package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/order-service/internal/domain"
)

type PostgresOrderRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{Pool: pool}
}

func (r *PostgresOrderRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO orders(order_id, value, creation_date) VALUES($1, $2, $3)`,
		o.OrderID, o.Value, o.CreationDate)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order %s: %w", o.OrderID, domain.ErrDuplicate)
		}
		return err
	}
	if err := insertItems(ctx, tx, o.OrderID, o.Items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresOrderRepo) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order
	err := r.Pool.QueryRow(ctx, `SELECT order_id, value, creation_date FROM orders WHERE order_id = $1`, orderID).
		Scan(&o.OrderID, &o.Value, &o.CreationDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, &domain.NotFoundError{OrderID: orderID}
	}
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := r.Pool.Query(ctx, `SELECT product_id, quantity, unit_price FROM order_items
        WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *PostgresOrderRepo) List(ctx context.Context, f domain.ListFilters) ([]domain.Order, error) {
	q := `SELECT order_id, value, creation_date FROM orders`
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.MinValue != nil {
		add("value >= $%d", *f.MinValue)
	}
	if f.MaxValue != nil {
		add("value <= $%d", *f.MaxValue)
	}
	if f.StartDate != nil {
		add("creation_date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("creation_date <= $%d", *f.EndDate)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY creation_date DESC"

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.OrderID, &o.Value, &o.CreationDate); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Update заменяет сумму и позиции одной транзакцией, чтобы не было окна,
// в котором заказ существует без позиций.
func (r *PostgresOrderRepo) Update(ctx context.Context, o domain.Order) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE orders SET value = $2 WHERE order_id = $1`, o.OrderID, o.Value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{OrderID: o.OrderID}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.OrderID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, o.OrderID, o.Items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresOrderRepo) Delete(ctx context.Context, orderID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{OrderID: orderID}
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []domain.OrderItem) error {
	for i, it := range items {
		_, err := tx.Exec(ctx, `INSERT INTO order_items(order_id, position, product_id, quantity, unit_price)
            VALUES($1, $2, $3, $4, $5)`, orderID, i, it.ProductID, it.Quantity, it.UnitPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ domain.OrderRepository = (*PostgresOrderRepo)(nil)

// EnsureSchema — создать необходимые таблицы, если отсутствуют.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS orders (
  order_id text PRIMARY KEY,
  value bigint NOT NULL,
  creation_date timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS order_items (
  order_id text NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
  position int NOT NULL,
  product_id bigint NOT NULL,
  quantity bigint NOT NULL,
  unit_price bigint NOT NULL,
  PRIMARY KEY (order_id, product_id)
);`)
	return err
}
