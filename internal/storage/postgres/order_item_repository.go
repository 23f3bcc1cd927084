package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

type orderItemRepository struct {
	db *sql.DB
}

// NewOrderItemRepository создаёт PostgreSQL-реализацию OrderItemRepository.
func NewOrderItemRepository(store *Store) domain.OrderItemRepository {
	return &orderItemRepository{db: store.DB()}
}

const itemColumns = `id, order_id, item_kind, product_ref, service_ref, description, quantity, unit_price, subtotal, created_at`

func (r *orderItemRepository) Create(item domain.OrderItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_items (
			id, order_id, item_kind, product_ref, service_ref, description, quantity, unit_price, subtotal, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		item.ID, item.OrderID, string(item.Kind),
		nullableText(item.ProductRef), nullableText(item.ServiceRef),
		item.Description, item.Quantity, item.UnitPrice, item.Subtotal, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}

	return nil
}

func (r *orderItemRepository) Get(id string) (domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM order_items
		WHERE id = $1
	`, id)
	return scanOrderItem(row)
}

func (r *orderItemRepository) ListByOrder(orderID string) ([]domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *orderItemRepository) Update(id string, patch domain.OrderItemPatch) error {
	if patch.Quantity == nil && patch.UnitPrice == nil && patch.Description == nil && patch.Subtotal == nil {
		return domain.ErrEmptyPatch
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Quantity != nil {
		appendSet("quantity", *patch.Quantity)
	}
	if patch.UnitPrice != nil {
		appendSet("unit_price", *patch.UnitPrice)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Subtotal != nil {
		appendSet("subtotal", *patch.Subtotal)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE order_items SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

func (r *orderItemRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

func (r *orderItemRepository) DeleteByOrder(orderID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items by order: %w", err)
	}

	return nil
}

func scanOrderItem(row rowScanner) (domain.OrderItem, error) {
	var (
		item       domain.OrderItem
		kind       string
		productRef sql.NullString
		serviceRef sql.NullString
	)

	err := row.Scan(
		&item.ID, &item.OrderID, &kind, &productRef, &serviceRef,
		&item.Description, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderItem{}, domain.ErrItemNotFound
		}
		return domain.OrderItem{}, fmt.Errorf("scan order item: %w", err)
	}

	item.Kind = domain.ItemKind(kind)
	item.ProductRef = productRef.String
	item.ServiceRef = serviceRef.String

	return item, nil
}

var _ domain.OrderItemRepository = (*orderItemRepository)(nil)
