package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementação do porto OrderRepository sobre PostgreSQL.
// Pedido e itens vivem em duas tabelas; Create e ReplaceItems devem rodar
// com Querier transacional (via TxRunner) para serem atômicos.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, order_number, requester_store_id, production_store_id, status, created_by, submitted_at, printed_at, completed_at, received_at, cancelled_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.ButcherOrder, error) {
	var o entity.ButcherOrder
	err := row.Scan(&o.ID, &o.OrderNumber, &o.RequesterStoreID, &o.ProductionStoreID, &o.Status,
		&o.CreatedBy, &o.SubmittedAt, &o.PrintedAt, &o.CompletedAt, &o.ReceivedAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste o pedido e seus itens.
func (r *OrderRepo) Create(ctx context.Context, o *entity.ButcherOrder) error {
	query := `
		INSERT INTO butcher_orders (id, order_number, requester_store_id, production_store_id, status, created_by, submitted_at, printed_at, completed_at, received_at, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.RequesterStoreID, o.ProductionStoreID, o.Status, o.CreatedBy,
		o.SubmittedAt, o.PrintedAt, o.CompletedAt, o.ReceivedAt, o.CancelledAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return r.insertItems(ctx, o.ID, o.Items)
}

func (r *OrderRepo) insertItems(ctx context.Context, orderID string, items []entity.ButcherOrderItem) error {
	for _, it := range items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO butcher_order_items (id, order_id, product_id, product_code, product_name, quantity, unit, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, orderID, it.ProductID, it.ProductCode, it.ProductName, it.Quantity, it.Unit, it.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) loadItems(ctx context.Context, orderIDs []string) (map[string][]entity.ButcherOrderItem, error) {
	out := make(map[string][]entity.ButcherOrderItem)
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, product_code, product_name, quantity, unit, notes
		FROM butcher_order_items WHERE order_id = ANY($1) ORDER BY product_name`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ButcherOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductCode, &it.ProductName,
			&it.Quantity, &it.Unit, &it.Notes); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// GetByID busca um pedido com itens. Devolve nil, nil se não existir.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.ButcherOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM butcher_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// List consulta pedidos com itens segundo o filtro, mais recentes primeiro.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.ButcherOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM butcher_orders WHERE 1=1`
	args := []any{}
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	if f.StoreID != nil {
		query += ` AND requester_store_id = ` + next()
		args = append(args, *f.StoreID)
	}
	if len(f.Statuses) > 0 {
		query += ` AND status = ANY(` + next() + `)`
		args = append(args, f.Statuses)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.ButcherOrder
	ids := make([]string, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, nil
}

// SetStatus grava o novo status e os carimbos não nulos em uma única escrita.
func (r *OrderRepo) SetStatus(ctx context.Context, id string, change repository.OrderStatusChange) error {
	query := `UPDATE butcher_orders SET status = $2, updated_at = now()`
	args := []any{id, change.Status}
	n := 2
	add := func(col string, v any) {
		n++
		query += fmt.Sprintf(", %s = $%d", col, n)
		args = append(args, v)
	}
	if change.SubmittedAt != nil {
		add("submitted_at", *change.SubmittedAt)
	}
	if change.PrintedAt != nil {
		add("printed_at", *change.PrintedAt)
	}
	if change.CompletedAt != nil {
		add("completed_at", *change.CompletedAt)
	}
	if change.ReceivedAt != nil {
		add("received_at", *change.ReceivedAt)
	}
	if change.CancelledAt != nil {
		add("cancelled_at", *change.CancelledAt)
	}
	query += ` WHERE id = $1`
	_, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	return nil
}

// ReplaceItems troca todos os itens do pedido pelo estado mais recente do editor.
func (r *OrderRepo) ReplaceItems(ctx context.Context, orderID string, items []entity.ButcherOrderItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM butcher_order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}
	if err := r.insertItems(ctx, orderID, items); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `UPDATE butcher_orders SET updated_at = now() WHERE id = $1`, orderID); err != nil {
		return fmt.Errorf("touch order: %w", err)
	}
	return nil
}

// CountCreatedForDay conta pedidos da loja criados no dia informado.
// Base do sufixo sequencial do número do pedido; leitura-depois-escrita sem
// trava, janela de corrida aceita pelo volume de uma loja.
func (r *OrderRepo) CountCreatedForDay(ctx context.Context, storeID string, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM butcher_orders WHERE requester_store_id = $1 AND created_at >= $2 AND created_at < $3`,
		storeID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders for day: %w", err)
	}
	return count, nil
}

// HardDelete remove fisicamente o pedido e seus itens. Uso restrito a
// rascunhos vazios abandonados; pedidos com histórico são cancelados, nunca removidos.
func (r *OrderRepo) HardDelete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM butcher_order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM butcher_orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
