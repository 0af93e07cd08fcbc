package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

var _ repository.DeleteRequestRepository = (*DeleteRequestRepo)(nil)

// DeleteRequestRepo implementação do porto DeleteRequestRepository sobre PostgreSQL.
type DeleteRequestRepo struct {
	q Querier
}

// NewDeleteRequestRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewDeleteRequestRepository(q Querier) *DeleteRequestRepo {
	return &DeleteRequestRepo{q: q}
}

const deleteRequestColumns = `id, validity_entry_id, reason, requested_by, requested_at, status, resolved_at, resolved_by`

func scanDeleteRequest(row pgx.Row) (*entity.DeleteRequest, error) {
	var d entity.DeleteRequest
	err := row.Scan(&d.ID, &d.ValidityEntryID, &d.Reason, &d.RequestedBy, &d.RequestedAt,
		&d.Status, &d.ResolvedAt, &d.ResolvedBy)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persiste um novo pedido de exclusão.
func (r *DeleteRequestRepo) Create(ctx context.Context, d *entity.DeleteRequest) error {
	query := `
		INSERT INTO delete_requests (id, validity_entry_id, reason, requested_by, requested_at, status, resolved_at, resolved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.ValidityEntryID, d.Reason, d.RequestedBy, d.RequestedAt, d.Status, d.ResolvedAt, d.ResolvedBy,
	)
	if err != nil {
		return fmt.Errorf("insert delete request: %w", err)
	}
	return nil
}

// GetByID busca um pedido por ID. Devolve nil, nil se não existir.
func (r *DeleteRequestRepo) GetByID(ctx context.Context, id string) (*entity.DeleteRequest, error) {
	d, err := scanDeleteRequest(r.q.QueryRow(ctx, `SELECT `+deleteRequestColumns+` FROM delete_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delete request: %w", err)
	}
	return d, nil
}

// PendingByEntry devolve o pedido pendente da entrada, ou nil se não houver.
// O "no máximo um pendente por entrada" é garantido por este filtro de consulta,
// não por constraint.
func (r *DeleteRequestRepo) PendingByEntry(ctx context.Context, entryID string) (*entity.DeleteRequest, error) {
	d, err := scanDeleteRequest(r.q.QueryRow(ctx,
		`SELECT `+deleteRequestColumns+` FROM delete_requests WHERE validity_entry_id = $1 AND status = $2 ORDER BY requested_at DESC LIMIT 1`,
		entryID, entity.DeleteRequestPendente))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending delete request: %w", err)
	}
	return d, nil
}

// ListPending lista pedidos pendentes, mais recentes primeiro.
func (r *DeleteRequestRepo) ListPending(ctx context.Context) ([]*entity.DeleteRequest, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+deleteRequestColumns+` FROM delete_requests WHERE status = $1 ORDER BY requested_at DESC`,
		entity.DeleteRequestPendente)
	if err != nil {
		return nil, fmt.Errorf("list pending delete requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.DeleteRequest
	for rows.Next() {
		d, err := scanDeleteRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delete request: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Resolve fecha o pedido com status terminal, carimbo e autor.
func (r *DeleteRequestRepo) Resolve(ctx context.Context, id, status string, resolvedAt time.Time, resolvedBy string) error {
	query := `
		UPDATE delete_requests SET status = $2, resolved_at = $3, resolved_by = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status, resolvedAt, resolvedBy)
	if err != nil {
		return fmt.Errorf("resolve delete request: %w", err)
	}
	return nil
}
