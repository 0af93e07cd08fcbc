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

var _ repository.SolicitationRepository = (*SolicitationRepo)(nil)

// SolicitationRepo implementação do porto SolicitationRepository sobre PostgreSQL.
type SolicitationRepo struct {
	q Querier
}

// NewSolicitationRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewSolicitationRepository(q Querier) *SolicitationRepo {
	return &SolicitationRepo{q: q}
}

const solicitationColumns = `id, store_id, product_id, requested_by, observation, status, requested_at, resolved_at`

func scanSolicitation(row pgx.Row) (*entity.Solicitation, error) {
	var s entity.Solicitation
	err := row.Scan(&s.ID, &s.StoreID, &s.ProductID, &s.RequestedBy, &s.Observation,
		&s.Status, &s.RequestedAt, &s.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste uma solicitação.
func (r *SolicitationRepo) Create(ctx context.Context, s *entity.Solicitation) error {
	query := `
		INSERT INTO solicitations (id, store_id, product_id, requested_by, observation, status, requested_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.StoreID, s.ProductID, s.RequestedBy, s.Observation, s.Status, s.RequestedAt, s.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert solicitation: %w", err)
	}
	return nil
}

// CreateBatch insere o fan-out para várias lojas. Uma linha por loja.
func (r *SolicitationRepo) CreateBatch(ctx context.Context, list []*entity.Solicitation) error {
	for _, s := range list {
		if err := r.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// GetByID busca uma solicitação por ID. Devolve nil, nil se não existir.
func (r *SolicitationRepo) GetByID(ctx context.Context, id string) (*entity.Solicitation, error) {
	s, err := scanSolicitation(r.q.QueryRow(ctx, `SELECT `+solicitationColumns+` FROM solicitations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get solicitation: %w", err)
	}
	return s, nil
}

// List consulta solicitações segundo o filtro, mais recentes primeiro.
func (r *SolicitationRepo) List(ctx context.Context, f repository.SolicitationFilter) ([]*entity.Solicitation, error) {
	query := `SELECT ` + solicitationColumns + ` FROM solicitations WHERE 1=1`
	args := []any{}
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	if f.StoreID != nil {
		query += ` AND store_id = ` + next()
		args = append(args, *f.StoreID)
	}
	if len(f.Statuses) > 0 {
		query += ` AND status = ANY(` + next() + `)`
		args = append(args, f.Statuses)
	}
	query += ` ORDER BY requested_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list solicitations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Solicitation
	for rows.Next() {
		s, err := scanSolicitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan solicitation: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// SetStatus grava o novo status com carimbo opcional de resolução.
func (r *SolicitationRepo) SetStatus(ctx context.Context, id, status string, resolvedAt *time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE solicitations SET status = $2, resolved_at = $3 WHERE id = $1`,
		id, status, resolvedAt)
	if err != nil {
		return fmt.Errorf("set solicitation status: %w", err)
	}
	return nil
}
