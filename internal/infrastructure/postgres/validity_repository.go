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

var _ repository.ValidityRepository = (*ValidityRepo)(nil)

// ValidityRepo implementação do porto ValidityRepository sobre PostgreSQL.
type ValidityRepo struct {
	q Querier
}

// NewValidityRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewValidityRepository(q Querier) *ValidityRepo {
	return &ValidityRepo{q: q}
}

const validityColumns = `id, product_id, store_id, expires_at, lot, quantity, unit, status, created_by, verified_at, verified_by, created_at, updated_at, deleted_at`

func scanValidity(row pgx.Row) (*entity.ValidityEntry, error) {
	var e entity.ValidityEntry
	err := row.Scan(&e.ID, &e.ProductID, &e.StoreID, &e.ExpiresAt, &e.Lot, &e.Quantity, &e.Unit,
		&e.Status, &e.CreatedBy, &e.VerifiedAt, &e.VerifiedBy, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create persiste uma nova entrada de validade.
func (r *ValidityRepo) Create(ctx context.Context, e *entity.ValidityEntry) error {
	query := `
		INSERT INTO validity_entries (id, product_id, store_id, expires_at, lot, quantity, unit, status, created_by, verified_at, verified_by, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.StoreID, e.ExpiresAt, e.Lot, e.Quantity, e.Unit, e.Status,
		e.CreatedBy, e.VerifiedAt, e.VerifiedBy, e.CreatedAt, e.UpdatedAt, e.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert validity entry: %w", err)
	}
	return nil
}

// GetByID busca uma entrada por ID. Devolve nil, nil se não existir.
func (r *ValidityRepo) GetByID(ctx context.Context, id string) (*entity.ValidityEntry, error) {
	e, err := scanValidity(r.q.QueryRow(ctx, `SELECT `+validityColumns+` FROM validity_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get validity entry: %w", err)
	}
	return e, nil
}

// List consulta entradas segundo o filtro, ordenadas por criação (desc).
// Sem IncludeDeleted, linhas com status excluido ficam de fora.
func (r *ValidityRepo) List(ctx context.Context, f repository.ValidityFilter) ([]*entity.ValidityEntry, error) {
	query := `SELECT ` + validityColumns + ` FROM validity_entries WHERE 1=1`
	args := []any{}
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	if !f.IncludeDeleted {
		query += ` AND status <> ` + next()
		args = append(args, entity.ValidityExcluido)
	}
	if len(f.Statuses) > 0 {
		query += ` AND status = ANY(` + next() + `)`
		args = append(args, f.Statuses)
	}
	if f.StoreID != nil {
		query += ` AND store_id = ` + next()
		args = append(args, *f.StoreID)
	}
	if f.ExpiresBefore != nil {
		query += ` AND expires_at <= ` + next()
		args = append(args, *f.ExpiresBefore)
	}
	if f.CreatedByUserID != nil {
		query += ` AND created_by = ` + next()
		args = append(args, *f.CreatedByUserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list validity entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.ValidityEntry
	for rows.Next() {
		e, err := scanValidity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan validity entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update atualiza os campos mutáveis da entrada, sempre carimbando updated_at.
func (r *ValidityRepo) Update(ctx context.Context, e *entity.ValidityEntry) error {
	query := `
		UPDATE validity_entries SET product_id = $2, expires_at = $3, lot = $4, quantity = $5, unit = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, e.ID, e.ProductID, e.ExpiresAt, e.Lot, e.Quantity, e.Unit, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update validity entry: %w", err)
	}
	return nil
}

// SetVerification grava status + verified_at + verified_by em uma única escrita.
// A dupla carimbo/autor entra ou sai junto com o status, nunca separada.
func (r *ValidityRepo) SetVerification(ctx context.Context, id, status string, verifiedAt *time.Time, verifiedBy *string) error {
	query := `
		UPDATE validity_entries SET status = $2, verified_at = $3, verified_by = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status, verifiedAt, verifiedBy)
	if err != nil {
		return fmt.Errorf("set verification: %w", err)
	}
	return nil
}

// SoftDelete marca a entrada como excluída sem remover a linha.
func (r *ValidityRepo) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	query := `
		UPDATE validity_entries SET status = $2, deleted_at = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, entity.ValidityExcluido, deletedAt)
	if err != nil {
		return fmt.Errorf("soft delete validity entry: %w", err)
	}
	return nil
}
