package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementação do porto StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

const storeColumns = `id, code, name, region, created_at, updated_at`

func scanStore(row pgx.Row) (*entity.Store, error) {
	var s entity.Store
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Region, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID busca uma loja por ID. Devolve nil, nil se não existir.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	s, err := scanStore(r.q.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return s, nil
}

// ListByIDs busca lojas em lote.
func (r *StoreRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Store, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list stores by ids: %w", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// List lista todas as lojas ordenadas por código.
func (r *StoreRepo) List(ctx context.Context) ([]*entity.Store, error) {
	rows, err := r.q.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
