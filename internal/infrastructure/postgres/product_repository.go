package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementação do porto ProductRepository sobre PostgreSQL.
// Catálogo é somente leitura para o core (alimentado por integração externa).
type ProductRepo struct {
	q Querier
}

// NewProductRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, code, name, brand, unit, category, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Brand, &p.Unit, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID busca um produto por ID. Devolve nil, nil se não existir.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByCode busca um produto pelo código de barras / código interno.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}
	return p, nil
}

// ListByIDs busca produtos em lote.
func (r *ProductRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list products by ids: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Search busca produtos por nome ou código (autocomplete de formulários).
func (r *ProductRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE '%' || $1 || '%' OR code ILIKE $1 || '%' ORDER BY name LIMIT $2`,
		term, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
