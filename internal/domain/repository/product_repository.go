package repository

import (
	"context"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// ProductRepository define o porto de leitura do catálogo de produtos.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Product, error)
}
