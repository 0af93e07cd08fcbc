package repository

import (
	"context"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// StoreRepository define o porto de leitura de lojas (tabela de referência).
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Store, error)
	List(ctx context.Context) ([]*entity.Store, error)
}
