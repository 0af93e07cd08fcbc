package repository

import (
	"context"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// ProfileRepository define o porto de persistência para Profile (DIP).
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*entity.Profile, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
	// ReplacePermissions troca o mapa de permissões inteiro (nunca patch parcial).
	ReplacePermissions(ctx context.Context, id string, grants map[entity.Module]entity.Grant) error
	Delete(ctx context.Context, id string) error
}
