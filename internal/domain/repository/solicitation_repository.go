package repository

import (
	"context"
	"time"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// SolicitationFilter restringe a consulta de solicitações.
type SolicitationFilter struct {
	StoreID  *string
	Statuses []string
}

// SolicitationRepository define o porto de persistência para Solicitation.
type SolicitationRepository interface {
	Create(ctx context.Context, s *entity.Solicitation) error
	// CreateBatch insere o fan-out para várias lojas de uma vez.
	CreateBatch(ctx context.Context, list []*entity.Solicitation) error
	GetByID(ctx context.Context, id string) (*entity.Solicitation, error)
	List(ctx context.Context, f SolicitationFilter) ([]*entity.Solicitation, error)
	SetStatus(ctx context.Context, id, status string, resolvedAt *time.Time) error
}
