package repository

import (
	"context"
	"time"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// ValidityFilter restringe a consulta de entradas de validade.
// Statuses vazio significa "qualquer status não excluído", a menos que
// IncludeDeleted esteja ligado.
type ValidityFilter struct {
	StoreID         *string
	Statuses        []string
	IncludeDeleted  bool
	ExpiresBefore   *time.Time
	CreatedByUserID *string
}

// ValidityRepository define o porto de persistência para ValidityEntry.
type ValidityRepository interface {
	Create(ctx context.Context, e *entity.ValidityEntry) error
	GetByID(ctx context.Context, id string) (*entity.ValidityEntry, error)
	List(ctx context.Context, f ValidityFilter) ([]*entity.ValidityEntry, error)
	Update(ctx context.Context, e *entity.ValidityEntry) error
	// SetVerification grava status + verified_at + verified_by de forma atômica.
	// Passar verifiedAt/verifiedBy nil limpa a conferência (volta a pendente).
	SetVerification(ctx context.Context, id, status string, verifiedAt *time.Time, verifiedBy *string) error
	// SoftDelete marca status excluido + deleted_at; a linha permanece.
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
}
