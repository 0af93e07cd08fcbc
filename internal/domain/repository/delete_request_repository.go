package repository

import (
	"context"
	"time"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// DeleteRequestRepository define o porto de persistência para DeleteRequest.
type DeleteRequestRepository interface {
	Create(ctx context.Context, r *entity.DeleteRequest) error
	GetByID(ctx context.Context, id string) (*entity.DeleteRequest, error)
	// PendingByEntry devolve o pedido pendente da entrada, ou nil se não houver.
	PendingByEntry(ctx context.Context, entryID string) (*entity.DeleteRequest, error)
	ListPending(ctx context.Context) ([]*entity.DeleteRequest, error)
	// Resolve fecha o pedido (aprovado/rejeitado) com carimbo e autor.
	Resolve(ctx context.Context, id, status string, resolvedAt time.Time, resolvedBy string) error
}
