package repository

import (
	"context"
	"time"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// OrderFilter restringe a consulta de pedidos do açougue.
type OrderFilter struct {
	StoreID  *string
	Statuses []string
}

// OrderStatusChange descreve uma transição de status com os carimbos que a acompanham.
// Somente os ponteiros não nulos são gravados, junto com o status, em uma única escrita.
type OrderStatusChange struct {
	Status      string
	SubmittedAt *time.Time
	PrintedAt   *time.Time
	CompletedAt *time.Time
	ReceivedAt  *time.Time
	CancelledAt *time.Time
}

// OrderRepository define o porto de persistência para ButcherOrder.
type OrderRepository interface {
	// Create persiste o pedido e seus itens. Atômico quando o Querier é uma tx.
	Create(ctx context.Context, o *entity.ButcherOrder) error
	GetByID(ctx context.Context, id string) (*entity.ButcherOrder, error)
	List(ctx context.Context, f OrderFilter) ([]*entity.ButcherOrder, error)
	SetStatus(ctx context.Context, id string, change OrderStatusChange) error
	// ReplaceItems troca todos os itens do pedido (flush do debounce de edição).
	ReplaceItems(ctx context.Context, orderID string, items []entity.ButcherOrderItem) error
	// CountCreatedForDay conta pedidos da loja criados no dia (numeração sequencial).
	CountCreatedForDay(ctx context.Context, storeID string, day time.Time) (int, error)
	// HardDelete remove fisicamente o pedido e itens. Só para rascunhos vazios.
	HardDelete(ctx context.Context, id string) error
}
