package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de um ButcherOrder. Transições monotônicas draft→pending→printed→completed,
// com cancelamento permitido a partir de draft/pending.
const (
	OrderDraft     = "draft"
	OrderPending   = "pending"
	OrderPrinted   = "printed"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Unidades de item de pedido do açougue.
const (
	OrderUnitBandeja = "bandeja"
	OrderUnitKg      = "kg"
)

// ButcherOrder representa um pedido de produção do açougue entre lojas.
// OrderNumber segue o formato {prefixo-da-loja}-{DDMM}-{NN}, onde NN é o
// contador de pedidos da mesma loja no mesmo dia.
type ButcherOrder struct {
	ID                string
	OrderNumber       string
	RequesterStoreID  string
	ProductionStoreID *string
	Status            string
	Items             []ButcherOrderItem
	CreatedBy         string
	SubmittedAt       *time.Time
	PrintedAt         *time.Time
	CompletedAt       *time.Time
	ReceivedAt        *time.Time
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ButcherOrderItem é uma linha de um pedido. Código e nome do produto são
// desnormalizados na criação para o pedido continuar legível mesmo com
// catálogo defasado.
type ButcherOrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	Unit        string // bandeja, kg
	Notes       *string
}

// CanTransition informa se a mudança de status respeita a máquina de estados do pedido.
func (o *ButcherOrder) CanTransition(next string) bool {
	switch next {
	case OrderPending:
		return o.Status == OrderDraft
	case OrderPrinted:
		return o.Status == OrderPending
	case OrderCompleted:
		return o.Status == OrderPrinted
	case OrderCancelled:
		return o.Status == OrderDraft || o.Status == OrderPending
	default:
		return false
	}
}
