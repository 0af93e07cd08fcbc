package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de uma ValidityEntry. "excluido" é marcador de soft delete:
// a linha nunca é removida fisicamente.
const (
	ValidityPendente   = "pendente"
	ValidityConferindo = "conferindo"
	ValidityConferido  = "conferido"
	ValidityExcluido   = "excluido"
)

// ValidityEntry representa um registro de validade de produto em uma loja.
// Invariante: status "conferido" exige VerifiedAt e VerifiedBy preenchidos;
// qualquer outro status exige ambos nulos.
type ValidityEntry struct {
	ID         string
	ProductID  string
	StoreID    string
	ExpiresAt  time.Time // data de vencimento
	Lot        *string
	Quantity   decimal.Decimal
	Unit       string // un, kg, bandeja
	Status     string
	CreatedBy  string
	VerifiedAt *time.Time
	VerifiedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Verified informa se a entrada está conferida de forma consistente.
func (e *ValidityEntry) Verified() bool {
	return e.Status == ValidityConferido && e.VerifiedAt != nil && e.VerifiedBy != nil
}

// Status de um DeleteRequest.
const (
	DeleteRequestPendente  = "pendente"
	DeleteRequestAprovado  = "aprovado"
	DeleteRequestRejeitado = "rejeitado"
)

// DeleteRequest é o pedido de exclusão de uma ValidityEntry, sujeito a aprovação.
// No máximo um pedido pendente por entrada (garantido por filtro de consulta).
type DeleteRequest struct {
	ID              string
	ValidityEntryID string
	Reason          string
	RequestedBy     string
	RequestedAt     time.Time
	Status          string
	ResolvedAt      *time.Time
	ResolvedBy      *string
}
