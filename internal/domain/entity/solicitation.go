package entity

import "time"

// Status de uma Solicitation.
const (
	SolicitationPendente  = "pendente"
	SolicitationResolvido = "resolvido"
	SolicitationArquivado = "arquivado"
)

// Solicitation é um pedido de conferência entre papéis (conferente → encarregado).
// Registro puramente informativo: não referencia nem trava a entidade alvo.
type Solicitation struct {
	ID          string
	StoreID     string
	ProductID   string
	RequestedBy string
	Observation *string
	Status      string
	RequestedAt time.Time
	ResolvedAt  *time.Time
}
