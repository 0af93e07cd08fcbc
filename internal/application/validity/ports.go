package validity

import (
	"context"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

// TxRunner executa a aprovação de exclusão de forma atômica: fechar o pedido
// e marcar a entrada precisam acontecer na mesma transação.
type TxRunner interface {
	RunValidity(ctx context.Context, fn func(
		entryRepo repository.ValidityRepository,
		requestRepo repository.DeleteRequestRepository,
	) error) error
}

// Identity entrega o usuário corrente para escopo das consultas.
// Satisfeito por session.Provider.
type Identity interface {
	Profile() *entity.Profile
}
