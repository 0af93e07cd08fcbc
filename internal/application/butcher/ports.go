package butcher

import (
	"context"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

// TxRunner executa criação de pedido + itens de forma atômica.
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(orderRepo repository.OrderRepository) error) error
}

// Identity entrega o usuário corrente para escopo das consultas.
// Satisfeito por session.Provider.
type Identity interface {
	Profile() *entity.Profile
}
