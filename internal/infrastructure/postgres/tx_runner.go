package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/operaloja/operaloja-api/internal/application/butcher"
	"github.com/operaloja/operaloja-api/internal/application/validity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

// Ensure TxRunner implements validity.TxRunner and butcher.TxRunner.
var _ validity.TxRunner = (*TxRunner)(nil)
var _ butcher.TxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constrói o runner com o pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunValidity abre uma transação com repos de validade e pedidos de exclusão
// (aprovação de exclusão: fecha o pedido e marca a entrada na mesma tx).
func (r *TxRunner) RunValidity(ctx context.Context, fn func(
	entryRepo repository.ValidityRepository,
	requestRepo repository.DeleteRequestRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewValidityRepository(tx), NewDeleteRequestRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrders abre uma transação com o repo de pedidos (criação de pedido + itens).
func (r *TxRunner) RunOrders(ctx context.Context, fn func(orderRepo repository.OrderRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewOrderRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
