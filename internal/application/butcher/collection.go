package butcher

import (
	"context"
	"sync"
	"time"

	appsync "github.com/operaloja/operaloja-api/internal/application/sync"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// State é o snapshot exposto aos chamadores de UI.
type State struct {
	Rows    []Row
	Loading bool
	Err     error
}

// Collection é a visão sincronizada dos pedidos do açougue para um usuário.
// Mesmo contrato da coleção de validade: refetch substitui estado inteiro,
// Gate descarta respostas fora de ordem, transições são otimistas com rollback.
type Collection struct {
	svc      *Service
	identity Identity
	opts     Options

	gate appsync.Gate

	mu      sync.Mutex
	rows    []Row
	loading bool
	err     error
}

// NewCollection constrói a coleção para o usuário corrente do identity.
func NewCollection(svc *Service, identity Identity, opts Options) *Collection {
	return &Collection{svc: svc, identity: identity, opts: opts}
}

// State devolve o snapshot corrente.
func (c *Collection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]Row, len(c.rows))
	copy(rows, c.rows)
	return State{Rows: rows, Loading: c.loading, Err: c.err}
}

// Refresh refaz o fetch completo, descartando resultados obsoletos.
func (c *Collection) Refresh(ctx context.Context) {
	seq := c.gate.Begin()
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	rows, err := c.svc.Fetch(ctx, c.identity.Profile(), c.opts)

	if !c.gate.Commit(seq) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.err = err
		return
	}
	c.err = nil
	c.rows = rows
}

// Create insere o pedido e refaz o fetch.
func (c *Collection) Create(ctx context.Context, in CreateInput) (*entity.ButcherOrder, error) {
	o, err := c.svc.Create(ctx, c.identity.Profile(), in)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return o, nil
}

// Copy duplica o pedido de origem em novo rascunho e refaz o fetch.
func (c *Collection) Copy(ctx context.Context, sourceID string) (*entity.ButcherOrder, error) {
	o, err := c.svc.Copy(ctx, c.identity.Profile(), sourceID)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return o, nil
}

// Transition aplica a mudança de status de forma otimista (status + carimbo
// local), desfazendo e propagando o erro se o backend recusar.
func (c *Collection) Transition(ctx context.Context, orderID, next string) error {
	now := time.Now()
	prior := c.mutateRow(orderID, func(r *Row) {
		r.Order.Status = next
		switch next {
		case entity.OrderPending:
			r.Order.SubmittedAt = &now
		case entity.OrderPrinted:
			r.Order.PrintedAt = &now
		case entity.OrderCompleted:
			r.Order.CompletedAt = &now
		case entity.OrderCancelled:
			r.Order.CancelledAt = &now
		}
	})
	if err := c.svc.Transition(ctx, c.identity.Profile(), orderID, next); err != nil {
		c.restoreRow(orderID, prior)
		return err
	}
	return nil
}

// MarkReceived registra o recebimento de forma otimista, com rollback em erro.
func (c *Collection) MarkReceived(ctx context.Context, orderID string) error {
	now := time.Now()
	prior := c.mutateRow(orderID, func(r *Row) {
		r.Order.ReceivedAt = &now
	})
	if err := c.svc.MarkReceived(ctx, c.identity.Profile(), orderID); err != nil {
		c.restoreRow(orderID, prior)
		return err
	}
	return nil
}

// EditOrder abre um editor de itens com debounce para o pedido.
func (c *Collection) EditOrder(orderID string, debounce time.Duration) *Editor {
	return newEditor(c.svc, c.identity, orderID, debounce)
}

func (c *Collection) mutateRow(id string, fn func(*Row)) *Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].Order.ID == id {
			prior := c.rows[i]
			fn(&c.rows[i])
			return &prior
		}
	}
	return nil
}

func (c *Collection) restoreRow(id string, prior *Row) {
	if prior == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].Order.ID == id {
			c.rows[i] = *prior
			return
		}
	}
}
