package solicitation

import (
	"context"
	"sync"

	appsync "github.com/operaloja/operaloja-api/internal/application/sync"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// State é o snapshot exposto aos chamadores de UI.
type State struct {
	Rows    []Row
	Loading bool
	Err     error
}

// Collection é a visão sincronizada das solicitações para um usuário.
// Refetch substitui o estado inteiro; o Gate descarta respostas obsoletas.
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

// Create abre a solicitação e refaz o fetch.
func (c *Collection) Create(ctx context.Context, in CreateInput) (*entity.Solicitation, error) {
	sol, err := c.svc.Create(ctx, c.identity.Profile(), in)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return sol, nil
}

// CreateForAllStores abre o fan-out e refaz o fetch.
func (c *Collection) CreateForAllStores(ctx context.Context, productID string, observation *string) ([]*entity.Solicitation, error) {
	batch, err := c.svc.CreateForAllStores(ctx, c.identity.Profile(), productID, observation)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return batch, nil
}

// Resolve fecha a solicitação e refaz o fetch.
func (c *Collection) Resolve(ctx context.Context, id string) error {
	if err := c.svc.Resolve(ctx, c.identity.Profile(), id); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// Archive arquiva a solicitação e refaz o fetch.
func (c *Collection) Archive(ctx context.Context, id string) error {
	if err := c.svc.Archive(ctx, c.identity.Profile(), id); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// Cancel cancela a solicitação pendente do próprio usuário e refaz o fetch.
func (c *Collection) Cancel(ctx context.Context, id string) error {
	if err := c.svc.Cancel(ctx, c.identity.Profile(), id); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}
