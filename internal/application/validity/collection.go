package validity

import (
	"context"
	"sync"
	"time"

	appsync "github.com/operaloja/operaloja-api/internal/application/sync"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// State é o snapshot exposto aos chamadores de UI: itens, loading e erro.
// Erros de fetch não propagam para quem renderiza; ficam no snapshot com
// retry manual via Refresh.
type State struct {
	Rows    []Row
	Loading bool
	Err     error
}

// Collection é a visão sincronizada das entradas de validade para um usuário.
// O estado local é cache: toda notificação realtime ou mutação relevante
// dispara refetch completo que SUBSTITUI os itens (nunca merge), e o Gate
// descarta respostas fora de ordem.
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

// Refresh refaz o fetch completo. Resultado obsoleto (outro Refresh terminou
// antes) é descartado em silêncio.
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

// Create insere a entrada e refaz o fetch (simples e seguro; a linha nova
// precisa das referências resolvidas).
func (c *Collection) Create(ctx context.Context, in CreateInput) (*entity.ValidityEntry, error) {
	e, err := c.svc.Create(ctx, c.identity.Profile(), in)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return e, nil
}

// MarkVerified aplica a conferência de forma otimista e desfaz em caso de
// erro do backend, propagando o erro ao chamador.
func (c *Collection) MarkVerified(ctx context.Context, id string) error {
	viewer := c.identity.Profile()
	now := time.Now()
	prior := c.mutateRow(id, func(r *Row) {
		r.Entry.Status = entity.ValidityConferido
		r.Entry.VerifiedAt = &now
		if viewer != nil {
			r.Entry.VerifiedBy = &viewer.ID
		}
	})
	if err := c.svc.MarkVerified(ctx, viewer, id); err != nil {
		c.restoreRow(id, prior)
		return err
	}
	return nil
}

// UnmarkVerified desfaz a conferência de forma otimista, com rollback em erro.
func (c *Collection) UnmarkVerified(ctx context.Context, id string) error {
	prior := c.mutateRow(id, func(r *Row) {
		r.Entry.Status = entity.ValidityPendente
		r.Entry.VerifiedAt = nil
		r.Entry.VerifiedBy = nil
	})
	if err := c.svc.UnmarkVerified(ctx, c.identity.Profile(), id); err != nil {
		c.restoreRow(id, prior)
		return err
	}
	return nil
}

// SoftDelete marca a entrada como excluída. Otimista: sem IncludeDeleted a
// linha some da coleção local na hora; rollback em erro.
func (c *Collection) SoftDelete(ctx context.Context, id string) error {
	var prior []Row
	c.mu.Lock()
	prior = c.rows
	if !c.opts.IncludeDeleted {
		kept := make([]Row, 0, len(c.rows))
		for _, r := range c.rows {
			if r.Entry.ID != id {
				kept = append(kept, r)
			}
		}
		c.rows = kept
	}
	c.mu.Unlock()

	if err := c.svc.SoftDelete(ctx, c.identity.Profile(), id); err != nil {
		c.mu.Lock()
		c.rows = prior
		c.mu.Unlock()
		return err
	}
	return nil
}

// RequestDelete abre o pedido de exclusão e refaz o fetch para anexar o
// pendente à linha.
func (c *Collection) RequestDelete(ctx context.Context, entryID, reason string) (*entity.DeleteRequest, error) {
	r, err := c.svc.RequestDelete(ctx, c.identity.Profile(), entryID, reason)
	if err != nil {
		return nil, err
	}
	c.Refresh(ctx)
	return r, nil
}

// ApproveDelete aprova o pedido e refaz o fetch.
func (c *Collection) ApproveDelete(ctx context.Context, requestID string) error {
	if err := c.svc.ApproveDelete(ctx, c.identity.Profile(), requestID); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// RejectDelete rejeita o pedido e refaz o fetch.
func (c *Collection) RejectDelete(ctx context.Context, requestID string) error {
	if err := c.svc.RejectDelete(ctx, c.identity.Profile(), requestID); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// mutateRow aplica fn à linha com o ID dado e devolve a cópia anterior para
// eventual rollback. Devolve nil se a linha não está na coleção local.
func (c *Collection) mutateRow(id string, fn func(*Row)) *Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].Entry.ID == id {
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
		if c.rows[i].Entry.ID == id {
			c.rows[i] = *prior
			return
		}
	}
}
