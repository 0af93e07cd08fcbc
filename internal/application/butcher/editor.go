package butcher

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce é o intervalo padrão entre a última edição e a persistência.
const DefaultDebounce = 800 * time.Millisecond

// Editor acumula edições de itens de um pedido e persiste com debounce:
// cada SetItems reinicia o timer e só o último estado é gravado. Close
// descarta rascunhos vazios nunca enviados.
type Editor struct {
	svc      *Service
	identity Identity
	orderID  string
	debounce time.Duration

	mu     sync.Mutex
	items  []ItemInput
	dirty  bool
	closed bool
	timer  *time.Timer
}

func newEditor(svc *Service, identity Identity, orderID string, debounce time.Duration) *Editor {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Editor{svc: svc, identity: identity, orderID: orderID, debounce: debounce}
}

// SetItems substitui o estado pendente e reinicia o timer de persistência.
func (e *Editor) SetItems(items []ItemInput) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.items = make([]ItemInput, len(items))
	copy(e.items, items)
	e.dirty = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		_ = e.Flush(context.Background())
	})
}

// Flush persiste imediatamente o estado pendente, se houver.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	if !e.dirty {
		e.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	items := e.items
	e.dirty = false
	e.mu.Unlock()

	if err := e.svc.SaveItems(ctx, e.identity.Profile(), e.orderID, items); err != nil {
		e.mu.Lock()
		// mantém o estado para nova tentativa se nenhuma edição chegou depois
		if !e.dirty {
			e.items = items
			e.dirty = true
		}
		e.mu.Unlock()
		return err
	}
	return nil
}

// Close encerra a edição: persiste pendências e apaga o rascunho se ficou
// vazio e nunca foi enviado. Retorna true se o rascunho foi descartado.
func (e *Editor) Close(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false, nil
	}
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	if err := e.Flush(ctx); err != nil {
		return false, err
	}
	return e.svc.CleanupAbandonedDraft(ctx, e.orderID)
}
