// Package realtime liga as notificações do banco ao refetch das coleções:
// qualquer evento em um canal dispara Refresh completo da coleção inscrita.
// Sem diff de payload; a consistência vem da substituição total do estado.
package realtime

import (
	"context"
	"sync"

	"github.com/operaloja/operaloja-api/pkg/logger"
)

// Feed é a fonte de notificações por canal. Satisfeito por postgres.Listener.
type Feed interface {
	Subscribe(channel string, fn func()) (unsubscribe func())
}

// Refresher é o lado da coleção: refetch completo do estado.
// Satisfeito por validity.Collection, butcher.Collection e solicitation.Collection.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Syncer agrupa as inscrições de uma sessão e as desfaz juntas no teardown.
type Syncer struct {
	ctx  context.Context
	feed Feed
	log  *logger.Logger

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// NewSyncer constrói o syncer. O contexto dado limita os refetches
// disparados por notificação; cancelado ele, os refetches viram no-op.
func NewSyncer(ctx context.Context, feed Feed, log *logger.Logger) *Syncer {
	return &Syncer{ctx: ctx, feed: feed, log: log}
}

// Attach inscreve a coleção no canal. Cada notificação dispara um Refresh
// completo; o próprio Gate da coleção descarta respostas fora de ordem.
func (s *Syncer) Attach(channel string, r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	unsub := s.feed.Subscribe(channel, func() {
		if s.ctx.Err() != nil {
			return
		}
		s.log.Debug().Str("channel", channel).Msg("notificação recebida, refazendo fetch")
		r.Refresh(s.ctx)
	})
	s.unsubs = append(s.unsubs, unsub)
}

// Close desfaz todas as inscrições. Idempotente.
func (s *Syncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}
