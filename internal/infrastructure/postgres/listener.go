package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/operaloja/operaloja-api/pkg/logger"
)

// Canais de notificação. Triggers AFTER INSERT/UPDATE/DELETE em cada tabela
// fazem pg_notify com o nome do canal; o payload não é usado (qualquer
// mudança provoca refetch completo, ver camada realtime).
const (
	ChannelValidity       = "validity_entries_changed"
	ChannelDeleteRequests = "delete_requests_changed"
	ChannelOrders         = "butcher_orders_changed"
	ChannelSolicitations  = "solicitations_changed"
)

// Listener mantém uma conexão dedicada em LISTEN e entrega notificações aos
// inscritos por canal. Reconecta com backoff exponencial em caso de queda.
type Listener struct {
	dsn string
	log *logger.Logger

	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]func()
}

// NewListener constrói o listener. A conexão só é aberta em Run.
func NewListener(dsn string, log *logger.Logger) *Listener {
	return &Listener{
		dsn:      dsn,
		log:      log,
		handlers: make(map[string]map[int]func()),
	}
}

// Subscribe registra fn para o canal e devolve a função de cancelamento.
// O cancelamento é obrigatório no teardown do assinante (canais vazam se não).
func (l *Listener) Subscribe(channel string, fn func()) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handlers[channel] == nil {
		l.handlers[channel] = make(map[int]func())
	}
	id := l.nextID
	l.nextID++
	l.handlers[channel][id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.handlers[channel], id)
	}
}

func (l *Listener) dispatch(channel string) {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.handlers[channel]))
	for _, fn := range l.handlers[channel] {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	// Fora do lock: o handler dispara refetch e pode demorar.
	for _, fn := range fns {
		go fn()
	}
}

// Run conecta, faz LISTEN em todos os canais conhecidos e bloqueia entregando
// notificações até o contexto ser cancelado. Quedas de conexão reconectam com
// backoff (1s..30s).
func (l *Listener) Run(ctx context.Context) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		err := l.listenOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn().Err(err).Dur("retry_in", backoff).Msg("listener desconectado, reconectando")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("conectar listener: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	channels := []string{ChannelValidity, ChannelDeleteRequests, ChannelOrders, ChannelSolicitations}
	for _, ch := range channels {
		if _, err := conn.Exec(ctx, fmt.Sprintf(`LISTEN %q`, ch)); err != nil {
			return fmt.Errorf("listen %s: %w", ch, err)
		}
	}
	l.log.Info().Strs("channels", channels).Msg("listener conectado")

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.dispatch(notification.Channel)
	}
}
