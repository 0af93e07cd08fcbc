package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operaloja/operaloja-api/pkg/logger"
)

type fakeFeed struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]func()
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{handlers: make(map[string]map[int]func())}
}

func (f *fakeFeed) Subscribe(channel string, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers[channel] == nil {
		f.handlers[channel] = make(map[int]func())
	}
	id := f.nextID
	f.nextID++
	f.handlers[channel][id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers[channel], id)
	}
}

func (f *fakeFeed) notify(channel string) {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.handlers[channel]))
	for _, fn := range f.handlers[channel] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeFeed) subscriberCount(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[channel])
}

type countingRefresher struct {
	mu    sync.Mutex
	count int
}

func (c *countingRefresher) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingRefresher) refreshes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func TestSyncer_NotificacaoDisparaRefresh(t *testing.T) {
	feed := newFakeFeed()
	syncer := NewSyncer(context.Background(), feed, logger.Nop())
	defer syncer.Close()

	validade := &countingRefresher{}
	pedidos := &countingRefresher{}
	syncer.Attach("validity_entries_changed", validade)
	syncer.Attach("butcher_orders_changed", pedidos)

	feed.notify("validity_entries_changed")
	feed.notify("validity_entries_changed")
	feed.notify("butcher_orders_changed")

	assert.Equal(t, 2, validade.refreshes())
	assert.Equal(t, 1, pedidos.refreshes())
}

func TestSyncer_CloseDesfazInscricoes(t *testing.T) {
	feed := newFakeFeed()
	syncer := NewSyncer(context.Background(), feed, logger.Nop())

	r := &countingRefresher{}
	syncer.Attach("solicitations_changed", r)
	require.Equal(t, 1, feed.subscriberCount("solicitations_changed"))

	syncer.Close()
	assert.Equal(t, 0, feed.subscriberCount("solicitations_changed"))

	feed.notify("solicitations_changed")
	assert.Equal(t, 0, r.refreshes())

	// fechar de novo e anexar depois de fechado são no-ops
	syncer.Close()
	syncer.Attach("solicitations_changed", r)
	assert.Equal(t, 0, feed.subscriberCount("solicitations_changed"))
}

func TestSyncer_ContextoCanceladoSilenciaRefetch(t *testing.T) {
	feed := newFakeFeed()
	ctx, cancel := context.WithCancel(context.Background())
	syncer := NewSyncer(ctx, feed, logger.Nop())
	defer syncer.Close()

	r := &countingRefresher{}
	syncer.Attach("validity_entries_changed", r)

	cancel()
	time.Sleep(10 * time.Millisecond)
	feed.notify("validity_entries_changed")
	assert.Equal(t, 0, r.refreshes())
}
