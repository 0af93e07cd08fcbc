package http

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// EventFeed é a fonte de notificações de mudança (postgres.Listener).
type EventFeed interface {
	Subscribe(channel string, fn func()) (unsubscribe func())
}

// EventsHandler expõe as notificações de mudança como SSE. O cliente recebe
// o nome do canal alterado e decide refazer a busca; o payload não carrega
// dados.
type EventsHandler struct {
	feed     EventFeed
	channels []string
}

func NewEventsHandler(feed EventFeed, channels []string) *EventsHandler {
	return &EventsHandler{feed: feed, channels: channels}
}

// Stream mantém a conexão aberta emitindo um evento por mudança e um
// comentário keepalive periódico. As inscrições são canceladas quando o
// cliente desconecta.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	events := make(chan string, 16)
	unsubs := make([]func(), 0, len(h.channels))
	for _, channel := range h.channels {
		channel := channel
		unsubs = append(unsubs, h.feed.Subscribe(channel, func() {
			select {
			case events <- channel:
			default:
				// Canal cheio: o cliente já tem um refetch pendente.
			}
		}))
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			for _, unsub := range unsubs {
				unsub()
			}
		}()

		keepalive := time.NewTicker(25 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case channel := <-events:
				if _, err := fmt.Fprintf(w, "event: %s\ndata: {}\n\n", channel); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
