package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// message is one server-sent event.
type message struct {
	event string
	data  string
	id    string
}

func (m message) String() string {
	var b strings.Builder
	if m.event != "" {
		b.WriteString("event: " + m.event + "\n")
	}
	for _, line := range strings.Split(m.data, "\n") {
		b.WriteString("data: " + line + "\n")
	}
	if m.id != "" {
		b.WriteString("id: " + m.id + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Events fans server-sent events out to every connected client.
type Events struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
	log     zerolog.Logger
}

func NewEvents(log zerolog.Logger) *Events {
	return &Events{clients: make(map[chan string]struct{}), log: log}
}

func (e *Events) subscribe() (chan string, func()) {
	ch := make(chan string, 8)
	e.mu.Lock()
	e.clients[ch] = struct{}{}
	e.mu.Unlock()
	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.clients, ch)
	}
}

// Clients returns the number of connected clients.
func (e *Events) Clients() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients)
}

// Send broadcasts an event. Clients whose buffer is full miss it.
func (e *Events) Send(event, data, id string) {
	msg := message{event: event, data: data, id: id}.String()
	e.mu.RLock()
	defer e.mu.RUnlock()
	for ch := range e.clients {
		select {
		case ch <- msg:
		default:
			e.log.Warn().Str("event", event).Msg("sse client buffer full, event dropped")
		}
	}
}

func (e *Events) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fw, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := e.subscribe()
	defer cancel()
	e.log.Debug().Str("remote", r.RemoteAddr).Msg("sse client connected")

	fmt.Fprint(w, message{event: "ping", data: "connected"})
	fw.Flush()

	for {
		select {
		case <-r.Context().Done():
			e.log.Debug().Str("remote", r.RemoteAddr).Msg("sse client disconnected")
			return
		case msg := <-ch:
			fmt.Fprint(w, msg)
			fw.Flush()
		}
	}
}
