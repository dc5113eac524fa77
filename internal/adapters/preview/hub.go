package preview

import (
	"bufio"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const heartbeat = 30 * time.Second

// Hub fans reload events out to connected Server-Sent Events clients.
type Hub struct {
	mu      sync.Mutex
	nextID  int
	seq     int
	clients map[int]*client
	closed  bool
	done    chan struct{}
}

type client struct {
	ch   chan int
	done chan struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: map[int]*client{}, done: make(chan struct{})}
}

// ServeHTTP implements the event stream endpoint.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	c := &client{ch: make(chan int, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "preview shutting down", http.StatusServiceUnavailable)
		return
	}
	id := h.nextID
	h.nextID++
	h.clients[id] = c
	h.mu.Unlock()
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(": connected\n\n") {
		return
	}

	hb := time.NewTicker(heartbeat)
	defer hb.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case seq := <-c.ch:
			if !send("event: reload\ndata: " + strconv.Itoa(seq) + "\n\n") {
				return
			}
		}
	}
}

// Broadcast sends a reload event to every client. Clients that cannot keep up are dropped.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.seq++
	for id, c := range h.clients {
		select {
		case c.ch <- h.seq:
		default:
			delete(h.clients, id)
			close(c.done)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown disconnects every client and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}

func (h *Hub) closedCh() <-chan struct{} {
	return h.done
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}
