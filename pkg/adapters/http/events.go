package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/goccy/go-json"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // form id -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

// Subscribe registers a channel for the form's diffs. The returned func unsubscribes.
func (sm *StreamManager) Subscribe(id string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[id]; !ok {
		sm.subscribers[id] = make(map[chan string]struct{})
	}
	sm.subscribers[id][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[id]; ok {
			if _, live := subs[ch]; live {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(sm.subscribers, id)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of the form, dropping it for slow clients.
func (sm *StreamManager) Broadcast(id string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[id] {
		select {
		case ch <- msg:
		default:
			slog.Warn("SSE: Client buffer full, dropping message", "form_id", id)
		}
	}
}

// Close ends every stream of the form.
func (sm *StreamManager) Close(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for ch := range sm.subscribers[id] {
		close(ch)
	}
	delete(sm.subscribers, id)
}

// SubscribeEvents handles GET /forms/{id}/events (SSE).
// The optional "watch" query parameter (comma separated field names) filters diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(live.id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	watch := splitList(r.URL.Query().Get("watch"))
	s.logger.Debug("SSE: subscribed", "form_id", live.id, "watch", watch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !touches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// touches reports whether the encoded diff changes any of the watched fields.
func touches(msg string, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, name := range watch {
		if _, ok := diff.Fields[name]; ok {
			return true
		}
	}
	return false
}
