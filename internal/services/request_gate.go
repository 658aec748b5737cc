package services

import (
	"sync"

	"github.com/google/uuid"
)

// RequestGate tracks the latest request per client so a slow, superseded
// lookup cannot overwrite a newer one. Superseded requests are not
// cancelled; their results are just reported as stale.
type RequestGate struct {
	mu     sync.Mutex
	latest map[string]string
}

func NewRequestGate() *RequestGate {
	return &RequestGate{latest: make(map[string]string)}
}

// Begin records a new request for the client and returns its id
func (g *RequestGate) Begin(clientID string) string {
	id := uuid.New().String()
	g.mu.Lock()
	g.latest[clientID] = id
	g.mu.Unlock()
	return id
}

// IsLatest reports whether requestID is still the newest request for the client
func (g *RequestGate) IsLatest(clientID, requestID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[clientID] == requestID
}

// Finish forgets the client if requestID is still its latest request.
// Returns false when a newer request superseded this one.
func (g *RequestGate) Finish(clientID, requestID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.latest[clientID] != requestID {
		return false
	}
	delete(g.latest, clientID)
	return true
}

// Pending returns the number of clients with a request in flight
func (g *RequestGate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.latest)
}
