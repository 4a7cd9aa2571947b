package api

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

var errUnknownDuel = errors.New("unknown duel")

// Registry holds the live duels of the HTTP front end, keyed by session id.
// Duels are never persisted; a restart forgets them all.
type Registry struct {
	oracle duel.Oracle
	opts   duel.Options

	mu       sync.Mutex
	sessions map[uuid.UUID]*duel.Session
}

// NewRegistry returns an empty registry that starts sessions with opts.
func NewRegistry(oracle duel.Oracle, opts duel.Options) *Registry {
	return &Registry{
		oracle:   oracle,
		opts:     opts,
		sessions: make(map[uuid.UUID]*duel.Session),
	}
}

// Create starts a duel with the given settings.
func (r *Registry) Create(settings models.Settings) (*duel.Session, error) {
	s, err := duel.NewSession(r.oracle, settings, r.opts)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s, nil
}

// Get looks a duel up by its textual id.
func (r *Registry) Get(id string) (*duel.Session, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, errUnknownDuel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		return nil, errUnknownDuel
	}
	return s, nil
}

// Remove closes a duel and forgets it. Late oracle results for it are dropped.
func (r *Registry) Remove(id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.sessions, s.ID())
	r.mu.Unlock()
	s.Close()
	return nil
}

// Len reports how many duels are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll closes every duel; used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*duel.Session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
	if n := len(sessions); n > 0 {
		slog.Info("Closed live duels", "count", n)
	}
}
