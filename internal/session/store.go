// Package session keeps bounded per-conversation history for prompt
// assembly. Histories live in memory only; restarting the process
// starts every conversation fresh.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Exchange is one completed user/assistant round trip.
type Exchange struct {
	Query  string
	Answer string
}

type conversation struct {
	mu        sync.Mutex
	exchanges []Exchange
}

// Store holds conversation histories keyed by session id, each bounded
// to the most recent maxHistory exchanges.
//
// Store is safe for concurrent use by multiple goroutines; operations
// on the same session id are serialized.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*conversation
	maxHistory int
	logger     *slog.Logger
}

// New creates a Store keeping at most maxHistory exchanges per session.
func New(maxHistory int, logger *slog.Logger) *Store {
	return &Store{
		sessions:   make(map[string]*conversation),
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// NewID returns a fresh session identifier.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// conversationFor returns the session's conversation, creating it on
// first reference.
func (s *Store) conversationFor(id string) *conversation {
	s.mu.RLock()
	c, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.sessions[id]; ok {
		return c
	}
	c = &conversation{}
	s.sessions[id] = c
	s.logger.Debug("session created", "session_id", id)
	return c
}

// AddExchange appends a completed round trip to the session, creating
// the session if needed and evicting the oldest exchange beyond the
// history bound.
func (s *Store) AddExchange(id, query, answer string) {
	c := s.conversationFor(id)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.exchanges = append(c.exchanges, Exchange{Query: query, Answer: answer})
	if len(c.exchanges) > s.maxHistory {
		c.exchanges = c.exchanges[len(c.exchanges)-s.maxHistory:]
	}
}

// History returns the session's exchanges formatted for prompt
// inclusion, oldest first, or "" for an unknown session.
func (s *Store) History(id string) string {
	s.mu.RLock()
	c, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.exchanges) == 0 {
		return ""
	}

	parts := make([]string, len(c.exchanges))
	for i, ex := range c.exchanges {
		parts[i] = fmt.Sprintf("User: %s\nAssistant: %s", ex.Query, ex.Answer)
	}
	return strings.Join(parts, "\n")
}

// Count returns the number of known sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
