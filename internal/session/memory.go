package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"astrasreport/internal/infrastructure"
)

// MemoryStore is an in-memory implementation of Store
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
	logger   *slog.Logger
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
		logger:   infrastructure.WithComponent(logger, "session_store"),
	}
}

// Create creates an empty session with a random ID
func (s *MemoryStore) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastAccess: now,
		Files:      make(map[FileKind]*File),
	}
	if _, exists := s.sessions[sess.ID]; exists {
		return nil, fmt.Errorf("session %s already exists", sess.ID)
	}
	s.sessions[sess.ID] = sess

	return copySession(sess), nil
}

// Get returns a copy of the session and refreshes its last access time
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess.LastAccess = s.now()

	return copySession(sess), nil
}

// PutFile stores or replaces one of the session's workbooks
func (s *MemoryStore) PutFile(id string, kind FileKind, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := s.now()
	stored := file
	stored.Size = len(file.Data)
	stored.UploadedAt = now
	sess.Files[kind] = &stored
	sess.LastAccess = now

	return nil
}

// Delete removes a session
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// CleanupExpired removes sessions idle for longer than ttl
func (s *MemoryStore) CleanupExpired(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	deleted := 0
	for id, sess := range s.sessions {
		if sess.LastAccess.Before(cutoff) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted
}

// Count returns the number of live sessions
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunJanitor sweeps expired sessions every interval until ctx is done
func (s *MemoryStore) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.CleanupExpired(ttl); n > 0 {
				s.logger.Info("Expired idle sessions",
					slog.Int("deleted", n),
					slog.Int("remaining", s.Count()))
			}
		}
	}
}

// copySession returns a copy whose file map can be read without the lock.
// File data is never mutated after upload and is shared.
func copySession(sess *Session) *Session {
	c := *sess
	c.Files = make(map[FileKind]*File, len(sess.Files))
	for k, f := range sess.Files {
		fc := *f
		c.Files[k] = &fc
	}
	return &c
}
