// Package session persists conversation items under durable, lazily created
// session ids so a run can be reopened and inspected after it completes.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when opening a session id the store does not know.
var ErrNotFound = errors.New("session not found")

// Session is a handle to one conversation's item history.
type Session interface {
	// CachedID returns the id if it has already been materialized, or "".
	CachedID() string
	// ResolveID returns the durable id, creating the session in the store if needed.
	ResolveID(ctx context.Context) (string, error)
	GetItems(ctx context.Context) ([]Item, error)
	AddItems(ctx context.Context, items ...Item) error
}

// Store creates and reopens sessions.
type Store interface {
	Create(ctx context.Context) (Session, error)
	Open(ctx context.Context, id string) (Session, error)
	Close() error
}

// backend is the storage contract each store type implements.
type backend interface {
	create(ctx context.Context, id string) error
	exists(ctx context.Context, id string) (bool, error)
	load(ctx context.Context, id string) ([]Item, error)
	append(ctx context.Context, id string, items []Item) error
	close() error
}

// store adapts a backend to the Store interface.
type store struct {
	backend backend
	newID   func() string
}

func newStore(b backend) *store {
	return &store{backend: b, newID: func() string { return "conv_" + uuid.NewString() }}
}

// Create returns a session whose id is materialized on first use.
func (s *store) Create(_ context.Context) (Session, error) {
	return &lazySession{store: s}, nil
}

// Open returns a handle to an existing session.
func (s *store) Open(ctx context.Context, id string) (Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}
	ok, err := s.backend.exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("open session %s: %w", id, ErrNotFound)
	}
	return &lazySession{store: s, id: id}, nil
}

// Close releases backend resources.
func (s *store) Close() error {
	return s.backend.close()
}

type lazySession struct {
	store *store
	mu    sync.Mutex
	id    string
}

func (l *lazySession) CachedID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id
}

func (l *lazySession) ResolveID(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.id != "" {
		return l.id, nil
	}
	id := l.store.newID()
	if err := l.store.backend.create(ctx, id); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	l.id = id
	return id, nil
}

func (l *lazySession) GetItems(ctx context.Context) ([]Item, error) {
	id := l.CachedID()
	if id == "" {
		return nil, nil
	}
	items, err := l.store.backend.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return items, nil
}

func (l *lazySession) AddItems(ctx context.Context, items ...Item) error {
	if len(items) == 0 {
		return nil
	}
	id, err := l.ResolveID(ctx)
	if err != nil {
		return err
	}
	if err := l.store.backend.append(ctx, id, items); err != nil {
		return fmt.Errorf("append session %s: %w", id, err)
	}
	return nil
}
