// Package session holds the authenticated identity for one terminal session
// (the CLI's equivalent of a browser tab). It is the only state shared
// between commands.
package session

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"hospital-portal/internal/model"
)

// persisted keys
const (
	KeyID    = "id"
	KeyEmail = "email"
	KeyRole  = "role"
)

// Backend persists the session's key/value map. Load returns an empty map
// when nothing is stored.
type Backend interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context) error
}

type Store struct {
	mu      sync.Mutex
	backend Backend
	log     *zap.Logger
}

func New(b Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: b, log: log}
}

// SetIdentity replaces whatever was stored. The write is synchronous.
func (s *Store) SetIdentity(ctx context.Context, id model.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	vals := map[string]string{KeyRole: string(id.Role)}
	if id.IsAdmin() {
		vals[KeyEmail] = id.Email
	} else {
		vals[KeyID] = strconv.FormatInt(id.ID, 10)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(ctx, vals)
}

// Identity reports the active identity. Unreadable or malformed state reads
// as no identity.
func (s *Store) Identity(ctx context.Context) (model.Identity, bool) {
	s.mu.Lock()
	vals, err := s.backend.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("session: unreadable state, treating as logged out", zap.Error(err))
		return model.Identity{}, false
	}
	return parseIdentity(vals)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Remove(ctx)
}

func parseIdentity(vals map[string]string) (model.Identity, bool) {
	role, ok := value(vals, KeyRole)
	if !ok {
		return model.Identity{}, false
	}

	var id model.Identity
	switch model.Role(role) {
	case model.RoleAdmin:
		email, ok := value(vals, KeyEmail)
		if !ok {
			return model.Identity{}, false
		}
		id = model.AdminIdentity(email)
	case model.RoleDoctor, model.RolePatient:
		raw, ok := value(vals, KeyID)
		if !ok {
			return model.Identity{}, false
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return model.Identity{}, false
		}
		id = model.Identity{Role: model.Role(role), ID: n}
	default:
		return model.Identity{}, false
	}

	if id.Validate() != nil {
		return model.Identity{}, false
	}
	return id, true
}

// value treats the textual leftovers of naive serialization as absent
func value(vals map[string]string, key string) (string, bool) {
	v := strings.TrimSpace(vals[key])
	if v == "" || v == "null" || v == "undefined" {
		return "", false
	}
	return v, true
}

// MemoryBackend keeps the session for the life of the process only.
type MemoryBackend struct {
	mu   sync.Mutex
	vals map[string]string
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{vals: map[string]string{}} }

func (m *MemoryBackend) Load(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.vals))
	for k, v := range m.vals {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryBackend) Save(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals = make(map[string]string, len(values))
	for k, v := range values {
		m.vals[k] = v
	}
	return nil
}

func (m *MemoryBackend) Remove(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals = map[string]string{}
	return nil
}

// Put writes a raw key, bypassing identity validation. Used to reproduce
// state left behind by other clients.
func (m *MemoryBackend) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
}
