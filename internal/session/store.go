package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stagepass/internal/errors"
	"stagepass/internal/models"
)

// Session is the authenticated actor context passed into every operation.
type Session struct {
	ID    string
	Email string
	Role  models.Role
}

type entry struct {
	email     string
	role      models.Role
	expiresAt time.Time
}

// Store keeps server-side sessions keyed by a random id and issues HS256
// JWTs carrying that id. Tokens are opaque to clients; revoking the
// server-side entry invalidates the token immediately.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

type Config struct {
	Secret string
	TTL    time.Duration
}

func NewStore(cfg Config) *Store {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}

	return &Store{
		sessions: make(map[string]entry),
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Create opens a session for the user and returns the signed token.
func (s *Store) Create(user *models.User) (string, error) {
	sid := uuid.New().String()
	exp := s.now().Add(s.ttl)

	claims := jwt.MapClaims{
		"sid":  sid,
		"sub":  user.Email,
		"role": string(user.Role),
		"exp":  exp.Unix(),
		"iat":  s.now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	s.mu.Lock()
	// Creation doubles as the sweep, so entries whose tokens are never
	// presented again still get collected.
	now := s.now()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sid] = entry{email: user.Email, role: user.Role, expiresAt: exp}
	s.mu.Unlock()

	return token, nil
}

// Resolve verifies a token and returns the live session behind it.
func (s *Store) Resolve(token string) (*Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.ErrUnauthenticated
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, errors.ErrUnauthenticated
	}

	s.mu.RLock()
	e, exists := s.sessions[sid]
	s.mu.RUnlock()

	if !exists {
		return nil, errors.ErrUnauthenticated
	}
	if s.now().After(e.expiresAt) {
		// Expired entries are dropped on first sight instead of lingering
		// until someone restarts the process.
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
		return nil, errors.ErrUnauthenticated
	}

	return &Session{ID: sid, Email: e.email, Role: e.role}, nil
}

// Delete closes a session. Closing an unknown session reports
// ErrUnauthenticated: logout only acts when an actor is set.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return errors.ErrUnauthenticated
	}
	delete(s.sessions, id)
	return nil
}

// UpdateEmail rebinds a live session after a profile update changed the
// actor's identity key.
func (s *Store) UpdateEmail(id, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.sessions[id]; exists {
		e.email = email
		s.sessions[id] = e
	}
}
