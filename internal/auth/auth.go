// Package auth manages admin sessions and password hashes.
//
// Sessions live in memory and expire after a fixed TTL; a background
// sweeper drops expired entries until Close is called. Passwords are
// bcrypt hashes.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/daleel/internal/record"
	"github.com/roach88/daleel/internal/store"
)

// BcryptCost is the work factor for new password hashes.
const BcryptCost = 10

// ErrInvalidCredentials covers unknown emails, wrong passwords and
// inactive accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the email is unknown so that the
// response time does not reveal which accounts exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("daleel-dummy-password"), BcryptCost)

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HasRole reports whether role is one of allowed.
func HasRole(role record.Role, allowed ...record.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Session is an authenticated admin session.
type Session struct {
	ID        string      `json:"-"`
	UserID    string      `json:"id"`
	Email     string      `json:"email"`
	Role      record.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Users is the account lookup the Manager needs.
type Users interface {
	GetUserByEmail(ctx context.Context, email string) (record.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// Manager issues and resolves sessions.
type Manager struct {
	users Users
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]Session

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager starts a Manager whose sessions last ttl. Expired sessions
// are swept every sweep interval (ttl when zero).
func NewManager(users Users, ttl, sweep time.Duration, opts ...Option) (*Manager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	if sweep < 0 {
		return nil, fmt.Errorf("session sweep interval must not be negative, got %s", sweep)
	}
	if sweep == 0 {
		sweep = ttl
	}
	m := &Manager{
		users:    users,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.sweepLoop(sweep)
	return m, nil
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Login checks credentials and opens a session. Every failure a client
// could cause is reported as ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := m.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) || !u.IsActive {
		return Session{}, ErrInvalidCredentials
	}

	if err := m.users.TouchLastLogin(ctx, u.ID); err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}

	id, err := newSessionID()
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	s := Session{
		ID:        id,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		ExpiresAt: m.now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Get resolves a session id. Expired sessions are removed and reported
// as missing.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return Session{}, false
	}
	return s, true
}

// Logout ends a session. Unknown ids are ignored.
func (m *Manager) Logout(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live and not yet swept sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes expired sessions.
func (m *Manager) Sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}

func (m *Manager) sweepLoop(every time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

// Close stops the sweeper and waits for it to exit. Safe to call twice.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

// newSessionID returns 32 random bytes, hex encoded.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
