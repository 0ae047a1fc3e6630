package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"lmsc-client/internal/domain"
	"lmsc-client/internal/logger"
)

var validate = validator.New()

// Authenticator exchanges credentials for a bearer token. Implemented by the
// REST client in production.
type Authenticator interface {
	Authenticate(ctx context.Context, email string, role domain.Role) (token string, err error)
}

// SavedSession is the persisted credential+identity pair.
type SavedSession struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"identity"`
}

// Vault persists a session across process restarts. Write and Clear must
// cover both the token and the identity together; a reader must never see
// one without the other.
type Vault interface {
	Read(ctx context.Context) (SavedSession, bool, error)
	Write(ctx context.Context, s SavedSession) error
	Clear(ctx context.Context) error
}

// SessionStore owns the process-wide session: the current identity, its
// bearer credential, and the persisted copy. The role used for authorization
// always comes from the decoded token claims, never from caller input.
type SessionStore struct {
	auth  Authenticator
	vault Vault
	log   *logger.Logger

	mu   sync.RWMutex
	cred *domain.Credential
}

func NewSessionStore(auth Authenticator, vault Vault, log *logger.Logger) *SessionStore {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionStore{auth: auth, vault: vault, log: log.With("component", "session")}
}

// Restore activates a previously persisted session. Any structural problem
// (unreadable vault, undecodable token, identity/claims mismatch) fails
// closed: no session, no error to the caller.
func (s *SessionStore) Restore(ctx context.Context) (domain.Identity, bool) {
	saved, ok, err := s.vault.Read(ctx)
	if err != nil {
		s.log.Warn("session restore failed", "err", err)
		return domain.Identity{}, false
	}
	if !ok {
		return domain.Identity{}, false
	}

	claims, err := decodeClaims(saved.Token)
	if err != nil || !saved.Identity.Complete() ||
		claims.ID != saved.Identity.ID || claims.Role != saved.Identity.Role {
		s.log.Warn("persisted session is inconsistent, discarding")
		_ = s.vault.Clear(ctx)
		return domain.Identity{}, false
	}

	s.mu.Lock()
	s.cred = &domain.Credential{Token: saved.Token, Claims: saved.Identity}
	s.mu.Unlock()
	return saved.Identity, true
}

// Login authenticates against the backend and swaps the session in one step.
// On any failure the prior session (if any) is left untouched.
func (s *SessionStore) Login(ctx context.Context, email, role string) (domain.Identity, error) {
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}
	requested, err := domain.ParseRole(role)
	if err != nil {
		return domain.Identity{}, err
	}

	token, err := s.auth.Authenticate(ctx, email, requested)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}

	// The server is authoritative: identity comes from the token claims,
	// not from the role the caller asked for.
	identity, err := decodeClaims(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}

	s.mu.Lock()
	s.cred = &domain.Credential{Token: token, Claims: identity}
	s.mu.Unlock()

	if err := s.vault.Write(ctx, SavedSession{Token: token, Identity: identity}); err != nil {
		// Session stays active; it just will not survive a restart.
		s.log.Warn("persisting session failed", "err", err)
	}
	s.log.Info("logged in", "user", identity.ID, "role", identity.Role)
	return identity, nil
}

// Logout drops the in-memory session and the persisted copy. From the
// caller's point of view both are gone together.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
	return s.vault.Clear(ctx)
}

// Identity returns the active identity, if any.
func (s *SessionStore) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return domain.Identity{}, false
	}
	return s.cred.Claims, true
}

// Role returns the active role, derived strictly from the session identity.
func (s *SessionStore) Role() (domain.Role, bool) {
	id, ok := s.Identity()
	if !ok {
		return "", false
	}
	return id.Role, true
}

// Token exposes the bearer credential for API calls.
func (s *SessionStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return "", false
	}
	return s.cred.Token, true
}

// decodeClaims extracts the identity from the token payload. The signature
// is not checked here; the API rejects forged tokens on every call.
func decodeClaims(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("decode token: %w", err)
	}

	id, _ := claims["id"].(string)
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	rawRole, _ := claims["role"].(string)

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("token role: %w", err)
	}
	identity := domain.Identity{ID: id, Name: name, Email: email, Role: role}
	if !identity.Complete() {
		return domain.Identity{}, fmt.Errorf("token claims incomplete")
	}
	return identity, nil
}
