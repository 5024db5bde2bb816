// Package session holds the authenticated identity and bearer token, and
// drives the login, registration and logout flows against the remote auth
// endpoints.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/storefront-demo/domain/user"
	"github.com/example/storefront-demo/modules/backend"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/storage"
	"github.com/golang-jwt/jwt/v5"
)

// Persisted storage keys.
const (
	KeyToken = "auth_token"
	KeyUser  = "auth_user"
)

var (
	// ErrNotAdmin is returned when admin login yields a non-admin identity.
	ErrNotAdmin = errors.New("account does not have administrator access")
	// ErrLoginInFlight is returned when an authentication call is already
	// running.
	ErrLoginInFlight = errors.New("authentication already in progress")
)

// timeNow is swapped in tests that exercise token expiry.
var timeNow = time.Now

// State is the session lifecycle state.
type State string

const (
	// StateAnonymous means no user and no token are held.
	StateAnonymous State = "anonymous"
	// StateAuthenticating means a login, admin login or registration call
	// is in flight.
	StateAuthenticating State = "authenticating"
	// StateCustomer means a customer identity is held.
	StateCustomer State = "authenticated-customer"
	// StateAdmin means an admin identity is held.
	StateAdmin State = "authenticated-admin"
)

// Store owns the session state: the current user and bearer token, both
// set and cleared together.
type Store struct {
	mu    sync.RWMutex
	state State
	user  *user.User
	token string

	client   *backend.Client
	storage  storage.Store
	notifier *notify.Notifier
}

// NewStore creates an anonymous session store.
func NewStore(client *backend.Client, store storage.Store, notifier *notify.Notifier) *Store {
	return &Store{
		state:    StateAnonymous,
		client:   client,
		storage:  store,
		notifier: notifier,
	}
}

// Login authenticates a customer. On success the session holds the
// returned identity and token; on failure it returns to anonymous.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if _, err := s.beginAuthenticating(); err != nil {
		return err
	}

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.resetToAnonymous()
		s.notifier.Error("Login falhou: " + err.Error())
		return err
	}

	s.establish(ctx, resp.User.Normalize(), resp.Token)
	s.notifier.Success("Login realizado com sucesso!")
	return nil
}

// LoginAdmin authenticates through the admin route. The returned token is
// discarded unless the backend's identity carries the admin role; the
// check is client-side trust hygiene on top of server-side authorization,
// not a substitute for it.
func (s *Store) LoginAdmin(ctx context.Context, email, password string) error {
	if _, err := s.beginAuthenticating(); err != nil {
		return err
	}

	resp, err := s.client.LoginAdmin(ctx, email, password)
	if err != nil {
		s.resetToAnonymous()
		s.notifier.Error("Credenciais de administrador inválidas")
		return err
	}

	admin := resp.User.Normalize()
	if !admin.IsAdmin() {
		s.resetToAnonymous()
		s.notifier.Error("Credenciais de administrador inválidas")
		return ErrNotAdmin
	}

	s.establish(ctx, admin, resp.Token)
	s.notifier.Success("Login de administrador realizado com sucesso!")
	return nil
}

// Register creates a new account. A successful registration does not log
// the user in.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	prev, err := s.beginAuthenticating()
	if err != nil {
		return err
	}
	defer s.endAuthenticating(prev)

	if _, err := s.client.Register(ctx, name, email, password); err != nil {
		s.notifier.Error("Registro falhou: " + err.Error())
		return err
	}

	s.notifier.Success("Conta criada com sucesso! Faça login para continuar.")
	return nil
}

// Logout clears the session and the persisted token and user.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	s.clearPersisted(ctx)
}

// HandleUnauthorized is the forced-logout path, wired as the backend
// client's 401 hook. Concurrent unauthorized responses collapse into a
// single transition and a single notification.
func (s *Store) HandleUnauthorized() {
	s.mu.Lock()
	if s.state != StateCustomer && s.state != StateAdmin {
		s.mu.Unlock()
		return
	}
	s.state = StateAnonymous
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	s.clearPersisted(context.Background())
	s.notifier.Error("Sessão expirada. Faça login novamente.")
	log.Println("[session] Forced logout after unauthorized response")
}

// Restore loads a persisted session. Malformed or expired persisted data
// is cleared and treated as absence, never surfaced as an error.
func (s *Store) Restore(ctx context.Context) {
	token, hasToken, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		log.Printf("[session] Failed to read persisted token: %v", err)
		return
	}
	rawUser, hasUser, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		log.Printf("[session] Failed to read persisted user: %v", err)
		return
	}

	if !hasToken || !hasUser {
		s.clearPersisted(ctx)
		return
	}

	var u user.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil || u.ID == "" {
		s.clearPersisted(ctx)
		return
	}

	if tokenExpired(token) {
		s.clearPersisted(ctx)
		return
	}

	u = u.Normalize()
	s.mu.Lock()
	s.user = &u
	s.token = token
	s.state = stateForRole(u)
	s.mu.Unlock()

	log.Printf("[session] Restored session for %s (%s)", u.Email, u.Role)
}

// tokenExpired reports whether a persisted JWT carries an exp claim in the
// past. The client never holds the signing key, so the parse is unverified;
// a token that is not a JWT at all is left to the backend to reject.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(timeNow())
}

// IsAuthenticated reports whether a user and token are held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateCustomer || s.state == StateAdmin
}

// IsAdmin reports whether the session carries the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAdmin
}

// CanManageProducts reports whether the session may mutate the catalog.
// A single role tier carries all elevated privilege.
func (s *Store) CanManageProducts() bool {
	return s.IsAdmin()
}

// CurrentUser returns the authenticated user, or nil when anonymous.
func (s *Store) CurrentUser() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token, implementing backend.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentState returns the session state.
func (s *Store) CurrentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) beginAuthenticating() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticating {
		return s.state, ErrLoginInFlight
	}
	prev := s.state
	s.state = StateAuthenticating
	return prev, nil
}

// endAuthenticating restores the pre-call state. Registration uses it so a
// successful sign-up never transitions the session.
func (s *Store) endAuthenticating(prev State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticating {
		s.state = prev
	}
}

func (s *Store) resetToAnonymous() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}

func (s *Store) establish(ctx context.Context, u user.User, token string) {
	s.mu.Lock()
	s.user = &u
	s.token = token
	s.state = stateForRole(u)
	s.mu.Unlock()

	s.persist(ctx, u, token)
}

func stateForRole(u user.User) State {
	if u.IsAdmin() {
		return StateAdmin
	}
	return StateCustomer
}

func (s *Store) persist(ctx context.Context, u user.User, token string) {
	data, err := json.Marshal(u)
	if err != nil {
		log.Printf("[session] Failed to encode user for persistence: %v", err)
		return
	}
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		log.Printf("[session] Failed to persist token: %v", err)
	}
	if err := s.storage.Set(ctx, KeyUser, string(data)); err != nil {
		log.Printf("[session] Failed to persist user: %v", err)
	}
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := s.storage.Delete(ctx, KeyToken); err != nil {
		log.Printf("[session] Failed to clear persisted token: %v", err)
	}
	if err := s.storage.Delete(ctx, KeyUser); err != nil {
		log.Printf("[session] Failed to clear persisted user: %v", err)
	}
}
