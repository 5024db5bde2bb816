package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront-demo/domain/user"
	"github.com/example/storefront-demo/modules/backend"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/storage"
	"github.com/golang-jwt/jwt/v5"
)

type testEnv struct {
	store    *Store
	storage  *storage.MemoryStore
	notifier *notify.Notifier
	client   *backend.Client
}

func setupTest(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := backend.NewClient(backend.Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	memory := storage.NewMemoryStore()
	notifier := notify.New()

	store := NewStore(client, memory, notifier)
	client.SetTokenSource(store)
	client.SetUnauthorizedHook(store.HandleUnauthorized)

	return &testEnv{
		store:    store,
		storage:  memory,
		notifier: notifier,
		client:   client,
	}
}

func authHandler(t *testing.T, role user.Role) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	respond := func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(backend.AuthResponse{
			Token: "token-123",
			User: user.User{
				ID:    "u-1",
				Email: "user@example.com",
				Name:  "User",
				Role:  role,
			},
		})
	}
	mux.HandleFunc("/api/auth/login", respond)
	mux.HandleFunc("/api/auth/login-admin", respond)
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(user.User{ID: "u-2", Email: "new@example.com"})
	})
	return mux
}

func TestStore_LoginEstablishesCustomerSession(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	if err := env.store.Login(ctx, "user@example.com", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !env.store.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
	if env.store.IsAdmin() {
		t.Error("IsAdmin() = true for customer session")
	}
	if got := env.store.Token(); got != "token-123" {
		t.Errorf("Token() = %q, want %q", got, "token-123")
	}

	if _, ok, _ := env.storage.Get(ctx, KeyToken); !ok {
		t.Error("token not persisted")
	}
	if _, ok, _ := env.storage.Get(ctx, KeyUser); !ok {
		t.Error("user not persisted")
	}
}

func TestStore_LoginDefaultsMissingRoleToCustomer(t *testing.T) {
	env := setupTest(t, authHandler(t, ""))

	if err := env.store.Login(context.Background(), "user@example.com", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	current := env.store.CurrentUser()
	if current == nil {
		t.Fatal("CurrentUser() = nil")
	}
	if current.Role != user.RoleCustomer {
		t.Errorf("Role = %q, want %q", current.Role, user.RoleCustomer)
	}
}

func TestStore_LoginFailureReturnsToAnonymous(t *testing.T) {
	env := setupTest(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))

	if err := env.store.Login(context.Background(), "user@example.com", "wrong"); err == nil {
		t.Fatal("Login() error = nil, want failure")
	}

	if env.store.CurrentState() != StateAnonymous {
		t.Errorf("state = %q, want %q", env.store.CurrentState(), StateAnonymous)
	}
	if env.store.Token() != "" {
		t.Error("token retained after failed login")
	}
}

func TestStore_LoginAdminRejectsNonAdminRole(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	err := env.store.LoginAdmin(ctx, "user@example.com", "secret123")
	if err != ErrNotAdmin {
		t.Fatalf("LoginAdmin() error = %v, want ErrNotAdmin", err)
	}

	if env.store.IsAuthenticated() {
		t.Error("session authenticated despite rejected admin login")
	}
	if env.store.Token() != "" {
		t.Error("token retained from rejected admin login")
	}
	if _, ok, _ := env.storage.Get(ctx, KeyToken); ok {
		t.Error("token persisted from rejected admin login")
	}
}

func TestStore_LoginAdminAcceptsAdminRole(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleAdmin))

	if err := env.store.LoginAdmin(context.Background(), "admin@example.com", "secret123"); err != nil {
		t.Fatalf("LoginAdmin() error = %v", err)
	}

	if !env.store.IsAdmin() {
		t.Error("IsAdmin() = false after admin login")
	}
	if !env.store.CanManageProducts() {
		t.Error("CanManageProducts() = false for admin session")
	}
}

func TestStore_RegisterDoesNotTransitionState(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))

	if err := env.store.Register(context.Background(), "New User", "new@example.com", "secret123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if env.store.IsAuthenticated() {
		t.Error("Register() must not authenticate the session")
	}
	if env.store.CurrentState() != StateAnonymous {
		t.Errorf("state = %q, want %q", env.store.CurrentState(), StateAnonymous)
	}
}

func TestStore_LogoutClearsStateAndPersistence(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	if err := env.store.Login(ctx, "user@example.com", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	env.store.Logout(ctx)

	if env.store.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after logout")
	}
	if _, ok, _ := env.storage.Get(ctx, KeyToken); ok {
		t.Error("persisted token present after logout")
	}
	if _, ok, _ := env.storage.Get(ctx, KeyUser); ok {
		t.Error("persisted user present after logout")
	}
}

func TestStore_ForcedLogoutHappensExactlyOnce(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	if err := env.store.Login(ctx, "user@example.com", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	env.notifier.Clear()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env.store.HandleUnauthorized()
		}()
	}
	wg.Wait()

	if env.store.IsAuthenticated() {
		t.Error("session still authenticated after forced logout")
	}

	expired := 0
	for _, n := range env.notifier.Recent() {
		if n.Level == notify.LevelError {
			expired++
		}
	}
	if expired != 1 {
		t.Errorf("forced logout notified %d times, want exactly 1", expired)
	}
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleAdmin))
	ctx := context.Background()

	if err := env.store.LoginAdmin(ctx, "admin@example.com", "secret123"); err != nil {
		t.Fatalf("LoginAdmin() error = %v", err)
	}

	// A fresh store over the same persisted storage must restore the
	// session, the way a page reload does.
	restored := NewStore(env.client, env.storage, env.notifier)
	restored.Restore(ctx)

	if !restored.IsAdmin() {
		t.Error("restored session lost admin role")
	}
	if restored.Token() != "token-123" {
		t.Errorf("restored token = %q, want %q", restored.Token(), "token-123")
	}
}

func TestStore_RestoreClearsMalformedUser(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	env.storage.Set(ctx, KeyToken, "some-token")
	env.storage.Set(ctx, KeyUser, "{not json")

	env.store.Restore(ctx)

	if env.store.IsAuthenticated() {
		t.Error("malformed persisted user must not authenticate")
	}
	if _, ok, _ := env.storage.Get(ctx, KeyToken); ok {
		t.Error("persisted token not cleared alongside malformed user")
	}
}

func TestStore_RestoreIgnoresTokenWithoutUser(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	env.storage.Set(ctx, KeyToken, "orphan-token")

	env.store.Restore(ctx)

	if env.store.IsAuthenticated() {
		t.Error("token without user record must not authenticate")
	}
}

func TestStore_RestoreDiscardsExpiredJWT(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	token, err := expired.SignedString([]byte("any-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	persisted, _ := json.Marshal(user.User{ID: "u-1", Email: "user@example.com", Role: user.RoleCustomer})
	env.storage.Set(ctx, KeyToken, token)
	env.storage.Set(ctx, KeyUser, string(persisted))

	env.store.Restore(ctx)

	if env.store.IsAuthenticated() {
		t.Error("expired token must not restore a session")
	}
	if _, ok, _ := env.storage.Get(ctx, KeyToken); ok {
		t.Error("expired persisted token not cleared")
	}
}

func TestStore_OpaqueTokenStillRestores(t *testing.T) {
	env := setupTest(t, authHandler(t, user.RoleCustomer))
	ctx := context.Background()

	persisted, _ := json.Marshal(user.User{ID: "u-1", Email: "user@example.com"})
	env.storage.Set(ctx, KeyToken, "opaque-non-jwt-token")
	env.storage.Set(ctx, KeyUser, string(persisted))

	env.store.Restore(ctx)

	if !env.store.IsAuthenticated() {
		t.Error("opaque token must restore; only provably expired JWTs are dropped")
	}
}
