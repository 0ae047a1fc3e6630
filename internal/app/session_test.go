package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lmsc-client/internal/app"
	"lmsc-client/internal/domain"
)

func mintToken(t *testing.T, id, email, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    id,
		"name":  "Test User",
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

type fakeAuth struct {
	token string
	err   error
	calls int
}

func (a *fakeAuth) Authenticate(_ context.Context, _ string, _ domain.Role) (string, error) {
	a.calls++
	return a.token, a.err
}

type memVault struct {
	saved    app.SavedSession
	ok       bool
	writes   int
	clears   int
	readErr  error
	writeErr error
}

func (v *memVault) Read(context.Context) (app.SavedSession, bool, error) {
	return v.saved, v.ok, v.readErr
}

func (v *memVault) Write(_ context.Context, s app.SavedSession) error {
	if v.writeErr != nil {
		return v.writeErr
	}
	v.writes++
	v.saved, v.ok = s, true
	return nil
}

func (v *memVault) Clear(context.Context) error {
	v.clears++
	v.saved, v.ok = app.SavedSession{}, false
	return nil
}

func TestLoginTakesRoleFromTokenNotCaller(t *testing.T) {
	// The caller asks for teacher but the server issues a student token.
	auth := &fakeAuth{token: mintToken(t, "u1", "ana@example.com", "STUDENT")}
	vault := &memVault{}
	store := app.NewSessionStore(auth, vault, nil)

	identity, err := store.Login(context.Background(), "ana@example.com", "teacher")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if identity.Role != domain.RoleStudent {
		t.Fatalf("expected role from claims (student), got %q", identity.Role)
	}
	if role, ok := store.Role(); !ok || role != domain.RoleStudent {
		t.Fatalf("expected active role student, got %q (ok=%v)", role, ok)
	}
	if vault.writes != 1 || vault.saved.Identity.ID != "u1" {
		t.Fatalf("expected session persisted, got %+v", vault)
	}
}

func TestLoginRejectsBadEmailWithoutCallingBackend(t *testing.T) {
	auth := &fakeAuth{token: mintToken(t, "u1", "x@example.com", "STUDENT")}
	store := app.NewSessionStore(auth, &memVault{}, nil)

	for _, email := range []string{"", "not-an-email", "user@"} {
		if _, err := store.Login(context.Background(), email, "student"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("email %q: expected ErrValidation, got %v", email, err)
		}
	}
	if auth.calls != 0 {
		t.Fatalf("validation must run before the network, backend called %d times", auth.calls)
	}
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	store := app.NewSessionStore(&fakeAuth{}, &memVault{}, nil)
	if _, err := store.Login(context.Background(), "a@b.com", "admin"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}
}

func TestFailedLoginKeepsPriorSession(t *testing.T) {
	auth := &fakeAuth{token: mintToken(t, "u1", "ana@example.com", "STUDENT")}
	store := app.NewSessionStore(auth, &memVault{}, nil)
	if _, err := store.Login(context.Background(), "ana@example.com", "student"); err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	auth.token, auth.err = "", errors.New("upstream 401")
	if _, err := store.Login(context.Background(), "eve@example.com", "student"); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}

	identity, ok := store.Identity()
	if !ok || identity.ID != "u1" {
		t.Fatalf("prior session must survive a failed login, got %+v (ok=%v)", identity, ok)
	}
}

func TestLoginSurvivesVaultWriteFailure(t *testing.T) {
	auth := &fakeAuth{token: mintToken(t, "u1", "ana@example.com", "TEACHER")}
	vault := &memVault{writeErr: errors.New("disk full")}
	store := app.NewSessionStore(auth, vault, nil)

	identity, err := store.Login(context.Background(), "ana@example.com", "teacher")
	if err != nil {
		t.Fatalf("login must succeed even if persisting fails: %v", err)
	}
	if identity.Role != domain.RoleTeacher {
		t.Fatalf("expected teacher, got %q", identity.Role)
	}
	if _, ok := store.Token(); !ok {
		t.Fatal("session must stay active in memory")
	}
}

func TestLogoutClearsMemoryAndVault(t *testing.T) {
	auth := &fakeAuth{token: mintToken(t, "u1", "ana@example.com", "STUDENT")}
	vault := &memVault{}
	store := app.NewSessionStore(auth, vault, nil)
	if _, err := store.Login(context.Background(), "ana@example.com", "student"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok := store.Identity(); ok {
		t.Fatal("identity must be gone after logout")
	}
	if _, ok := store.Token(); ok {
		t.Fatal("token must be gone after logout")
	}
	if vault.clears != 1 || vault.ok {
		t.Fatalf("vault must be cleared, got %+v", vault)
	}

	// A fresh process sees nothing to restore.
	fresh := app.NewSessionStore(auth, vault, nil)
	if _, ok := fresh.Restore(context.Background()); ok {
		t.Fatal("restore after logout must find no session")
	}
}

func TestRestoreActivatesPersistedSession(t *testing.T) {
	token := mintToken(t, "u1", "ana@example.com", "TEACHER")
	vault := &memVault{
		saved: app.SavedSession{
			Token:    token,
			Identity: domain.Identity{ID: "u1", Name: "Test User", Email: "ana@example.com", Role: domain.RoleTeacher},
		},
		ok: true,
	}
	store := app.NewSessionStore(&fakeAuth{}, vault, nil)

	identity, ok := store.Restore(context.Background())
	if !ok || identity.ID != "u1" || identity.Role != domain.RoleTeacher {
		t.Fatalf("expected restored teacher session, got %+v (ok=%v)", identity, ok)
	}
	if tok, ok := store.Token(); !ok || tok != token {
		t.Fatal("restored session must carry the persisted token")
	}
}

func TestRestoreFailsClosedOnTamperedToken(t *testing.T) {
	vault := &memVault{
		saved: app.SavedSession{
			Token:    "not.a.jwt",
			Identity: domain.Identity{ID: "u1", Email: "ana@example.com", Role: domain.RoleStudent},
		},
		ok: true,
	}
	store := app.NewSessionStore(&fakeAuth{}, vault, nil)

	if _, ok := store.Restore(context.Background()); ok {
		t.Fatal("an undecodable token must not restore")
	}
	if vault.clears != 1 {
		t.Fatal("inconsistent persisted state must be discarded")
	}
	if _, ok := store.Identity(); ok {
		t.Fatal("no session may be active after a failed restore")
	}
}

func TestRestoreFailsClosedOnIdentityMismatch(t *testing.T) {
	// Token says u1/student, persisted identity claims teacher.
	vault := &memVault{
		saved: app.SavedSession{
			Token:    mintToken(t, "u1", "ana@example.com", "STUDENT"),
			Identity: domain.Identity{ID: "u1", Email: "ana@example.com", Role: domain.RoleTeacher},
		},
		ok: true,
	}
	store := app.NewSessionStore(&fakeAuth{}, vault, nil)

	if _, ok := store.Restore(context.Background()); ok {
		t.Fatal("claims/identity mismatch must not restore")
	}
	if vault.clears != 1 {
		t.Fatal("mismatched persisted state must be discarded")
	}
}

func TestRestoreFailsClosedOnVaultError(t *testing.T) {
	vault := &memVault{readErr: errors.New("io error")}
	store := app.NewSessionStore(&fakeAuth{}, vault, nil)

	if _, ok := store.Restore(context.Background()); ok {
		t.Fatal("a vault read error must not restore a session")
	}
}
