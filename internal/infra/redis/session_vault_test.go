package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"lmsc-client/internal/app"
	"lmsc-client/internal/domain"
)

func newTestVault(t *testing.T) (*SessionVault, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionVault(client, "lmsc"), srv
}

func TestSessionVaultRoundtrip(t *testing.T) {
	vault, _ := newTestVault(t)
	ctx := context.Background()

	saved := app.SavedSession{
		Token: "tok-123",
		Identity: domain.Identity{
			ID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleTeacher,
		},
	}
	if err := vault.Write(ctx, saved); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, ok, err := vault.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !ok || got != saved {
		t.Fatalf("expected %+v back, got %+v (ok=%v)", saved, got, ok)
	}
}

func TestSessionVaultWritesBothKeys(t *testing.T) {
	vault, srv := newTestVault(t)

	if err := vault.Write(context.Background(), app.SavedSession{
		Token:    "tok",
		Identity: domain.Identity{ID: "u1", Email: "a@b.com", Role: domain.RoleStudent},
	}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !srv.Exists("lmsc:session:token") || !srv.Exists("lmsc:session:identity") {
		t.Fatal("both session keys must exist after a write")
	}
}

func TestSessionVaultEmptyReadsAsNoSession(t *testing.T) {
	vault, _ := newTestVault(t)
	if _, ok, err := vault.Read(context.Background()); err != nil || ok {
		t.Fatalf("empty store must read as no session, got ok=%v err=%v", ok, err)
	}
}

func TestSessionVaultTornStateReadsAsNoSession(t *testing.T) {
	vault, srv := newTestVault(t)

	// Token present, identity missing: never surface half a session.
	srv.Set("lmsc:session:token", "tok")
	if _, ok, err := vault.Read(context.Background()); err != nil || ok {
		t.Fatalf("token without identity must read as no session, got ok=%v err=%v", ok, err)
	}

	srv.Del("lmsc:session:token")
	srv.Set("lmsc:session:identity", `{"id":"u1"}`)
	if _, ok, err := vault.Read(context.Background()); err != nil || ok {
		t.Fatalf("identity without token must read as no session, got ok=%v err=%v", ok, err)
	}
}

func TestSessionVaultCorruptIdentityErrors(t *testing.T) {
	vault, srv := newTestVault(t)
	srv.Set("lmsc:session:token", "tok")
	srv.Set("lmsc:session:identity", "{not json")

	if _, ok, err := vault.Read(context.Background()); err == nil || ok {
		t.Fatalf("corrupt identity must surface an error, got ok=%v err=%v", ok, err)
	}
}

func TestSessionVaultClearRemovesBothKeys(t *testing.T) {
	vault, srv := newTestVault(t)
	ctx := context.Background()

	if err := vault.Write(ctx, app.SavedSession{
		Token:    "tok",
		Identity: domain.Identity{ID: "u1", Email: "a@b.com", Role: domain.RoleStudent},
	}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := vault.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if srv.Exists("lmsc:session:token") || srv.Exists("lmsc:session:identity") {
		t.Fatal("both session keys must be gone after clear")
	}
	if err := vault.Clear(ctx); err != nil {
		t.Fatalf("clearing an empty vault must be a no-op, got %v", err)
	}
}
