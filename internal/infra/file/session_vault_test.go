package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lmsc-client/internal/app"
	"lmsc-client/internal/domain"
)

func TestSessionVaultRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	vault := NewSessionVault(path)
	ctx := context.Background()

	saved := app.SavedSession{
		Token: "tok-123",
		Identity: domain.Identity{
			ID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleStudent,
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

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file must be private, got %v", perm)
	}
}

func TestSessionVaultMissingFileIsNotAnError(t *testing.T) {
	vault := NewSessionVault(filepath.Join(t.TempDir(), "never-written.json"))

	_, ok, err := vault.Read(context.Background())
	if err != nil {
		t.Fatalf("missing file must read as no session, got %v", err)
	}
	if ok {
		t.Fatal("missing file must not report a session")
	}
}

func TestSessionVaultCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o600); err != nil {
		t.Fatalf("seeding corrupt file: %v", err)
	}
	vault := NewSessionVault(path)

	_, ok, err := vault.Read(context.Background())
	if err == nil {
		t.Fatal("corrupt state must surface an error")
	}
	if ok {
		t.Fatal("corrupt state must not report a session")
	}
}

func TestSessionVaultClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	vault := NewSessionVault(path)
	ctx := context.Background()

	if err := vault.Write(ctx, app.SavedSession{Token: "tok"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := vault.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file must be gone after clear, stat said %v", err)
	}

	// Clearing twice is fine.
	if err := vault.Clear(ctx); err != nil {
		t.Fatalf("second clear must be a no-op, got %v", err)
	}
	if _, ok, err := vault.Read(ctx); err != nil || ok {
		t.Fatalf("cleared vault must read empty, got ok=%v err=%v", ok, err)
	}
}

func TestSessionVaultOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	vault := NewSessionVault(path)
	ctx := context.Background()

	first := app.SavedSession{Token: "tok-1", Identity: domain.Identity{ID: "u1", Email: "a@b.com", Role: domain.RoleStudent}}
	second := app.SavedSession{Token: "tok-2", Identity: domain.Identity{ID: "u2", Email: "c@d.com", Role: domain.RoleTeacher}}
	if err := vault.Write(ctx, first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := vault.Write(ctx, second); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	got, ok, err := vault.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("read failed: ok=%v err=%v", ok, err)
	}
	if got != second {
		t.Fatalf("expected the newer session, got %+v", got)
	}
}
