package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"lmsc-client/internal/app"
)

// SessionVault persists the session as a single JSON document on disk. The
// token and identity live in one file written via rename, so a reader can
// never observe one half of a session.
type SessionVault struct {
	path string
}

func NewSessionVault(path string) *SessionVault {
	return &SessionVault{path: path}
}

func (v *SessionVault) Read(_ context.Context) (app.SavedSession, bool, error) {
	data, err := os.ReadFile(v.path)
	if errors.Is(err, fs.ErrNotExist) {
		return app.SavedSession{}, false, nil
	}
	if err != nil {
		return app.SavedSession{}, false, err
	}

	var saved app.SavedSession
	if err := json.Unmarshal(data, &saved); err != nil {
		return app.SavedSession{}, false, fmt.Errorf("corrupt session file: %w", err)
	}
	if saved.Token == "" {
		return app.SavedSession{}, false, nil
	}
	return saved, true, nil
}

func (v *SessionVault) Write(_ context.Context, s app.SavedSession) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return err
	}

	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, v.path)
}

func (v *SessionVault) Clear(_ context.Context) error {
	err := os.Remove(v.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
