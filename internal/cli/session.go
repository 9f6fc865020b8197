package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"brickpress/pkg/domain"
)

const sessionFile = "session.json"

// SavedSession is the signed-in user persisted between CLI runs.
type SavedSession struct {
	Server string      `json:"server"`
	Token  string      `json:"token"`
	User   domain.User `json:"user"`
}

func sessionPath(dir string) (string, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "brickpress")
	}
	return filepath.Join(dir, sessionFile), nil
}

// LoadSession returns the saved session, or nil when there is none.
func LoadSession(dir string) (*SavedSession, error) {
	path, err := sessionPath(dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s SavedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

// SaveSession writes s with owner-only permissions.
func SaveSession(dir string, s SavedSession) error {
	path, err := sessionPath(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ClearSession removes the saved session. Missing files are not an error.
func ClearSession(dir string) error {
	path, err := sessionPath(dir)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
