package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"inventory-server-go/internal/platform/errors"
)

// File keeps the triple in a single JSON file so sessions survive between
// CLI invocations. Writes go through a temp file and rename; a crash never
// leaves a torn triple on disk.
type File struct {
	mutex sync.Mutex
	path  string
}

var _ Store = (*File)(nil)

// NewFile builds a file-backed store at path. An empty path falls back to
// DefaultPath.
func NewFile(path string) (*File, error) {
	if path == "" {
		resolved, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return &File{path: path}, nil
}

// DefaultPath is the per-user credentials location, under the platform
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.KindConfig, "credentials.path", "cannot resolve user config dir", err)
	}
	return filepath.Join(dir, "inventory-cli", "credentials.json"), nil
}

// Path returns the resolved file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Save(tokens Tokens) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(errors.KindStorage, "credentials.save", "cannot create credentials dir", err)
	}

	payload, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return errors.Wrap(errors.KindStorage, "credentials.save", "cannot encode credentials", err)
	}

	// The file holds tokens; keep it owner-only.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(errors.KindStorage, "credentials.save", "cannot write credentials file", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(errors.KindStorage, "credentials.save", "cannot replace credentials file", err)
	}
	return nil
}

func (f *File) Load() (Tokens, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.read()
}

func (f *File) Clear() (bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	payload, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(errors.KindStorage, "credentials.clear", "cannot read credentials file", err)
	}

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return false, errors.Wrap(errors.KindStorage, "credentials.clear", "cannot remove credentials file", err)
	}

	var tokens Tokens
	if err := json.Unmarshal(payload, &tokens); err != nil {
		// An unreadable file still counted as stored credentials.
		return true, nil
	}
	return !tokens.Empty(), nil
}

func (f *File) Close() error {
	return nil
}

func (f *File) read() (Tokens, error) {
	payload, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tokens{}, nil
		}
		return Tokens{}, errors.Wrap(errors.KindStorage, "credentials.load", "cannot read credentials file", err)
	}

	var tokens Tokens
	if err := json.Unmarshal(payload, &tokens); err != nil {
		return Tokens{}, errors.Wrap(errors.KindStorage, "credentials.load", "credentials file is corrupt", err)
	}
	return tokens, nil
}
