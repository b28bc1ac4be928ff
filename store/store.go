// Package store persists the account state document. Writes are debounced
// and asynchronous: trading calls offer a snapshot and move on, and a
// failed write never reaches the trading flow.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"cryptosim/account"
)

// Store reads and writes the state document as JSON at a fixed path.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Save writes atomically via a temp file and rename, so a crash mid-write
// cannot leave a truncated document.
func (s *Store) Save(st account.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load returns the persisted document. A missing file is not an error: the
// zero State restores an account to its initial defaults.
func (s *Store) Load() (account.State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return account.State{}, nil
	}
	if err != nil {
		return account.State{}, err
	}

	var st account.State
	if err := json.Unmarshal(data, &st); err != nil {
		return account.State{}, err
	}
	return st, nil
}
