package indexsync

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.cabin.build/cabin/internal/core/domain"
	"go.trai.ch/zerr"
)

// loadState reads the persisted index cache state. Returns nil, nil when no
// state has been persisted yet (first run).
func loadState(path string) (*domain.IndexCacheState, error) {
	//nolint:gosec // State path is a fixed name inside the cabin root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrIndexStateReadFailed.Error())
	}

	var state domain.IndexCacheState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, zerr.Wrap(err, domain.ErrIndexStateReadFailed.Error())
	}
	return &state, nil
}

// saveState persists the index cache state. Called only after a fully
// successful extraction pass; any earlier failure leaves the previous
// state untouched.
func saveState(path string, state domain.IndexCacheState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrIndexStateWriteFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrIndexStateWriteFailed.Error())
	}

	//nolint:gosec // State path is a fixed name inside the cabin root
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrIndexStateWriteFailed.Error())
	}
	return nil
}
