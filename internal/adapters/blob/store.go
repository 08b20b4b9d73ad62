// Package blob implements the content addressed blob store.
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.BlobStore using a file per blob, named by the hex
// SHA-256 of its content.
type Store struct {
	dir string
}

// NewStore creates a BlobStore rooted at the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Put stores the given bytes and returns their content-addressed reference.
// Storing identical content twice is a no-op returning the same reference.
func (s *Store) Put(data []byte) (domain.BlobRef, error) {
	sum := sha256.Sum256(data)
	ref := domain.BlobRef(hex.EncodeToString(sum[:]))

	filename := s.filename(ref)
	if _, err := os.Stat(filename); err == nil {
		return ref, nil
	}

	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return "", zerr.Wrap(err, domain.ErrBlobStoreWriteFailed.Error())
	}

	// Write-then-rename so a partially written blob is never visible under
	// its content address.
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".blob-*")
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrBlobStoreWriteFailed.Error())
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", zerr.Wrap(err, domain.ErrBlobStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", zerr.Wrap(err, domain.ErrBlobStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		_ = os.Remove(tmp.Name())
		return "", zerr.Wrap(err, domain.ErrBlobStoreWriteFailed.Error())
	}

	return ref, nil
}

// Get retrieves the bytes for a reference.
func (s *Store) Get(ref domain.BlobRef) ([]byte, error) {
	//nolint:gosec // Path is constructed from trusted directory and hex ref
	data, err := os.ReadFile(s.filename(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(domain.ErrBlobNotFound, "ref", string(ref))
		}
		return nil, zerr.Wrap(err, "failed to read blob")
	}
	return data, nil
}

func (s *Store) filename(ref domain.BlobRef) string {
	return filepath.Join(s.dir, "sha256", string(ref))
}

var _ ports.BlobStore = (*Store)(nil)
