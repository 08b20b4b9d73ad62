// Package tables implements the package index tables on an embedded
// badger database: revision records, tarball download info, and parsed
// tree cache entries.
package tables

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.trai.ch/zerr"
)

// Key layout. Revision keys embed a fixed-width revision number so that
// lexicographic iteration order is arrival order.
const (
	revPrefix  = "rev/"
	tarPrefix  = "tar/"
	treePrefix = "tree/"
)

// Store implements ports.IndexTables on badger.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the index tables database at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrTablesOpenFailed.Error())
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrTablesOpenFailed.Error())
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutRevision appends a revision record for a package release.
func (s *Store) PutRevision(ident domain.PackageIdent, rev domain.Revision) error {
	key := revKey(ident, rev.Number)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(rev.Blob))
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrTablesWriteFailed.Error())
	}
	return nil
}

// Revisions returns all recorded revisions for a package release in
// revision-number order.
func (s *Store) Revisions(ident domain.PackageIdent) ([]domain.Revision, error) {
	prefix := []byte(fmt.Sprintf("%s%s/%s/", revPrefix, ident.Name, ident.Version))

	var revs []domain.Revision
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			revs = append(revs, domain.Revision{
				Number: uint(len(revs)),
				Blob:   domain.BlobRef(val),
			})
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrTablesReadFailed.Error())
	}
	return revs, nil
}

// NextRevisionNumber returns the revision number the next recorded cabal
// file for this release will receive.
func (s *Store) NextRevisionNumber(ident domain.PackageIdent) (uint, error) {
	revs, err := s.Revisions(ident)
	if err != nil {
		return 0, err
	}
	return uint(len(revs)), nil
}

// ClearRevisions removes every revision record for the index.
func (s *Store) ClearRevisions() error {
	if err := s.db.DropPrefix([]byte(revPrefix)); err != nil {
		return zerr.Wrap(err, domain.ErrTablesWriteFailed.Error())
	}
	return nil
}

// PutTarballInfo records the attested download info for a package release.
func (s *Store) PutTarballInfo(ident domain.PackageIdent, info domain.TarballDownloadInfo) error {
	return s.putJSON(tarKey(ident), info)
}

// TarballInfo returns the recorded download info for a package release.
func (s *Store) TarballInfo(ident domain.PackageIdent) (*domain.TarballDownloadInfo, error) {
	var info domain.TarballDownloadInfo
	found, err := s.getJSON(tarKey(ident), &info)
	if err != nil || !found {
		return nil, err
	}
	return &info, nil
}

// PutTreeEntry caches a parsed package tree for (release, cabal blob).
func (s *Store) PutTreeEntry(ident domain.PackageIdent, cabal domain.BlobRef, entry domain.TreeEntry) error {
	return s.putJSON(treeKey(ident, cabal), entry)
}

// TreeEntry returns the cached tree for (release, cabal blob).
func (s *Store) TreeEntry(ident domain.PackageIdent, cabal domain.BlobRef) (*domain.TreeEntry, error) {
	var entry domain.TreeEntry
	found, err := s.getJSON(treeKey(ident, cabal), &entry)
	if err != nil || !found {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) putJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return zerr.Wrap(err, domain.ErrTablesWriteFailed.Error())
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrTablesWriteFailed.Error())
	}
	return nil
}

func (s *Store) getJSON(key []byte, v any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(val, v)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrTablesReadFailed.Error())
	}
	return true, nil
}

func revKey(ident domain.PackageIdent, n uint) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%08d", revPrefix, ident.Name, ident.Version, n))
}

func tarKey(ident domain.PackageIdent) []byte {
	return []byte(fmt.Sprintf("%s%s/%s", tarPrefix, ident.Name, ident.Version))
}

func treeKey(ident domain.PackageIdent, cabal domain.BlobRef) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%s", treePrefix, ident.Name, ident.Version, cabal))
}

var _ ports.IndexTables = (*Store)(nil)
