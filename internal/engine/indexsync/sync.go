// Package indexsync keeps the local package index cache reconciled with
// the secured remote repository.
package indexsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.trai.ch/zerr"
)

// UpdateResult reports what one Update call did.
type UpdateResult struct {
	// Ran is false when the one-shot gate had already been consumed and
	// no network or disk work was performed.
	Ran bool
	// Changed is true when the remote reported new index content.
	Changed bool
}

// Synchronizer fetches and verifies the remote index and reconciles it
// against the local cache.
type Synchronizer struct {
	factory   ports.SessionFactory
	tables    ports.IndexTables
	blobs     ports.BlobStore
	logger    ports.Logger
	root      string
	keyIDs    []string
	threshold int

	gate Gate
	now  func() time.Time
}

// New creates a Synchronizer rooted at the given project root.
func New(
	factory ports.SessionFactory,
	tables ports.IndexTables,
	blobs ports.BlobStore,
	logger ports.Logger,
	root string,
	keyIDs []string,
	threshold int,
) *Synchronizer {
	return &Synchronizer{
		factory:   factory,
		tables:    tables,
		blobs:     blobs,
		logger:    logger,
		root:      root,
		keyIDs:    keyIDs,
		threshold: threshold,
		now:       time.Now,
	}
}

// Update performs at most one index synchronization per process. The first
// call runs the full body; every later call returns immediately with
// Ran == false, even if the first attempt failed.
func (s *Synchronizer) Update(ctx context.Context) (UpdateResult, error) {
	if !s.gate.Begin() {
		s.logger.Debug("index update already attempted in this invocation")
		return UpdateResult{Ran: false}, nil
	}

	metadataDir := filepath.Join(s.root, domain.DefaultMetadataPath())
	archivePath := filepath.Join(s.root, domain.DefaultIndexArchivePath())
	statePath := filepath.Join(s.root, domain.DefaultIndexStatePath())

	session, err := s.factory.NewSession(ctx, metadataDir, archivePath)
	if err != nil {
		return UpdateResult{Ran: true}, zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error())
	}

	if session.RequiresBootstrap() {
		s.logger.Info("bootstrapping repository trust from pinned keys")
		if err := session.Bootstrap(ctx, s.keyIDs, s.threshold); err != nil {
			return UpdateResult{Ran: true}, zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error())
		}
	}

	status, err := session.CheckForUpdates(ctx, s.now())
	if err != nil {
		return UpdateResult{Ran: true}, zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error())
	}

	result := UpdateResult{Ran: true, Changed: status == ports.HasUpdates}

	if _, err := os.Stat(archivePath); errors.Is(err, fs.ErrNotExist) {
		// Nothing was ever downloaded; an empty repository is current.
		return result, nil
	}

	prev, err := loadState(statePath)
	if err != nil {
		return result, zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error())
	}

	rec, err := reconcile(archivePath, prev)
	if err != nil {
		return result, zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error())
	}

	if rec.rebuilt {
		s.logger.Info("index archive changed underneath the cache, rebuilding from the start")
		if err := s.tables.ClearRevisions(); err != nil {
			return result, zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error())
		}
	}

	if rec.offset < rec.newSize {
		if err := s.extract(archivePath, rec); err != nil {
			// The previously persisted state is untouched; the next attempt
			// re-derives the correct offset from it.
			return result, zerr.With(
				zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error()),
				"index", archivePath,
			)
		}
	}

	if err := saveState(statePath, domain.IndexCacheState{Size: rec.newSize, Hash: rec.newHash}); err != nil {
		return result, zerr.Wrap(err, domain.ErrIndexUpdateFailed.Error())
	}

	s.logger.Debug(fmt.Sprintf("index cache current at %d bytes", rec.newSize))
	return result, nil
}
