package ports

import (
	"context"
	"time"
)

// UpdateStatus is the result of asking the repository session for updates.
type UpdateStatus uint8

const (
	// NoUpdates means the local index archive is already current.
	NoUpdates UpdateStatus = iota
	// HasUpdates means new index content was appended to the local archive.
	HasUpdates
)

// RepoSession is a secured session against the remote package repository.
// The session owns the cryptographic trust guarantee for downloaded index
// content; callers never re-verify attestations themselves.
//
//go:generate mockgen -source=repo_session.go -destination=mocks/mock_repo_session.go -package=mocks
type RepoSession interface {
	// RequiresBootstrap reports whether the session has no trusted root
	// metadata yet.
	RequiresBootstrap() bool

	// Bootstrap establishes trust from the pinned key identifiers and
	// signing threshold. Fatal to proceed without when required.
	Bootstrap(ctx context.Context, keyIDs []string, threshold int) error

	// CheckForUpdates verifies the remote index as of now and extends the
	// local index archive file with any new content as a side effect.
	CheckForUpdates(ctx context.Context, now time.Time) (UpdateStatus, error)
}

// SessionFactory builds a RepoSession against the configured repository.
type SessionFactory interface {
	// NewSession opens a session using the local metadata cache directory
	// and the local index archive path.
	NewSession(ctx context.Context, metadataDir, archivePath string) (RepoSession, error)
}
