package ports

import "go.cabin.build/cabin/internal/core/domain"

// IndexTables defines the interface for the relational package index tables:
// cabal revision records, tarball download info, and parsed tree cache
// entries.
//
//go:generate mockgen -source=index_tables.go -destination=mocks/mock_index_tables.go -package=mocks
type IndexTables interface {
	// PutRevision appends a revision record for a package release. The
	// revision number must be the next in arrival order for that release.
	PutRevision(ident domain.PackageIdent, rev domain.Revision) error

	// Revisions returns all recorded revisions for a package release in
	// revision-number order. Returns an empty slice if none are recorded.
	Revisions(ident domain.PackageIdent) ([]domain.Revision, error)

	// NextRevisionNumber returns the revision number the next recorded cabal
	// file for this release will receive.
	NextRevisionNumber(ident domain.PackageIdent) (uint, error)

	// ClearRevisions removes every revision record for the index. Called
	// when the cached prefix no longer matches and the cache is rebuilt.
	ClearRevisions() error

	// PutTarballInfo records the attested download info for a package release.
	PutTarballInfo(ident domain.PackageIdent, info domain.TarballDownloadInfo) error

	// TarballInfo returns the recorded download info for a package release.
	// Returns nil, nil if none is recorded.
	TarballInfo(ident domain.PackageIdent) (*domain.TarballDownloadInfo, error)

	// PutTreeEntry caches a parsed package tree for (release, cabal blob).
	PutTreeEntry(ident domain.PackageIdent, cabal domain.BlobRef, entry domain.TreeEntry) error

	// TreeEntry returns the cached tree for (release, cabal blob).
	// Returns nil, nil if none is cached.
	TreeEntry(ident domain.PackageIdent, cabal domain.BlobRef) (*domain.TreeEntry, error)

	// Close releases the underlying database.
	Close() error
}
