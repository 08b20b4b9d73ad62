// Package resolve implements cache-first package metadata queries with a
// bounded one-shot refresh-and-retry policy.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.cabin.build/cabin/internal/engine/indexsync"
	"go.trai.ch/zerr"
)

// Resolver answers package metadata queries from the local index cache,
// refreshing it at most once per process on a miss.
type Resolver struct {
	tables         ports.IndexTables
	blobs          ports.BlobStore
	syncer         *indexsync.Synchronizer
	fetcher        ports.ArchiveFetcher
	downloadPrefix string
	logger         ports.Logger
}

// New creates a Resolver.
func New(
	tables ports.IndexTables,
	blobs ports.BlobStore,
	syncer *indexsync.Synchronizer,
	fetcher ports.ArchiveFetcher,
	downloadPrefix string,
	logger ports.Logger,
) *Resolver {
	return &Resolver{
		tables:         tables,
		blobs:          blobs,
		syncer:         syncer,
		fetcher:        fetcher,
		downloadPrefix: downloadPrefix,
		logger:         logger,
	}
}

// CabalContent resolves the selector against locally recorded revisions.
// On a miss it triggers one index update; the lookup is retried once only
// when the update reported new content. A miss after a verified-current
// index is fatal.
func (r *Resolver) CabalContent(ctx context.Context, ident domain.PackageIdent, sel domain.CabalFileInfo) (domain.BlobRef, error) {
	ref, found, err := r.lookupCabal(ident, sel)
	if err != nil {
		return "", err
	}
	if found {
		return ref, nil
	}

	res, err := r.syncer.Update(ctx)
	if err != nil {
		return "", err
	}
	if res.Changed {
		ref, found, err = r.lookupCabal(ident, sel)
		if err != nil {
			return "", err
		}
		if found {
			return ref, nil
		}
	}

	return "", zerr.With(domain.ErrCabalFileNotFound, "package", ident.String())
}

// TarballInfo resolves the attested download info for a package release,
// with the same cache, sync-once, retry-once, fail pattern.
func (r *Resolver) TarballInfo(ctx context.Context, ident domain.PackageIdent) (domain.TarballDownloadInfo, error) {
	info, err := r.tables.TarballInfo(ident)
	if err != nil {
		return domain.TarballDownloadInfo{}, err
	}
	if info != nil {
		return *info, nil
	}

	res, err := r.syncer.Update(ctx)
	if err != nil {
		return domain.TarballDownloadInfo{}, err
	}
	if res.Changed {
		info, err = r.tables.TarballInfo(ident)
		if err != nil {
			return domain.TarballDownloadInfo{}, err
		}
		if info != nil {
			return *info, nil
		}
	}

	return domain.TarballDownloadInfo{}, zerr.With(domain.ErrTarballInfoNotFound, "package", ident.String())
}

// PackageTree returns the parsed content listing for a package release,
// fetching and verifying the source archive only when no tree is cached
// for its resolved cabal blob.
func (r *Resolver) PackageTree(ctx context.Context, ident domain.PackageIdent, sel domain.CabalFileInfo) (string, domain.PackageTree, error) {
	cabalRef, err := r.CabalContent(ctx, ident, sel)
	if err != nil {
		return "", nil, err
	}

	cached, err := r.tables.TreeEntry(ident, cabalRef)
	if err != nil {
		return "", nil, err
	}
	if cached != nil {
		return cached.TreeKey, cached.Tree, nil
	}

	info, err := r.TarballInfo(ctx, ident)
	if err != nil {
		return "", nil, err
	}

	url := r.tarballURL(ident)
	r.logger.Debug(fmt.Sprintf("fetching %s", url))

	treeKey, tree, err := r.fetcher.FetchTree(ctx, url, info)
	if err != nil {
		return "", nil, err
	}

	entry := domain.TreeEntry{TreeKey: treeKey, Tree: tree}
	if err := r.tables.PutTreeEntry(ident, cabalRef, entry); err != nil {
		return "", nil, err
	}

	return treeKey, tree, nil
}

// lookupCabal applies the selector to the recorded revisions.
func (r *Resolver) lookupCabal(ident domain.PackageIdent, sel domain.CabalFileInfo) (domain.BlobRef, bool, error) {
	revs, err := r.tables.Revisions(ident)
	if err != nil {
		return "", false, err
	}
	if len(revs) == 0 {
		return "", false, nil
	}

	switch sel.Kind {
	case domain.CabalLatest:
		return revs[len(revs)-1].Blob, true, nil

	case domain.CabalByRevision:
		if int(sel.Revision) >= len(revs) {
			return "", false, nil
		}
		return revs[sel.Revision].Blob, true, nil

	case domain.CabalByHash:
		for _, rev := range revs {
			if rev.Blob != sel.Hash {
				continue
			}
			if sel.Size > 0 {
				data, err := r.blobs.Get(rev.Blob)
				if err != nil {
					return "", false, err
				}
				if int64(len(data)) != sel.Size {
					continue
				}
			}
			return rev.Blob, true, nil
		}
		return "", false, nil

	default:
		return "", false, zerr.New("unknown cabal file selector")
	}
}

func (r *Resolver) tarballURL(ident domain.PackageIdent) string {
	prefix := r.downloadPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + ident.String() + ".tar.gz"
}
