package ports

import (
	"context"

	"go.cabin.build/cabin/internal/core/domain"
)

// ArchiveFetcher downloads and verifies package source archives.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type ArchiveFetcher interface {
	// FetchTree downloads the archive at url, verifies it against the
	// attested hash and size, and returns its tree key and parsed content
	// listing. It fails if verification does not match.
	FetchTree(ctx context.Context, url string, expected domain.TarballDownloadInfo) (string, domain.PackageTree, error)
}
