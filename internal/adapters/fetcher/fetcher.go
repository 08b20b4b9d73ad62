// Package fetcher downloads and verifies package source archives.
package fetcher

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.trai.ch/zerr"
)

// Fetcher implements ports.ArchiveFetcher over HTTP.
type Fetcher struct {
	client *http.Client
	logger ports.Logger
}

// New creates a new Fetcher.
func New(logger ports.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{},
		logger: logger,
	}
}

// FetchTree downloads the archive at url, verifies it against the attested
// hash and size, and returns its tree key and parsed content listing.
//
// The archive bytes are hashed while streaming: the SHA-256 over the
// compressed stream is both the verification digest and the tree key.
func (f *Fetcher) FetchTree(ctx context.Context, url string, expected domain.TarballDownloadInfo) (string, domain.PackageTree, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, zerr.Wrap(err, domain.ErrTarballFetchFailed.Error())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, zerr.Wrap(err, domain.ErrTarballFetchFailed.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := zerr.With(domain.ErrTarballFetchFailed, "url", url)
		return "", nil, zerr.With(err, "status", fmt.Sprintf("%d", resp.StatusCode))
	}

	digest := sha256.New()
	counter := &countingReader{r: io.TeeReader(resp.Body, digest)}

	tree, err := parseTree(counter)
	if err != nil {
		return "", nil, zerr.With(zerr.Wrap(err, domain.ErrTarballFetchFailed.Error()), "url", url)
	}

	// Drain any trailing bytes beyond the tar EOF so the digest covers the
	// whole archive.
	if _, err := io.Copy(io.Discard, counter); err != nil {
		return "", nil, zerr.Wrap(err, domain.ErrTarballFetchFailed.Error())
	}

	sum := hex.EncodeToString(digest.Sum(nil))
	if expected.SHA256 != "" && sum != expected.SHA256 {
		err := zerr.With(domain.ErrTarballVerifyFailed, "url", url)
		err = zerr.With(err, "expected_sha256", expected.SHA256)
		return "", nil, zerr.With(err, "actual_sha256", sum)
	}
	if expected.Size > 0 && counter.n != expected.Size {
		err := zerr.With(domain.ErrTarballVerifyFailed, "url", url)
		err = zerr.With(err, "expected_size", fmt.Sprintf("%d", expected.Size))
		return "", nil, zerr.With(err, "actual_size", fmt.Sprintf("%d", counter.n))
	}

	return sum, tree, nil
}

// parseTree walks the gzipped tar stream and builds the content listing.
// Each file carries its length and a fast xxhash64 digest.
func parseTree(r io.Reader) (domain.PackageTree, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, zerr.Wrap(err, "not a gzip archive")
	}
	defer func() { _ = gz.Close() }()

	tree := make(domain.PackageTree)
	tr := tar.NewReader(gz)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, zerr.Wrap(err, "corrupt tar archive")
		}

		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		h := xxhash.New()
		n, err := io.Copy(h, tr)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read archive entry")
		}

		tree[hdr.Name] = domain.TreeFile{
			Size:   n,
			Digest: fmt.Sprintf("%016x", h.Sum64()),
		}
	}

	return tree, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ ports.ArchiveFetcher = (*Fetcher)(nil)
