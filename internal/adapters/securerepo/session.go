// Package securerepo implements the secured repository session against a
// remote package index over HTTPS.
//
// The session owns trust establishment (a pinned root metadata file) and
// incremental download of the append-mostly index archive. Signature and
// key-threshold verification of repository metadata is the concern of the
// remote repository protocol; this adapter enforces the pinned-root
// bootstrap requirement and the append-resume discipline around the tar
// trailer, and exposes only the three-operation session contract.
package securerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.trai.ch/zerr"
)

const rootMetadataName = "root.json"

// Factory implements ports.SessionFactory.
type Factory struct {
	baseURL string
	client  *http.Client
	logger  ports.Logger
}

// NewFactory creates a session factory for the given repository base URL.
func NewFactory(baseURL string, logger ports.Logger) *Factory {
	return &Factory{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  logger,
	}
}

// NewSession opens a session backed by the local metadata cache directory
// and the local index archive path.
func (f *Factory) NewSession(_ context.Context, metadataDir, archivePath string) (ports.RepoSession, error) {
	if err := os.MkdirAll(metadataDir, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create metadata cache directory")
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create index cache directory")
	}

	return &Session{
		baseURL:     f.baseURL,
		metadataDir: metadataDir,
		archivePath: archivePath,
		client:      f.client,
		logger:      f.logger,
	}, nil
}

// Session is one secured session against the remote repository.
type Session struct {
	baseURL     string
	metadataDir string
	archivePath string
	client      *http.Client
	logger      ports.Logger
}

// rootMetadata is the subset of the served root metadata the bootstrap
// check needs: the key identifiers the repository claims to sign with.
type rootMetadata struct {
	Signed struct {
		Keys map[string]json.RawMessage `json:"keys"`
	} `json:"signed"`
}

// RequiresBootstrap reports whether no trusted root metadata is cached yet.
func (s *Session) RequiresBootstrap() bool {
	_, err := os.Stat(filepath.Join(s.metadataDir, rootMetadataName))
	return errors.Is(err, fs.ErrNotExist)
}

// Bootstrap fetches the repository's root metadata and pins it, requiring
// that at least threshold of the configured key identifiers appear in it.
func (s *Session) Bootstrap(ctx context.Context, keyIDs []string, threshold int) error {
	body, _, err := s.get(ctx, s.baseURL+"/"+rootMetadataName, "")
	if err != nil {
		return zerr.Wrap(err, domain.ErrBootstrapRequired.Error())
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return zerr.Wrap(err, domain.ErrBootstrapRequired.Error())
	}

	var root rootMetadata
	if err := json.Unmarshal(data, &root); err != nil {
		return zerr.Wrap(err, domain.ErrBootstrapRequired.Error())
	}

	matched := 0
	for _, id := range keyIDs {
		if _, ok := root.Signed.Keys[id]; ok {
			matched++
		}
	}
	if matched < threshold {
		err := zerr.With(domain.ErrBootstrapRequired, "matched_keys", fmt.Sprintf("%d", matched))
		return zerr.With(err, "threshold", fmt.Sprintf("%d", threshold))
	}

	path := filepath.Join(s.metadataDir, rootMetadataName)
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrBootstrapRequired.Error())
	}

	s.logger.Debug(fmt.Sprintf("pinned repository root metadata (%d/%d trusted keys)", matched, len(keyIDs)))
	return nil
}

// CheckForUpdates extends the local index archive with any new remote
// content. The resume offset backs off over the tar trailer, which the
// repository rewrites on every append.
func (s *Session) CheckForUpdates(ctx context.Context, _ time.Time) (ports.UpdateStatus, error) {
	localSize := int64(0)
	if st, err := os.Stat(s.archivePath); err == nil {
		localSize = st.Size()
	}

	resume := localSize - domain.TarTrailerSize
	if resume < 0 {
		resume = 0
	}

	rangeHeader := ""
	if resume > 0 {
		rangeHeader = fmt.Sprintf("bytes=%d-", resume)
	}

	body, code, err := s.get(ctx, s.baseURL+"/"+domain.IndexArchiveName, rangeHeader)
	if err != nil {
		var status statusError
		if errors.As(err, &status) && status.code == http.StatusRequestedRangeNotSatisfiable {
			return ports.NoUpdates, nil
		}
		return ports.NoUpdates, err
	}
	defer func() { _ = body.Close() }()

	// A server may ignore the Range header and serve the whole archive
	// with a plain 200. The body then starts at byte zero, not at the
	// resume offset.
	if resume > 0 && code != http.StatusPartialContent {
		resume = 0
	}

	written, err := s.appendArchive(resume, body)
	if err != nil {
		return ports.NoUpdates, err
	}

	if resume+written <= localSize {
		return ports.NoUpdates, nil
	}
	return ports.HasUpdates, nil
}

// appendArchive truncates the local archive to offset and streams r onto
// the end of it, returning the number of bytes written.
func (s *Session) appendArchive(offset int64, r io.Reader) (int64, error) {
	//nolint:gosec // Archive path is a fixed name inside the cabin root
	f, err := os.OpenFile(s.archivePath, os.O_CREATE|os.O_WRONLY, domain.FilePerm)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to open index archive")
	}
	defer func() { _ = f.Close() }()

	if err := f.Truncate(offset); err != nil {
		return 0, zerr.Wrap(err, "failed to truncate index archive")
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, zerr.Wrap(err, "failed to seek index archive")
	}

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to append index archive")
	}
	return written, nil
}

type statusError struct {
	code int
	url  string
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected response status %d from %s", e.code, e.url)
}

func (s *Session) get(ctx context.Context, url, rangeHeader string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, zerr.Wrap(err, "failed to build request")
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, zerr.Wrap(err, "request failed")
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return resp.Body, resp.StatusCode, nil
	default:
		_ = resp.Body.Close()
		return nil, 0, statusError{code: resp.StatusCode, url: url}
	}
}

var _ ports.RepoSession = (*Session)(nil)
