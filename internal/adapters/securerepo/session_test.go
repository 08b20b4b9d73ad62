package securerepo_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.cabin.build/cabin/internal/adapters/securerepo"
	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
)

type noopLogger struct{}

func (noopLogger) Debug(string)        {}
func (noopLogger) Info(string)         {}
func (noopLogger) Warn(string)         {}
func (noopLogger) Error(error)         {}
func (noopLogger) SetQuiet(bool)       {}
func (noopLogger) SetOutput(io.Writer) {}

// repoServer is a minimal secured repository: a root metadata document and
// a range-capable index archive endpoint.
type repoServer struct {
	rootJSON   []byte
	rootStatus int
	archive    []byte
}

func (s *repoServer) start(t *testing.T) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/root.json", func(w http.ResponseWriter, _ *http.Request) {
		if s.rootStatus != 0 {
			w.WriteHeader(s.rootStatus)
			return
		}
		_, _ = w.Write(s.rootJSON)
	})
	mux.HandleFunc("/"+domain.IndexArchiveName, func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, domain.IndexArchiveName, time.Time{}, bytes.NewReader(s.archive))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func newSession(t *testing.T, baseURL string) (ports.RepoSession, string, string) {
	t.Helper()
	root := t.TempDir()
	metadataDir := filepath.Join(root, "metadata")
	archivePath := filepath.Join(root, "index", domain.IndexArchiveName)

	session, err := securerepo.NewFactory(baseURL, noopLogger{}).
		NewSession(context.Background(), metadataDir, archivePath)
	require.NoError(t, err)
	return session, metadataDir, archivePath
}

func TestSession_Bootstrap(t *testing.T) {
	t.Parallel()

	rootJSON := []byte(`{"signed":{"keys":{"key1":{},"key2":{},"key3":{}}}}`)

	t.Run("pins root metadata when threshold is met", func(t *testing.T) {
		t.Parallel()
		url := (&repoServer{rootJSON: rootJSON}).start(t)
		session, metadataDir, _ := newSession(t, url)

		require.True(t, session.RequiresBootstrap())
		require.NoError(t, session.Bootstrap(context.Background(), []string{"key1", "key2", "unknown"}, 2))

		assert.False(t, session.RequiresBootstrap())
		pinned, err := os.ReadFile(filepath.Join(metadataDir, "root.json"))
		require.NoError(t, err)
		assert.Equal(t, rootJSON, pinned)
	})

	t.Run("fails below threshold and pins nothing", func(t *testing.T) {
		t.Parallel()
		url := (&repoServer{rootJSON: rootJSON}).start(t)
		session, _, _ := newSession(t, url)

		err := session.Bootstrap(context.Background(), []string{"key1", "unknown"}, 2)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBootstrapRequired)
		assert.True(t, session.RequiresBootstrap())
	})

	t.Run("fails on server error", func(t *testing.T) {
		t.Parallel()
		url := (&repoServer{rootStatus: http.StatusInternalServerError}).start(t)
		session, _, _ := newSession(t, url)

		err := session.Bootstrap(context.Background(), []string{"key1"}, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBootstrapRequired)
	})

	t.Run("fails on malformed metadata", func(t *testing.T) {
		t.Parallel()
		url := (&repoServer{rootJSON: []byte("{broken")}).start(t)
		session, _, _ := newSession(t, url)

		err := session.Bootstrap(context.Background(), []string{"key1"}, 1)
		require.Error(t, err)
	})
}

func TestSession_CheckForUpdates(t *testing.T) {
	t.Parallel()

	trailer := make([]byte, domain.TarTrailerSize)
	archiveV1 := append([]byte("ENTRY-ONE~~~~~~~"), trailer...)
	archiveV2 := append([]byte("ENTRY-ONE~~~~~~~ENTRY-TWO~~~~~~~"), trailer...)

	t.Run("first run downloads the whole archive", func(t *testing.T) {
		t.Parallel()
		server := &repoServer{archive: archiveV1}
		session, _, archivePath := newSession(t, server.start(t))

		status, err := session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, ports.HasUpdates, status)

		local, err := os.ReadFile(archivePath)
		require.NoError(t, err)
		assert.Equal(t, archiveV1, local)
	})

	t.Run("unchanged remote reports no updates", func(t *testing.T) {
		t.Parallel()
		server := &repoServer{archive: archiveV1}
		session, _, archivePath := newSession(t, server.start(t))

		_, err := session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)

		status, err := session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, ports.NoUpdates, status)

		local, err := os.ReadFile(archivePath)
		require.NoError(t, err)
		assert.Equal(t, archiveV1, local)
	})

	t.Run("resumes past the rewritten trailer on append", func(t *testing.T) {
		t.Parallel()
		server := &repoServer{archive: archiveV1}
		session, _, archivePath := newSession(t, server.start(t))

		_, err := session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)

		server.archive = archiveV2
		status, err := session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, ports.HasUpdates, status)

		local, err := os.ReadFile(archivePath)
		require.NoError(t, err)
		assert.Equal(t, archiveV2, local)
	})

	t.Run("range-ignoring server replaces the archive", func(t *testing.T) {
		t.Parallel()
		remote := archiveV1
		mux := http.NewServeMux()
		mux.HandleFunc("/"+domain.IndexArchiveName, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(remote)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		session, _, archivePath := newSession(t, srv.URL)

		// The local copy already matches the remote, so the session sends a
		// ranged request. The server answers 200 with the full archive; the
		// body must land at byte zero, not at the resume offset.
		require.NoError(t, os.WriteFile(archivePath, archiveV1, 0o644))

		status, err := session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, ports.NoUpdates, status)

		local, err := os.ReadFile(archivePath)
		require.NoError(t, err)
		assert.Equal(t, archiveV1, local)

		remote = archiveV2
		status, err = session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, ports.HasUpdates, status)

		local, err = os.ReadFile(archivePath)
		require.NoError(t, err)
		assert.Equal(t, archiveV2, local)
	})

	t.Run("local ahead of remote reports no updates", func(t *testing.T) {
		t.Parallel()
		server := &repoServer{archive: archiveV1[:8]}
		session, _, archivePath := newSession(t, server.start(t))

		// A local archive longer than the remote makes the range request
		// unsatisfiable.
		require.NoError(t, os.WriteFile(archivePath, archiveV2, 0o644))

		status, err := session.CheckForUpdates(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, ports.NoUpdates, status)
	})

	t.Run("server error fails the check", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/"+domain.IndexArchiveName, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		session, _, _ := newSession(t, srv.URL)
		_, err := session.CheckForUpdates(context.Background(), time.Now())
		require.Error(t, err)
	})
}
