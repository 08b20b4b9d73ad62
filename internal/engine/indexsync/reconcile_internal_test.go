package indexsync

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.cabin.build/cabin/internal/core/domain"
)

func writeArchive(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), domain.IndexArchiveName)

	trailed := append(append([]byte{}, content...), make([]byte, domain.TarTrailerSize)...)
	require.NoError(t, os.WriteFile(path, trailed, 0o644))
	return path
}

func hashOf(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	t.Run("first run starts from zero", func(t *testing.T) {
		t.Parallel()
		content := []byte("0123456789")
		path := writeArchive(t, content)

		rec, err := reconcile(path, nil)
		require.NoError(t, err)

		assert.Zero(t, rec.offset)
		assert.Equal(t, int64(len(content)), rec.newSize)
		assert.Equal(t, hashOf(content), rec.newHash)
		assert.False(t, rec.rebuilt)
	})

	t.Run("matching prefix fast-forwards", func(t *testing.T) {
		t.Parallel()
		old := []byte("0123456789")
		grown := []byte("0123456789ABCDEF")
		path := writeArchive(t, grown)

		rec, err := reconcile(path, &domain.IndexCacheState{
			Size: int64(len(old)),
			Hash: hashOf(old),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(len(old)), rec.offset)
		assert.Equal(t, int64(len(grown)), rec.newSize)
		assert.Equal(t, hashOf(grown), rec.newHash)
		assert.False(t, rec.rebuilt)
	})

	t.Run("unchanged archive has nothing to extract", func(t *testing.T) {
		t.Parallel()
		content := []byte("0123456789")
		path := writeArchive(t, content)

		rec, err := reconcile(path, &domain.IndexCacheState{
			Size: int64(len(content)),
			Hash: hashOf(content),
		})
		require.NoError(t, err)

		assert.Equal(t, rec.newSize, rec.offset)
		assert.False(t, rec.rebuilt)
	})

	t.Run("prefix mismatch rebuilds from zero", func(t *testing.T) {
		t.Parallel()
		rebased := []byte("XXXXXXXXXXABCDEF")
		path := writeArchive(t, rebased)

		rec, err := reconcile(path, &domain.IndexCacheState{
			Size: 10,
			Hash: hashOf([]byte("0123456789")),
		})
		require.NoError(t, err)

		assert.Zero(t, rec.offset)
		assert.True(t, rec.rebuilt)
		assert.Equal(t, hashOf(rebased), rec.newHash)
	})

	t.Run("shrunken archive rebuilds from zero", func(t *testing.T) {
		t.Parallel()
		shrunk := []byte("0123")
		path := writeArchive(t, shrunk)

		rec, err := reconcile(path, &domain.IndexCacheState{
			Size: 10,
			Hash: hashOf([]byte("0123456789")),
		})
		require.NoError(t, err)

		assert.Zero(t, rec.offset)
		assert.True(t, rec.rebuilt)
		assert.Equal(t, int64(len(shrunk)), rec.newSize)
	})

	t.Run("trailer-only archive is empty", func(t *testing.T) {
		t.Parallel()
		path := writeArchive(t, nil)

		rec, err := reconcile(path, nil)
		require.NoError(t, err)

		assert.Zero(t, rec.offset)
		assert.Zero(t, rec.newSize)
		assert.False(t, rec.rebuilt)
	})

	t.Run("missing archive errors", func(t *testing.T) {
		t.Parallel()

		_, err := reconcile(filepath.Join(t.TempDir(), "absent.tar"), nil)
		require.Error(t, err)
	})
}

func TestSplitEntryPath(t *testing.T) {
	t.Parallel()

	ident, ok := splitEntryPath("lens/5.2.3/lens.cabal")
	require.True(t, ok)
	assert.Equal(t, domain.PackageName("lens"), ident.Name)
	assert.Equal(t, domain.Version("5.2.3"), ident.Version)

	_, ok = splitEntryPath("preferred-versions")
	assert.False(t, ok)

	_, ok = splitEntryPath("a/b/c/d")
	assert.False(t, ok)
}
