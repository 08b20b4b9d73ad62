package tables_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.cabin.build/cabin/internal/adapters/tables"
	"go.cabin.build/cabin/internal/core/domain"
)

func openStore(t *testing.T) *tables.Store {
	t.Helper()
	store, err := tables.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func ident(name, version string) domain.PackageIdent {
	return domain.PackageIdent{
		Name:    domain.PackageName(name),
		Version: domain.Version(version),
	}
}

func TestStore_Revisions(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	lens := ident("lens", "5.2.3")

	t.Run("empty release has no revisions", func(t *testing.T) {
		revs, err := store.Revisions(lens)
		require.NoError(t, err)
		assert.Empty(t, revs)

		n, err := store.NextRevisionNumber(lens)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("revisions come back in arrival order", func(t *testing.T) {
		for i, ref := range []domain.BlobRef{"aaaa", "bbbb", "cccc"} {
			require.NoError(t, store.PutRevision(lens, domain.Revision{
				Number: uint(i),
				Blob:   ref,
			}))
		}

		revs, err := store.Revisions(lens)
		require.NoError(t, err)
		require.Len(t, revs, 3)
		assert.Equal(t, domain.BlobRef("aaaa"), revs[0].Blob)
		assert.Equal(t, domain.BlobRef("bbbb"), revs[1].Blob)
		assert.Equal(t, domain.BlobRef("cccc"), revs[2].Blob)
		assert.Equal(t, uint(0), revs[0].Number)
		assert.Equal(t, uint(2), revs[2].Number)

		n, err := store.NextRevisionNumber(lens)
		require.NoError(t, err)
		assert.Equal(t, uint(3), n)
	})

	t.Run("releases are isolated", func(t *testing.T) {
		other := ident("lens", "5.2.4")
		revs, err := store.Revisions(other)
		require.NoError(t, err)
		assert.Empty(t, revs)
	})
}

func TestStore_ClearRevisions(t *testing.T) {
	t.Parallel()
	store := openStore(t)

	aeson := ident("aeson", "2.2.0.0")
	text := ident("text", "2.1")

	require.NoError(t, store.PutRevision(aeson, domain.Revision{Number: 0, Blob: "a0"}))
	require.NoError(t, store.PutRevision(text, domain.Revision{Number: 0, Blob: "t0"}))
	require.NoError(t, store.PutTarballInfo(aeson, domain.TarballDownloadInfo{SHA256: "ff", Size: 12}))

	require.NoError(t, store.ClearRevisions())

	revs, err := store.Revisions(aeson)
	require.NoError(t, err)
	assert.Empty(t, revs)

	revs, err = store.Revisions(text)
	require.NoError(t, err)
	assert.Empty(t, revs)

	// Tarball info survives a revision wipe.
	info, err := store.TarballInfo(aeson)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "ff", info.SHA256)
}

func TestStore_TarballInfo(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	lens := ident("lens", "5.2.3")

	t.Run("absent returns nil without error", func(t *testing.T) {
		info, err := store.TarballInfo(lens)
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("round trips", func(t *testing.T) {
		want := domain.TarballDownloadInfo{SHA256: "abc123", Size: 4096}
		require.NoError(t, store.PutTarballInfo(lens, want))

		info, err := store.TarballInfo(lens)
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, want, *info)
	})

	t.Run("overwrite keeps latest", func(t *testing.T) {
		require.NoError(t, store.PutTarballInfo(lens, domain.TarballDownloadInfo{SHA256: "def456", Size: 8192}))

		info, err := store.TarballInfo(lens)
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "def456", info.SHA256)
	})
}

func TestStore_TreeEntry(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	lens := ident("lens", "5.2.3")

	t.Run("absent returns nil without error", func(t *testing.T) {
		entry, err := store.TreeEntry(lens, "cafe")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("round trips and keys by cabal blob", func(t *testing.T) {
		want := domain.TreeEntry{
			TreeKey: "treehash",
			Tree: domain.PackageTree{
				"src/Lens.hs": {Size: 120, Digest: "00aabbccddeeff11"},
				"lens.cabal":  {Size: 40, Digest: "1122334455667788"},
			},
		}
		require.NoError(t, store.PutTreeEntry(lens, "cafe", want))

		entry, err := store.TreeEntry(lens, "cafe")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, want, *entry)

		// A different cabal blob is a different cache slot.
		entry, err = store.TreeEntry(lens, "beef")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}
