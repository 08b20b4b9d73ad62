package domain

// BlobRef is a content-addressed reference to stored bytes. It is the
// lowercase hex SHA-256 of the content, so identical bytes always map to
// the same reference.
type BlobRef string

// CabalSelectorKind chooses which recorded cabal file revision to resolve.
type CabalSelectorKind uint8

const (
	// CabalLatest selects the highest recorded revision.
	CabalLatest CabalSelectorKind = iota
	// CabalByRevision selects an exact revision number.
	CabalByRevision
	// CabalByHash selects the revision whose blob matches a content hash.
	CabalByHash
)

// CabalFileInfo selects a cabal file for a package release.
type CabalFileInfo struct {
	Kind     CabalSelectorKind
	Revision uint
	Hash     BlobRef
	// Size, when non-zero together with Kind == CabalByHash, must also
	// match the stored blob length.
	Size int64
}

// LatestCabal selects the newest recorded revision.
func LatestCabal() CabalFileInfo {
	return CabalFileInfo{Kind: CabalLatest}
}

// CabalRevision selects revision n.
func CabalRevision(n uint) CabalFileInfo {
	return CabalFileInfo{Kind: CabalByRevision, Revision: n}
}

// CabalHash selects the revision with the given content hash. size <= 0
// means the length is not checked.
func CabalHash(hash BlobRef, size int64) CabalFileInfo {
	return CabalFileInfo{Kind: CabalByHash, Hash: hash, Size: size}
}

// IndexCacheState describes the prefix of the local index archive that has
// already been reconciled into the cache. Absent on first run.
type IndexCacheState struct {
	// Size is the number of archive bytes processed, excluding the tar
	// trailer.
	Size int64 `json:"size"`
	// Hash is the hex SHA-256 of bytes [0, Size).
	Hash string `json:"sha256"`
}

// TarballDownloadInfo is the attested hash and length of a package source
// archive, decoded from the index's package.json entries.
type TarballDownloadInfo struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// PackageTree is the parsed content listing of a package source archive:
// relative path to per-file metadata.
type PackageTree map[string]TreeFile

// TreeFile describes one file inside a package source archive.
type TreeFile struct {
	Size   int64  `json:"size"`
	Digest string `json:"xxh64"`
}

// TreeEntry caches a parsed package tree keyed by (package, cabal blob) so
// an already-processed archive is never fetched or parsed twice.
type TreeEntry struct {
	// TreeKey is the hex SHA-256 of the archive the tree was parsed from.
	TreeKey string      `json:"treeKey"`
	Tree    PackageTree `json:"tree"`
}
