package domain

import "path/filepath"

const (
	// CabinDirName is the name of the internal workspace directory.
	CabinDirName = ".cabin"

	// IndexDirName is the name of the package index cache directory.
	IndexDirName = "index"

	// StoreDirName is the name of the content addressed store directory.
	StoreDirName = "store"

	// TablesDirName is the name of the index tables database directory.
	TablesDirName = "tables"

	// MetadataDirName is the name of the repository metadata cache directory.
	MetadataDirName = "metadata"

	// IndexArchiveName is the name of the local copy of the index archive.
	IndexArchiveName = "01-index.tar"

	// IndexStateFileName is the name of the persisted index cache state.
	IndexStateFileName = "cache.json"

	// LockFileName is the fixed lockfile name inside every locked directory.
	LockFileName = "cabin.lock"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "cabin.yaml"

	// TarTrailerSize is the padding region at the end of a tar archive. It
	// is rewritten on every append, so it is never hashed or extracted.
	TarTrailerSize = 1024

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCabinPath returns the default root directory for cabin metadata.
func DefaultCabinPath() string {
	return CabinDirName
}

// DefaultIndexPath returns the default path for the index cache directory.
func DefaultIndexPath() string {
	return filepath.Join(CabinDirName, IndexDirName)
}

// DefaultStorePath returns the default path for the content addressed store.
func DefaultStorePath() string {
	return filepath.Join(CabinDirName, StoreDirName)
}

// DefaultTablesPath returns the default path for the index tables database.
func DefaultTablesPath() string {
	return filepath.Join(CabinDirName, IndexDirName, TablesDirName)
}

// DefaultIndexArchivePath returns the default path for the index archive.
func DefaultIndexArchivePath() string {
	return filepath.Join(CabinDirName, IndexDirName, IndexArchiveName)
}

// DefaultIndexStatePath returns the default path for the index cache state.
func DefaultIndexStatePath() string {
	return filepath.Join(CabinDirName, IndexDirName, IndexStateFileName)
}

// DefaultMetadataPath returns the default path for the repository metadata
// cache.
func DefaultMetadataPath() string {
	return filepath.Join(CabinDirName, IndexDirName, MetadataDirName)
}
