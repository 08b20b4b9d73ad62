package domain

import "go.trai.ch/zerr"

var (
	// ErrBootstrapRequired is returned when the repository session has no
	// trusted root metadata and none could be established.
	ErrBootstrapRequired = zerr.New("repository requires bootstrap but no trusted root could be established")

	// ErrIndexUpdateFailed is returned when synchronizing the package index fails.
	ErrIndexUpdateFailed = zerr.New("failed to update package index")

	// ErrIndexStateReadFailed is returned when the index cache state cannot be read.
	ErrIndexStateReadFailed = zerr.New("failed to read index cache state")

	// ErrIndexStateWriteFailed is returned when the index cache state cannot be written.
	ErrIndexStateWriteFailed = zerr.New("failed to write index cache state")

	// ErrIndexArchiveReadFailed is returned when the local index archive cannot be read.
	ErrIndexArchiveReadFailed = zerr.New("failed to read index archive")

	// ErrCabalFileNotFound is returned when no recorded cabal file matches the
	// requested selector, even after a refreshed index.
	ErrCabalFileNotFound = zerr.New("cabal file not found in package index")

	// ErrTarballInfoNotFound is returned when no download info is recorded for
	// a package, even after a refreshed index.
	ErrTarballInfoNotFound = zerr.New("tarball download info not found in package index")

	// ErrBlobNotFound is returned when a content-addressed blob is missing
	// from the store.
	ErrBlobNotFound = zerr.New("blob not found in store")

	// ErrBlobStoreWriteFailed is returned when a blob cannot be written.
	ErrBlobStoreWriteFailed = zerr.New("failed to write blob to store")

	// ErrTablesOpenFailed is returned when the index tables database cannot be opened.
	ErrTablesOpenFailed = zerr.New("failed to open index tables")

	// ErrTablesReadFailed is returned when reading from the index tables fails.
	ErrTablesReadFailed = zerr.New("failed to read index tables")

	// ErrTablesWriteFailed is returned when writing to the index tables fails.
	ErrTablesWriteFailed = zerr.New("failed to write index tables")

	// ErrLockDirCreateFailed is returned when the directory to lock cannot be created.
	ErrLockDirCreateFailed = zerr.New("failed to create lock directory")

	// ErrLockOpenFailed is returned when the lockfile cannot be opened.
	ErrLockOpenFailed = zerr.New("failed to open lockfile")

	// ErrLockAcquireFailed is returned when acquiring a lock fails for a
	// reason other than contention.
	ErrLockAcquireFailed = zerr.New("failed to acquire lock")

	// ErrTarballVerifyFailed is returned when a downloaded archive does not
	// match its attested hash or size.
	ErrTarballVerifyFailed = zerr.New("package archive failed verification")

	// ErrTarballFetchFailed is returned when a package archive cannot be downloaded.
	ErrTarballFetchFailed = zerr.New("failed to download package archive")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrReexecFailed is returned when relaunching into a sandbox layer fails.
	ErrReexecFailed = zerr.New("failed to re-execute into sandbox")
)
