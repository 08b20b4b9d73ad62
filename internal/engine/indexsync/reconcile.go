package indexsync

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"go.cabin.build/cabin/internal/core/domain"
	"go.trai.ch/zerr"
)

// reconciliation is the outcome of matching the archive against the
// previously cached prefix.
type reconciliation struct {
	// offset is where extraction resumes: the old size on fast-forward,
	// zero on a full rebuild.
	offset int64
	// newSize is the archive length minus the tar trailer.
	newSize int64
	// newHash is the hex SHA-256 of bytes [0, newSize).
	newHash string
	// rebuilt is set when the cached prefix no longer matches and all
	// previously recorded revisions must be discarded.
	rebuilt bool
}

// reconcile computes the extraction offset for the index archive in a
// single streaming pass. With previous state present, two digests are
// computed simultaneously: one over the old prefix [0, oldSize) and one
// over the whole candidate range [0, newSize). A prefix match means the
// remote only appended and extraction fast-forwards; a mismatch means the
// index was rebased, truncated or corrupted underneath the cache.
func reconcile(archivePath string, prev *domain.IndexCacheState) (reconciliation, error) {
	//nolint:gosec // Archive path is a fixed name inside the cabin root
	f, err := os.Open(archivePath)
	if err != nil {
		return reconciliation{}, zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return reconciliation{}, zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}

	newSize := st.Size() - domain.TarTrailerSize
	if newSize < 0 {
		newSize = 0
	}

	newDigest := sha256.New()

	if prev == nil || prev.Size > newSize {
		// No cached prefix, or the archive shrank below it: hash the whole
		// candidate range once and rebuild from the start.
		if _, err := io.CopyN(newDigest, f, newSize); err != nil {
			return reconciliation{}, zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
		}
		return reconciliation{
			offset:  0,
			newSize: newSize,
			newHash: hex.EncodeToString(newDigest.Sum(nil)),
			rebuilt: prev != nil,
		}, nil
	}

	oldDigest := sha256.New()
	if _, err := io.CopyN(io.MultiWriter(oldDigest, newDigest), f, prev.Size); err != nil {
		return reconciliation{}, zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}
	if _, err := io.CopyN(newDigest, f, newSize-prev.Size); err != nil {
		return reconciliation{}, zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}

	rec := reconciliation{
		newSize: newSize,
		newHash: hex.EncodeToString(newDigest.Sum(nil)),
	}

	if hex.EncodeToString(oldDigest.Sum(nil)) == prev.Hash {
		rec.offset = prev.Size
	} else {
		rec.offset = 0
		rec.rebuilt = true
	}
	return rec, nil
}
