package indexsync

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"go.cabin.build/cabin/internal/core/domain"
	"go.trai.ch/zerr"
)

// progressInterval is how many cabal files are processed between progress
// lines during extraction.
const progressInterval = 400

// packageAttestation is the wire shape of a package.json index entry: the
// signed download metadata for one package tarball.
type packageAttestation struct {
	Signed struct {
		Targets map[string]struct {
			Length int64 `json:"length"`
			Hashes struct {
				SHA256 string `json:"sha256"`
			} `json:"hashes"`
		} `json:"targets"`
	} `json:"signed"`
}

// extract streams archive entries from rec.offset up to rec.newSize into
// the blob store and index tables. A failure mid-stream is fatal to the
// sync attempt; the caller must not persist new state in that case.
func (s *Synchronizer) extract(archivePath string, rec reconciliation) error {
	//nolint:gosec // Archive path is a fixed name inside the cabin root
	f, err := os.Open(archivePath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(rec.offset, io.SeekStart); err != nil {
		return zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}

	tr := tar.NewReader(io.LimitReader(f, rec.newSize-rec.offset))
	cabalCount := 0

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// The candidate range ends at the last complete entry; a
			// truncated final header is the trailer boundary, not damage.
			break
		}
		if err != nil {
			return zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		ident, ok := splitEntryPath(hdr.Name)
		if !ok {
			continue
		}

		switch {
		case path.Base(hdr.Name) == "package.json":
			if err := s.recordAttestation(ident, tr); err != nil {
				return err
			}
		case strings.HasSuffix(hdr.Name, ".cabal"):
			if err := s.recordCabalFile(ident, tr); err != nil {
				return err
			}
			cabalCount++
			if cabalCount%progressInterval == 0 {
				s.logger.Info(fmt.Sprintf("processed %d cabal files", cabalCount))
			}
		}
	}

	if cabalCount > 0 {
		s.logger.Info(fmt.Sprintf("processed %d cabal files in total", cabalCount))
	}
	return nil
}

// recordAttestation decodes a package.json entry and records its tarball
// download info. A malformed entry is logged and skipped; one bad entry
// must not abort an otherwise good sync pass.
func (s *Synchronizer) recordAttestation(ident domain.PackageIdent, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}

	var att packageAttestation
	if err := json.Unmarshal(data, &att); err != nil {
		s.logger.Warn(fmt.Sprintf("skipping malformed package.json for %s: %v", ident, err))
		return nil
	}

	target, ok := att.Signed.Targets["<repo>/package/"+ident.String()+".tar.gz"]
	if !ok {
		// Accept any single target; index producers vary in path spelling.
		if len(att.Signed.Targets) != 1 {
			s.logger.Warn(fmt.Sprintf("skipping package.json for %s: no usable target", ident))
			return nil
		}
		for _, t := range att.Signed.Targets {
			target = t
		}
	}

	return s.tables.PutTarballInfo(ident, domain.TarballDownloadInfo{
		SHA256: target.Hashes.SHA256,
		Size:   target.Length,
	})
}

// recordCabalFile stores the cabal bytes as a content-addressed blob and
// appends a revision record. When the bytes contain carriage returns a
// second, stripped blob is stored without a revision record, so hashes
// recorded before line-ending normalization still resolve to a stored
// blob.
func (s *Synchronizer) recordCabalFile(ident domain.PackageIdent, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIndexArchiveReadFailed.Error())
	}

	ref, err := s.blobs.Put(data)
	if err != nil {
		return err
	}

	n, err := s.tables.NextRevisionNumber(ident)
	if err != nil {
		return err
	}
	if err := s.tables.PutRevision(ident, domain.Revision{Number: n, Blob: ref}); err != nil {
		return err
	}

	if bytes.ContainsRune(data, '\r') {
		stripped := bytes.ReplaceAll(data, []byte{'\r'}, nil)
		if _, err := s.blobs.Put(stripped); err != nil {
			return err
		}
	}
	return nil
}

// splitEntryPath parses an index entry path of the form
// "<name>/<version>/<file>".
func splitEntryPath(entryPath string) (domain.PackageIdent, bool) {
	parts := strings.Split(path.Clean(entryPath), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return domain.PackageIdent{}, false
	}
	return domain.PackageIdent{
		Name:    domain.PackageName(parts[0]),
		Version: domain.Version(parts[1]),
	}, true
}
