// Package domain defines the core types for the cabin package index.
package domain

import "fmt"

// PackageName is the name of a package as it appears in the index.
type PackageName string

// Version is a package version string, e.g. "1.2.3".
type Version string

// PackageIdent identifies one release of a package.
type PackageIdent struct {
	Name    PackageName
	Version Version
}

// String returns the canonical "name-version" form used in download URLs
// and diagnostics.
func (p PackageIdent) String() string {
	return fmt.Sprintf("%s-%s", p.Name, p.Version)
}

// Revision is one recorded cabal file for a package release. Revisions are
// numbered from zero in the order they arrive in the index archive.
type Revision struct {
	Number uint
	Blob   BlobRef
}
