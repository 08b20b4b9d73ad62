package ports

import "go.cabin.build/cabin/internal/core/domain"

// BlobStore defines the interface for the content addressed blob store.
//
// Put is idempotent: storing identical bytes twice yields the same BlobRef
// both times and does not rewrite the stored content.
//
//go:generate mockgen -source=blob_store.go -destination=mocks/mock_blob_store.go -package=mocks
type BlobStore interface {
	// Put stores the given bytes and returns their content-addressed reference.
	Put(data []byte) (domain.BlobRef, error)

	// Get retrieves the bytes for a reference.
	// Returns domain.ErrBlobNotFound if the blob is not stored.
	Get(ref domain.BlobRef) ([]byte, error)
}
