// Package assetfs contains core domain types and interfaces for classifying
// paths inside a read-only asset store
package assetfs

import (
	"io"
)

// AssetStore is the pair of primitives a host environment supplies for its
// bundled, read-only assets. Implementations live in the stores package.
type AssetStore interface {
	// OpenForRead opens the resource at path. It fails when path does not name
	// a readable resource; directories are never openable.
	OpenForRead(path string) (io.ReadCloser, error)

	// ListChildren returns the names of the entries directly under path.
	// It fails when path does not name a container. Some hosts return a nil
	// slice with a nil error instead of failing
	ListChildren(path string) ([]string, error)
}

// StoreProvider is a factory for concrete [AssetStore] implementations
// generated from a raw JSON store definition
type StoreProvider interface {
	NewStore(raw []byte) (AssetStore, error)
}

// Info mirrors the metadata a virtual filesystem node exposes for an asset
type Info struct {
	Exists   bool
	IsDir    bool
	ReadOnly bool // Always true for asset stores
}
