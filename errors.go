package assetfs

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotFound is returned when a path names neither a readable resource
	// nor a container. Re-exported from io/fs so errors.Is works with
	// fs.ErrNotExist too
	ErrNotFound = fs.ErrNotExist

	// ErrExist is returned when a node already exists with a different type
	ErrExist = fs.ErrExist

	// ErrReadOnly is returned for any attempt to modify an asset
	ErrReadOnly = errors.New("asset store is read-only")

	// ErrInvalidPath is returned by adapters for paths they cannot address
	ErrInvalidPath = errors.New("invalid asset path")
)
