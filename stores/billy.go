package stores

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/brettbedarf/assetfs"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
)

// BillyStore adapts any go-billy filesystem into an asset store. Writes
// through the underlying filesystem are never issued
type BillyStore struct {
	bfs billy.Filesystem
}

func NewBillyStore(bfs billy.Filesystem) *BillyStore {
	return &BillyStore{bfs: bfs}
}

// Unwrap returns the underlying billy.Filesystem
func (b *BillyStore) Unwrap() billy.Filesystem {
	return b.bfs
}

// billy addresses its root as "/"
func billyPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func (b *BillyStore) OpenForRead(p string) (io.ReadCloser, error) {
	info, err := b.bfs.Stat(billyPath(p))
	if err != nil {
		return nil, errors.Wrapf(err, "stat %q", p)
	}
	// some billy backends happily open directories
	if !info.Mode().IsRegular() {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "open %q: not a regular file", p)
	}
	f, err := b.bfs.Open(billyPath(p))
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", p)
	}
	return f, nil
}

func (b *BillyStore) ListChildren(p string) ([]string, error) {
	info, err := b.bfs.Stat(billyPath(p))
	if err != nil {
		return nil, errors.Wrapf(err, "stat %q", p)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "list %q: not a directory", p)
	}
	infos, err := b.bfs.ReadDir(billyPath(p))
	if err != nil {
		return nil, errors.Wrapf(err, "list %q", p)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	slices.Sort(names)
	return names, nil
}

var _ assetfs.AssetStore = (*BillyStore)(nil)

// BillySource is the JSON definition of an osfs-backed [BillyStore]
type BillySource struct {
	Root string `json:"root"`
}

// BillyProvider builds osfs-backed [BillyStore]s from "billy" definitions
type BillyProvider struct{}

func (BillyProvider) NewStore(raw []byte) (assetfs.AssetStore, error) {
	var src BillySource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, errors.Wrap(err, "couldn't parse billy store definition")
	}
	if src.Root == "" {
		return nil, errors.New("billy store requires a root")
	}
	return NewBillyStore(osfs.New(src.Root)), nil
}
