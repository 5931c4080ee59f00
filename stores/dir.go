package stores

import (
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/brettbedarf/assetfs"
	"github.com/pkg/errors"
)

// DirStore serves assets from a local directory tree. Paths matching any of
// the hidden doublestar patterns behave as if they did not exist
type DirStore struct {
	fsys   fs.FS
	hidden []string
}

// NewDirStore serves fsys. Hidden patterns are validated up front
func NewDirStore(fsys fs.FS, hidden ...string) (*DirStore, error) {
	for _, pattern := range hidden {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid hidden pattern %q", pattern)
		}
	}
	return &DirStore{fsys: fsys, hidden: hidden}, nil
}

func (d *DirStore) isHidden(p string) bool {
	for _, pattern := range d.hidden {
		// patterns are validated in NewDirStore
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// fsPath maps an asset path onto io/fs naming, where the root is "."
func fsPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func (d *DirStore) OpenForRead(p string) (io.ReadCloser, error) {
	if d.isHidden(p) {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "open %q", p)
	}
	f, err := d.fsys.Open(fsPath(p))
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", p)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "stat %q", p)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, errors.Wrapf(assetfs.ErrNotFound, "open %q: not a regular file", p)
	}
	return f, nil
}

func (d *DirStore) ListChildren(p string) ([]string, error) {
	if d.isHidden(p) {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "list %q", p)
	}
	entries, err := fs.ReadDir(d.fsys, fsPath(p))
	if err != nil {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "list %q: %s", p, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		child := e.Name()
		if p != "" {
			child = p + "/" + child
		}
		if d.isHidden(child) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

var _ assetfs.AssetStore = (*DirStore)(nil)

// DirSource is the JSON definition of a [DirStore]
type DirSource struct {
	Root   string   `json:"root"`
	Hidden []string `json:"hidden,omitempty"` // doublestar patterns, i.e. "**/.git"
}

// DirProvider builds [DirStore]s from "dir" definitions
type DirProvider struct{}

func (DirProvider) NewStore(raw []byte) (assetfs.AssetStore, error) {
	var src DirSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, errors.Wrap(err, "couldn't parse dir store definition")
	}
	if src.Root == "" {
		return nil, errors.New("dir store requires a root")
	}
	info, err := os.Stat(src.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't stat dir store root %s", src.Root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("dir store root %s is not a directory", src.Root)
	}
	d, err := NewDirStore(os.DirFS(src.Root), src.Hidden...)
	if err != nil {
		return nil, err
	}
	return d, nil
}
