package stores

import (
	"bytes"
	"encoding/json"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/internal/util"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

type memNode struct {
	name     string
	isDir    bool
	data     []byte                       // file contents; nil for dirs
	children *xsync.Map[string, *memNode] // nil for files
	nilList  atomic.Bool                  // ListChildren returns (nil, nil)
}

func newMemDir(name string) *memNode {
	return &memNode{name: name, isDir: true, children: xsync.NewMap[string, *memNode]()}
}

// MemoryStore is an in-memory asset tree. Reads are lock-free; writers are
// serialized so concurrent AddFile/AddDir calls can't race on the same parent
type MemoryStore struct {
	root *memNode
	wmu  sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: newMemDir("")}
}

func splitPath(p string) []string {
	return strings.Split(strings.TrimSuffix(p, "/"), "/")
}

// lookup finds the node at p without any cleaning; "" is the root
func (m *MemoryStore) lookup(p string) (*memNode, bool) {
	if p == "" {
		return m.root, true
	}
	cur := m.root
	for _, name := range strings.Split(p, "/") {
		if !cur.isDir {
			return nil, false
		}
		child, ok := cur.children.Load(name)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// mkdirAllLocked walks names creating missing directories. Caller holds wmu
func (m *MemoryStore) mkdirAllLocked(names []string) (*memNode, error) {
	cur := m.root
	for i, name := range names {
		if name == "" {
			return nil, errors.Wrapf(assetfs.ErrInvalidPath, "empty segment in %q", strings.Join(names, "/"))
		}
		child, _ := cur.children.LoadOrStore(name, newMemDir(name))
		if !child.isDir {
			return nil, errors.Wrapf(assetfs.ErrExist, "file in the way at %q", strings.Join(names[:i+1], "/"))
		}
		cur = child
	}
	return cur, nil
}

// AddDir creates the directory at p and any missing parents, like `mkdir -p`.
// An existing directory is not an error
func (m *MemoryStore) AddDir(p string) error {
	if p == "" {
		return nil
	}
	m.wmu.Lock()
	defer m.wmu.Unlock()
	_, err := m.mkdirAllLocked(splitPath(p))
	return err
}

// AddFile stores data at p, creating missing parent directories. Replacing an
// existing file is allowed; replacing a directory is not
func (m *MemoryStore) AddFile(p string, data []byte) error {
	names := splitPath(p)
	name := names[len(names)-1]
	if name == "" {
		return errors.Wrapf(assetfs.ErrInvalidPath, "file path %q has no name", p)
	}

	m.wmu.Lock()
	defer m.wmu.Unlock()
	parent, err := m.mkdirAllLocked(names[:len(names)-1])
	if err != nil {
		return err
	}
	if existing, ok := parent.children.Load(name); ok && existing.isDir {
		return errors.Wrapf(assetfs.ErrExist, "directory in the way at %q", p)
	}
	parent.children.Store(name, &memNode{name: name, data: slices.Clone(data)})
	return nil
}

// SetNilListing makes ListChildren on the directory at p return a nil slice
// with no error, reproducing a host that answers "nothing" instead of failing
func (m *MemoryStore) SetNilListing(p string) error {
	n, ok := m.lookup(p)
	if !ok || !n.isDir {
		return errors.Wrapf(assetfs.ErrNotFound, "no directory at %q", p)
	}
	n.nilList.Store(true)
	return nil
}

func (m *MemoryStore) OpenForRead(p string) (io.ReadCloser, error) {
	n, ok := m.lookup(p)
	if !ok || n.isDir {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "open %q", p)
	}
	return io.NopCloser(bytes.NewReader(n.data)), nil
}

func (m *MemoryStore) ListChildren(p string) ([]string, error) {
	n, ok := m.lookup(p)
	if !ok || !n.isDir {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "list %q", p)
	}
	if n.nilList.Load() {
		return nil, nil
	}
	names := make([]string, 0, n.children.Size())
	n.children.Range(func(name string, _ *memNode) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names, nil
}

var _ assetfs.AssetStore = (*MemoryStore)(nil)

// MemorySource is the JSON definition of a [MemoryStore]
type MemorySource struct {
	Files map[string]string `json:"files,omitempty"` // path -> contents
	Dirs  []string          `json:"dirs,omitempty"`  // extra, possibly empty, directories
	// NilListings marks directories whose listing returns nothing at all
	NilListings []string `json:"nil_listings,omitempty"`
}

// Build creates the store described by s
func (s *MemorySource) Build() (*MemoryStore, error) {
	m := NewMemoryStore()
	for _, d := range s.Dirs {
		if err := m.AddDir(d); err != nil {
			return nil, err
		}
	}
	// sorted for deterministic conflict errors
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	for _, p := range paths {
		if err := m.AddFile(p, []byte(s.Files[p])); err != nil {
			return nil, err
		}
	}
	for _, p := range s.NilListings {
		if err := m.SetNilListing(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MemoryProvider builds [MemoryStore]s from "memory" definitions
type MemoryProvider struct{}

func (MemoryProvider) NewStore(raw []byte) (assetfs.AssetStore, error) {
	logger := util.GetLogger("MemoryProvider")

	var src MemorySource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, errors.Wrap(err, "couldn't parse memory store definition")
	}
	m, err := src.Build()
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("files", len(src.Files)).Int("dirs", len(src.Dirs)).Msg("Built memory store")
	return m, nil
}
