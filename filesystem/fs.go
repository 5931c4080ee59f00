// Package filesystem exposes an asset store as a read-only go-fuse node tree.
// Directory contents are routed through the classifier: files become file
// entries, non-empty directories become folders and everything else is
// hidden.
package filesystem

import (
	"io"
	"os"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/classifier"
	"github.com/brettbedarf/assetfs/config"
	"github.com/brettbedarf/assetfs/internal/util"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/pkg/errors"
)

// Permission bits for every asset; nothing is ever writable
const (
	FilePerms = 0o444
	DirPerms  = 0o555
)

// FileSystem holds the state shared by every node of a mount
type FileSystem struct {
	cfg        *config.Config
	store      assetfs.AssetStore
	classifier *classifier.Classifier
	uid, gid   uint32
	mounted    time.Time // reported as every node's a/m/ctime
}

func NewFS(cfg *config.Config, store assetfs.AssetStore) *FileSystem {
	return &FileSystem{
		cfg:        cfg,
		store:      store,
		classifier: classifier.New(store),
		uid:        uint32(os.Getuid()),
		gid:        uint32(os.Getgid()),
		mounted:    time.Now(),
	}
}

func (fs *FileSystem) Classifier() *classifier.Classifier {
	return fs.classifier
}

// Root returns the node for the configured root path. The store root ("")
// is always mountable; any other root must classify as a directory
func (fs *FileSystem) Root() (*Node, error) {
	root := fs.cfg.Root
	if root != "" {
		if kind := fs.classifier.Classify(root); kind != assetfs.Directory {
			return nil, errors.Wrapf(assetfs.ErrNotFound, "asset root %q is %s, not a directory", root, kind)
		}
	}
	return &Node{fs: fs, path: root, kind: assetfs.Directory}, nil
}

// ChildPath locates name under dir; the store root is ""
func ChildPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// modeFor maps a classification to inode type bits; 0 for Invalid
func modeFor(kind assetfs.Kind) uint32 {
	switch kind {
	case assetfs.File:
		return fuse.S_IFREG
	case assetfs.Directory:
		return fuse.S_IFDIR
	}
	return 0
}

// Entries classifies every child of dir and returns the visible ones sorted
// by name
func (fs *FileSystem) Entries(dir string) ([]fuse.DirEntry, syscall.Errno) {
	logger := util.GetLogger("FS.Entries")

	names, err := fs.store.ListChildren(dir)
	if err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("Listing failed")
		return nil, syscall.ENOENT
	}
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		kind := fs.classifier.Classify(ChildPath(dir, name))
		if kind == assetfs.Invalid {
			logger.Trace().Str("dir", dir).Str("name", name).Msg("Skipping invalid entry")
			continue
		}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: modeFor(kind)})
	}
	slices.SortFunc(entries, func(a, b fuse.DirEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, 0
}

// Size returns the byte length of the file at p by streaming it once
func (fs *FileSystem) Size(p string) (uint64, error) {
	rc, err := fs.store.OpenForRead(p)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	n, err := io.Copy(io.Discard, rc)
	return uint64(n), err
}

// ReadAll loads the file at p for serving through a file handle
func (fs *FileSystem) ReadAll(p string) ([]byte, error) {
	rc, err := fs.store.OpenForRead(p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FillAttr sets the attributes of a node of the given kind. size is ignored
// for directories
func (fs *FileSystem) FillAttr(kind assetfs.Kind, size uint64, attr *fuse.Attr) {
	attr.Owner = fuse.Owner{Uid: fs.uid, Gid: fs.gid}
	attr.SetTimes(&fs.mounted, &fs.mounted, &fs.mounted)
	attr.Blksize = 4096 // preferred size for fs ops
	if kind == assetfs.Directory {
		attr.Mode = fuse.S_IFDIR | DirPerms
		attr.Nlink = 2
		return
	}
	attr.Mode = fuse.S_IFREG | FilePerms
	attr.Nlink = 1
	attr.Size = size
	attr.Blocks = (size + 511) / 512
}

// CheckOpenFlags rejects any open that asks for write access
func CheckOpenFlags(flags uint32) syscall.Errno {
	if flags&syscall.O_ACCMODE != syscall.O_RDONLY {
		return syscall.EROFS
	}
	if flags&(syscall.O_TRUNC|syscall.O_APPEND|syscall.O_CREAT) != 0 {
		return syscall.EROFS
	}
	return 0
}

// OpenFlags returns the FOPEN_* flags for served files
func (fs *FileSystem) OpenFlags() uint32 {
	if fs.cfg.DirectIO {
		return fuse.FOPEN_DIRECT_IO
	}
	// assets never change while mounted
	return fuse.FOPEN_KEEP_CACHE
}

func (fs *FileSystem) EntryTimeout() time.Duration {
	return time.Duration(fs.cfg.EntryTimeout * float64(time.Second))
}

func (fs *FileSystem) AttrTimeout() time.Duration {
	return time.Duration(fs.cfg.AttrTimeout * float64(time.Second))
}
