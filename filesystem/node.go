package filesystem

import (
	"context"
	"syscall"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/internal/util"
	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Node is one asset path in the mounted tree. Only File and Directory paths
// ever get a node
type Node struct {
	gofs.Inode
	fs   *FileSystem
	path string
	kind assetfs.Kind
}

var (
	_ gofs.InodeEmbedder = (*Node)(nil)
	_ gofs.NodeLookuper  = (*Node)(nil)
	_ gofs.NodeReaddirer = (*Node)(nil)
	_ gofs.NodeGetattrer = (*Node)(nil)
	_ gofs.NodeOpener    = (*Node)(nil)
)

// Path is the asset path this node serves
func (n *Node) Path() string {
	return n.path
}

func (n *Node) isDir() bool {
	return n.kind == assetfs.Directory
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	logger := util.GetLogger("Node.Lookup")
	if !n.isDir() {
		return nil, syscall.ENOTDIR
	}

	p := ChildPath(n.path, name)
	kind := n.fs.classifier.Classify(p)
	if kind == assetfs.Invalid {
		logger.Trace().Str("path", p).Msg("Not found")
		return nil, syscall.ENOENT
	}

	var size uint64
	if kind == assetfs.File {
		var err error
		if size, err = n.fs.Size(p); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to size file")
			return nil, syscall.EIO
		}
	}
	n.fs.FillAttr(kind, size, &out.Attr)
	out.SetEntryTimeout(n.fs.EntryTimeout())
	out.SetAttrTimeout(n.fs.AttrTimeout())

	child := &Node{fs: n.fs, path: p, kind: kind}
	logger.Trace().Str("path", p).Stringer("kind", kind).Msg("Found")
	return n.NewInode(ctx, child, gofs.StableAttr{Mode: modeFor(kind)}), 0
}

func (n *Node) Readdir(ctx context.Context) (gofs.DirStream, syscall.Errno) {
	if !n.isDir() {
		return nil, syscall.ENOTDIR
	}
	entries, errno := n.fs.Entries(n.path)
	if errno != 0 {
		return nil, errno
	}
	return gofs.NewListDirStream(entries), 0
}

func (n *Node) Getattr(ctx context.Context, fh gofs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.SetTimeout(n.fs.AttrTimeout())
	if n.isDir() {
		n.fs.FillAttr(assetfs.Directory, 0, &out.Attr)
		return 0
	}

	if h, ok := fh.(*fileHandle); ok {
		n.fs.FillAttr(assetfs.File, uint64(len(h.data)), &out.Attr)
		return 0
	}
	size, err := n.fs.Size(n.path)
	if err != nil {
		util.GetLogger("Node.Getattr").Warn().Err(err).Str("path", n.path).Msg("Failed to size file")
		return syscall.EIO
	}
	n.fs.FillAttr(assetfs.File, size, &out.Attr)
	return 0
}

func (n *Node) Open(ctx context.Context, flags uint32) (gofs.FileHandle, uint32, syscall.Errno) {
	logger := util.GetLogger("Node.Open")
	if n.isDir() {
		return nil, 0, syscall.EISDIR
	}
	if errno := CheckOpenFlags(flags); errno != 0 {
		logger.Debug().Str("path", n.path).Uint32("flags", flags).Msg("Rejected write open")
		return nil, 0, errno
	}

	data, err := n.fs.ReadAll(n.path)
	if err != nil {
		logger.Warn().Err(err).Str("path", n.path).Msg("Failed to read asset")
		return nil, 0, syscall.EIO
	}
	logger.Trace().Str("path", n.path).Int("size", len(data)).Msg("Opened")
	return &fileHandle{data: data}, n.fs.OpenFlags(), 0
}
