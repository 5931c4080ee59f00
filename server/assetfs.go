package server

import (
	"time"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/config"
	"github.com/brettbedarf/assetfs/filesystem"
	"github.com/brettbedarf/assetfs/internal/util"
	"github.com/google/uuid"
	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/pkg/errors"
)

// AssetFs mounts a read-only view of an asset store with abstractions over
// the underlying FUSE wire protocol implementation
type AssetFs struct {
	*filesystem.FileSystem
	cfg     *config.Config
	session uuid.UUID
	server  *fuse.Server
}

// New creates an AssetFs instance given your config and store.
func New(cfg *config.Config, store assetfs.AssetStore) *AssetFs {
	return &AssetFs{
		FileSystem: filesystem.NewFS(cfg, store),
		cfg:        cfg,
		session:    uuid.New(),
	}
}

// Session identifies this instance in logs and, when no Name is configured,
// in the mount table
func (fs *AssetFs) Session() uuid.UUID {
	return fs.session
}

// MountOptions translates the config into go-fuse options.
func (fs *AssetFs) MountOptions() *gofs.Options {
	opts := fs.cfg.MountOptions
	name := opts.Name
	if name == "" {
		name = fs.session.String()
	}
	entryTimeout := fs.EntryTimeout()
	attrTimeout := fs.AttrTimeout()
	return &gofs.Options{
		MountOptions: fuse.MountOptions{
			Name:    name,
			FsName:  opts.FsName,
			Debug:   opts.Debug || fs.cfg.LogLvl == util.TraceLevel,
			Logger:  util.NewLogLogger("FuseServer", util.TraceLevel),
			Options: []string{"ro"},
		},
		EntryTimeout: &entryTimeout,
		AttrTimeout:  &attrTimeout,
	}
}

// Serve mounts and serves the filesystem at the given mountPoint. It returns
// once the mount is live.
func (fs *AssetFs) Serve(mountPoint string) error {
	logger := util.GetLogger("AssetFs").With().Str("session", fs.session.String()).Logger()

	root, err := fs.Root()
	if err != nil {
		return err
	}
	start := time.Now()
	srv, err := gofs.Mount(mountPoint, root, fs.MountOptions())
	if err != nil {
		return errors.Wrapf(err, "failed to mount %s", mountPoint)
	}
	fs.server = srv
	logger.Debug().Str("mnt", mountPoint).Dur("took", time.Since(start)).Msg("Mounted")
	return nil
}

func (fs *AssetFs) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- fs.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted.
func (fs *AssetFs) Wait() {
	if fs.server != nil {
		fs.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (fs *AssetFs) Unmount() error {
	if fs.server == nil {
		return nil
	}
	return fs.server.Unmount()
}
