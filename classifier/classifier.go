// Package classifier folds the two asset store primitives into a single
// file / directory / invalid answer
package classifier

import (
	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/internal/util"
)

// Classifier answers "is this a file, a non-empty directory, or neither"
// for paths inside one asset store. It holds no mutable state and is safe
// for concurrent use whenever the store is
type Classifier struct {
	store  assetfs.AssetStore
	logger util.Logger
}

func New(store assetfs.AssetStore) *Classifier {
	return &Classifier{
		store:  store,
		logger: util.GetLogger("Classifier"),
	}
}

// Store returns the store the classifier probes
func (c *Classifier) Store() assetfs.AssetStore {
	return c.store
}

// Classify maps path to exactly one [assetfs.Kind]. A successful open wins
// over any directory interpretation. Empty and nil listings are Invalid.
// Classify never fails: every store error folds into the result
func (c *Classifier) Classify(path string) assetfs.Kind {
	if c == nil || c.store == nil {
		return assetfs.Invalid
	}

	if rc, err := c.store.OpenForRead(path); err == nil {
		if rc != nil {
			// close error can't change the answer
			_ = rc.Close()
		}
		c.logger.Trace().Str("path", path).Msg("Opened as file")
		return assetfs.File
	} else {
		c.logger.Trace().Str("path", path).Err(err).Msg("Not openable, trying listing")
	}

	names, err := c.store.ListChildren(path)
	switch {
	case err != nil:
		c.logger.Trace().Str("path", path).Err(err).Msg("Not listable")
		return assetfs.Invalid
	case names == nil:
		// host returned no listing and no error
		c.logger.Debug().Str("path", path).Msg("Store returned nil listing")
		return assetfs.Invalid
	case len(names) == 0:
		c.logger.Trace().Str("path", path).Msg("Empty directory")
		return assetfs.Invalid
	}
	return assetfs.Directory
}

// Query returns the node metadata for path
func (c *Classifier) Query(path string) assetfs.Info {
	return c.Classify(path).Info()
}

// Classify classifies path against store without keeping a Classifier
func Classify(store assetfs.AssetStore, path string) assetfs.Kind {
	return New(store).Classify(path)
}
