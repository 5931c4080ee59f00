// Package inspect reports on asset paths: their classification plus, for
// files, the content type sniffed from the file header
package inspect

import (
	"context"
	"io"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/classifier"
	"github.com/brettbedarf/assetfs/internal/util"
	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"
)

// headerSize is how much of a file is read for type detection
const headerSize = 8192

// Report describes a single asset path
type Report struct {
	Path      string       `json:"path" yaml:"path"`
	Kind      assetfs.Kind `json:"kind" yaml:"kind"`
	MIME      string       `json:"mime,omitempty" yaml:"mime,omitempty"`
	Extension string       `json:"extension,omitempty" yaml:"extension,omitempty"`
}

// Describe classifies path and sniffs the content type of files. Sniffing
// failures leave MIME empty; the classification still stands
func Describe(c *classifier.Classifier, path string) Report {
	r := Report{Path: path, Kind: c.Classify(path)}
	if r.Kind != assetfs.File {
		return r
	}

	logger := util.GetLogger("Inspect")
	rc, err := c.Store().OpenForRead(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("File stopped opening after classification")
		return r
	}
	defer rc.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(rc, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		logger.Debug().Err(err).Str("path", path).Msg("Couldn't read file header")
		return r
	}
	kind, err := filetype.Match(header[:n])
	if err != nil || kind == filetype.Unknown {
		return r
	}
	r.MIME = kind.MIME.Value
	r.Extension = kind.Extension
	return r
}

// DescribeAll runs Describe over paths with at most concurrency in flight.
// Reports come back in input order. A cancelled ctx stops scheduling and its
// error is returned
func DescribeAll(ctx context.Context, c *classifier.Classifier, paths []string, concurrency int) ([]Report, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	reports := make([]Report, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = Describe(c, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}
