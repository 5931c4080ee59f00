package stores

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"strings"

	"github.com/brettbedarf/assetfs"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// S3API is the subset of *minio.Client used by [S3Store]
type S3API interface {
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

var _ S3API = (*minio.Client)(nil)

// S3Store serves assets from an S3-compatible bucket. Keys are the asset
// path under an optional prefix; "directories" are the implicit key
// prefixes, so an S3 directory is never empty
type S3Store struct {
	client S3API
	bucket string
	prefix string // no leading or trailing slash
}

func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Store) key(p string) string {
	switch {
	case s.prefix == "":
		return p
	case p == "":
		return s.prefix
	default:
		return s.prefix + "/" + p
	}
}

// translateS3Err maps S3 absence codes onto assetfs.ErrNotFound
func translateS3Err(err error, op, p string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return errors.Wrapf(assetfs.ErrNotFound, "%s %q", op, p)
	}
	return errors.Wrapf(err, "%s %q", op, p)
}

func (s *S3Store) OpenForRead(p string) (io.ReadCloser, error) {
	key := s.key(p)
	if key == "" || strings.HasSuffix(key, "/") {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "open %q", p)
	}
	ctx := context.Background()
	// GetObject is lazy, so stat first to surface absence here
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, translateS3Err(err, "open", p)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateS3Err(err, "open", p)
	}
	return obj, nil
}

func (s *S3Store) ListChildren(p string) ([]string, error) {
	prefix := s.key(p)
	if prefix != "" {
		prefix += "/"
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, translateS3Err(obj.Err, "list", p)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		// the directory placeholder itself
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.Wrapf(assetfs.ErrNotFound, "list %q", p)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

var _ assetfs.AssetStore = (*S3Store)(nil)

// S3Source is the JSON definition of an [S3Store]
type S3Source struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

func (s *S3Source) validate() error {
	switch {
	case s.Bucket == "":
		return errors.New("s3 store requires a bucket")
	case s.Endpoint == "":
		return errors.New("s3 store requires an endpoint")
	case s.AccessKey == "" || s.SecretKey == "":
		return errors.New("s3 store requires access_key and secret_key")
	}
	return nil
}

// S3Provider builds [S3Store]s from "s3" definitions
type S3Provider struct{}

func (S3Provider) NewStore(raw []byte) (assetfs.AssetStore, error) {
	var src S3Source
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, errors.Wrap(err, "couldn't parse s3 store definition")
	}
	if err := src.validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(src.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(src.AccessKey, src.SecretKey, ""),
		Secure: src.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create s3 client")
	}
	return NewS3Store(client, src.Bucket, src.Prefix), nil
}
