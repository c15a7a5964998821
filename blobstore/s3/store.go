package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/tsvsubset/blobstore"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	prefix       string
	region       string
	endpoint     string
	usePathStyle bool
	stagingDir   string
	staging      bool
	partSize     int64
	concurrency  int
}

// WithPrefix sets the key prefix prepended to every blob name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion sets the AWS region used by New.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint sets a custom endpoint for S3-compatible services.
func WithEndpoint(endpoint string, usePathStyle bool) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.usePathStyle = usePathStyle
	}
}

// WithStaging downloads each object to a temporary file in dir before
// reading it. An empty dir uses os.TempDir.
func WithStaging(dir string) Option {
	return func(o *options) {
		o.staging = true
		o.stagingDir = dir
	}
}

// WithDownloadPartSize sets the part size of staged downloads.
func WithDownloadPartSize(n int64) Option {
	return func(o *options) { o.partSize = n }
}

// WithDownloadConcurrency sets the number of parallel part requests of
// staged downloads.
func WithDownloadConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client Client
	bucket string
	opts   options
}

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := options{}
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
		so.UsePathStyle = o.usePathStyle
	})

	return NewStore(client, bucket, optFns...), nil
}

// NewStore creates a new S3 blob store on top of an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	o := options{}
	for _, fn := range optFns {
		fn(&o)
	}
	return &Store{
		client: client,
		bucket: bucket,
		opts:   o,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.opts.prefix, name)
}

// Open opens an object for sequential reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	size, err := headObject(ctx, s.client, s.bucket, key)
	if err != nil {
		return nil, err
	}

	if s.opts.staging {
		return s.stage(ctx, key, size)
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &s3Blob{ReadCloser: resp.Body, size: size}, nil
}

// stage downloads key into a temporary file that is removed on Close.
func (s *Store) stage(ctx context.Context, key string, size int64) (blobstore.Blob, error) {
	f, err := os.CreateTemp(s.opts.stagingDir, "tsvsubset-*")
	if err != nil {
		return nil, err
	}

	downloader := manager.NewDownloader(s.client, func(d *manager.Downloader) {
		if s.opts.partSize > 0 {
			d.PartSize = s.opts.partSize
		}
		if s.opts.concurrency > 0 {
			d.Concurrency = s.opts.concurrency
		}
	})

	if _, err := downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, translateError(err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}

	return &stagedBlob{File: f, size: size}, nil
}

// s3Blob implements blobstore.Blob over a GetObject body.
type s3Blob struct {
	io.ReadCloser
	size int64
}

func (b *s3Blob) Size() int64 {
	return b.size
}

// stagedBlob implements blobstore.Blob over a downloaded temporary file.
type stagedBlob struct {
	*os.File
	size int64
}

func (b *stagedBlob) Size() int64 {
	return b.size
}

func (b *stagedBlob) Close() error {
	err := b.File.Close()
	if rerr := os.Remove(b.File.Name()); err == nil {
		err = rerr
	}
	return err
}
