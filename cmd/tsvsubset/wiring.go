package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hupe1980/tsvsubset/blobstore"
	"github.com/hupe1980/tsvsubset/blobstore/minio"
	"github.com/hupe1980/tsvsubset/blobstore/s3"
	"github.com/hupe1980/tsvsubset/seed"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// openStore resolves the --input location.
func openStore(ctx context.Context, c *inputConfig) (blobstore.BlobStore, error) {
	switch {
	case strings.HasPrefix(c.Input, "s3://"):
		u, err := url.Parse(c.Input)
		if err != nil {
			return nil, fmt.Errorf("invalid input %q: %w", c.Input, err)
		}
		opts := []s3.Option{s3.WithPrefix(strings.TrimPrefix(u.Path, "/"))}
		if c.S3Region != "" {
			opts = append(opts, s3.WithRegion(c.S3Region))
		}
		if c.S3Endpoint != "" || c.S3PathStyle {
			opts = append(opts, s3.WithEndpoint(c.S3Endpoint, c.S3PathStyle))
		}
		if c.S3Staging != "" {
			opts = append(opts, s3.WithStaging(c.S3Staging))
		}
		return s3.New(ctx, u.Host, opts...)

	case strings.HasPrefix(c.Input, "minio://"):
		u, err := url.Parse(c.Input)
		if err != nil {
			return nil, fmt.Errorf("invalid input %q: %w", c.Input, err)
		}
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if bucket == "" {
			return nil, fmt.Errorf("invalid input %q: missing bucket", c.Input)
		}
		return minio.Dial(u.Host, c.MinioAccessKey, c.MinioSecretKey, c.MinioSecure, bucket, prefix)

	default:
		return blobstore.NewLocalStore(c.Input), nil
	}
}

// openSeed resolves the single configured seed source. The returned close
// function releases database handles.
func openSeed(ctx context.Context, c *runConfig) (seed.Source, func(), error) {
	noop := func() {}

	var set []string
	if len(c.Seeds) > 0 {
		set = append(set, "--seed")
	}
	if c.SeedFile != "" {
		set = append(set, "--seed-file")
	}
	if c.SeedQuery != "" {
		set = append(set, "--seed-query")
	}
	if c.SeedDynamoTable != "" {
		set = append(set, "--seed-dynamodb-table")
	}
	switch len(set) {
	case 0:
		return nil, noop, errors.New("no seed source: set one of --seed, --seed-file, --seed-query or --seed-dynamodb-table")
	case 1:
	default:
		return nil, noop, fmt.Errorf("conflicting seed sources: %s", strings.Join(set, ", "))
	}

	switch {
	case len(c.Seeds) > 0:
		return seed.Static(c.Seeds), noop, nil

	case c.SeedFile != "":
		store := blobstore.NewLocalStore(filepath.Dir(c.SeedFile))
		return &seed.File{Store: store, Name: filepath.Base(c.SeedFile)}, noop, nil

	case c.SeedQuery != "":
		driver, dsn := c.SeedDriver, c.SeedDSN
		if driver == "" {
			driver = c.SinkDriver
		}
		if dsn == "" {
			dsn = c.SinkDSN
		}
		db, err := openDB(driver, dsn)
		if err != nil {
			return nil, noop, err
		}
		return &seed.SQL{DB: db, Query: c.SeedQuery}, func() { _ = db.Close() }, nil

	default:
		var loadOpts []func(*config.LoadOptions) error
		if c.S3Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(c.S3Region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, noop, fmt.Errorf("load aws config: %w", err)
		}
		return &seed.DynamoDB{
			Client:    dynamodb.NewFromConfig(cfg),
			Table:     c.SeedDynamoTable,
			Attribute: c.SeedDynamoAttribute,
		}, noop, nil
	}
}

// openDB opens a database through one of the registered drivers.
func openDB(driver, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s: empty data source name", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
