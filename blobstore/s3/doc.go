// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "imdb-dumps",
//	    s3.WithPrefix("2024-06-01/"),
//	    s3.WithRegion("us-east-1"),
//	    s3.WithStaging(os.TempDir()),
//	)
//
// # Features
//
//   - Streaming reads straight from the GetObject body
//   - Optional staging through the concurrent multipart downloader
//   - Configurable prefix for dated dump layouts
package s3
