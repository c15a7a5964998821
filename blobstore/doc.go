// Package blobstore provides read access to the dataset files of an import.
//
// BlobStore opens a named blob as a sequential stream. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped with sequential read-ahead
//   - MemoryStore: in-memory blobs for tests
//   - s3.Store: Amazon S3, streamed or staged to a temporary file
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	}
//
//	type Blob interface {
//	    io.ReadCloser
//	    Size() int64
//	}
package blobstore
