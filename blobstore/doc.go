// Package blobstore provides the storage abstraction used to exchange
// serialized sketch summaries between distributed workers.
//
// Store is the interface for writing and reading immutable summary blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and same-process worker groups
//   - LocalStore: local filesystem with mmap reads (shared volumes, NFS)
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//
// # Custom Implementations
//
// Implement the Store interface to support custom backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error         // Atomic write
//	    Open(ctx, name) (Blob, error)      // Open for reading
//	    List(ctx, prefix) ([]string, error)
//	    Delete(ctx, name) error
//	}
package blobstore
