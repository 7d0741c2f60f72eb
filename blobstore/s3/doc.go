// Package s3 provides a blobstore.Store implementation backed by Amazon S3.
//
// Distributed sketching workers that cannot reach each other directly use an
// S3 bucket as the collective exchange medium: each worker uploads its
// serialized summary and polls for its peers' uploads.
//
// # Basic Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("sketches/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	comm := allreduce.NewBlobCommunicator(store, rank, worldSize)
package s3
