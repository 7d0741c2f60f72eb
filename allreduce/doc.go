// Package allreduce provides Communicator implementations for the
// distributed summary exchange.
//
// BlobCommunicator coordinates workers through a shared blob store
// (local filesystem, MinIO, S3): each worker uploads its payload under a
// per-round key and polls until every rank's payload is visible. It needs no
// direct worker-to-worker connectivity, only a store all workers can reach.
//
// MemoryGroup wires a fixed number of in-process workers together and is
// intended for tests and single-binary simulations.
package allreduce
