// Package store implements the in-memory image session registry.
//
// The Store maps opaque image identities to mutable pixel state across a
// sequence of annotation calls. Identities follow the form
// img_<timestamp>_<counter>; the counter is process-lifetime monotonic,
// so a deleted identity is never reassigned and a stale client reference
// can never silently address a newer image.
//
// # Ownership
//
// The registry exclusively owns all pixel buffers. Create and
// ReplacePixels clone their input; Get and Duplicate clone their output.
// An operation that fetches, draws, and stores back therefore never
// observes a buffer another operation is mutating.
//
// # Resource bounds
//
// The store enforces an image-count limit and a total-memory limit with
// least-recently-used eviction, and keeps a bounded per-image undo
// history of replaced buffers. Defaults come from MCP_MAX_IMAGES,
// MCP_MAX_MEMORY_MB, and MCP_UNDO_LEVELS.
//
// # Concurrency
//
// One mutex guards the whole registry: at most one mutation is in flight
// at a time, which is the ordering guarantee multi-step annotation
// workflows rely on. State is process-lifetime only and is discarded on
// exit.
package store
