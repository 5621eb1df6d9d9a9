// Package sco defines the core interfaces, types, and helpers of the SCO
// container synchronization layer. A "second-class object" is a mutable
// container (list, set, sorted map, queue) living on a persistent object's
// field; the wrappers in subpackage backed keep an in-memory delegate and a
// datastore-facing backing store representation of the same container in
// sync, per call, with strict ordering, deferred-write batching, cascade
// delete, and bidirectional relationship bookkeeping.
//
// This package holds the shared vocabulary: field descriptors, the state
// manager contract consumed from the owning persistence context, backing
// store adapter interfaces per container shape, deferred operation records,
// and shared error codes. Concrete store adapters live in subpackages such
// as inmemory, redis, and cassandra, while the wrappers themselves live in
// backed. It is a foundational package that other components build upon.
package sco
