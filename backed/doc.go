// Package backed implements the second-class object container wrappers: list,
// set, sorted set, queue, map, and sorted map facades bound to one field of
// one owning persistent object. Each wrapper mirrors backing store contents in
// an in-memory delegate and routes every mutation through one shared dispatch
// protocol: ensure-loaded, delegate update, store call or deferred record
// enqueue, dirty marking, cascade delete, relationship bookkeeping.
//
// A wrapper operates in exactly one of three modes fixed at construction:
// cached with a store, uncached pass-through, or pure in-memory (no store).
// The shape shims share one generic collection core and one generic map core;
// only the delegate type and the shape-specific operations differ.
//
// Wrappers perform no internal locking. The owning persistence context is
// expected to serialize access per owner, as it does for the rest of the
// owner's state.
package backed
