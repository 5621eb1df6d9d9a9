// Package inmemory provides in-process reference implementations of the
// backing store adapter interfaces, keyed by owner identity and safe for
// concurrent use. They are handy for prototyping and are what the wrapper
// tests run against.
package inmemory
