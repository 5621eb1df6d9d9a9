// Package queue provides a reference sco.OperationQueue: an in-process
// registry of deferred operation records grouped per owner and field, with a
// Flush that replays each group strictly FIFO while fanning out across groups.
package queue
