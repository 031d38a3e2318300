// Package sweep runs a hologram simulation over a range of one parameter in
// a background worker.
//
// An Orchestrator prepares the sweep from a ParameterSource, evaluates one
// value at a time and hands each step to the consumer through a bounded
// queue. Consumers poll Snapshot, which never blocks: when the worker holds
// the data lock the snapshot reports "unavailable" and the caller retries.
//
// Results are collected in a Result, whose JSON form is the exchange format
// used by the archive.
package sweep
