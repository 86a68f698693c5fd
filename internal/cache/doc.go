// Package cache manages the on-disk incremental cache for one crate:
// a directory holding the serialized dependency graph of the last
// finished session plus a SQLite store of cached query results.
//
// Layout:
//
//	<dir>/dep-graph.bin   serialized graph (see internal/serial)
//	<dir>/results.db      cached result payloads + session metadata
//
// LOADING POLICY: the cache is an optimization, never a correctness
// requirement. A missing, truncated, corrupt, or version-mismatched
// graph blob loads as "no previous session" and the build proceeds
// non-incrementally. Only real I/O failures (permissions, disk errors)
// surface as errors.
//
// SAVING POLICY: the graph blob is written to a temp file and renamed
// into place, so a crash mid-save leaves the old graph intact.
package cache
