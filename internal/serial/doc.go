// Package serial implements the frozen, on-disk form of a dependency
// graph: an immutable node table plus a compressed-sparse-row edge list.
//
// A serialized graph represents one finished session. It is written once
// at session end, loaded read-only at the start of the next session, and
// never mutated in place. Because it is immutable it may be shared across
// worker threads without locking.
//
// BINARY LAYOUT (all integers little-endian):
//
//	magic               4 bytes  "VDG1"
//	format_version      u32
//	node_count          u32
//	nodes               node_count x (kind u16, key fp 16B, result fp 16B)
//	edge_list_indices   node_count x (start u32, end u32)
//	edge_data_len       u32
//	edge_list_data      edge_data_len x u32
//
// Decoding is defensive: any structural inconsistency (bad magic, wrong
// version, truncation, out-of-range edge target, malformed CSR range)
// yields a FormatError. Callers treat every FormatError as "no previous
// graph" - incremental reuse is an optimization, never a correctness
// requirement - so a corrupt cache degrades to a full rebuild.
package serial
