// Package dep defines the identity vocabulary of the dependency graph:
// fingerprints, dependency kinds, nodes, and the dense index handles used
// to address graph storage.
//
// A Node is a (Kind, Fingerprint) pair. Two nodes with equal kind and
// fingerprint are the same node - identity is structural, never pointer
// based. Fingerprints are opaque 128-bit content hashes: equal iff the
// hashed content is bit-identical.
//
// Index handles come in two flavors that must never be mixed:
//
//	NodeIndex      - addresses the graph being built this session
//	PrevNodeIndex  - addresses the immutable previous-session graph
//
// Both are dense u32 handles assigned monotonically at intern time.
package dep
