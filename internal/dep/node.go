package dep

import "fmt"

// Node identifies one unit of dependency tracking: a kind plus the
// fingerprint of its query key. Node equality is structural - two nodes
// with equal (Kind, Hash) are the same node.
type Node struct {
	Kind Kind
	Hash Fingerprint
}

// NewNode builds the node for a parameterized kind from its key parts.
// Panics if the kind takes no parameters (use SingletonNode) or if no key
// is supplied - both are programming errors, not runtime conditions, and
// silently producing a wrong node would corrupt the graph.
func NewNode(kind Kind, keyParts ...string) Node {
	if !kind.HasParams() {
		panic(fmt.Sprintf("dep: NewNode(%s) called for parameterless kind", kind))
	}
	if len(keyParts) == 0 {
		panic(fmt.Sprintf("dep: NewNode(%s) requires a key", kind))
	}
	return Node{Kind: kind, Hash: HashKey(keyParts...)}
}

// SingletonNode builds the unique per-session node for a parameterless
// kind. Its hash is the zero sentinel. Panics if the kind is
// parameterized.
func SingletonNode(kind Kind) Node {
	if kind.HasParams() {
		panic(fmt.Sprintf("dep: SingletonNode(%s) called for parameterized kind", kind))
	}
	return Node{Kind: kind, Hash: ZeroFingerprint}
}

// String renders the node as Kind(hashprefix) for diagnostics.
func (n Node) String() string {
	if !n.Kind.HasParams() {
		return n.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", n.Kind, n.Hash.Short())
}

// NodeIndex is a dense handle into the current session's graph storage.
// Assigned monotonically at intern time, never reused within a session.
// Only the current graph allocates these; everyone else holds copies.
type NodeIndex uint32

// PrevNodeIndex is a dense handle into the previous session's immutable
// serialized graph. Never comparable with a NodeIndex from a different
// session without translation through node identity.
type PrevNodeIndex uint32

// InvalidNodeIndex is returned by lookups that found nothing.
const InvalidNodeIndex = NodeIndex(^uint32(0))
