package serial

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/roach88/verdant/internal/dep"
)

// magic identifies a verdant dep-graph blob.
var magic = [4]byte{'V', 'D', 'G', '1'}

const (
	nodeRecordSize = 2 + dep.FingerprintSize + dep.FingerprintSize
	edgePairSize   = 8
)

// Encode writes the graph in the binary layout documented in doc.go.
// The output is deterministic: node order is index order and edge order
// is the recorded first-touch order.
func (g *Graph) Encode(w io.Writer) error {
	buf := make([]byte, 0, 12+len(g.nodes)*(nodeRecordSize+edgePairSize)+4+len(g.edgeData)*4)

	buf = append(buf, magic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, dep.GraphFormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(g.nodes)))

	for _, nd := range g.nodes {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(nd.Node.Kind))
		buf = append(buf, nd.Node.Hash[:]...)
		buf = append(buf, nd.Fingerprint[:]...)
	}
	for _, idx := range g.edgeIndex {
		buf = binary.LittleEndian.AppendUint32(buf, idx[0])
		buf = binary.LittleEndian.AppendUint32(buf, idx[1])
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(g.edgeData)))
	for _, target := range g.edgeData {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(target))
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("encode dep-graph: %w", err)
	}
	return nil
}

// Decode parses a serialized graph, validating every structural invariant
// before construction. Returns a FormatError for anything unreadable.
func Decode(data []byte) (*Graph, error) {
	r := &reader{data: data}

	var gotMagic [4]byte
	if err := r.read(gotMagic[:], "magic"); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, formatErrorf(ErrCodeBadMagic, "not a dep-graph blob (magic %q)", gotMagic[:])
	}

	version, err := r.uint32("format version")
	if err != nil {
		return nil, err
	}
	if version != dep.GraphFormatVersion {
		return nil, formatErrorf(ErrCodeVersionMismatch,
			"graph written by format v%d, this engine reads v%d", version, dep.GraphFormatVersion)
	}

	nodeCount, err := r.uint32("node count")
	if err != nil {
		return nil, err
	}
	// The node table alone needs nodeRecordSize bytes per node; reject
	// counts the remaining bytes cannot possibly satisfy before allocating.
	if int64(nodeCount)*nodeRecordSize > int64(r.remaining()) {
		return nil, formatErrorf(ErrCodeTruncated,
			"node count %d exceeds remaining %d bytes", nodeCount, r.remaining())
	}

	nodes := make([]NodeData, nodeCount)
	for i := range nodes {
		kindTag, err := r.uint16("node kind")
		if err != nil {
			return nil, err
		}
		kind := dep.Kind(kindTag)
		if !kind.Valid() {
			return nil, formatErrorf(ErrCodeCorrupt, "node %d has invalid kind tag %d", i, kindTag)
		}
		nodes[i].Node.Kind = kind
		if err := r.read(nodes[i].Node.Hash[:], "node key fingerprint"); err != nil {
			return nil, err
		}
		if err := r.read(nodes[i].Fingerprint[:], "node result fingerprint"); err != nil {
			return nil, err
		}
	}

	edgeIndex := make([][2]uint32, nodeCount)
	for i := range edgeIndex {
		start, err := r.uint32("edge range start")
		if err != nil {
			return nil, err
		}
		end, err := r.uint32("edge range end")
		if err != nil {
			return nil, err
		}
		if start > end {
			return nil, formatErrorf(ErrCodeCorrupt, "node %d has inverted edge range [%d,%d)", i, start, end)
		}
		edgeIndex[i] = [2]uint32{start, end}
	}

	edgeLen, err := r.uint32("edge data length")
	if err != nil {
		return nil, err
	}
	if int64(edgeLen)*4 > int64(r.remaining()) {
		return nil, formatErrorf(ErrCodeTruncated,
			"edge data length %d exceeds remaining %d bytes", edgeLen, r.remaining())
	}

	edgeData := make([]dep.PrevNodeIndex, edgeLen)
	for i := range edgeData {
		target, err := r.uint32("edge target")
		if err != nil {
			return nil, err
		}
		if target >= nodeCount {
			return nil, formatErrorf(ErrCodeCorrupt,
				"edge target %d out of range (%d nodes)", target, nodeCount)
		}
		edgeData[i] = dep.PrevNodeIndex(target)
	}

	if r.remaining() != 0 {
		return nil, formatErrorf(ErrCodeCorrupt, "%d trailing bytes after graph", r.remaining())
	}

	// CSR ranges must stay inside the edge array.
	for i, idx := range edgeIndex {
		if idx[1] > edgeLen {
			return nil, formatErrorf(ErrCodeCorrupt,
				"node %d edge range [%d,%d) exceeds edge data length %d", i, idx[0], idx[1], edgeLen)
		}
	}

	g := &Graph{
		nodes:     nodes,
		edgeIndex: edgeIndex,
		edgeData:  edgeData,
		byNode:    make(map[dep.Node]dep.PrevNodeIndex, nodeCount),
	}
	for i, nd := range nodes {
		if _, dup := g.byNode[nd.Node]; dup {
			return nil, formatErrorf(ErrCodeCorrupt, "duplicate node %s in table", nd.Node)
		}
		g.byNode[nd.Node] = dep.PrevNodeIndex(i)
	}

	return g, nil
}

// reader is a bounds-checked cursor over the input bytes.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) read(dst []byte, what string) error {
	if r.remaining() < len(dst) {
		return formatErrorf(ErrCodeTruncated, "truncated reading %s at offset %d", what, r.off)
	}
	copy(dst, r.data[r.off:])
	r.off += len(dst)
	return nil
}

func (r *reader) uint16(what string) (uint16, error) {
	var b [2]byte
	if err := r.read(b[:], what); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *reader) uint32(what string) (uint32, error) {
	var b [4]byte
	if err := r.read(b[:], what); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
