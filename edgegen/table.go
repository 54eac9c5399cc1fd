// table.go — fixed-table Source for harnesses and backend equivalence checks.
package edgegen

// TableSource serves endpoints from a prebuilt table instead of a keyed
// hash. Used by the solve harness at reduced edge widths: planted graphs
// with known cycles exercise the trimming and search stages against an
// answer that is known by construction.
type TableSource struct {
	U, V     []uint32
	edgeBits uint32
}

// NewTableSource builds a table source over 2^edgeBits edges. The u/v
// tables must each hold exactly 2^edgeBits entries.
func NewTableSource(u, v []uint32, edgeBits uint32) *TableSource {
	if uint64(len(u)) != uint64(1)<<edgeBits || uint64(len(v)) != uint64(1)<<edgeBits {
		panic("edgegen: table length must equal 2^edgeBits")
	}
	return &TableSource{U: u, V: v, edgeBits: edgeBits}
}

// EdgeBits returns the graph width of the table.
func (t *TableSource) EdgeBits() uint32 { return t.edgeBits }

// Endpoints returns the tabled endpoints for edge.
func (t *TableSource) Endpoints(edge uint64) (uint32, uint32) {
	return t.U[edge], t.V[edge]
}
