package ir3

// ProducerTable maps scalar register ids to the instruction that last wrote
// them. Empty slots hold NoInstr.
type ProducerTable []InstrHandle

// NewProducerTable returns an empty table with n slots.
func NewProducerTable(n int) ProducerTable {
	t := make(ProducerTable, n)
	for i := range t {
		t[i] = NoInstr
	}
	return t
}

// Len returns the number of slots.
func (t ProducerTable) Len() int {
	return len(t)
}

// InRange reports whether n addresses a slot of t.
func (t ProducerTable) InRange(n uint32) bool {
	return int(n) < len(t)
}

// Get returns the producer of n, or NoInstr.
func (t ProducerTable) Get(n uint32) InstrHandle {
	if !t.InRange(n) {
		return NoInstr
	}
	return t[n]
}

// Has reports whether n has a producer.
func (t ProducerTable) Has(n uint32) bool {
	return t.Get(n) != NoInstr
}

// Set records h as the producer of n.
func (t ProducerTable) Set(n uint32, h InstrHandle) {
	t[n] = h
}

// Written returns the register ids that have a producer, in increasing order.
func (t ProducerTable) Written() []uint32 {
	var out []uint32
	for i, h := range t {
		if h != NoInstr {
			out = append(out, uint32(i))
		}
	}
	return out
}

// Block is one scope of the instruction graph. The outermost block's
// Temporaries and Inputs are the real TEMP and IN files; a nested block
// (one arm of a conditional) shadows its parent's Temporaries and Outputs
// and uses Inputs/OutputInputs to cache the meta:in nodes that import
// values from enclosing scopes.
type Block struct {
	Parent BlockHandle
	Depth  int

	Temporaries  ProducerTable
	Outputs      ProducerTable
	Inputs       ProducerTable
	OutputInputs ProducerTable

	// Instrs lists the instructions created in this block, in order.
	Instrs []InstrHandle
	// Exits are the values leaving this block at its join point, indexed by
	// the meta:out node number.
	Exits []InstrHandle
	// HWInputs are the block inputs seen by register allocation. For the
	// outermost block of a fragment shader these are r0.x and r0.y.
	HWInputs []InstrHandle

	// Closed blocks accept no further producer updates.
	Closed bool
}

// IsRoot reports whether b is the outermost block.
func (b *Block) IsRoot() bool {
	return b.Parent == NoBlock
}
