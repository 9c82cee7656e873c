package data

// Ref addresses a cell within a Store's data block. NoRef marks an
// absent reference (spec §3.3 "cells reference each other by
// position, never by pointer").
type Ref int

const NoRef Ref = -1

// Cell is the tagged union backing every BasicData value (spec §3.3).
// Only the fields relevant to Kind are meaningful; the rest are zero.
// Keeping one concrete struct type, rather than an interface per
// Kind, is what lets Store hold cells in one contiguous slice and
// reallocate/compact the block in place.
type Cell struct {
	Kind Kind

	Number      float64 // NumberKind
	NumberIsInt bool    // NumberKind: true when Number was produced from an integer literal/operation with no fractional part
	Char        rune    // CharKind
	Byte        byte    // ByteKind

	SymbolHash uint64 // SymbolKind, also the key used by the symbol table
	Text       string // SymbolKind, CharListKind (inline text), ExpressionKind name
	Bytes      []byte // ByteListKind (inline bytes)

	External any // ExternalKind: an opaque host value outside the arena

	Left  Ref // PairKind.Left, RangeKind.Start, LinkKind.Value, AssociativeItemKind.Key, PartialKind.Base
	Right Ref // PairKind.Right, RangeKind.End, LinkKind.Next, AssociativeItemKind.Value, PartialKind.Value(accum)

	// RangeKind flags (spec §3.3 "range flags (start-exclusive,
	// end-exclusive, has-step)"). RangeStep is NoRef until
	// apply(Range, Number) sets one.
	RangeStep      Ref
	StartExclusive bool
	EndExclusive   bool

	Items []Ref // ListKind (ordered element refs), CharListKind/ByteListKind (rune/byte sequence as refs when not inlined)

	SliceOf   Ref // SliceKind: the list/range being sliced
	SliceFrom int
	SliceTo   int
	// SliceFromOpen/SliceToOpen mirror the backing Range's open
	// endpoints; SliceStep/SliceHasStep mirror its step, both needed to
	// compute :length (spec §4.5.3 "Slice: :length from the backing
	// range, accounting for a step, clamped to the source's length
	// when the range is open").
	SliceFromOpen bool
	SliceToOpen   bool
	SliceStep     float64
	SliceHasStep  bool

	Instruction     uint32 // InstructionKind, InstructionWithDataKind op code
	InstructionData Ref    // InstructionWithDataKind operand
	JumpTarget      int    // JumpPointKind: absolute instruction index

	CustomTypeID int // CustomKind: index into Store.companions
	CustomValue  any // CustomKind: the user value itself
}

func literalCell(k Kind) Cell {
	return Cell{Kind: k, Left: NoRef, Right: NoRef, SliceOf: NoRef}
}
