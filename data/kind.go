package data

// Kind tags every cell stored in the data arena (spec §3.3 "BasicData
// variants"). The zero value, Empty, is never written by a caller; it
// marks a slot that optimize has not yet reclaimed or a Store has
// not yet populated.
type Kind int

const (
	Empty Kind = iota
	UnitKind
	TrueKind
	FalseKind
	NumberKind
	CharKind
	ByteKind
	SymbolKind
	ExpressionKind
	ExternalKind
	CharListKind
	ByteListKind
	RangeKind
	PairKind
	PartialKind
	ListKind
	SliceKind
	LinkKind
	AssociativeItemKind
	InstructionKind
	InstructionWithDataKind
	JumpPointKind
	CustomKind
)

func (k Kind) String() string {
	names := [...]string{
		"Empty", "Unit", "True", "False", "Number", "Char", "Byte", "Symbol",
		"Expression", "External", "CharList", "ByteList", "Range", "Pair",
		"Partial", "List", "Slice", "Link", "AssociativeItem", "Instruction",
		"InstructionWithData", "JumpPoint", "Custom",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// IsLiteral reports whether k is one of the scalar Kinds (Unit, True,
// False, Number, Char, Byte, Symbol), which carry no references to
// other cells and can be compared and cloned without recursing. Other
// Kinds that hold no references (CharList, ByteList, Expression,
// External, ...) report false.
func (k Kind) IsLiteral() bool {
	switch k {
	case UnitKind, TrueKind, FalseKind, NumberKind, CharKind, ByteKind, SymbolKind:
		return true
	default:
		return false
	}
}
