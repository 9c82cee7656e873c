// Package parse turns a token sequence into the flat, index-addressed
// parse tree described in spec §3.2/§4.3: nodes never own each other
// through pointers, only through positions in a single vector, so the
// tree can express the deep right-spines and eventual cyclic-adjacent
// links the runtime builds on top of it.
package parse

import "github.com/cbarrick/exl/lex"

// Definition is a parser-level node kind (spec §4.3).
type Definition int

const (
	// Value-like.
	Number Definition = iota
	Identifier
	Property
	Symbol
	Unit
	Value
	True
	False

	// Group-like.
	Group
	NestedExpression

	// Conditionals.
	JumpIfTrue
	JumpIfFalse
	ElseJump

	// Everything else.
	Addition
	Equality
	Range
	Access
	AccessLeftInternal
	AccessRightInternal
	AccessLengthInternal
	AbsoluteValue
	EmptyApply
	Pair
	List
	CommaList
	Drop
	Subexpression
	Apply
	ApplyTo
	Reapply
)

func (d Definition) String() string {
	names := [...]string{
		"Number", "Identifier", "Property", "Symbol", "Unit", "Value", "True", "False",
		"Group", "NestedExpression",
		"JumpIfTrue", "JumpIfFalse", "ElseJump",
		"Addition", "Equality", "Range", "Access", "AccessLeftInternal", "AccessRightInternal",
		"AccessLengthInternal", "AbsoluteValue", "EmptyApply", "Pair", "List", "CommaList",
		"Drop", "Subexpression", "Apply", "ApplyTo", "Reapply",
	}
	if int(d) < 0 || int(d) >= len(names) {
		return "Unknown"
	}
	return names[d]
}

func isValueLike(d Definition) bool {
	switch d {
	case Number, Identifier, Property, Symbol, Unit, Value, True, False:
		return true
	default:
		return false
	}
}

func isGroupLike(d Definition) bool {
	return d == Group || d == NestedExpression
}

// Node is one element of the flat parse tree (spec §3.2). Parent,
// Left, and Right are -1 when absent; drops (whitespace when not
// list-forming, annotations, and group closers) are never stored, so
// indices never refer to them.
type Node struct {
	Definition Definition
	Parent     int
	Left       int
	Right      int
	Token      lex.Token
}

// NoIndex marks an absent Parent/Left/Right reference, the same way
// data.NoRef marks an absent arena reference.
const NoIndex = -1

const noIndex = NoIndex

func newNode(def Definition, tok lex.Token) Node {
	return Node{Definition: def, Parent: noIndex, Left: noIndex, Right: noIndex, Token: tok}
}

// Result is the parser's output (spec §6 "Parser output"): the root
// index plus the flat node vector, stable across runs for identical
// input.
type Result struct {
	Root  int
	Nodes []Node
}
