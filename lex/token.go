package lex

import "fmt"

// A TokenType classifies a Token. The set is closed: operators plus
// the literal/structural kinds named in spec §3.1.
type TokenType int

const (
	// Operators occupy the low range; each distinct operator lexeme
	// registered in the trie gets its own TokenType so the parser can
	// look up priority/role without re-parsing the text.
	Unknown TokenType = iota

	Period
	Range       // ".."
	AccessLeftInternal
	AccessRightInternal
	AccessLengthInternal
	Addition
	Equality
	Pair
	CommaSep
	ApplyOp
	ApplyToOp
	ReapplyOp
	JumpIfTrue
	JumpIfFalse
	ElseJumpOp
	AbsoluteValueOp
	EmptyApplyOp
	ExpressionSeparator

	// Value-shaped tokens.
	Number
	Identifier
	PrefixIdentifier
	SuffixIdentifier
	InfixIdentifier
	Symbol
	CharList
	ByteList

	// Structural / whitespace.
	Whitespace
	Subexpression
	Annotation
	LineAnnotation

	StartGroup
	EndGroup
	StartNestedExpression
	EndNestedExpression

	// Sentinel emitted once at end of input.
	EOF
)

func (t TokenType) String() string {
	switch t {
	case Period:
		return "Period"
	case Range:
		return "Range"
	case AccessLeftInternal:
		return "AccessLeftInternal"
	case AccessRightInternal:
		return "AccessRightInternal"
	case AccessLengthInternal:
		return "AccessLengthInternal"
	case Addition:
		return "Addition"
	case Equality:
		return "Equality"
	case Pair:
		return "Pair"
	case CommaSep:
		return "CommaSep"
	case ApplyOp:
		return "Apply"
	case ApplyToOp:
		return "ApplyTo"
	case ReapplyOp:
		return "Reapply"
	case JumpIfTrue:
		return "JumpIfTrue"
	case JumpIfFalse:
		return "JumpIfFalse"
	case ElseJumpOp:
		return "ElseJump"
	case AbsoluteValueOp:
		return "AbsoluteValue"
	case EmptyApplyOp:
		return "EmptyApply"
	case ExpressionSeparator:
		return "ExpressionSeparator"
	case Number:
		return "Number"
	case Identifier:
		return "Identifier"
	case PrefixIdentifier:
		return "PrefixIdentifier"
	case SuffixIdentifier:
		return "SuffixIdentifier"
	case InfixIdentifier:
		return "InfixIdentifier"
	case Symbol:
		return "Symbol"
	case CharList:
		return "CharList"
	case ByteList:
		return "ByteList"
	case Whitespace:
		return "Whitespace"
	case Subexpression:
		return "Subexpression"
	case Annotation:
		return "Annotation"
	case LineAnnotation:
		return "LineAnnotation"
	case StartGroup:
		return "StartGroup"
	case EndGroup:
		return "EndGroup"
	case StartNestedExpression:
		return "StartNestedExpression"
	case EndNestedExpression:
		return "EndNestedExpression"
	case EOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// A Token carries its literal text, its type, and the zero-based
// row/column of its first character (spec §3.1). Normalized holds the
// Unicode-normalized form of Text for the token kinds where normal
// form matters for later equality (CharList, ByteList, and identifier
// text); for every other kind it is equal to Text.
type Token struct {
	Text       string
	Normalized string
	Type       TokenType
	Row        int
	Column     int
}

func (tok Token) String() string {
	return fmt.Sprintf("%v(%q)@%d:%d", tok.Type, tok.Text, tok.Row, tok.Column)
}
