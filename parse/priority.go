package parse

import "github.com/cbarrick/exl/lex"

// role classifies how a token attaches to the tree being built (spec
// §4.3's "token role" table).
type role int

const (
	roleValue role = iota
	roleGroupStart
	roleGroupEnd
	roleNestedStart
	roleNestedEnd
	rolePrefixUnary
	roleSuffixUnary
	roleBinary
	roleSubexpression
	roleDrop
)

// Priority bands, lowest binds tightest. Values are spaced to leave
// room for future operators without renumbering existing ones (spec
// §4.3 "Priority table").
const (
	priAtom          = 10
	priGroup         = 20
	priAccess        = 30
	priRange         = 35
	priSuffixApply   = 40
	priPrefixUnary   = 50
	prisuffixUnary   = 60
	priAddition      = 100
	priEquality      = 140
	priPair          = 210
	priSpaceList     = 229
	priCommaList     = 230
	priApply         = 250
	priReapply       = 260
	priConditional   = 270
	priElseJump      = 280
	priSubexpression = 1000
)

// opInfo describes how one lexical TokenType behaves during parsing.
type opInfo struct {
	def      Definition
	role     role
	priority int
}

var tokenOps = map[lex.TokenType]opInfo{
	lex.Number:           {Number, roleValue, priAtom},
	lex.Identifier:       {Identifier, roleValue, priAtom},
	lex.PrefixIdentifier: {Identifier, roleValue, priAtom},
	lex.SuffixIdentifier: {Identifier, roleValue, priAtom},
	lex.InfixIdentifier:  {Identifier, roleValue, priAtom},
	lex.Symbol:           {Symbol, roleValue, priAtom},
	lex.CharList:         {Value, roleValue, priAtom},
	lex.ByteList:         {Value, roleValue, priAtom},

	lex.StartGroup:             {Group, roleGroupStart, priGroup},
	lex.EndGroup:               {Group, roleGroupEnd, priGroup},
	lex.StartNestedExpression:  {NestedExpression, roleNestedStart, priGroup},
	lex.EndNestedExpression:    {NestedExpression, roleNestedEnd, priGroup},

	lex.Period:               {Access, roleBinary, priAccess},
	lex.Range:                {Range, roleBinary, priRange},
	lex.AccessLeftInternal:   {AccessLeftInternal, roleSuffixUnary, priAccess},
	lex.AccessRightInternal:  {AccessRightInternal, roleSuffixUnary, priAccess},
	lex.AccessLengthInternal: {AccessLengthInternal, roleSuffixUnary, priAccess},

	lex.AbsoluteValueOp: {AbsoluteValue, rolePrefixUnary, priPrefixUnary},
	lex.EmptyApplyOp:    {EmptyApply, rolePrefixUnary, priPrefixUnary},

	lex.Addition: {Addition, roleBinary, priAddition},
	lex.Equality: {Equality, roleBinary, priEquality},
	lex.Pair:     {Pair, roleBinary, priPair},
	lex.CommaSep: {CommaList, roleBinary, priCommaList},

	lex.ApplyOp:    {Apply, roleBinary, priApply},
	lex.ApplyToOp:  {ApplyTo, roleBinary, priApply},
	lex.ReapplyOp:  {Reapply, roleBinary, priReapply},

	lex.JumpIfTrue:  {JumpIfTrue, roleBinary, priConditional},
	lex.JumpIfFalse: {JumpIfFalse, roleBinary, priConditional},
	lex.ElseJumpOp:  {ElseJump, roleBinary, priElseJump},

	lex.ExpressionSeparator: {Subexpression, roleBinary, priSubexpression},
	lex.Subexpression:       {Subexpression, roleSubexpression, priSubexpression},

	lex.Whitespace:      {Drop, roleDrop, 0},
	lex.Annotation:      {Drop, roleDrop, 0},
	lex.LineAnnotation:  {Drop, roleDrop, 0},
	lex.EOF:              {Drop, roleDrop, 0},
}

func priorityOf(d Definition) int {
	switch d {
	case Number, Identifier, Property, Symbol, Unit, Value, True, False:
		return priAtom
	case Group, NestedExpression:
		return priGroup
	case Access, AccessLeftInternal, AccessRightInternal, AccessLengthInternal:
		return priAccess
	case Range:
		return priRange
	case AbsoluteValue, EmptyApply:
		return priPrefixUnary
	case Addition:
		return priAddition
	case Equality:
		return priEquality
	case Pair:
		return priPair
	case List:
		return priSpaceList
	case CommaList:
		return priCommaList
	case Apply, ApplyTo:
		return priApply
	case Reapply:
		return priReapply
	case JumpIfTrue, JumpIfFalse:
		return priConditional
	case ElseJump:
		return priElseJump
	case Subexpression:
		return priSubexpression
	default:
		return priAtom
	}
}
