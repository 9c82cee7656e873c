package parse

import (
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/cbarrick/exl/lex"
)

// frame is the per-scope parsing state (spec §4.3 "Groups"): entering
// a Group or NestedExpression starts a fresh frame so operator
// precedence climbing never reaches past the enclosing bracket: the
// bracket's content is parsed as if it were its own top-level input.
type frame struct {
	root      int
	tip       int
	anchorIdx int
	anchorDef Definition
}

// Parser builds a Result by consuming tokens one at a time and
// maintaining the flat node vector plus a stack of in-progress
// right-spines, one per open group (spec §4.3 "Tree construction").
type Parser struct {
	nodes         []Node
	frames        []frame
	groupOpen     map[int]bool
	awaitingRight int
	err           error
	log           hclog.Logger
}

// Option configures a Parser the same way lex.Option configures a
// Lexer.
type Option func(*Parser)

// WithLogger attaches a structured logger for diagnostic tracing.
func WithLogger(l hclog.Logger) Option {
	return func(p *Parser) { p.log = l }
}

func newParser(opts ...Option) *Parser {
	p := &Parser{
		groupOpen:     make(map[int]bool),
		awaitingRight: noIndex,
		log:           hclog.NewNullLogger(),
	}
	p.frames = []frame{{root: noIndex, tip: noIndex, anchorIdx: noIndex}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse drains every token from l and returns the assembled Result.
// Parsing continues past recoverable structural mistakes (an operator
// missing its left operand, an unmatched closer) so that a single
// pass can surface every problem at once; the returned error, if any,
// is a *github.com/hashicorp/go-multierror.Error wrapping one
// *ParsingError per mistake. A lexing error stops parsing at once and
// is returned as is, with an empty Result whose Root is NoIndex.
func Parse(l *lex.Lexer, opts ...Option) (Result, error) {
	p := newParser(opts...)
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{Root: noIndex}, err
		}
		p.feed(tok)
	}
	p.finish()
	if len(p.frames) > 0 {
		root := p.frames[0].root
		return Result{Root: root, Nodes: p.nodes}, p.err
	}
	return Result{Root: noIndex, Nodes: p.nodes}, p.err
}

func (p *Parser) top() *frame {
	return &p.frames[len(p.frames)-1]
}

func (p *Parser) push(n Node) int {
	p.nodes = append(p.nodes, n)
	return len(p.nodes) - 1
}

func (p *Parser) recordErr(e *ParsingError) {
	p.err = appendParsingError(p.err, e)
}

func (p *Parser) feed(tok lex.Token) {
	op, known := tokenOps[tok.Type]
	if !known {
		p.recordErr(newParsingError(tok, "unexpected token %v", tok.Type))
		return
	}
	p.log.Trace("parse token", "token", tok, "role", op.role, "def", op.def)

	switch op.role {
	case roleDrop:
		return
	case roleValue:
		p.attachValue(tok, op.def)
	case roleGroupStart, roleNestedStart:
		p.attachGroupStart(tok, op.def)
	case roleGroupEnd, roleNestedEnd:
		p.attachGroupEnd(tok, op.def)
	case rolePrefixUnary:
		p.attachPrefixUnary(tok, op.def, op.priority)
	case roleSuffixUnary:
		p.attachSuffixUnary(tok, op.def, op.priority)
	case roleBinary:
		p.attachBinary(tok, op.def, op.priority)
	case roleSubexpression:
		p.attachSubexpression(tok, op.def, op.priority)
	}
}

func (p *Parser) finish() {
	if p.awaitingRight != noIndex {
		n := p.nodes[p.awaitingRight]
		p.recordErr(newParsingError(n.Token, "%v is missing its right operand", n.Definition))
		p.awaitingRight = noIndex
	}
	for len(p.frames) > 1 {
		f := p.frames[len(p.frames)-1]
		anchor := p.nodes[f.anchorIdx]
		p.recordErr(newParsingError(anchor.Token, "%v is never closed", f.anchorDef))
		p.closeFrame()
	}
}

// attachAsNext places a freshly pushed node (idx) into the tree at
// the current attachment point: filling a pending operator's right
// operand, or else becoming the first node of the current frame.
func (p *Parser) attachAsNext(idx int) {
	f := p.top()
	if p.awaitingRight != noIndex {
		parent := p.awaitingRight
		p.nodes[parent].Right = idx
		p.nodes[idx].Parent = parent
		p.maybePromoteProperty(parent, idx)
		p.awaitingRight = noIndex
		f.tip = idx
		return
	}
	if f.tip == noIndex {
		f.root = idx
		f.tip = idx
		return
	}
	// A value arrived adjacent to another value with no separating
	// whitespace and no pending operand slot; this should only be
	// reachable through malformed input the lexer otherwise prevents.
	p.recordErr(newParsingError(p.nodes[idx].Token, "unexpected value with nothing to attach to"))
	f.tip = idx
}

func (p *Parser) maybePromoteProperty(parentIdx, childIdx int) {
	if p.nodes[parentIdx].Definition == Access && p.nodes[childIdx].Definition == Identifier {
		p.nodes[childIdx].Definition = Property
	}
}

func (p *Parser) listTriggers(idx int) bool {
	n := p.nodes[idx]
	if isValueLike(n.Definition) {
		return true
	}
	if isGroupLike(n.Definition) {
		return !p.groupOpen[idx]
	}
	return false
}

// climbAttach is the generic right-spine insertion used by every
// binary, suffix-unary, and implicit-list attachment (spec §4.3
// "Priority climbing"): it walks up from the current frame's tip
// while ancestors bind no looser than priority, then splices the new
// node in above the point where climbing stopped.
func (p *Parser) climbAttach(tok lex.Token, def Definition, priority int, expectsRight bool) int {
	f := p.top()
	if f.tip == noIndex {
		p.recordErr(newParsingError(tok, "%v has no left operand", def))
		return noIndex
	}
	cur := f.tip
	for cur != f.root {
		parent := p.nodes[cur].Parent
		if parent == noIndex {
			break
		}
		if priorityOf(p.nodes[parent].Definition) > priority {
			break
		}
		cur = parent
	}
	newIdx := p.push(newNode(def, tok))
	p.nodes[newIdx].Left = cur
	oldParent := p.nodes[cur].Parent
	p.nodes[cur].Parent = newIdx
	if oldParent == noIndex {
		f.root = newIdx
	} else {
		p.nodes[oldParent].Right = newIdx
		p.nodes[newIdx].Parent = oldParent
	}
	f.tip = newIdx
	if expectsRight {
		p.awaitingRight = newIdx
	}
	return newIdx
}

func (p *Parser) maybeSynthesizeList(tok lex.Token) {
	f := p.top()
	if p.awaitingRight == noIndex && f.tip != noIndex && p.listTriggers(f.tip) {
		p.climbAttach(tok, List, priSpaceList, true)
	}
}

// literalKeywords reclassifies the three reserved identifier spellings
// into their own Definitions (spec §4.3 "Reserved words"): the lexer
// has no dedicated token types for them, so the parser is where they
// are recognized.
var literalKeywords = map[string]Definition{
	"True":  True,
	"False": False,
	"Unit":  Unit,
}

func (p *Parser) attachValue(tok lex.Token, def Definition) {
	if def == Identifier {
		if lit, ok := literalKeywords[tok.Text]; ok {
			def = lit
		}
	}
	p.maybeSynthesizeList(tok)
	idx := p.push(newNode(def, tok))
	p.attachAsNext(idx)
}

func (p *Parser) attachPrefixUnary(tok lex.Token, def Definition, priority int) {
	p.maybeSynthesizeList(tok)
	idx := p.push(newNode(def, tok))
	p.attachAsNext(idx)
	p.awaitingRight = idx
}

func (p *Parser) attachSuffixUnary(tok lex.Token, def Definition, priority int) {
	f := p.top()
	if f.tip == noIndex {
		p.recordErr(newParsingError(tok, "%v has no operand", def))
		return
	}
	p.climbAttach(tok, def, priority, false)
}

func (p *Parser) attachBinary(tok lex.Token, def Definition, priority int) {
	f := p.top()
	if f.tip == noIndex {
		p.recordErr(newParsingError(tok, "%v has no left operand", def))
		return
	}
	p.climbAttach(tok, def, priority, true)
}

func (p *Parser) attachSubexpression(tok lex.Token, def Definition, priority int) {
	f := p.top()
	if f.tip == noIndex {
		// A paragraph break before any content separates nothing.
		return
	}
	p.climbAttach(tok, def, priority, true)
}

func (p *Parser) attachGroupStart(tok lex.Token, def Definition) {
	p.maybeSynthesizeList(tok)
	anchorIdx := p.push(newNode(def, tok))
	p.attachAsNext(anchorIdx)
	p.groupOpen[anchorIdx] = true
	p.frames = append(p.frames, frame{root: noIndex, tip: noIndex, anchorIdx: anchorIdx, anchorDef: def})
}

func (p *Parser) attachGroupEnd(tok lex.Token, def Definition) {
	if len(p.frames) <= 1 {
		p.recordErr(newParsingError(tok, "unmatched closer"))
		return
	}
	inner := p.frames[len(p.frames)-1]
	if inner.anchorDef != def {
		p.recordErr(newParsingError(tok, "mismatched closer for %v", inner.anchorDef))
	}
	p.closeFrame()
}

// closeFrame pops the innermost frame, wiring its completed subtree
// (if any) under the anchor Group/NestedExpression node that opened
// it, and restores the outer frame's tip to the anchor.
func (p *Parser) closeFrame() {
	inner := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	anchorIdx := inner.anchorIdx
	p.groupOpen[anchorIdx] = false
	if inner.root != noIndex {
		p.nodes[anchorIdx].Left = inner.root
		p.nodes[inner.root].Parent = anchorIdx
	}
	if len(p.frames) > 0 {
		p.top().tip = anchorIdx
	}
}
