package lex

import (
	"io"
	"strings"
	"unicode"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/unicode/norm"
)

// Norm is the normal form applied to CharList, ByteList, and
// identifier-family token text before it is interned, so that visually
// identical source text always compares equal regardless of its
// underlying composed/decomposed encoding.
const Norm = norm.NFD

// needsNorm reports whether t's text should be Unicode-normalized.
func needsNorm(t TokenType) bool {
	switch t {
	case CharList, ByteList, Identifier, PrefixIdentifier, SuffixIdentifier, InfixIdentifier, Symbol:
		return true
	default:
		return false
	}
}

// lexingState is the LexingState named in spec §4.2.
type lexingState int

const (
	stateNoToken lexingState = iota
	stateOperator
	stateSpaces
	stateSubexpression
	stateNumber
	stateFloat
	stateIdentifier
	stateAnnotation
	stateLineAnnotation
	stateStartCharList
	stateStartByteList
	stateCharList
	stateByteList
)

const (
	charListQuote byte = '"'
	byteListQuote byte = '\''
	nullRune           = rune(0)
)

// Option configures a Lexer.
type Option func(*Lexer)

// WithLogger attaches a structured logger; token emission at trace
// level and fatal conditions are logged through it. The zero value is hclog.NewNullLogger().
func WithLogger(log hclog.Logger) Option {
	return func(l *Lexer) { l.log = log }
}

// WithOperators overrides the default operator table (spec §4.1).
func WithOperators(pairs []operatorEntry) Option {
	return func(l *Lexer) { l.trie = newOperatorTrie(pairs) }
}

// Lexer is the streaming, single-pass tokenizer described in spec
// §4.2. It is the authoritative lexer per spec §9's open question;
// the procedural variant is intentionally not implemented (see
// DESIGN.md).
//
// A Lexer consumes its source once; NextToken is not safe to call
// concurrently and does not block on I/O beyond the initial read.
type Lexer struct {
	runes []rune
	rows  []int
	cols  []int
	pos   int

	trie *operatorTrie
	log  hclog.Logger

	// per-token scratch state, mirroring spec §4.2's state machine.
	state      lexingState
	tentative  TokenType
	buf        strings.Builder
	tokStart   int // index into runes of the token's first rune
	canFloat   bool
	node       *operatorNode // current trie walk position while in stateOperator
	lastOpEnd  int           // rune index just past the longest terminal match seen so far, -1 if none
	lastOpType TokenType     // tentative type recorded at lastOpEnd
	quoteCount int           // opening quote run length for Start*List states
	closingRun int           // consecutive closing-quote count while inside a list literal
	sawFracDig bool          // whether Float state has consumed a fractional digit
	sawHSpace  bool          // current whitespace/subexpression run saw a space/tab
	sawNewline bool          // current whitespace/subexpression run saw a newline-class rune
	pending    *Token        // one-token lookahead buffer (see finalizeSubexpression)
	failed     error         // sticky error after a fatal condition
	done       bool          // EOF token already emitted
}

// New constructs a Lexer over the full contents of r.
//
// The source is decoded once into a rune buffer up front; this trades
// true incremental streaming for O(1) position lookups and rewinds,
// which the Float/Operator overlap (spec §4.2, §9) requires. Tokens
// are still produced one at a time and NextToken remains O(k) in the
// length of the returned token, per spec §4.2's contract.
func New(r io.Reader, opts ...Option) (*Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapError(0, 0, err, "lex: reading source")
	}
	return NewFromString(string(data), opts...), nil
}

// NewFromString constructs a Lexer directly over a string, the common
// case for embedding and for tests.
func NewFromString(src string, opts ...Option) *Lexer {
	l := &Lexer{
		trie:     defaultTrie(),
		log:      hclog.NewNullLogger(),
		canFloat: true,
	}
	row, col := 0, 0
	for _, r := range src {
		l.runes = append(l.runes, r)
		l.rows = append(l.rows, row)
		l.cols = append(l.cols, col)
		if isNewline(r) {
			row++
			col = 0
		} else {
			col++
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.Named("lex")
	return l
}

func isNewline(r rune) bool {
	// Form feed and carriage return are treated as newline variants
	// for subexpression detection, per spec §6.
	return r == '\n' || r == '\r' || r == '\f'
}

// NextToken returns the next token in the input, or an error (spec
// §4.2). After an error, further calls return the same error.
func (l *Lexer) NextToken() (Token, error) {
	if l.failed != nil {
		return Token{}, l.failed
	}
	if l.done {
		return Token{}, io.EOF
	}
	if l.pending != nil {
		t := *l.pending
		l.pending = nil
		l.log.Trace("lex: token", "token", t)
		return t, nil
	}

	l.resetScratch()

	for {
		r, ok := l.peekRune()
		if !ok {
			r = nullRune
		}

		tok, advance, finished, err := l.step(r, !ok)
		if err != nil {
			l.failed = err
			l.log.Warn("lex: fatal", "error", err)
			return Token{}, err
		}
		if advance && ok {
			l.pos++
		}
		if finished {
			if tok.Type == EOF {
				l.done = true
				return Token{}, io.EOF
			}
			l.log.Trace("lex: token", "token", tok)
			return tok, nil
		}
		if !ok && !finished {
			// sentinel fed and nothing finalized: unterminated state.
			err := l.unterminatedError()
			l.failed = err
			return Token{}, err
		}
	}
}

func (l *Lexer) resetScratch() {
	l.buf.Reset()
	l.tokStart = l.pos
	l.node = nil
	l.quoteCount = 0
	l.closingRun = 0
	l.sawFracDig = false
	l.sawHSpace = false
	l.sawNewline = false
	l.state = stateNoToken
}

func (l *Lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.runes) {
		return nullRune, false
	}
	return l.runes[l.pos], true
}

func (l *Lexer) posAt(idx int) (row, col int) {
	if idx >= len(l.rows) {
		if len(l.rows) == 0 {
			return 0, 0
		}
		last := len(l.rows) - 1
		row, col = l.rows[last], l.cols[last]
		for i := last; i >= l.tokStart && i < len(l.runes); i++ {
			if isNewline(l.runes[i]) {
				row++
				col = 0
			} else {
				col++
			}
		}
		return row, col
	}
	return l.rows[idx], l.cols[idx]
}

func (l *Lexer) startRowCol() (int, int) {
	return l.posAt(l.tokStart)
}

func (l *Lexer) text() string {
	return string(l.runes[l.tokStart:l.pos])
}

func (l *Lexer) makeToken(t TokenType) Token {
	row, col := l.startRowCol()
	text := l.text()
	return Token{Text: text, Normalized: normalizeText(t, text), Type: t, Row: row, Column: col}
}

// normalizeText applies Norm to text for the token kinds spec §4.1's
// identifier/literal equality depends on; every other kind is passed
// through unchanged.
func normalizeText(t TokenType, text string) string {
	if !needsNorm(t) {
		return text
	}
	return Norm.String(text)
}

func (l *Lexer) unterminatedError() *CompilerError {
	row, col := l.startRowCol()
	switch l.state {
	case stateStartCharList, stateCharList:
		return errUnterminated(row, col, "character list")
	case stateStartByteList, stateByteList:
		return errUnterminated(row, col, "byte list")
	default:
		return newError(row, col, "Unterminated token")
	}
}

// afterToken applies the can_float policy (spec §4.2) for whatever
// token type was just finalized.
func (l *Lexer) afterToken(t TokenType) {
	switch t {
	case Number, CharList, ByteList, Identifier, PrefixIdentifier,
		SuffixIdentifier, InfixIdentifier, Symbol, Period:
		l.canFloat = false
	default:
		l.canFloat = true
	}
}

// step advances the state machine by one rune (or the null sentinel
// when atEOF). It returns a finalized token when one is ready.
func (l *Lexer) step(r rune, atEOF bool) (tok Token, advance bool, finished bool, err error) {
	if l.state == stateNoToken {
		if atEOF {
			return l.makeToken(EOF), false, true, nil
		}
		return l.begin(r)
	}

	switch l.state {
	case stateOperator:
		return l.continueOperator(r, atEOF)
	case stateNumber:
		return l.continueNumber(r, atEOF)
	case stateFloat:
		return l.continueFloat(r, atEOF)
	case stateIdentifier:
		return l.continueIdentifier(r, atEOF)
	case stateSpaces:
		return l.continueSpaces(r, atEOF)
	case stateSubexpression:
		return l.continueSubexpression(r, atEOF)
	case stateAnnotation:
		return l.continueAnnotation(r, atEOF)
	case stateLineAnnotation:
		return l.continueLineAnnotation(r, atEOF)
	case stateStartCharList:
		return l.continueStartList(r, atEOF, CharList, charListQuote, stateCharList)
	case stateStartByteList:
		return l.continueStartList(r, atEOF, ByteList, byteListQuote, stateByteList)
	case stateCharList:
		return l.continueList(r, atEOF, CharList)
	case stateByteList:
		return l.continueList(r, atEOF, ByteList)
	default:
		panic("lex: unknown state")
	}
}

// begin classifies the first character of a new token (spec §4.2.1).
func (l *Lexer) begin(r rune) (Token, bool, bool, error) {
	switch {
	case r == rune(charListQuote):
		l.state = stateStartCharList
		l.quoteCount = 0
		return l.continueStartList(r, false, CharList, charListQuote, stateCharList)

	case r == rune(byteListQuote):
		l.state = stateStartByteList
		l.quoteCount = 0
		return l.continueStartList(r, false, ByteList, byteListQuote, stateByteList)

	case r == '@':
		l.state = stateAnnotation
		return Token{}, true, false, nil

	case unicode.IsSpace(r) && !isNewline(r):
		l.state = stateSpaces
		l.sawHSpace = true
		return Token{}, true, false, nil

	case isNewline(r):
		l.state = stateSubexpression
		l.sawNewline = true
		return Token{}, true, false, nil

	case unicode.IsDigit(r):
		l.state = stateNumber
		return Token{}, true, false, nil

	case r == '`':
		// A leading back-tick marks a backtick-quoted identifier used
		// in suffix position; a matching trailing back-tick promotes
		// it to infix (spec §4.2 Identifier).
		l.state = stateIdentifier
		l.tentative = SuffixIdentifier
		return Token{}, true, false, nil

	case isIdentStart(r):
		l.state = stateIdentifier
		l.tentative = Identifier
		return Token{}, true, false, nil

	default:
		l.state = stateOperator
		l.node = l.trie.root
		l.lastOpEnd = -1
		return l.continueOperator(r, false)
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == ':'
}

func isIdentContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ':'
}

// continueOperator implements spec §4.2's Operator continuation,
// including the `_ident` and `.N` float escapes.
func (l *Lexer) continueOperator(r rune, atEOF bool) (Token, bool, bool, error) {
	if !atEOF {
		next := l.node.child(r)
		if next != nil {
			l.node = next
			if next.has {
				l.tentative = next.typ
				l.lastOpEnd = l.pos + 1
				l.lastOpType = next.typ
			}
			return Token{}, true, false, nil
		}
	}

	text := l.text()

	// Escape (a): "_identifier" continuation.
	if strings.HasPrefix(text, "_") && !atEOF && isIdentContinue(r) {
		l.state = stateIdentifier
		l.tentative = Identifier
		return Token{}, true, false, nil
	}

	// Escape (b): ".N" float continuation.
	if text == "." && l.canFloat && !atEOF && unicode.IsDigit(r) {
		l.state = stateFloat
		l.sawFracDig = false
		return Token{}, true, false, nil
	}

	// Longest-match backtrack: the walk may have continued past the
	// last valid (terminal) lexeme into a dead end; rewind to it.
	if l.lastOpEnd < 0 {
		row, col := l.startRowCol()
		return Token{}, false, false, newError(row, col, "unrecognized operator %q", text)
	}
	l.pos = l.lastOpEnd
	t := l.makeToken(l.lastOpType)
	l.afterToken(l.lastOpType)
	return t, false, true, nil
}

func (l *Lexer) continueNumber(r rune, atEOF bool) (Token, bool, bool, error) {
	switch {
	case !atEOF && (unicode.IsDigit(r) || r == '_' || unicode.IsLetter(r)):
		return Token{}, true, false, nil
	case !atEOF && r == '.' && l.canFloat:
		l.state = stateFloat
		l.sawFracDig = false
		return Token{}, true, false, nil
	default:
		t := l.makeToken(Number)
		l.afterToken(Number)
		return t, false, true, nil
	}
}

func (l *Lexer) continueFloat(r rune, atEOF bool) (Token, bool, bool, error) {
	if !atEOF && r == '.' {
		// Spec §4.2 Float: a second '.' splits the accumulated text
		// off as Number and restarts lexing at the dot as an
		// Operator (".." Range when a third dot follows, else a
		// plain Period).
		if !l.sawFracDig {
			// "N." with no fractional digits: the whole decimal
			// point belongs to the upcoming Range/Period, not to
			// this Number. Drop it from the buffer by rewinding the
			// token's end back before it.
			l.pos--
			t := l.makeToken(Number)
			l.afterToken(Number)
			return t, false, true, nil
		}
		t := l.makeToken(Number)
		l.afterToken(Number)
		return t, false, true, nil
	}

	switch {
	case !atEOF && (unicode.IsDigit(r) || r == '_' || unicode.IsLetter(r)):
		l.sawFracDig = true
		return Token{}, true, false, nil
	default:
		t := l.makeToken(Number)
		l.afterToken(Number)
		return t, false, true, nil
	}
}

func (l *Lexer) continueIdentifier(r rune, atEOF bool) (Token, bool, bool, error) {
	if !atEOF && isIdentContinue(r) {
		return Token{}, true, false, nil
	}

	if !atEOF && r == '`' {
		if l.tentative == SuffixIdentifier {
			l.tentative = InfixIdentifier
		} else if l.tentative == Identifier {
			l.tentative = PrefixIdentifier
		}
		l.pos++
		t := l.finalizeIdentifier()
		return t, false, true, nil
	}

	t := l.finalizeIdentifier()
	return t, false, true, nil
}

func (l *Lexer) finalizeIdentifier() (tok Token) {
	text := l.text()
	typ := l.tentative
	if typ == Identifier && strings.HasPrefix(text, ":") && !strings.HasPrefix(text, "::") {
		typ = Symbol
	}
	row, col := l.startRowCol()
	if text == "_" || text == ":" {
		l.failed = newError(row, col, "invalid identifier %q", text)
	}
	tok = Token{Text: text, Normalized: normalizeText(typ, text), Type: typ, Row: row, Column: col}
	l.afterToken(typ)
	return tok
}

// continueSpaces and continueSubexpression jointly implement spec
// §4.2's Spaces/Subexpression pair. Rather than two independent
// states that only pass forward, both share the run's accumulated
// text and a pair of flags (sawHSpace, sawNewline): a second
// newline-class rune anywhere in the run finalizes a Subexpression
// token (splitting off any leading horizontal whitespace into its own
// token first, via the one-token lookahead buffer); reaching any
// other character without a second newline finalizes a plain
// Whitespace token for the whole run.
func (l *Lexer) continueSpaces(r rune, atEOF bool) (Token, bool, bool, error) {
	switch {
	case !atEOF && (r == ' ' || r == '\t'):
		return Token{}, true, false, nil
	case !atEOF && isNewline(r):
		if l.sawNewline {
			return l.finalizeSubexpression()
		}
		l.state = stateSubexpression
		l.sawNewline = true
		return Token{}, true, false, nil
	default:
		t := l.makeToken(Whitespace)
		l.afterToken(Whitespace)
		return t, false, true, nil
	}
}

func (l *Lexer) continueSubexpression(r rune, atEOF bool) (Token, bool, bool, error) {
	switch {
	case !atEOF && isNewline(r):
		return l.finalizeSubexpression()
	case !atEOF && (r == ' ' || r == '\t'):
		l.state = stateSpaces
		l.sawHSpace = true
		return Token{}, true, false, nil
	default:
		t := l.makeToken(Whitespace)
		l.afterToken(Whitespace)
		return t, false, true, nil
	}
}

// finalizeSubexpression consumes the second newline-class rune and
// emits the Subexpression token, first splitting off any leading
// horizontal whitespace as its own token via the lookahead buffer.
func (l *Lexer) finalizeSubexpression() (Token, bool, bool, error) {
	l.pos++ // consume the second newline-class rune
	if l.sawHSpace {
		nlIdx := l.tokStart
		for nlIdx < l.pos && !isNewline(l.runes[nlIdx]) {
			nlIdx++
		}
		row, col := l.posAt(nlIdx)
		subText := string(l.runes[nlIdx:l.pos])
		sub := Token{Text: subText, Normalized: subText, Type: Subexpression, Row: row, Column: col}
		wsRow, wsCol := l.startRowCol()
		wsText := string(l.runes[l.tokStart:nlIdx])
		ws := Token{Text: wsText, Normalized: wsText, Type: Whitespace, Row: wsRow, Column: wsCol}
		l.pending = &sub
		l.afterToken(Whitespace)
		return ws, false, true, nil
	}
	t := l.makeToken(Subexpression)
	l.afterToken(Subexpression)
	return t, false, true, nil
}

func (l *Lexer) continueAnnotation(r rune, atEOF bool) (Token, bool, bool, error) {
	if !atEOF && r == '@' {
		l.state = stateLineAnnotation
		return Token{}, true, false, nil
	}
	if !atEOF && !isNewline(r) {
		return Token{}, true, false, nil
	}
	t := l.makeToken(Annotation)
	l.afterToken(Annotation)
	return t, false, true, nil
}

func (l *Lexer) continueLineAnnotation(r rune, atEOF bool) (Token, bool, bool, error) {
	if !atEOF && !isNewline(r) {
		return Token{}, true, false, nil
	}
	t := l.makeToken(LineAnnotation)
	l.afterToken(LineAnnotation)
	return t, false, true, nil
}

func (l *Lexer) continueStartList(r rune, atEOF bool, typ TokenType, quote byte, body lexingState) (Token, bool, bool, error) {
	if !atEOF && r == rune(quote) {
		l.quoteCount++
		return Token{}, true, false, nil
	}

	switch l.quoteCount {
	case 1:
		l.state = body
		l.closingRun = 1
		return Token{}, false, false, nil
	case 2:
		t := l.makeToken(typ)
		l.afterToken(typ)
		return t, false, true, nil
	default:
		l.state = body
		l.closingRun = l.quoteCount
		return Token{}, false, false, nil
	}
}

func (l *Lexer) continueList(r rune, atEOF bool, typ TokenType) (Token, bool, bool, error) {
	quote := charListQuote
	if typ == ByteList {
		quote = byteListQuote
	}
	if !atEOF && r == rune(quote) {
		return Token{}, true, false, nil
	}
	// a run of `closingRun` consecutive quote runes immediately
	// preceding the current position terminates the literal.
	if l.runEndsInQuotes(quote, l.closingRun) {
		t := l.makeToken(typ)
		l.afterToken(typ)
		return t, false, true, nil
	}
	if atEOF {
		return Token{}, false, false, nil // caller reports unterminated
	}
	return Token{}, true, false, nil
}

// runEndsInQuotes reports whether the n runes immediately before the
// current position are all the given quote rune, lie after the
// opening quotes, and that run is not itself a prefix of a longer run
// (i.e. the rune at the current position, if any, is not also the
// quote).
func (l *Lexer) runEndsInQuotes(quote byte, n int) bool {
	if l.pos-n < l.tokStart+l.quoteCount {
		return false
	}
	for i := l.pos - n; i < l.pos; i++ {
		if l.runes[i] != rune(quote) {
			return false
		}
	}
	if l.pos < len(l.runes) && l.runes[l.pos] == rune(quote) {
		return false // run continues; not yet terminated
	}
	return true
}
