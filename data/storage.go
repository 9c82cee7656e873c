// Package data is the runtime value store (spec §3.3/§4.4/§4.5): a
// six-block arena of tagged Cells addressed by position, with sorted
// symbol tables for interning, block-local growth, compaction, and
// the equality/access/apply/iteration kernels that operate over it.
package data

import (
	"encoding/binary"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/cbarrick/exl/internal/symhash"
)

const (
	blockInstruction = iota
	blockJumpTable
	blockSymbolTable
	blockExpressionSymbol
	blockData
	blockCustomData
)

type symEntry struct {
	hash uint64
	ref  Ref
}

// Store is the arena a parsed expression is lowered into and
// evaluated against. It is not safe for concurrent use; callers
// coordinate access the same way the rest of this module avoids
// threads (spec §1 "single-threaded execution core").
type Store struct {
	log hclog.Logger

	dataBlk block
	data    []Cell

	symBlk   block
	symTable []symEntry // sorted by hash, one entry per interned symbol name

	exprSymBlk block
	exprSym    []symEntry // sorted by hash, scoped by (expression ref, name)

	instrBlk     block
	instructions []Cell

	jumpBlk block
	jumps   []Cell

	customBlk   block
	customCount int
	companions  []Companion

	// evaluator, when set, is where Apply defers expression calls and
	// external-symbol resolution (spec §4.5.4); nil in a Store used
	// purely as a data arena with no host language wired up.
	evaluator Evaluator

	roots []Ref

	// retentionCount is the low-watermark cursor set by
	// SetDataRetentionCount/RetainAllCurrentData (spec §4 "retained
	// data"): every data-block cell with an index below it survives
	// Optimize regardless of reachability.
	retentionCount int
}

// Option configures a Store at construction (mirrors lex.Option and
// parse.Option).
type Option func(*Store)

// WithLogger attaches a logger a Store uses to report block growth,
// compaction, and clone activity at Debug level.
func WithLogger(l hclog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithEvaluator attaches the host's expression-execution and
// external-resolution behavior, consulted by Apply (spec §4.5.4).
func WithEvaluator(e Evaluator) Option {
	return func(s *Store) { s.evaluator = e }
}

// NewStore allocates an arena sized per blocks, one StorageSettings
// per BlockNames entry (spec §3.3 "Construction"). Use
// internal/config.Load or DefaultBlockSettings to build blocks when
// the caller has no per-block overrides.
func NewStore(blocks [6]StorageSettings, opts ...Option) *Store {
	s := &Store{
		log:        hclog.NewNullLogger(),
		dataBlk:    newBlock(blocks[blockData]),
		symBlk:     newBlock(blocks[blockSymbolTable]),
		exprSymBlk: newBlock(blocks[blockExpressionSymbol]),
		instrBlk:   newBlock(blocks[blockInstruction]),
		jumpBlk:    newBlock(blocks[blockJumpTable]),
		customBlk:  newBlock(blocks[blockCustomData]),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = make([]Cell, 0, s.dataBlk.cap)
	s.symTable = make([]symEntry, 0, s.symBlk.cap)
	s.exprSym = make([]symEntry, 0, s.exprSymBlk.cap)
	s.instructions = make([]Cell, 0, s.instrBlk.cap)
	s.jumps = make([]Cell, 0, s.jumpBlk.cap)
	return s
}

// NewDefaultStore builds a Store using DefaultSettings for every
// block.
func NewDefaultStore(opts ...Option) *Store {
	return NewStore(DefaultBlockSettings(), opts...)
}

// Alloc appends a cell to the data block (spec §4.4 "allocate"),
// growing it in place per its configured strategy. It fails only when
// the block has a MaxSize and is already at capacity.
func (s *Store) Alloc(c Cell) (Ref, error) {
	if s.dataBlk.full(len(s.data) + 1) {
		return NoRef, errors.New("data: data block exhausted (max_size reached)")
	}
	before := s.dataBlk.cap
	s.dataBlk.grow(len(s.data) + 1)
	if s.dataBlk.cap != before {
		s.log.Debug("data block grew", "from", before, "to", s.dataBlk.cap)
	}
	s.data = append(s.data, c)
	return Ref(len(s.data) - 1), nil
}

// MustAlloc panics on arena exhaustion; convenient for call sites that
// size the arena generously and want to treat exhaustion as a bug.
func (s *Store) MustAlloc(c Cell) Ref {
	r, err := s.Alloc(c)
	if err != nil {
		panic(err)
	}
	return r
}

// Get dereferences a Ref. Reading NoRef or an out-of-range Ref panics:
// both indicate a caller bug, not recoverable runtime state.
func (s *Store) Get(r Ref) Cell {
	if r == NoRef || int(r) < 0 || int(r) >= len(s.data) {
		panic(errors.Errorf("data: invalid ref %d", r))
	}
	return s.data[r]
}

// Set overwrites a cell in place.
func (s *Store) Set(r Ref, c Cell) {
	s.data[r] = c
}

// Len reports how many cells are currently allocated in the data
// block.
func (s *Store) Len() int {
	return len(s.data)
}

// AddRoot marks ref as reachable across an Optimize pass.
func (s *Store) AddRoot(ref Ref) {
	s.roots = append(s.roots, ref)
}

// SetDataRetentionCount pins every data-block cell with an index below
// n as always-reachable, regardless of whether Optimize's BFS would
// otherwise find it (spec §4 "retained data": callers that hand out
// raw Refs to external code need a guarantee those cells survive
// compaction even without an explicit root).
func (s *Store) SetDataRetentionCount(n int) {
	if n < 0 {
		n = 0
	}
	s.retentionCount = n
}

// RetainAllCurrentData pins every cell currently allocated, i.e. sets
// the retention watermark to the current data length. Cells allocated
// afterward are not retained unless the watermark is raised again.
func (s *Store) RetainAllCurrentData() {
	s.retentionCount = len(s.data)
}

// Symbol interns name into the global symbol table, returning the Ref
// of the canonical SymbolKind cell (spec §4.4 "symbol table... sorted
// by hash, looked up by binary search"). Repeated calls with equal
// names return the same Ref.
func (s *Store) Symbol(name string) (Ref, error) {
	hash := symhash.Sum(name)
	return s.internSorted(&s.symTable, &s.symBlk, hash, func() (Cell, error) {
		return Cell{Kind: SymbolKind, SymbolHash: hash, Text: name, Left: NoRef, Right: NoRef, SliceOf: NoRef}, nil
	})
}

// ExpressionSymbol interns an identifier scoped to one expression body
// (spec §4.4 "expression-local symbol table"), distinct from the
// global symbol table so identical identifier text in different
// expressions never collides.
func (s *Store) ExpressionSymbol(expr Ref, name string) (Ref, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(expr))
	hash := symhash.Sum64(append(buf[:], []byte(name)...))
	return s.internSorted(&s.exprSym, &s.exprSymBlk, hash, func() (Cell, error) {
		return Cell{Kind: SymbolKind, SymbolHash: hash, Text: name, Left: NoRef, Right: NoRef, SliceOf: NoRef}, nil
	})
}

// internSorted performs the shared binary-search-insert dance used by
// both symbol tables: find by hash, or allocate a new data cell and
// insert a new sorted entry for it.
func (s *Store) internSorted(table *[]symEntry, blk *block, hash uint64, make func() (Cell, error)) (Ref, error) {
	t := *table
	i := sort.Search(len(t), func(i int) bool { return t[i].hash >= hash })
	if i < len(t) && t[i].hash == hash {
		return t[i].ref, nil
	}
	if blk.full(len(t) + 1) {
		return NoRef, errors.New("data: symbol table exhausted (max_size reached)")
	}
	cell, err := make()
	if err != nil {
		return NoRef, err
	}
	ref, err := s.Alloc(cell)
	if err != nil {
		return NoRef, err
	}
	blk.grow(len(t) + 1)
	t = append(t, symEntry{})
	copy(t[i+1:], t[i:])
	t[i] = symEntry{hash: hash, ref: ref}
	*table = t
	return ref, nil
}

// PushInstruction appends a bare opcode to the instruction block;
// exercised by collaborators that lower parsed expressions, but not
// consumed by anything in this module (bytecode emission is out of
// scope per spec §1 "Non-goals").
func (s *Store) PushInstruction(opcode uint32) int {
	s.instrBlk.grow(len(s.instructions) + 1)
	s.instructions = append(s.instructions, Cell{
		Kind: InstructionKind, Instruction: opcode,
		Left: NoRef, Right: NoRef, SliceOf: NoRef,
	})
	return len(s.instructions) - 1
}

// PushInstructionWithData appends an opcode carrying an operand Ref.
func (s *Store) PushInstructionWithData(opcode uint32, operand Ref) int {
	s.instrBlk.grow(len(s.instructions) + 1)
	s.instructions = append(s.instructions, Cell{
		Kind: InstructionWithDataKind, Instruction: opcode, InstructionData: operand,
		Left: NoRef, Right: NoRef, SliceOf: NoRef,
	})
	return len(s.instructions) - 1
}

// PushJump reserves a jump-table slot pointing at target, returning
// its index for later patching.
func (s *Store) PushJump(target int) int {
	s.jumpBlk.grow(len(s.jumps) + 1)
	s.jumps = append(s.jumps, Cell{
		Kind: JumpPointKind, JumpTarget: target,
		Left: NoRef, Right: NoRef, SliceOf: NoRef,
	})
	return len(s.jumps) - 1
}

// PatchJump rewrites an already-reserved jump-table slot's target.
func (s *Store) PatchJump(index, target int) {
	s.jumps[index].JumpTarget = target
}
