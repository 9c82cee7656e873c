package data

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNumber(t *testing.T, s *Store, v float64) Ref {
	t.Helper()
	r, err := s.Alloc(Cell{Kind: NumberKind, Number: v, Left: NoRef, Right: NoRef, SliceOf: NoRef})
	require.NoError(t, err)
	return r
}

func mustUnit(t *testing.T, s *Store) Ref {
	t.Helper()
	r, err := s.Alloc(literalCell(UnitKind))
	require.NoError(t, err)
	return r
}

// Testable property: equality is reflexive for every Kind exercised
// here, and structural equality recurses correctly.
func TestEqualityReflexiveAndStructural(t *testing.T) {
	s := NewDefaultStore()
	n1 := mustNumber(t, s, 5)
	n2 := mustNumber(t, s, 5)
	n3 := mustNumber(t, s, 6)
	assert.True(t, Equal(s, n1, n1))
	assert.True(t, Equal(s, n1, n2))
	assert.False(t, Equal(s, n1, n3))

	list1, err := NewOrderedList(s, []Ref{n1, n3})
	require.NoError(t, err)
	list2, err := NewOrderedList(s, []Ref{n2, n3})
	require.NoError(t, err)
	assert.True(t, Equal(s, list1, list1))
	assert.True(t, Equal(s, list1, list2))
}

func TestLessOrdersAcrossKinds(t *testing.T) {
	s := NewDefaultStore()
	unit := mustUnit(t, s)
	num := mustNumber(t, s, 0)
	assert.True(t, Less(s, unit, num))
	assert.False(t, Less(s, num, unit))
	assert.False(t, Less(s, num, num))
}

// Three-item list access by index, negative index, and out-of-range.
func TestAccessListByIndex(t *testing.T) {
	s := NewDefaultStore()
	a, b, c := mustNumber(t, s, 1), mustNumber(t, s, 2), mustNumber(t, s, 3)
	list, err := NewOrderedList(s, []Ref{a, b, c})
	require.NoError(t, err)

	idx0 := mustNumber(t, s, 0)
	got, err := Access(s, list, idx0)
	require.NoError(t, err)
	assert.True(t, Equal(s, got, a))

	idxNeg1 := mustNumber(t, s, -1)
	got, err = Access(s, list, idxNeg1)
	require.NoError(t, err)
	assert.True(t, Equal(s, got, c))

	idx5 := mustNumber(t, s, 5)
	got, err = Access(s, list, idx5)
	require.NoError(t, err)
	assert.Equal(t, UnitKind, s.Get(got).Kind)
}

// Access into a list by association, looking up an AssociativeItem by
// symbol key.
func TestAccessListBySymbol(t *testing.T) {
	s := NewDefaultStore()
	key, err := s.Symbol("name")
	require.NoError(t, err)
	val := mustNumber(t, s, 42)
	item, err := s.Alloc(Cell{Kind: AssociativeItemKind, Left: key, Right: val, SliceOf: NoRef})
	require.NoError(t, err)
	list, err := NewOrderedList(s, []Ref{item})
	require.NoError(t, err)

	again, err := s.Symbol("name")
	require.NoError(t, err)
	got, err := Access(s, list, again)
	require.NoError(t, err)
	assert.True(t, Equal(s, got, val))

	missing, err := s.Symbol("missing")
	require.NoError(t, err)
	_, err = Access(s, list, missing)
	assert.Error(t, err)
}

// Testable property: clone independence - mutating a cloned subtree's
// storage cell never affects the original.
func TestCloneIndependence(t *testing.T) {
	s := NewDefaultStore()
	a := mustNumber(t, s, 1)
	b := mustNumber(t, s, 2)
	original, err := NewOrderedList(s, []Ref{a, b})
	require.NoError(t, err)

	cloned, err := Clone(s, original)
	require.NoError(t, err)
	assert.NotEqual(t, original, cloned)
	assert.True(t, Equal(s, original, cloned))

	// Mutate the clone's first element in place; the original list's
	// first element must be unaffected.
	clonedCell := s.Get(cloned)
	s.Set(clonedCell.Items[0], Cell{Kind: NumberKind, Number: 999, Left: NoRef, Right: NoRef, SliceOf: NoRef})

	originalCell := s.Get(original)
	assert.True(t, Equal(s, originalCell.Items[0], a))
	assert.False(t, Equal(s, clonedCell.Items[0], originalCell.Items[0]))
}

// Testable property: partial-apply idempotence on Unit.
func TestPartialApplyIdempotentOnUnit(t *testing.T) {
	s := NewDefaultStore()
	unit := mustUnit(t, s)
	arg := mustNumber(t, s, 1)
	result, err := PartiallyApply(s, unit, arg)
	require.NoError(t, err)
	assert.Equal(t, unit, result)

	again, err := PartiallyApply(s, result, arg)
	require.NoError(t, err)
	assert.Equal(t, unit, again)
}

// Testable property: partially_apply fills a Partial's accumulator
// slots left to right across successive calls and IsComplete flips
// once the last Unit slot is filled (spec §4.5.4/§4.5.5).
func TestPartiallyApplyFillsSlotsLeftToRightAndCompletes(t *testing.T) {
	s := NewDefaultStore()
	u1 := mustUnit(t, s)
	u2 := mustUnit(t, s)
	base := mustNumber(t, s, 0) // any non-Partial, non-Unit base exercises the accumulator path
	template, err := NewOrderedList(s, []Ref{u1, u2})
	require.NoError(t, err)

	partial, err := PartiallyApply(s, base, template)
	require.NoError(t, err)
	assert.False(t, IsComplete(s, partial))

	arg1 := mustNumber(t, s, 10)
	partial, err = PartiallyApply(s, partial, arg1)
	require.NoError(t, err)
	assert.False(t, IsComplete(s, partial))

	arg2 := mustNumber(t, s, 20)
	partial, err = PartiallyApply(s, partial, arg2)
	require.NoError(t, err)
	assert.True(t, IsComplete(s, partial))

	valueKey, err := s.Symbol(":value")
	require.NoError(t, err)
	accum, err := Access(s, partial, valueKey)
	require.NoError(t, err)
	got0, err := Access(s, accum, mustNumber(t, s, 0))
	require.NoError(t, err)
	assert.True(t, Equal(s, got0, arg1))

	baseKey, err := s.Symbol(":base")
	require.NoError(t, err)
	gotBase, err := Access(s, partial, baseKey)
	require.NoError(t, err)
	assert.True(t, Equal(s, gotBase, base))
}

// Apply(Range, Number) sets a step rather than indexing (spec §4.5.4
// "Range ← Number/Float").
func TestApplyRangeSetsStep(t *testing.T) {
	s := NewDefaultStore()
	start := mustNumber(t, s, 0)
	end := mustNumber(t, s, 10)
	rng, err := s.Alloc(Cell{Kind: RangeKind, Left: start, Right: end, RangeStep: NoRef, SliceOf: NoRef})
	require.NoError(t, err)

	stepped, err := Apply(s, rng, mustNumber(t, s, 2))
	require.NoError(t, err)

	stepKey, err := s.Symbol(":step")
	require.NoError(t, err)
	gotStep, err := Access(s, stepped, stepKey)
	require.NoError(t, err)
	assert.Equal(t, float64(2), s.Get(gotStep).Number)
}

// NewOrderedList reorders positional items before associations and
// dedups associations by symbol hash, later wins (spec §3.3/§4.5.5).
func TestNewOrderedListRepositionsAndDedupsAssociations(t *testing.T) {
	s := NewDefaultStore()
	key, err := s.Symbol("name")
	require.NoError(t, err)
	first, err := s.Alloc(Cell{Kind: AssociativeItemKind, Left: key, Right: mustNumber(t, s, 1), SliceOf: NoRef})
	require.NoError(t, err)
	positional := mustNumber(t, s, 99)
	second, err := s.Alloc(Cell{Kind: AssociativeItemKind, Left: key, Right: mustNumber(t, s, 2), SliceOf: NoRef})
	require.NoError(t, err)

	list, err := NewOrderedList(s, []Ref{first, positional, second})
	require.NoError(t, err)

	lc := s.Get(list)
	require.Len(t, lc.Items, 2)
	assert.True(t, Equal(s, lc.Items[0], positional), "positional items come first")
	assocVal, err := Access(s, list, key)
	require.NoError(t, err)
	assert.Equal(t, float64(2), s.Get(assocVal).Number, "later association wins the dedup")
}

// Testable property: folding over a three-element list sums values.
func TestIterateFoldSum(t *testing.T) {
	s := NewDefaultStore()
	list, err := NewOrderedList(s, []Ref{mustNumber(t, s, 1), mustNumber(t, s, 2), mustNumber(t, s, 3)})
	require.NoError(t, err)

	sum, err := IterateFold(s, list, mustNumber(t, s, 0), func(s *Store, i int, item, acc Ref) (Ref, IterationOutput, error) {
		a := s.Get(acc).Number
		b := s.Get(item).Number
		r, err := s.Alloc(Cell{Kind: NumberKind, Number: a + b, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		return r, IterationContinue, err
	})
	require.NoError(t, err)
	assert.Equal(t, float64(6), s.Get(sum).Number)
}

// Iterate's default shape collects each step's output into a list
// rather than folding to one value (spec §4.5.6): [1,2,3] with body
// current+5 yields [6,7,8].
func TestIterateCollectsList(t *testing.T) {
	s := NewDefaultStore()
	list, err := NewOrderedList(s, []Ref{mustNumber(t, s, 1), mustNumber(t, s, 2), mustNumber(t, s, 3)})
	require.NoError(t, err)

	collected, err := Iterate(s, list, mustUnit(t, s), func(s *Store, i int, item, result Ref) (Ref, IterationOutput, error) {
		v := s.Get(item).Number
		r, err := s.Alloc(Cell{Kind: NumberKind, Number: v + 5, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		return r, IterationContinue, err
	})
	require.NoError(t, err)

	out := s.Get(collected)
	require.Equal(t, ListKind, out.Kind)
	require.Len(t, out.Items, 3)
	assert.Equal(t, float64(6), s.Get(out.Items[0]).Number)
	assert.Equal(t, float64(7), s.Get(out.Items[1]).Number)
	assert.Equal(t, float64(8), s.Get(out.Items[2]).Number)
}

// iteration_skip drops a step's output from the collected result
// without ending the loop (spec §4.5.6).
func TestIterateSkipDropsOutput(t *testing.T) {
	s := NewDefaultStore()
	list, err := NewOrderedList(s, []Ref{mustNumber(t, s, 1), mustNumber(t, s, 2), mustNumber(t, s, 3)})
	require.NoError(t, err)

	collected, err := Iterate(s, list, mustUnit(t, s), func(s *Store, i int, item, result Ref) (Ref, IterationOutput, error) {
		if int(s.Get(item).Number)%2 == 0 {
			return item, IterationSkip, nil
		}
		return item, IterationContinue, nil
	})
	require.NoError(t, err)

	out := s.Get(collected)
	require.Len(t, out.Items, 2)
	assert.Equal(t, float64(1), s.Get(out.Items[0]).Number)
	assert.Equal(t, float64(3), s.Get(out.Items[1]).Number)
}

func TestExternalComparesByIdentity(t *testing.T) {
	s := NewDefaultStore()
	type handle struct{ id int }
	h1, err := NewExternal(s, &handle{id: 1})
	require.NoError(t, err)
	h2, err := NewExternal(s, &handle{id: 1})
	require.NoError(t, err)
	assert.True(t, Equal(s, h1, h1))
	assert.False(t, Equal(s, h1, h2))
}

type intBox struct{ n int }

type intBoxCompanion struct{}

func (intBoxCompanion) TypeName() string              { return "intBox" }
func (intBoxCompanion) Equal(a, b intBox) bool         { return a.n == b.n }
func (intBoxCompanion) Less(a, b intBox) bool          { return a.n < b.n }
func (intBoxCompanion) Clone(v intBox) (intBox, error) { return intBox{n: v.n}, nil }

func TestCustomCompanionDispatch(t *testing.T) {
	s := NewDefaultStore()
	typeID := RegisterCompanion[intBox](s, intBoxCompanion{})
	a, err := NewCustom(s, typeID, intBox{n: 1})
	require.NoError(t, err)
	b, err := NewCustom(s, typeID, intBox{n: 1})
	require.NoError(t, err)
	c, err := NewCustom(s, typeID, intBox{n: 2})
	require.NoError(t, err)

	assert.True(t, Equal(s, a, b))
	assert.False(t, Equal(s, a, c))
	assert.True(t, Less(s, a, c))

	cloned, err := Clone(s, a)
	require.NoError(t, err)
	assert.True(t, Equal(s, a, cloned))
	assert.NotEqual(t, a, cloned)
}

func TestReiterateRunsMultipleRounds(t *testing.T) {
	s := NewDefaultStore()
	list, err := NewOrderedList(s, []Ref{mustNumber(t, s, 1), mustNumber(t, s, 2)})
	require.NoError(t, err)

	double := func(s *Store, i int, item, acc Ref) (Ref, IterationOutput, error) {
		r, err := s.Alloc(Cell{Kind: NumberKind, Number: s.Get(acc).Number + s.Get(item).Number, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		return r, IterationContinue, err
	}
	result, err := Reiterate(s, list, mustNumber(t, s, 0), 2, double)
	require.NoError(t, err)
	assert.Equal(t, float64(6), s.Get(result).Number)
}

// Testable property: optimize(retain_roots) keeps reachable cells and
// drops the rest, without disturbing the retained roots' values.
func TestOptimizePreservesRoots(t *testing.T) {
	s := NewDefaultStore()
	kept := mustNumber(t, s, 7)
	_ = mustNumber(t, s, 999) // unreachable garbage from the root's perspective

	remap, err := Optimize(s, kept)
	require.NoError(t, err)
	newKept, ok := remap[kept]
	require.True(t, ok)
	assert.Equal(t, float64(7), s.Get(newKept).Number)
}

// Testable property: RetainAllCurrentData pins every cell allocated so
// far, even with no explicit root naming it.
func TestRetainAllCurrentDataSurvivesOptimize(t *testing.T) {
	s := NewDefaultStore()
	pinned := mustNumber(t, s, 11)
	s.RetainAllCurrentData()
	laterGarbage := mustNumber(t, s, 22)
	_ = laterGarbage

	remap, err := Optimize(s)
	require.NoError(t, err)
	newPinned, ok := remap[pinned]
	require.True(t, ok, "cell allocated before RetainAllCurrentData must survive with no explicit root")
	assert.Equal(t, float64(11), s.Get(newPinned).Number)

	_, stillGarbage := remap[laterGarbage]
	assert.False(t, stillGarbage, "cell allocated after the retention watermark is not pinned")
}

func TestSetDataRetentionCountPinsPrefix(t *testing.T) {
	s := NewDefaultStore()
	a := mustNumber(t, s, 1)
	b := mustNumber(t, s, 2)
	_ = b
	s.SetDataRetentionCount(1) // only the first cell (index 0, "a") is pinned

	remap, err := Optimize(s)
	require.NoError(t, err)
	_, aSurvived := remap[a]
	assert.True(t, aSurvived)
	_, bSurvived := remap[b]
	assert.False(t, bSurvived)
}

func TestWithLoggerIsAccepted(t *testing.T) {
	log := hclog.NewNullLogger()
	s := NewDefaultStore(WithLogger(log))
	ref := mustNumber(t, s, 1)
	assert.Equal(t, float64(1), s.Get(ref).Number)
}

func TestCloneCustomFallsBackToStructuralCopy(t *testing.T) {
	type payload struct {
		Values []int
	}
	original := payload{Values: []int{1, 2, 3}}
	cloned, err := CloneCustom(original)
	require.NoError(t, err)
	copyVal := cloned.(payload)
	copyVal.Values[0] = 999
	assert.Equal(t, 1, original.Values[0], "CloneCustom must produce an independent copy")
}

func TestNumberIsIntFlagSurvivesRoundTrip(t *testing.T) {
	s := NewDefaultStore()
	ref, err := s.Alloc(Cell{Kind: NumberKind, Number: 5, NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
	require.NoError(t, err)
	assert.True(t, s.Get(ref).NumberIsInt)

	cloned, err := Clone(s, ref)
	require.NoError(t, err)
	assert.True(t, s.Get(cloned).NumberIsInt)
}
