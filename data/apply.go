package data

import "github.com/pkg/errors"

// Evaluator lets a host program supply the control-flow behavior
// Apply defers to for Expression and External bases (spec §4.5.4):
// this package models data, not bytecode execution (PushInstruction's
// doc comment notes emission/evaluation are out of scope), so running
// an expression body or resolving a symbol against a user context is
// the caller's responsibility.
type Evaluator interface {
	// CallExpression pushes a new call frame to expr's entry point
	// with input as its argument and returns the frame's result.
	CallExpression(s *Store, expr, input Ref) (Ref, error)
	// ResolveExternal resolves external against a user-supplied
	// context and returns the value to copy into the runtime.
	ResolveExternal(s *Store, external, input Ref) (Ref, error)
}

// NewOrderedList allocates a new ListKind cell over items, repositioning
// positional items before associations and deduplicating associations
// by symbol hash with the later one winning (spec §3.3/§4.5.5
// "new_ordered_list"). Association order among survivors follows the
// order each distinct key was first seen.
func NewOrderedList(s *Store, items []Ref) (Ref, error) {
	var positional []Ref
	var assocOrder []uint64
	assocByHash := make(map[uint64]Ref)
	for _, it := range items {
		if !isAssociation(s, it) {
			positional = append(positional, it)
			continue
		}
		hash := s.Get(associationKey(s, it)).SymbolHash
		if _, seen := assocByHash[hash]; !seen {
			assocOrder = append(assocOrder, hash)
		}
		assocByHash[hash] = it // later wins
	}

	out := make([]Ref, 0, len(positional)+len(assocOrder))
	out = append(out, positional...)
	for _, hash := range assocOrder {
		out = append(out, assocByHash[hash])
	}
	return s.Alloc(Cell{Kind: ListKind, Items: out, Left: NoRef, Right: NoRef, SliceOf: NoRef})
}

// isAssociation reports whether ref is an associative pair (spec
// §4.5.5 "a pair with symbol key"): either the canonical
// AssociativeItemKind a list association lowers to, or a raw Pair
// whose left element is a Symbol.
func isAssociation(s *Store, ref Ref) bool {
	c := s.Get(ref)
	switch c.Kind {
	case AssociativeItemKind:
		return true
	case PairKind:
		return s.Get(c.Left).Kind == SymbolKind
	default:
		return false
	}
}

func associationKey(s *Store, ref Ref) Ref {
	return s.Get(ref).Left
}

// IsComplete reports whether target has no remaining Unit-valued
// parameter slot (spec §4.5 "an application is complete once every
// slot has been filled"). A Partial is complete when its accumulator
// is; a bare List is complete when none of its items are Unit; any
// other Kind is trivially complete.
func IsComplete(s *Store, target Ref) bool {
	c := s.Get(target)
	if c.Kind == PartialKind {
		return IsComplete(s, c.Right)
	}
	if c.Kind != ListKind {
		return true
	}
	for _, item := range c.Items {
		if s.Get(item).Kind == UnitKind {
			return false
		}
	}
	return true
}

// PartiallyApply implements partially_apply(L, R) (spec §4.5.4): it
// produces a Partial(base, accum) whose accum merges R into L's
// existing accumulator via unit-slot filling (§4.5.5), or, if L is
// not yet a Partial, seeds a fresh accumulator from R. Applying to
// Unit is idempotent and returns Unit unchanged (spec §8 "partial-apply
// idempotence on Unit").
func PartiallyApply(s *Store, l, r Ref) (Ref, error) {
	lc := s.Get(l)
	if lc.Kind == UnitKind {
		return l, nil
	}
	if lc.Kind == PartialKind {
		merged, err := mergeAccumulators(s, lc.Right, r)
		if err != nil {
			return NoRef, err
		}
		return s.Alloc(Cell{Kind: PartialKind, Left: lc.Left, Right: merged, RangeStep: NoRef, SliceOf: NoRef})
	}

	accum, err := normalizeAccumulator(s, r)
	if err != nil {
		return NoRef, err
	}
	return s.Alloc(Cell{Kind: PartialKind, Left: l, Right: accum, RangeStep: NoRef, SliceOf: NoRef})
}

// normalizeAccumulator seeds a fresh Partial's accumulator from r
// (spec §4.5.4 "If L is a raw expression/external, the accumulator is
// normalized: a single pair with a symbol key becomes a one-item
// list; a list is passed through new_ordered_list").
func normalizeAccumulator(s *Store, r Ref) (Ref, error) {
	rc := s.Get(r)
	if isAssociation(s, r) {
		return NewOrderedList(s, []Ref{r})
	}
	if rc.Kind == ListKind {
		return NewOrderedList(s, rc.Items)
	}
	return r, nil
}

// mergeAccumulators implements the applied-list merge rules of spec
// §4.5.5, given left (the existing accumulator) and right (the new
// value being merged in). When either side is Unit the other is
// returned as is; every other result passes through NewOrderedList.
func mergeAccumulators(s *Store, left, right Ref) (Ref, error) {
	lc := s.Get(left)
	rc := s.Get(right)

	if lc.Kind == UnitKind {
		return right, nil
	}
	if rc.Kind == UnitKind {
		return left, nil
	}

	switch {
	case lc.Kind == ListKind && rc.Kind == ListKind:
		return mergeListList(s, lc, rc)
	case lc.Kind == ListKind:
		return mergeListValue(s, lc, right)
	case rc.Kind == ListKind:
		items := append([]Ref{left}, rc.Items...)
		return NewOrderedList(s, items)
	default:
		return NewOrderedList(s, []Ref{left, right})
	}
}

// mergeListList walks left's positional Unit slots, filling each from
// the next non-associative right item; right's associations pass
// through untouched and any right items left over are appended (spec
// §4.5.5 "List+List").
func mergeListList(s *Store, lc, rc Cell) (Ref, error) {
	items := append([]Ref(nil), lc.Items...)

	var fillers []Ref
	var passthrough []Ref
	for _, ri := range rc.Items {
		if isAssociation(s, ri) {
			passthrough = append(passthrough, ri)
		} else {
			fillers = append(fillers, ri)
		}
	}

	qi := 0
	for i, li := range items {
		if qi >= len(fillers) {
			break
		}
		if s.Get(li).Kind == UnitKind {
			items[i] = fillers[qi]
			qi++
		}
	}

	items = append(items, passthrough...)
	items = append(items, fillers[qi:]...)
	return NewOrderedList(s, items)
}

// mergeListValue scans left for its first Unit slot and fills it with
// right, unless right is itself an association - associations are
// never unit-slot eligible and are simply appended (spec §4.5.5
// "List+value").
func mergeListValue(s *Store, lc Cell, right Ref) (Ref, error) {
	items := append([]Ref(nil), lc.Items...)
	if !isAssociation(s, right) {
		for i, li := range items {
			if s.Get(li).Kind == UnitKind {
				items[i] = right
				return NewOrderedList(s, items)
			}
		}
	}
	items = append(items, right)
	return NewOrderedList(s, items)
}

// Apply implements apply(L, R) (spec §4.5.4): a Range consumes a
// number as a step, an Expression/External defer to the configured
// Evaluator, a Partial merges R into its accumulator and invokes its
// base, and anything else falls back to Access.
func Apply(s *Store, l, r Ref) (Ref, error) {
	lc := s.Get(l)
	switch lc.Kind {
	case RangeKind:
		if rc := s.Get(r); rc.Kind == NumberKind {
			return applyRangeStep(s, lc, r)
		}
		return Access(s, l, r)

	case ExpressionKind:
		if s.evaluator == nil {
			return NoRef, errors.New("data: apply: no evaluator configured for expression application")
		}
		return s.evaluator.CallExpression(s, l, r)

	case ExternalKind:
		if s.evaluator == nil {
			return NoRef, errors.New("data: apply: no evaluator configured for external application")
		}
		result, err := s.evaluator.ResolveExternal(s, l, r)
		if err != nil {
			s.log.Debug("external resolution failed, yielding Unit", "error", err)
			return unit(s)
		}
		return result, nil

	case PartialKind:
		merged, err := mergeAccumulators(s, lc.Right, r)
		if err != nil {
			return NoRef, err
		}
		return Apply(s, lc.Left, merged)

	default:
		return Access(s, l, r)
	}
}

// applyRangeStep returns a copy of a Range with its step set to r
// (spec §4.5.4 "Range ← Number/Float: returns L with a step set to R").
func applyRangeStep(s *Store, lc Cell, r Ref) (Ref, error) {
	out := lc
	out.RangeStep = r
	out.SliceOf = NoRef
	return s.Alloc(out)
}
