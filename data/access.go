package data

import (
	"math"

	"github.com/pkg/errors"

	"github.com/cbarrick/exl/internal/symhash"
)

// Access implements the access kernel (spec §4.5.3 "left . right"):
// given a container and a key, return the Ref the key denotes.
// Numbers index positionally (negative counts from the end, out of
// range yields Unit), Symbols name either a structural field
// (:left/:right/:base/:value/:start/:end/...) or an associative
// lookup, a CharList key hashes into a List's association region, and
// a Range key produces a Slice.
func Access(s *Store, container, key Ref) (Ref, error) {
	c := s.Get(container)
	k := s.Get(key)

	switch {
	case k.Kind == RangeKind:
		return sliceByRange(s, container, k)

	case k.Kind == NumberKind:
		return accessByIndex(s, container, c, int(k.Number))

	case k.Kind == SymbolKind:
		return accessBySymbol(s, container, c, k.Text)

	case k.Kind == CharListKind && c.Kind == ListKind:
		return accessByCharListKey(s, c, k.Text)

	default:
		return NoRef, errors.Errorf("data: access: unsupported key kind %v", k.Kind)
	}
}

func normalizeIndex(i, length int) (int, bool) {
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

func unit(s *Store) (Ref, error) {
	return s.Alloc(literalCell(UnitKind))
}

// accessByIndex resolves a numeric key against c (spec §4.5.3: "integer
// index (negative → wrap from end; out of range → Unit)"). Every
// out-of-range path yields a freshly-allocated Unit cell rather than
// an error: an out-of-bounds index is a legitimate access result, not
// a malformed request.
func accessByIndex(s *Store, container Ref, c Cell, idx int) (Ref, error) {
	switch c.Kind {
	case ListKind:
		i, ok := normalizeIndex(idx, len(c.Items))
		if !ok {
			return unit(s)
		}
		return c.Items[i], nil

	case PairKind:
		i, ok := normalizeIndex(idx, 2)
		if !ok {
			return unit(s)
		}
		if i == 0 {
			return c.Left, nil
		}
		return c.Right, nil

	case CharListKind:
		runes := []rune(c.Text)
		i, ok := normalizeIndex(idx, len(runes))
		if !ok {
			return unit(s)
		}
		return s.Alloc(Cell{Kind: CharKind, Char: runes[i], Left: NoRef, Right: NoRef, SliceOf: NoRef})

	case ByteListKind:
		i, ok := normalizeIndex(idx, len(c.Bytes))
		if !ok {
			return unit(s)
		}
		return s.Alloc(Cell{Kind: ByteKind, Byte: c.Bytes[i], Left: NoRef, Right: NoRef, SliceOf: NoRef})

	case RangeKind:
		start := s.Get(c.Left)
		end := s.Get(c.Right)
		if start.Kind == UnitKind || end.Kind == UnitKind {
			return unit(s)
		}
		length := int(end.Number-start.Number) + 1
		i, ok := normalizeIndex(idx, length)
		if !ok {
			return unit(s)
		}
		return s.Alloc(Cell{Kind: NumberKind, Number: start.Number + float64(i), Left: NoRef, Right: NoRef, SliceOf: NoRef})

	case SliceKind:
		length := sliceLength(s, c)
		i, ok := normalizeIndex(idx, length)
		if !ok {
			return unit(s)
		}
		return sliceElement(s, c, i), nil

	case LinkKind:
		if idx < 0 {
			return unit(s)
		}
		cur := c
		for idx > 0 {
			if cur.Right == NoRef {
				return unit(s)
			}
			cur = s.Get(cur.Right)
			idx--
		}
		return cur.Left, nil

	default:
		return NoRef, errors.Errorf("data: access: kind %v is not indexable", c.Kind)
	}
}

// accessBySymbol resolves a Symbol key against container (spec
// §4.5.3), covering the structural field names each Kind exposes in
// addition to a List's associative lookup.
func accessBySymbol(s *Store, containerRef Ref, c Cell, name string) (Ref, error) {
	switch c.Kind {
	case PairKind:
		switch name {
		case ":left":
			return c.Left, nil
		case ":right":
			return c.Right, nil
		default:
			return unit(s)
		}

	case PartialKind:
		switch name {
		case ":base":
			return c.Left, nil
		case ":value":
			return c.Right, nil
		default:
			return unit(s)
		}

	case RangeKind:
		return accessRangeSymbol(s, c, name)

	case CharListKind:
		switch name {
		case ":length":
			return s.Alloc(Cell{Kind: NumberKind, Number: float64(len([]rune(c.Text))), NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		default:
			return unit(s)
		}

	case LinkKind:
		switch name {
		case ":length":
			return linkLengthSymbol(s, containerRef)
		default:
			return unit(s)
		}

	case SliceKind:
		switch name {
		case ":length":
			return s.Alloc(Cell{Kind: NumberKind, Number: float64(sliceLength(s, c)), NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		default:
			return unit(s)
		}

	case ListKind:
		switch name {
		case ":length":
			return s.Alloc(Cell{Kind: NumberKind, Number: float64(len(c.Items)), NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		case ":key_count":
			return s.Alloc(Cell{Kind: NumberKind, Number: float64(countAssociations(s, c)), NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		}
		for _, item := range c.Items {
			ic := s.Get(item)
			if ic.Kind != AssociativeItemKind {
				continue
			}
			ikc := s.Get(ic.Left)
			if ikc.Kind == SymbolKind && ikc.Text == name {
				return ic.Right, nil
			}
		}
		return NoRef, errors.New("data: access: symbol not found in list")

	default:
		return NoRef, errors.Errorf("data: access: kind %v has no associative lookup", c.Kind)
	}
}

func accessRangeSymbol(s *Store, c Cell, name string) (Ref, error) {
	switch name {
	case ":start":
		return c.Left, nil
	case ":end":
		return c.Right, nil
	case ":step":
		if c.RangeStep == NoRef {
			return unit(s)
		}
		return c.RangeStep, nil
	case ":is_start_exclusive":
		return boolRef(s, c.StartExclusive)
	case ":is_end_exclusive":
		return boolRef(s, c.EndExclusive)
	case ":is_start_open":
		return boolRef(s, s.Get(c.Left).Kind == UnitKind)
	case ":is_end_open":
		return boolRef(s, s.Get(c.Right).Kind == UnitKind)
	case ":length":
		start, end := s.Get(c.Left), s.Get(c.Right)
		if start.Kind == UnitKind || end.Kind == UnitKind {
			return unit(s)
		}
		step := 1.0
		if c.RangeStep != NoRef {
			step = s.Get(c.RangeStep).Number
		}
		lo, hi := start.Number, end.Number
		if c.StartExclusive {
			lo += step
		}
		if c.EndExclusive {
			hi -= step
		}
		n := int(math.Floor((hi-lo)/step)) + 1
		if n < 0 {
			n = 0
		}
		return s.Alloc(Cell{Kind: NumberKind, Number: float64(n), NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
	default:
		return unit(s)
	}
}

func boolRef(s *Store, v bool) (Ref, error) {
	if v {
		return s.Alloc(literalCell(TrueKind))
	}
	return s.Alloc(literalCell(FalseKind))
}

// accessByCharListKey hashes a CharList's text and looks it up in a
// List's association region (spec §4.5.3: "for List a CharList key →
// hashed and looked up in the association region"), distinct from the
// Symbol path above because a CharList key carries no precomputed
// hash of its own.
func accessByCharListKey(s *Store, c Cell, text string) (Ref, error) {
	hash := symhash.Sum(text)
	for _, item := range c.Items {
		ic := s.Get(item)
		if ic.Kind != AssociativeItemKind {
			continue
		}
		ikc := s.Get(ic.Left)
		if ikc.Kind == SymbolKind && ikc.SymbolHash == hash && ikc.Text == text {
			return ic.Right, nil
		}
	}
	return NoRef, errors.New("data: access: key not found in list")
}

// linkLengthSymbol implements Link's :length (spec §4.5.3): sums the
// effective length of each node, classifying pure-char content as a
// character count and anything else as an item count; a cyclic chain
// (its own reference reachable again) stands in for an unenumerable
// "infinite" stream and yields the :infinite symbol.
func linkLengthSymbol(s *Store, ref Ref) (Ref, error) {
	count, charCount, pureChar, infinite := linkLength(s, ref)
	if infinite {
		return s.Symbol(":infinite")
	}
	if pureChar {
		return s.Alloc(Cell{Kind: NumberKind, Number: float64(charCount), NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
	}
	return s.Alloc(Cell{Kind: NumberKind, Number: float64(count), NumberIsInt: true, Left: NoRef, Right: NoRef, SliceOf: NoRef})
}

func linkLength(s *Store, ref Ref) (count, charCount int, pureChar, infinite bool) {
	pureChar = true
	seen := map[Ref]bool{}
	cur := ref
	for cur != NoRef {
		if seen[cur] {
			infinite = true
			return
		}
		seen[cur] = true
		c := s.Get(cur)
		if c.Kind != LinkKind {
			return
		}
		count++
		val := s.Get(c.Left)
		switch val.Kind {
		case CharKind:
			charCount++
		case CharListKind:
			charCount += len([]rune(val.Text))
		default:
			pureChar = false
		}
		cur = c.Right
	}
	return
}

// sliceLength computes a Slice's logical length from its backing
// range, accounting for a step and clamping to the source's length
// when the range was open (spec §4.5.3 "Slice: :length").
func sliceLength(s *Store, c Cell) int {
	step := 1.0
	if c.SliceHasStep {
		step = math.Abs(c.SliceStep)
	}
	if step == 0 {
		step = 1
	}
	from, to := c.SliceFrom, c.SliceTo
	if c.SliceToOpen {
		srcLen, err := Len(s, c.SliceOf)
		if err != nil {
			return 0
		}
		to = srcLen - 1
	}
	if to < from {
		return 0
	}
	return int(float64(to-from)/step) + 1
}

// sliceElement returns the i'th logical element of a Slice, resolving
// through the backing range's start and step and synthesizing Unit
// for an index the underlying container doesn't have (spec §4.5.1
// "synthesizing Unit when an index is out of bounds").
func sliceElement(s *Store, c Cell, i int) Ref {
	step := 1.0
	if c.SliceHasStep {
		step = c.SliceStep
	}
	idx := c.SliceFrom + int(float64(i)*step)
	underlying := s.Get(c.SliceOf)
	ref, err := accessByIndex(s, c.SliceOf, underlying, idx)
	if err != nil {
		ref, _ = unit(s)
	}
	return ref
}

// sliceByRange builds a Slice over container from a Range key (spec
// §4.5.3 "Range → makes a Slice iff range endpoints are integer
// typed"); an open endpoint (Unit) slices from/to the edge of
// container.
func sliceByRange(s *Store, container Ref, rangeCell Cell) (Ref, error) {
	start := s.Get(rangeCell.Left)
	end := s.Get(rangeCell.Right)
	if !isIntegerRangeBound(start) || !isIntegerRangeBound(end) {
		return NoRef, errors.New("data: access: range must have integer-typed endpoints to slice")
	}

	from, fromOpen := 0, false
	if start.Kind == UnitKind {
		fromOpen = true
	} else {
		from = int(start.Number)
	}
	to, toOpen := 0, false
	if end.Kind == UnitKind {
		toOpen = true
	} else {
		to = int(end.Number)
	}

	step, hasStep := 1.0, false
	if rangeCell.RangeStep != NoRef {
		step = s.Get(rangeCell.RangeStep).Number
		hasStep = true
	}

	return s.Alloc(Cell{
		Kind: SliceKind, SliceOf: container,
		SliceFrom: from, SliceTo: to,
		SliceFromOpen: fromOpen, SliceToOpen: toOpen,
		SliceStep: step, SliceHasStep: hasStep,
		Left: NoRef, Right: NoRef,
	})
}

func isIntegerRangeBound(c Cell) bool {
	return c.Kind == UnitKind || (c.Kind == NumberKind && c.NumberIsInt)
}
