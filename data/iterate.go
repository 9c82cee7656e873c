package data

import "github.com/pkg/errors"

// IterationOutput tells an iteration driver how to treat the result of
// one step (spec §4.5.6 "iteration_output / skip / continue /
// complete").
type IterationOutput int

const (
	// IterationContinue accepts the step's output and moves to the
	// next element, contributing the output to the collected result
	// (spec's "iteration_continue: end this iteration normally").
	IterationContinue IterationOutput = iota
	// IterationSkip discards the step's output - it does not join the
	// collected result - and moves to the next element.
	IterationSkip
	// IterationComplete ends the loop entirely; the step's own output
	// still joins the collected result before stopping.
	IterationComplete
)

// IterFunc stands in for the body expression executed once per step
// with input {:current, :result} (spec §4.5.6): current is the
// source element, result is the running value (the previous step's
// output, or initial on the first step). It returns the step's output
// and how the loop should proceed.
type IterFunc func(s *Store, index int, current, result Ref) (output Ref, ctl IterationOutput, err error)

// Len reports how many elements a container logically holds for
// iteration purposes.
func Len(s *Store, container Ref) (int, error) {
	c := s.Get(container)
	switch c.Kind {
	case ListKind:
		return len(c.Items), nil
	case CharListKind:
		return len([]rune(c.Text)), nil
	case ByteListKind:
		return len(c.Bytes), nil
	case RangeKind:
		start, end := s.Get(c.Left), s.Get(c.Right)
		if start.Kind == UnitKind || end.Kind == UnitKind {
			return 0, errors.New("data: iterate: range endpoint is open")
		}
		return int(end.Number-start.Number) + 1, nil
	case SliceKind:
		return sliceLength(s, c), nil
	default:
		return 0, errors.Errorf("data: iterate: kind %v is not iterable", c.Kind)
	}
}

func elementAt(s *Store, container Ref, i int) (Ref, error) {
	c := s.Get(container)
	return accessByIndex(s, container, c, i)
}

// iterationSteps resolves source into the ordered sequence of element
// refs one iteration pass walks (spec §4.5.6): list/char-list/
// byte-list/slice sources are walked positionally; Range sources are
// expanded honoring any step and exclusive-endpoint flags, with
// Character ranges stepping through code points via char_from_u32. An
// open range endpoint reports open=true, since its elements "cannot be
// enumerated" (spec §4.5.6).
func iterationSteps(s *Store, source Ref) (steps []Ref, open bool, err error) {
	c := s.Get(source)
	if c.Kind == RangeKind {
		return rangeSteps(s, c)
	}
	n, err := Len(s, source)
	if err != nil {
		return nil, false, err
	}
	steps = make([]Ref, n)
	for i := 0; i < n; i++ {
		e, err := elementAt(s, source, i)
		if err != nil {
			return nil, false, err
		}
		steps[i] = e
	}
	return steps, false, nil
}

func rangeSteps(s *Store, c Cell) ([]Ref, bool, error) {
	start := s.Get(c.Left)
	end := s.Get(c.Right)
	if start.Kind == UnitKind || end.Kind == UnitKind {
		return nil, true, nil
	}

	step := 1.0
	if c.RangeStep != NoRef {
		step = s.Get(c.RangeStep).Number
	}
	if step == 0 {
		return nil, false, errors.New("data: iterate: range step must be non-zero")
	}

	if start.Kind == CharKind {
		return charRangeSteps(s, start, end, step, c.StartExclusive, c.EndExclusive)
	}

	lo, hi := start.Number, end.Number
	if c.StartExclusive {
		lo += step
	}
	if c.EndExclusive {
		hi -= step
	}

	var steps []Ref
	isInt := start.NumberIsInt && end.NumberIsInt
	for v := lo; (step > 0 && v <= hi) || (step < 0 && v >= hi); v += step {
		n, err := s.Alloc(Cell{Kind: NumberKind, Number: v, NumberIsInt: isInt, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		if err != nil {
			return nil, false, err
		}
		steps = append(steps, n)
	}
	return steps, false, nil
}

// charRangeSteps walks a Character range using char_from_u32(prev +
// step), stopping as soon as stepping leaves the valid code-point
// space (spec §4.5.6).
func charRangeSteps(s *Store, start, end Cell, step float64, startExclusive, endExclusive bool) ([]Ref, bool, error) {
	cur := int32(start.Char)
	if startExclusive {
		cur += int32(step)
	}
	endCP := int32(end.Char)

	var steps []Ref
	for {
		if step > 0 && cur > endCP {
			break
		}
		if step < 0 && cur < endCP {
			break
		}
		if endExclusive && cur == endCP {
			break
		}
		r, ok := charFromU32(cur)
		if !ok {
			break
		}
		ref, err := s.Alloc(Cell{Kind: CharKind, Char: r, Left: NoRef, Right: NoRef, SliceOf: NoRef})
		if err != nil {
			return nil, false, err
		}
		steps = append(steps, ref)
		cur += int32(step)
	}
	return steps, false, nil
}

// charFromU32 mirrors the spec's char_from_u32: any value outside the
// Unicode code-point space, or inside the UTF-16 surrogate range, is
// not a valid Character.
func charFromU32(v int32) (rune, bool) {
	if v < 0 || v > 0x10FFFF {
		return 0, false
	}
	if v >= 0xD800 && v <= 0xDFFF {
		return 0, false
	}
	return rune(v), true
}

// Iterate drives reference-list or range iteration (spec §4.5.6) and
// collects each step's output into a list - the default result shape
// ("iterating [10, 20, 30] with body current + 5 yields [15, 25,
// 35]"). An open range produces Unit rather than a list.
// iteration_skip drops a step's output from the collection without
// ending the loop; iteration_complete accepts its own output and ends
// the loop early.
func Iterate(s *Store, source, initial Ref, body IterFunc) (Ref, error) {
	steps, open, err := iterationSteps(s, source)
	if err != nil {
		return NoRef, err
	}
	if open {
		return unit(s)
	}

	result := initial
	var collected []Ref
	for i, elem := range steps {
		out, ctl, err := body(s, i, elem, result)
		if err != nil {
			return NoRef, err
		}
		result = out
		if ctl == IterationSkip {
			continue
		}
		collected = append(collected, out)
		if ctl == IterationComplete {
			break
		}
	}
	return NewOrderedList(s, collected)
}

// IterateToSingle drives the same iteration as Iterate but folds to a
// single value seeded by source's first element, rather than
// collecting a list (spec §4.5 "iterate_to_single"), useful for
// reductions with no sensible zero value (e.g. finding a maximum). An
// empty or open source is an error: there is no element to seed with.
func IterateToSingle(s *Store, source Ref, body IterFunc) (Ref, error) {
	steps, open, err := iterationSteps(s, source)
	if err != nil {
		return NoRef, err
	}
	if open || len(steps) == 0 {
		return NoRef, errors.New("data: iterate_to_single: source has no element to seed with")
	}

	result := steps[0]
	for i := 1; i < len(steps); i++ {
		out, ctl, err := body(s, i, steps[i], result)
		if err != nil {
			return NoRef, err
		}
		result = out
		if ctl == IterationComplete {
			break
		}
	}
	return result, nil
}

// IterateFold threads a single running accumulator through every step
// and returns it directly rather than a collected list (spec §4.5
// "reiterate" composes this to repeat a fold across rounds).
func IterateFold(s *Store, source, initial Ref, body IterFunc) (Ref, error) {
	steps, open, err := iterationSteps(s, source)
	if err != nil {
		return NoRef, err
	}
	if open {
		return unit(s)
	}

	result := initial
	for i, elem := range steps {
		out, ctl, err := body(s, i, elem, result)
		if err != nil {
			return NoRef, err
		}
		result = out
		if ctl == IterationComplete {
			break
		}
	}
	return result, nil
}

// Reiterate runs IterateFold over source rounds times, feeding each
// round's result in as the next round's initial accumulator (spec
// §4.5 "reiterate"), e.g. to apply a transformation a fixed number of
// times.
func Reiterate(s *Store, source, initial Ref, rounds int, body IterFunc) (Ref, error) {
	result := initial
	for r := 0; r < rounds; r++ {
		var err error
		result, err = IterateFold(s, source, result, body)
		if err != nil {
			return NoRef, err
		}
	}
	return result, nil
}
