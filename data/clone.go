package data

// Clone deep-copies the subtree rooted at ref into freshly allocated
// cells (spec §4.4 "clone_data"), so mutating the copy - or further
// PartiallyApply calls against it - never touches the original (spec
// §8 "clone independence" testable property). Literal cells are
// copied without recursion; Custom cells defer to their companion's
// Clone.
func Clone(s *Store, ref Ref) (Ref, error) {
	if ref == NoRef {
		return NoRef, nil
	}
	seen := make(map[Ref]Ref)
	out, err := cloneRec(s, ref, seen)
	if err != nil {
		s.log.Debug("clone failed", "ref", ref, "error", err)
		return out, err
	}
	s.log.Debug("clone", "ref", ref, "cells", len(seen), "result", out)
	return out, nil
}

func cloneRec(s *Store, ref Ref, seen map[Ref]Ref) (Ref, error) {
	if ref == NoRef {
		return NoRef, nil
	}
	if mapped, ok := seen[ref]; ok {
		return mapped, nil
	}
	c := s.Get(ref)
	out := c

	switch c.Kind {
	case RangeKind, PairKind, PartialKind, LinkKind, AssociativeItemKind:
		left, err := cloneRec(s, c.Left, seen)
		if err != nil {
			return NoRef, err
		}
		right, err := cloneRec(s, c.Right, seen)
		if err != nil {
			return NoRef, err
		}
		out.Left, out.Right = left, right
		if c.Kind == RangeKind && c.RangeStep != NoRef {
			step, err := cloneRec(s, c.RangeStep, seen)
			if err != nil {
				return NoRef, err
			}
			out.RangeStep = step
		}

	case ListKind:
		items := make([]Ref, len(c.Items))
		for i, item := range c.Items {
			cloned, err := cloneRec(s, item, seen)
			if err != nil {
				return NoRef, err
			}
			items[i] = cloned
		}
		out.Items = items

	case SliceKind:
		of, err := cloneRec(s, c.SliceOf, seen)
		if err != nil {
			return NoRef, err
		}
		out.SliceOf = of

	case ByteListKind:
		out.Bytes = append([]byte(nil), c.Bytes...)

	case CustomKind:
		cloned, err := s.companions[c.CustomTypeID].Clone(c.CustomValue)
		if err != nil {
			return NoRef, err
		}
		out.CustomValue = cloned
	}

	newRef, err := s.Alloc(out)
	if err != nil {
		return NoRef, err
	}
	seen[ref] = newRef
	return newRef, nil
}
