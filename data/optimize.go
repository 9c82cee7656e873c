package data

// Optimize compacts the data block down to only the cells reachable
// from the given roots plus every interned symbol (spec §4.4
// "optimize(retain_roots)"): unreachable cells left behind by
// discarded intermediate results are dropped, and the survivors are
// written back in a new, denser arrangement.
//
// Optimize returns the old-Ref -> new-Ref remap. Any Ref the caller
// is holding outside of Store (e.g. a parse Result's node tokens do
// not hold data Refs, but a future evaluator's environment might)
// must be rewritten through this map; Refs not present in the map
// were unreachable and no longer resolve to anything.
func Optimize(s *Store, extraRoots ...Ref) (map[Ref]Ref, error) {
	roots := make([]Ref, 0, len(s.roots)+len(extraRoots)+len(s.symTable)+len(s.exprSym)+s.retentionCount)
	roots = append(roots, s.roots...)
	roots = append(roots, extraRoots...)
	for _, e := range s.symTable {
		roots = append(roots, e.ref)
	}
	for _, e := range s.exprSym {
		roots = append(roots, e.ref)
	}
	for i := 0; i < s.retentionCount && i < len(s.data); i++ {
		roots = append(roots, Ref(i))
	}

	reachable := map[Ref]bool{}
	var walk func(Ref)
	walk = func(r Ref) {
		if r == NoRef || reachable[r] {
			return
		}
		reachable[r] = true
		c := s.Get(r)
		switch c.Kind {
		case RangeKind, PairKind, PartialKind, LinkKind, AssociativeItemKind:
			walk(c.Left)
			walk(c.Right)
			if c.Kind == RangeKind {
				walk(c.RangeStep)
			}
		case ListKind:
			for _, item := range c.Items {
				walk(item)
			}
		case SliceKind:
			walk(c.SliceOf)
		}
	}
	for _, r := range roots {
		walk(r)
	}

	before := len(s.data)
	remap := make(map[Ref]Ref, len(reachable))
	compacted := make([]Cell, 0, len(reachable))
	for old := Ref(0); int(old) < len(s.data); old++ {
		if !reachable[old] {
			continue
		}
		remap[old] = Ref(len(compacted))
		compacted = append(compacted, s.data[old])
	}

	rewrite := func(r Ref) Ref {
		if r == NoRef {
			return NoRef
		}
		return remap[r]
	}
	for i := range compacted {
		c := &compacted[i]
		switch c.Kind {
		case RangeKind, PairKind, PartialKind, LinkKind, AssociativeItemKind:
			c.Left, c.Right = rewrite(c.Left), rewrite(c.Right)
			if c.Kind == RangeKind {
				c.RangeStep = rewrite(c.RangeStep)
			}
		case ListKind:
			items := make([]Ref, len(c.Items))
			for j, it := range c.Items {
				items[j] = rewrite(it)
			}
			c.Items = items
		case SliceKind:
			c.SliceOf = rewrite(c.SliceOf)
		}
	}

	s.data = compacted
	s.dataBlk.cap = cap(compacted)
	for i := range s.symTable {
		s.symTable[i].ref = remap[s.symTable[i].ref]
	}
	for i := range s.exprSym {
		s.exprSym[i].ref = remap[s.exprSym[i].ref]
	}
	newRoots := make([]Ref, 0, len(s.roots))
	for _, r := range s.roots {
		newRoots = append(newRoots, remap[r])
	}
	s.roots = newRoots

	s.log.Debug("optimize: compacted data block", "before", before, "retained", len(compacted))
	return remap, nil
}
