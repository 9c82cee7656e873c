package data

import "bytes"

// Equal implements the equality kernel (spec §4.4 "equal"): literal
// cells compare by value, structural cells recurse over their
// children, and Custom cells defer to their registered Companion.
// Values of different Kind are never equal, except that a Char equals
// a one-character CharList holding it (likewise Byte and a one-byte
// ByteList); NoRef only equals NoRef.
func Equal(s *Store, a, b Ref) bool {
	if a == NoRef || b == NoRef {
		return a == b
	}
	ca, cb := s.Get(a), s.Get(b)
	if ca.Kind != cb.Kind {
		if ch, cl, ok := asCharAndCharList(ca, cb); ok {
			runes := []rune(cl.Text)
			return len(runes) == 1 && runes[0] == ch.Char
		}
		if by, bl, ok := asByteAndByteList(ca, cb); ok {
			return len(bl.Bytes) == 1 && bl.Bytes[0] == by.Byte
		}
		return false
	}
	switch ca.Kind {
	case UnitKind, TrueKind, FalseKind:
		return true
	case NumberKind:
		return ca.Number == cb.Number
	case CharKind:
		return ca.Char == cb.Char
	case ByteKind:
		return ca.Byte == cb.Byte
	case SymbolKind:
		return ca.SymbolHash == cb.SymbolHash && ca.Text == cb.Text
	case ExpressionKind:
		return ca.Text == cb.Text
	case ExternalKind:
		return ca.External == cb.External
	case CharListKind:
		return ca.Text == cb.Text
	case ByteListKind:
		return bytes.Equal(ca.Bytes, cb.Bytes)
	case RangeKind:
		return Equal(s, ca.Left, cb.Left) && Equal(s, ca.Right, cb.Right)
	case PairKind:
		return Equal(s, ca.Left, cb.Left) && Equal(s, ca.Right, cb.Right)
	case ListKind:
		if len(ca.Items) != len(cb.Items) {
			return false
		}
		if countAssociations(s, ca) != countAssociations(s, cb) {
			return false
		}
		for i, left := range ca.Items {
			lc := s.Get(left)
			if lc.Kind == AssociativeItemKind {
				rv, ok := lookupAssociation(s, cb, lc.Left)
				if !ok || !Equal(s, lc.Right, rv) {
					return false
				}
				continue
			}
			if !Equal(s, left, cb.Items[i]) {
				return false
			}
		}
		return true
	case SliceKind:
		la, lb := sliceLength(s, ca), sliceLength(s, cb)
		if la != lb {
			return false
		}
		for i := 0; i < la; i++ {
			if !Equal(s, sliceElement(s, ca, i), sliceElement(s, cb, i)) {
				return false
			}
		}
		return true
	case LinkKind:
		return Equal(s, ca.Left, cb.Left) && Equal(s, ca.Right, cb.Right)
	case AssociativeItemKind:
		return Equal(s, ca.Left, cb.Left) && Equal(s, ca.Right, cb.Right)
	case PartialKind:
		return Equal(s, ca.Left, cb.Left) && Equal(s, ca.Right, cb.Right)
	case CustomKind:
		if ca.CustomTypeID != cb.CustomTypeID {
			return false
		}
		return s.companions[ca.CustomTypeID].Equal(ca.CustomValue, cb.CustomValue)
	default:
		return false
	}
}

// kindRank gives the total order across Kinds used by Less when two
// refs are not of the same Kind (spec §4.4 "less_than ... values of
// different type are ordered by type").
var kindRank = map[Kind]int{
	Empty: 0, UnitKind: 1, FalseKind: 2, TrueKind: 3, NumberKind: 4,
	CharKind: 5, ByteKind: 6, SymbolKind: 7, CharListKind: 8, ByteListKind: 9,
	RangeKind: 10, PairKind: 11, PartialKind: 12, ListKind: 13, SliceKind: 14,
	LinkKind: 15, AssociativeItemKind: 16, ExpressionKind: 17, ExternalKind: 18,
	InstructionKind: 19, InstructionWithDataKind: 20, JumpPointKind: 21,
	CustomKind: 22,
}

// asCharAndCharList reorders a mismatched (Char, CharList) pair
// regardless of argument order, for the spec §4.5.1 cross-kind rule.
func asCharAndCharList(a, b Cell) (char, list Cell, ok bool) {
	if a.Kind == CharKind && b.Kind == CharListKind {
		return a, b, true
	}
	if b.Kind == CharKind && a.Kind == CharListKind {
		return b, a, true
	}
	return Cell{}, Cell{}, false
}

// asByteAndByteList is asCharAndCharList's Byte/ByteList counterpart.
func asByteAndByteList(a, b Cell) (byt, list Cell, ok bool) {
	if a.Kind == ByteKind && b.Kind == ByteListKind {
		return a, b, true
	}
	if b.Kind == ByteKind && a.Kind == ByteListKind {
		return b, a, true
	}
	return Cell{}, Cell{}, false
}

// countAssociations counts the AssociativeItemKind members of a list,
// used by List equality's "same association count" precondition.
func countAssociations(s *Store, list Cell) int {
	n := 0
	for _, item := range list.Items {
		if s.Get(item).Kind == AssociativeItemKind {
			n++
		}
	}
	return n
}

// lookupAssociation finds the AssociativeItemKind member of list keyed
// by key, regardless of its position (spec §4.5.1 "association order
// within the source list is irrelevant").
func lookupAssociation(s *Store, list Cell, key Ref) (Ref, bool) {
	for _, item := range list.Items {
		ic := s.Get(item)
		if ic.Kind == AssociativeItemKind && Equal(s, ic.Left, key) {
			return ic.Right, true
		}
	}
	return NoRef, false
}

// Less implements the ordering kernel (spec §4.4 "less_than"). Values
// of different Kind are ordered by kindRank. Within one Kind, scalars,
// char and byte lists, pairs, lists and custom values are ordered by
// value; two values of any other Kind (ranges, slices, links,
// partials, ...) are never less than each other in either direction.
func Less(s *Store, a, b Ref) bool {
	if a == NoRef || b == NoRef {
		if a == b {
			return false
		}
		return a == NoRef
	}
	ca, cb := s.Get(a), s.Get(b)
	if ca.Kind != cb.Kind {
		return kindRank[ca.Kind] < kindRank[cb.Kind]
	}
	switch ca.Kind {
	case UnitKind, TrueKind, FalseKind:
		return false
	case NumberKind:
		return ca.Number < cb.Number
	case CharKind:
		return ca.Char < cb.Char
	case ByteKind:
		return ca.Byte < cb.Byte
	case SymbolKind:
		return ca.Text < cb.Text
	case CharListKind:
		return ca.Text < cb.Text
	case ByteListKind:
		return bytes.Compare(ca.Bytes, cb.Bytes) < 0
	case PairKind:
		if !Equal(s, ca.Left, cb.Left) {
			return Less(s, ca.Left, cb.Left)
		}
		return Less(s, ca.Right, cb.Right)
	case ListKind:
		for i := 0; i < len(ca.Items) && i < len(cb.Items); i++ {
			if Equal(s, ca.Items[i], cb.Items[i]) {
				continue
			}
			return Less(s, ca.Items[i], cb.Items[i])
		}
		return len(ca.Items) < len(cb.Items)
	case CustomKind:
		if ca.CustomTypeID != cb.CustomTypeID {
			return ca.CustomTypeID < cb.CustomTypeID
		}
		return s.companions[ca.CustomTypeID].Less(ca.CustomValue, cb.CustomValue)
	default:
		return false
	}
}
