package data

import (
	"github.com/mitchellh/copystructure"
	"github.com/pkg/errors"
)

// BasicDataCustom is the per-value contract a host type satisfies to
// live inside the arena as a CustomKind cell (spec §4.4 "Custom data
// / External data"). It mirrors BasicDataCompanion's operations but
// scoped to a single value, for callers that would rather implement
// the contract on the type itself than register a separate
// companion.
type BasicDataCustom[T any] interface {
	Equal(other T) bool
	Less(other T) bool
}

// BasicDataCompanion is the per-type contract registered once with a
// Store (spec §4.4 "companion"): it supplies the equality, ordering,
// and cloning behavior for every CustomKind cell of that type, so the
// arena's generic kernels (Equal, Less, Clone) can dispatch into
// user-defined Go types without the arena itself depending on them.
type BasicDataCompanion[T any] interface {
	TypeName() string
	Equal(a, b T) bool
	Less(a, b T) bool
	Clone(v T) (T, error)
}

// Companion is the type-erased form of BasicDataCompanion that
// Store actually stores; RegisterCompanion builds one from a typed
// BasicDataCompanion so the rest of the package never needs generics.
type Companion interface {
	TypeName() string
	Equal(a, b any) bool
	Less(a, b any) bool
	Clone(v any) (any, error)
}

type companionAdapter[T any] struct {
	impl BasicDataCompanion[T]
}

func (a companionAdapter[T]) TypeName() string { return a.impl.TypeName() }

func (a companionAdapter[T]) Equal(x, y any) bool {
	return a.impl.Equal(x.(T), y.(T))
}

func (a companionAdapter[T]) Less(x, y any) bool {
	return a.impl.Less(x.(T), y.(T))
}

func (a companionAdapter[T]) Clone(v any) (any, error) {
	return a.impl.Clone(v.(T))
}

// RegisterCompanion records the companion for T, returning the
// CustomTypeID later passed to NewCustom. Registration order is
// stable for the lifetime of the Store.
func RegisterCompanion[T any](s *Store, c BasicDataCompanion[T]) int {
	s.companions = append(s.companions, companionAdapter[T]{impl: c})
	return len(s.companions) - 1
}

// NewCustom allocates a CustomKind cell wrapping value, tagged with
// the CustomTypeID returned by RegisterCompanion.
func NewCustom[T any](s *Store, typeID int, value T) (Ref, error) {
	if typeID < 0 || typeID >= len(s.companions) {
		return NoRef, errors.Errorf("data: custom: unregistered type id %d", typeID)
	}
	if s.customBlk.full(s.customCount + 1) {
		return NoRef, errors.New("data: custom_data block exhausted (max_size reached)")
	}
	s.customBlk.grow(s.customCount + 1)
	ref, err := s.Alloc(Cell{Kind: CustomKind, CustomTypeID: typeID, CustomValue: value, Left: NoRef, Right: NoRef, SliceOf: NoRef})
	if err == nil {
		s.customCount++
	}
	return ref, err
}

// NewExternal wraps an opaque host value that the arena stores but
// never interprets - e.g. a file handle or a foreign-language object
// a binding exposes to expressions (spec §4.4 "external data"). Unlike
// CustomKind, External cells compare by Go's == and have no ordering
// or clone behavior of their own.
func NewExternal(s *Store, value any) (Ref, error) {
	return s.Alloc(Cell{Kind: ExternalKind, External: value, Left: NoRef, Right: NoRef, SliceOf: NoRef})
}

// CloneCustom deep-copies an arbitrary Go value via reflection (spec
// §4.4 "clone falls back to a structural copy when a custom type
// supplies no Clone of its own"). Companions without a cheap, precise
// clone of their own can delegate to this from their Clone method
// rather than hand-writing a reflective copy.
func CloneCustom(v any) (any, error) {
	out, err := copystructure.Copy(v)
	if err != nil {
		return nil, errors.Wrap(err, "data: default clone")
	}
	return out, nil
}
