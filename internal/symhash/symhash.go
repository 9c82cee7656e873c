// Package symhash provides the symbol-hashing primitive the data store
// uses for its sorted symbol tables (symbol table, expression-symbol
// table) and for matching list association keys.
package symhash

import "github.com/cespare/xxhash/v2"

// Sum hashes a symbol's canonical text into the 64-bit key used to
// order associative regions for binary search.
func Sum(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Sum64 hashes raw bytes, used when the key is not plain symbol text
// (e.g. an expression-scoped symbol, hashed as the expression's Ref
// bytes followed by the name).
func Sum64(b []byte) uint64 {
	return xxhash.Sum64(b)
}
