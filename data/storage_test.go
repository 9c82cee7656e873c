package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolInterningIsIdempotent(t *testing.T) {
	s := NewDefaultStore()
	a, err := s.Symbol("cat")
	require.NoError(t, err)
	b, err := s.Symbol("cat")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := s.Symbol("dog")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestExpressionSymbolsAreScoped(t *testing.T) {
	s := NewDefaultStore()
	exprA, err := s.Alloc(Cell{Kind: ExpressionKind, Text: "exprA", Left: NoRef, Right: NoRef, SliceOf: NoRef})
	require.NoError(t, err)
	exprB, err := s.Alloc(Cell{Kind: ExpressionKind, Text: "exprB", Left: NoRef, Right: NoRef, SliceOf: NoRef})
	require.NoError(t, err)

	a, err := s.ExpressionSymbol(exprA, "x")
	require.NoError(t, err)
	b, err := s.ExpressionSymbol(exprB, "x")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "same identifier text in different expressions must not collide")

	again, err := s.ExpressionSymbol(exprA, "x")
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestBlockGrowthDoubles(t *testing.T) {
	b := newBlock(StorageSettings{InitialSize: 4, Strategy: Doubling})
	assert.Equal(t, 4, b.cap)
	b.grow(5)
	assert.Equal(t, 8, b.cap)
}

func TestBlockGrowthRespectsMaxSize(t *testing.T) {
	b := newBlock(StorageSettings{InitialSize: 4, Strategy: Doubling, MaxSize: 6})
	b.grow(5)
	assert.Equal(t, 6, b.cap)
	assert.True(t, b.full(7))
	assert.False(t, b.full(6))
}
