package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbarrick/exl/lex"
)

func mustParse(t *testing.T, src string) Result {
	t.Helper()
	l := lex.NewFromString(src)
	res, err := Parse(l)
	require.NoError(t, err)
	return res
}

// "5 == 5 + 5" binds Addition tighter than Equality, so Equality is
// the root with Addition as its right subtree (spec §4.3 priority
// table; testable property 5).
func TestAdditionBindsTighterThanEquality(t *testing.T) {
	res := mustParse(t, "5 == 5 + 5")
	root := res.Nodes[res.Root]
	require.Equal(t, Equality, root.Definition)
	right := res.Nodes[root.Right]
	assert.Equal(t, Addition, right.Definition)
	left := res.Nodes[root.Left]
	assert.Equal(t, Number, left.Definition)
}

// "10 , 20 , 30" is a left-leaning CommaList chain.
func TestCommaListLeftLeaning(t *testing.T) {
	res := mustParse(t, "10 , 20 , 30")
	root := res.Nodes[res.Root]
	require.Equal(t, CommaList, root.Definition)
	assert.Equal(t, "30", res.Nodes[root.Right].Token.Text)
	innerLeft := res.Nodes[root.Left]
	require.Equal(t, CommaList, innerLeft.Definition)
	assert.Equal(t, "10", res.Nodes[innerLeft.Left].Token.Text)
	assert.Equal(t, "20", res.Nodes[innerLeft.Right].Token.Text)
}

// "10 20 30" (no commas) is an implicit left-leaning List chain with
// the same shape as the comma-separated form.
func TestSpaceListLeftLeaning(t *testing.T) {
	res := mustParse(t, "10 20 30")
	root := res.Nodes[res.Root]
	require.Equal(t, List, root.Definition)
	innerLeft := res.Nodes[root.Left]
	require.Equal(t, List, innerLeft.Definition)
	assert.Equal(t, "10", res.Nodes[innerLeft.Left].Token.Text)
	assert.Equal(t, "20", res.Nodes[innerLeft.Right].Token.Text)
	assert.Equal(t, "30", res.Nodes[root.Right].Token.Text)
}

// A space-list wraps an Addition expression rather than nesting
// inside it, because List binds looser than Addition.
func TestSpaceListWrapsAddition(t *testing.T) {
	res := mustParse(t, "1 + 2 3")
	root := res.Nodes[res.Root]
	require.Equal(t, List, root.Definition)
	left := res.Nodes[root.Left]
	assert.Equal(t, Addition, left.Definition)
	assert.Equal(t, "3", res.Nodes[root.Right].Token.Text)
}

// value.name parses to an Access node whose right child is a Property
// (spec §4.3 "Identifiers become Property under Access").
func TestMemberAccessProducesAccessNode(t *testing.T) {
	res := mustParse(t, "value.name")
	root := res.Nodes[res.Root]
	require.Equal(t, Access, root.Definition)
	assert.Equal(t, Identifier, res.Nodes[root.Left].Definition)
	assert.Equal(t, Property, res.Nodes[root.Right].Definition)
}

// Parenthesized groups parse independently of the surrounding
// expression's operator climbing.
func TestGroupIsolatesPrecedence(t *testing.T) {
	res := mustParse(t, "(1 + 2) == 3")
	root := res.Nodes[res.Root]
	require.Equal(t, Equality, root.Definition)
	group := res.Nodes[root.Left]
	require.Equal(t, Group, group.Definition)
	inner := res.Nodes[group.Left]
	assert.Equal(t, Addition, inner.Definition)
}

// Two adjacent groups form a space-list of groups.
func TestAdjacentGroupsFormList(t *testing.T) {
	res := mustParse(t, "(1) (2)")
	root := res.Nodes[res.Root]
	require.Equal(t, List, root.Definition)
	assert.Equal(t, Group, res.Nodes[root.Left].Definition)
	assert.Equal(t, Group, res.Nodes[root.Right].Definition)
}

// Testable property 4: every non-root node's parent is reachable by
// walking down from the root through Left/Right, and the root itself
// has no parent.
func TestParentageConsistency(t *testing.T) {
	res := mustParse(t, "5 == 5 + 5 , value.name , (1) (2)")
	require.Equal(t, noIndex, res.Nodes[res.Root].Parent)

	reachable := make(map[int]bool)
	var walk func(idx int)
	walk = func(idx int) {
		if idx == noIndex || reachable[idx] {
			return
		}
		reachable[idx] = true
		n := res.Nodes[idx]
		if n.Left != noIndex {
			assert.Equal(t, idx, res.Nodes[n.Left].Parent)
			walk(n.Left)
		}
		if n.Right != noIndex {
			assert.Equal(t, idx, res.Nodes[n.Right].Parent)
			walk(n.Right)
		}
	}
	walk(res.Root)
	assert.Len(t, reachable, len(res.Nodes))
}

// Reserved identifiers reclassify into their own Definitions.
func TestReservedIdentifiersBecomeLiterals(t *testing.T) {
	res := mustParse(t, "True")
	assert.Equal(t, True, res.Nodes[res.Root].Definition)
}

func TestUnmatchedCloserIsReported(t *testing.T) {
	l := lex.NewFromString("1)")
	_, err := Parse(l)
	require.Error(t, err)
}

func TestBinaryOperatorMissingOperandIsReported(t *testing.T) {
	l := lex.NewFromString("+ 1")
	_, err := Parse(l)
	require.Error(t, err)
}
