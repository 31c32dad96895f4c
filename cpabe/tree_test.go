package cpabe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iscaraca/cryptid"
)

func TestSatisfies(t *testing.T) {
	tree := Threshold(2,
		Leaf("finance"),
		And(Leaf("manager"), Leaf("senior")),
		Or(Leaf("audit"), Leaf("legal")),
	)
	require.NoError(t, tree.Validate())

	tests := []struct {
		attrs []string
		want  cryptid.ValidationResult
	}{
		{[]string{"finance", "legal"}, cryptid.ValidationSuccess},
		{[]string{"manager", "senior", "audit"}, cryptid.ValidationSuccess},
		{[]string{"finance", "manager"}, cryptid.ValidationFailure},
		{[]string{"audit", "legal"}, cryptid.ValidationFailure},
		{nil, cryptid.ValidationFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tree.Satisfies(tt.attrs), "%v", tt.attrs)
	}
}

func TestValidate(t *testing.T) {
	for name, n := range map[string]*Node{
		"nil":             nil,
		"empty leaf":      Leaf(""),
		"zero threshold":  Threshold(0, Leaf("a")),
		"threshold above": Threshold(3, Leaf("a"), Leaf("b")),
		"nested":          And(Leaf("a"), Or()),
		"gate attribute":  {Threshold: 1, Attribute: "a", Children: []*Node{Leaf("b")}},
	} {
		assert.ErrorIs(t, n.Validate(), ErrInvalidPolicy, name)
	}
}

func TestLeavesAndAttributes(t *testing.T) {
	tree := Or(And(Leaf("a"), Leaf("b")), And(Leaf("a"), Leaf("c")))
	leaves := tree.Leaves()
	require.Len(t, leaves, 4)
	assert.Equal(t, "c", leaves[3].Attribute)
	assert.Equal(t, []string{"a", "b", "c"}, tree.Attributes())
}

func TestCloneIsDeep(t *testing.T) {
	tree := And(Leaf("a"), Or(Leaf("b"), Leaf("c")))
	c := tree.Clone()
	assert.True(t, c.Equal(tree))
	c.Children[1].Children[0].Attribute = "z"
	assert.False(t, c.Equal(tree))
	assert.Equal(t, "b", tree.Children[1].Children[0].Attribute)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want *Node
	}{
		{"finance", Leaf("finance")},
		{"a and b and c", And(Leaf("a"), Leaf("b"), Leaf("c"))},
		{"a or b and c", Or(Leaf("a"), And(Leaf("b"), Leaf("c")))},
		{"(a or b) and c", And(Or(Leaf("a"), Leaf("b")), Leaf("c"))},
		{"2 of (a, b, c or d)", Threshold(2, Leaf("a"), Leaf("b"), Or(Leaf("c"), Leaf("d")))},
		{"a AND 1 OF (b)", And(Leaf("a"), Threshold(1, Leaf("b")))},
		{`"two words" or dept:eng`, Or(Leaf("two words"), Leaf("dept:eng"))},
		{`"and" and user@example.com`, And(Leaf("and"), Leaf("user@example.com"))},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
	}
}

func TestParsePolicyErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"a and",
		"(a or b",
		"a b",
		"3 of (a, b)",
		"0 of (a)",
		"2 of a, b",
		"a # b",
		`"unterminated`,
		"and",
	} {
		_, err := ParsePolicy(in)
		assert.ErrorIs(t, err, ErrInvalidPolicy, in)
	}
}

func TestPolicyStringRoundTrip(t *testing.T) {
	for _, tree := range []*Node{
		Leaf("finance"),
		Leaf("two words"),
		Leaf("or"),
		Leaf("2fa"),
		Leaf("-5"),
		Or(Leaf("-12"), Leaf("x-1")),
		And(Leaf("a"), Leaf("b")),
		Or(And(Leaf("a"), Leaf("b")), Leaf("c")),
		And(And(Leaf("a"), Leaf("b")), Leaf("c")),
		Threshold(2, Leaf("a"), Or(Leaf("b"), Leaf("c")), Leaf("d")),
		Threshold(1, Leaf("solo")),
	} {
		s := tree.String()
		got, err := ParsePolicy(s)
		require.NoError(t, err, s)
		assert.True(t, tree.Equal(got), "%s: got %s", s, got)
	}
	assert.Equal(t, "(a and (b or c))", And(Leaf("a"), Or(Leaf("b"), Leaf("c"))).String())
	assert.Equal(t, "2 of (a, b, c)", Threshold(2, Leaf("a"), Leaf("b"), Leaf("c")).String())
	assert.Equal(t, `"-5"`, Leaf("-5").String())
}
