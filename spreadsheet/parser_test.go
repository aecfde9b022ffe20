package spreadsheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseToText runs contents through the parser facade and returns the
// serialized form of the finished root.
func parseToText(t *testing.T, contents string) string {
	t.Helper()
	formula := strings.HasPrefix(contents, "=")
	b := NewTreeBuilder(NewCellTable(), formula)
	require.NoError(t, ParseExpression(contents, b), contents)
	root, err := b.GetRoot(nil, formula)
	require.NoError(t, err, contents)
	return root.Serialize()
}

func TestParseLiterals(t *testing.T) {
	cases := map[string]string{
		"hello":    "hello",
		"":         "",
		"10":       "10",
		"-2.5":     "-2.5",
		"+5":       "5",
		".5":       "0.5",
		"1e3":      "1000",
		"3 apples": "3 apples",
		"=42":      "=42",
		`="hi"`:    `="hi"`,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseToText(t, in), "input %q", in)
	}
}

func TestParseLiteralNumberGrammar(t *testing.T) {
	// the literal fast path follows the in-formula number grammar, not
	// everything strconv.ParseFloat accepts
	for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity", "0x1p4", "1_000", "- 5"} {
		assert.Equal(t, in, parseToText(t, in), "input %q must stay text", in)
	}
}

func TestParsePrecedence(t *testing.T) {
	cases := map[string]string{
		"=1+2*3":      "=(1+(3*2))",
		"=1*2+3":      "=((2*1)+3)",
		"=1-2-3":      "=((1-2)-3)",
		"=4/2/2":      "=((4/2)/2)",
		"=2^3^2":      "=(2^(3^2))",
		"=-2^2":       "=((-2)^2)",
		"=--3":        "=(-(-3))",
		"=(1+2)*3":    "=(3*(1+2))",
		"=1<2":        "=(1<2)",
		"=1+2<3*4":    "=((1+2)<(4*3))",
		"=1<2=1":      "=((1<2)=1)",
		"=1<=2":       "=(1<=2)",
		"=1<>2":       "=(1<>2)",
		"=1>=0>0":     "=((1>=0)>0)",
		"= 1 + 2 ":    "=(1+2)",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseToText(t, in), "input %q", in)
	}
}

func TestParseReferencesAndStrings(t *testing.T) {
	cases := map[string]string{
		"=A1":             "=A1",
		"=$A1+A$1":        "=($A1+A$1)",
		"=$AA$10":         "=$AA$10",
		"=a1":             "=A1",
		`="a""b"`:         `="a""b"`,
		`="x"+"y"`:        `=("x"+"y")`,
		"=A1+B2*C3":       "=(A1+(C3*B2))",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseToText(t, in), "input %q", in)
	}
}

func TestParseSerializedFormsReparse(t *testing.T) {
	// everything the serializer emits must be accepted back; OpMul swaps
	// its operands on every parse, so the text returns to its first form
	// after two further round trips
	inputs := []string{
		"=(1+(3*2))",
		"=((-2)^2)",
		`=("a""b"+$C$4)`,
		"=1e+06",
		"=(A1<>B$2)",
	}
	for _, in := range inputs {
		first := parseToText(t, in)
		second := parseToText(t, first)
		third := parseToText(t, second)
		assert.Equal(t, first, third, "input %q", in)
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"=",
		"=1+",
		"=+1",
		"=(1",
		"=1)",
		"=1 2",
		"=1..2",
		"=.",
		`="abc`,
		"=$",
		"=$$A1",
		"=A1B2C",
		"=foo",
		"=SUM(A1)",
		"=PI()",
		"=A1:B2",
		"=A1:",
		"=1+A1:B2",
		"=1&2",
		"=#REF!",
	}
	for _, in := range inputs {
		b := NewTreeBuilder(NewCellTable(), true)
		err := ParseExpression(in, b)
		if err == nil {
			_, err = b.GetRoot(nil, true)
		}
		assert.Error(t, err, "input %q should fail", in)
	}
}

func TestParseNumberFormats(t *testing.T) {
	cases := map[string]string{
		"=0.5":    "=0.5",
		"=1e3":    "=1000",
		"=1E-2":   "=0.01",
		"=1e+06":  "=1e+06",
		"=2.25e2": "=225",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseToText(t, in), "input %q", in)
	}
}

func TestParseLexSplitsBareExponent(t *testing.T) {
	// "1e" is the number 1 followed by the identifier e, which is not a
	// valid expression
	b := NewTreeBuilder(NewCellTable(), true)
	err := ParseExpression("=1e", b)
	assert.Error(t, err)
}
