package formula

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLiteral(t *testing.T) {
	n, err := Parse("42")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Lit(42)
	if diff := cmp.Diff(want, n); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Node
	}{
		{
			name: "and binds tighter than or",
			in:   "1 | 2 & 3",
			want: &Node{Kind: Or, Left: Lit(1), Right: &Node{Kind: And, Left: Lit(2), Right: Lit(3)}},
		},
		{
			name: "or binds tighter than xor",
			in:   "1 ^ 2 | 3",
			want: &Node{Kind: Xor, Left: Lit(1), Right: &Node{Kind: Or, Left: Lit(2), Right: Lit(3)}},
		},
		{
			name: "xor binds tighter than implication",
			in:   "1 => 2 ^ 3",
			want: &Node{Kind: Rimpl, Left: Lit(1), Right: &Node{Kind: Xor, Left: Lit(2), Right: Lit(3)}},
		},
		{
			name: "unary minus collapses into a negative literal",
			in:   "-5",
			want: Lit(-5),
		},
		{
			name: "explicit not wraps a compound operand",
			in:   "!(1 & 2)",
			want: &Node{Kind: Not, Left: &Node{Kind: And, Left: Lit(1), Right: Lit(2)}},
		},
		{
			name: "tilde is also not",
			in:   "~1",
			want: &Node{Kind: Not, Left: Lit(1)},
		},
		{
			name: "parentheses override precedence",
			in:   "(1 | 2) & 3",
			want: &Node{Kind: And, Left: &Node{Kind: Or, Left: Lit(1), Right: Lit(2)}, Right: Lit(3)},
		},
		{
			name: "biconditional unicode-free spelling",
			in:   "1 <=> 2",
			want: &Node{Kind: Eq, Left: Lit(1), Right: Lit(2)},
		},
		{
			name: "left implication arrow spelling",
			in:   "1 <- 2",
			want: &Node{Kind: Limpl, Left: Lit(1), Right: Lit(2)},
		},
		{
			name: "word-form and/or spellings",
			in:   "1 and 2 or 3",
			want: &Node{Kind: Or, Left: &Node{Kind: And, Left: Lit(1), Right: Lit(2)}, Right: Lit(3)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"1 &",
		"(1 | 2",
		"1 @ 2",
		"1 2",
	}
	for _, in := range tests {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", in)
		}
	}
}

func TestParsePrintRoundTrip(t *testing.T) {
	tests := []string{
		"1 & 2",
		"1 | 2 & 3",
		"!(1 ^ 2)",
		"(1 => 2) <= 3",
		"-4 & 5",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			first, err := Parse(in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", in, err)
			}
			printed := first.String()
			second, err := Parse(printed)
			if err != nil {
				t.Fatalf("Parse(print(%q)=%q): %v", in, printed, err)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("round trip mismatch for %q (printed as %q) (-first +second):\n%s", in, printed, diff)
			}
		})
	}
}
