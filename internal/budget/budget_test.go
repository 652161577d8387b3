package budget

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEstimateTokensFromChars(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 0},
		{1, 1},
		{4, 1},
		{5, 2},
		{400, 100},
	}
	for _, c := range cases {
		if got := EstimateTokensFromChars(c.in); got != c.want {
			t.Fatalf("EstimateTokensFromChars(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestModelContextTokens(t *testing.T) {
	cases := map[string]int{
		"":                        8192,
		"gemini-2.0-flash":        1_000_000,
		"models/gemini-1.5-pro":   2_000_000,
		"GPT-4o":                  128_000,
		"mystery-200k":            200_000,
		"claude-3-5-sonnet-latest": 200_000,
		"mystery":                 8192,
	}
	for name, want := range cases {
		if got := ModelContextTokens(name); got != want {
			t.Fatalf("ModelContextTokens(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestHeadroomAndDocumentTokens(t *testing.T) {
	if HeadroomTokens("mystery") != 512 {
		t.Fatalf("small model headroom should hit the 512 floor")
	}
	if HeadroomTokens("gpt-4o") != 6400 {
		t.Fatalf("gpt-4o headroom = %d", HeadroomTokens("gpt-4o"))
	}
	if got := DocumentTokens("mystery", 1000); got != 8192-2048-512-1000 {
		t.Fatalf("DocumentTokens = %d", got)
	}
	if DocumentTokens("mystery", 100_000) != 0 {
		t.Fatalf("DocumentTokens must not go negative")
	}
}

func TestFit_NoCutWhenSmall(t *testing.T) {
	doc := "short text"
	got, cut := Fit(doc, 100)
	if cut || got != doc {
		t.Fatalf("unexpected cut: %q", got)
	}
}

func TestFit_CutsAtParagraph(t *testing.T) {
	doc := strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 30)
	got, cut := Fit(doc, 10)
	if !cut || got != strings.Repeat("a", 30) {
		t.Fatalf("got %q cut=%v", got, cut)
	}
}

func TestFit_KeepsUTF8Valid(t *testing.T) {
	doc := strings.Repeat("é", 100)
	got, cut := Fit(doc, 5)
	if !cut || !utf8.ValidString(got) || len(got) > 20 {
		t.Fatalf("got %q (%d bytes) cut=%v", got, len(got), cut)
	}
	if got, _ := Fit(doc, 0); got != "" {
		t.Fatalf("zero budget should yield empty, got %q", got)
	}
}
