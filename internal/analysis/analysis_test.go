package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type contractCase struct {
	Input string `yaml:"input"`
	Want  Record `yaml:"want"`
}

func loadContract(t *testing.T) map[string]contractCase {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "contract", "*.yaml"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no contract fixtures")
	}
	out := make(map[string]contractCase, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		var c contractCase
		if err := yaml.Unmarshal(b, &c); err != nil {
			t.Fatalf("decode %s: %v", p, err)
		}
		out[filepath.Base(p)] = c
	}
	return out
}

func sameItems(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func assertRecord(t *testing.T, got, want Record) {
	t.Helper()
	if got.RiskScore != want.RiskScore {
		t.Fatalf("risk: got %d want %d", got.RiskScore, want.RiskScore)
	}
	if !sameItems(got.KeyIssues, want.KeyIssues) {
		t.Fatalf("key issues: got %q want %q", got.KeyIssues, want.KeyIssues)
	}
	if got.PlainSummary != want.PlainSummary {
		t.Fatalf("summary: got %q want %q", got.PlainSummary, want.PlainSummary)
	}
	if !sameItems(got.RedFlags, want.RedFlags) {
		t.Fatalf("red flags: got %q want %q", got.RedFlags, want.RedFlags)
	}
}

// Recorded producer outputs paired with the records they must parse into.
func TestParse_Contract(t *testing.T) {
	for name, c := range loadContract(t) {
		t.Run(name, func(t *testing.T) {
			assertRecord(t, Parse(c.Input), c.Want)
		})
	}
}

func TestParse_MissingRiskScoreDefaults(t *testing.T) {
	rec := Parse("KEY ISSUES:\n- one\nPLAIN ENGLISH SUMMARY:\nok")
	if rec.RiskScore != DefaultRiskScore {
		t.Fatalf("risk: %d", rec.RiskScore)
	}
}

func TestParse_RiskScoreWithoutDigits(t *testing.T) {
	if rec := Parse("RISK SCORE: high\nPLAIN ENGLISH SUMMARY: x"); rec.RiskScore != 5 {
		t.Fatalf("risk: %d", rec.RiskScore)
	}
	if rec := Parse("RISK SCORE: 99999999999999999999999"); rec.RiskScore != 5 {
		t.Fatalf("overflow risk: %d", rec.RiskScore)
	}
}

func TestParse_CaseInsensitiveHeaders(t *testing.T) {
	rec := Parse("risk score: 3\nkey issues:\n- a\nplain english summary:\nshort\nred flags:\n- b")
	want := Record{RiskScore: 3, KeyIssues: []string{"a"}, PlainSummary: "short", RedFlags: []string{"b"}}
	assertRecord(t, rec, want)
}

func TestParse_RedFlagsSentinelAnyCase(t *testing.T) {
	for _, line := range []string{"No major red flags detected.", "NO MAJOR RED FLAGS", "• no Major Red Flags were found"} {
		rec := Parse("RED FLAGS:\n" + line)
		if len(rec.RedFlags) != 0 {
			t.Fatalf("%q: got %q", line, rec.RedFlags)
		}
	}
}

func TestParse_EmptyInput(t *testing.T) {
	rec := Parse("")
	if rec.RiskScore != 5 || rec.PlainSummary != "" || rec.KeyIssues == nil || rec.RedFlags == nil {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestParse_EmptySummaryFallsBackToInput(t *testing.T) {
	in := "  RISK SCORE: 2\nPLAIN ENGLISH SUMMARY:\n\nRED FLAGS:\n- x\n"
	rec := Parse(in)
	if rec.PlainSummary != strings.TrimSpace(in) {
		t.Fatalf("summary: %q", rec.PlainSummary)
	}
}

func TestExtractor_ClampRisk(t *testing.T) {
	cases := []struct {
		in           string
		raw, clamped int
	}{
		{"RISK SCORE: 0", 0, 1},
		{"RISK SCORE: 15", 15, 10},
		{"RISK SCORE: 7", 7, 7},
	}
	for _, tc := range cases {
		if got := Parse(tc.in).RiskScore; got != tc.raw {
			t.Fatalf("%q unclamped: got %d want %d", tc.in, got, tc.raw)
		}
		if got := (Extractor{ClampRisk: true}).Parse(tc.in).RiskScore; got != tc.clamped {
			t.Fatalf("%q clamped: got %d want %d", tc.in, got, tc.clamped)
		}
	}
}

func TestFallback(t *testing.T) {
	rec := Fallback("  raw text \n")
	if rec.RiskScore != 5 || rec.PlainSummary != "raw text" || len(rec.KeyIssues) != 0 || len(rec.RedFlags) != 0 {
		t.Fatalf("unexpected fallback: %#v", rec)
	}
}

func FuzzParse(f *testing.F) {
	f.Add("RISK SCORE: 7\nKEY ISSUES:\n• a\nPLAIN ENGLISH SUMMARY:\nb\nRED FLAGS:\n• c")
	f.Add("RED FLAGS:\nKEY ISSUES:\nPLAIN ENGLISH SUMMARY:")
	f.Add("**RISK SCORE:** \n\n***")
	f.Add("")
	f.Fuzz(func(t *testing.T, s string) {
		rec := Parse(s)
		if rec.KeyIssues == nil || rec.RedFlags == nil {
			t.Fatalf("nil list for %q", s)
		}
		if strings.TrimSpace(s) != "" && rec.PlainSummary == "" {
			t.Fatalf("empty summary for non-empty input %q", s)
		}
		for _, item := range append(rec.KeyIssues, rec.RedFlags...) {
			if strings.TrimSpace(item) == "" {
				t.Fatalf("blank item for %q", s)
			}
		}
	})
}
