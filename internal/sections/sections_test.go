package sections

import (
	"reflect"
	"testing"
)

func testSchema(colonOptional bool) *Schema {
	return New(colonOptional,
		Section{Name: "ALPHA", Kind: Text},
		Section{Name: "BETA ITEMS", Kind: List},
		Section{Name: "GAMMA", Kind: Text},
	)
}

func TestSpan_EndsAtNextLaterHeader(t *testing.T) {
	s := testSchema(false)
	text := "ALPHA: first\nsecond\nBETA ITEMS:\n- one\nGAMMA: tail"
	body, ok := s.Span(text, "ALPHA")
	if !ok || body != " first\nsecond\n" {
		t.Fatalf("alpha: ok=%v body=%q", ok, body)
	}
	body, ok = s.Span(text, "GAMMA")
	if !ok || body != " tail" {
		t.Fatalf("gamma: ok=%v body=%q", ok, body)
	}
}

func TestSpan_SkipsMissingHeaders(t *testing.T) {
	s := testSchema(false)
	body, ok := s.Span("ALPHA: only\nGAMMA: last", "ALPHA")
	if !ok || body != " only\n" {
		t.Fatalf("ok=%v body=%q", ok, body)
	}
}

func TestSpan_EarlierHeaderDoesNotStop(t *testing.T) {
	s := testSchema(false)
	text := "BETA ITEMS:\n- one\nALPHA: misplaced\n- two"
	body, ok := s.Span(text, "BETA ITEMS")
	if !ok {
		t.Fatalf("expected beta")
	}
	if got := Items(body); !reflect.DeepEqual(got, []string{"one", "ALPHA: misplaced", "two"}) {
		t.Fatalf("items: %q", got)
	}
}

func TestSpan_CaseInsensitiveAndDecorated(t *testing.T) {
	s := testSchema(false)
	text := "## **Beta   Items:**\n* one\n### gamma: end"
	body, ok := s.Span(text, "BETA ITEMS")
	if !ok {
		t.Fatalf("not found")
	}
	if got := Items(body); !reflect.DeepEqual(got, []string{"one"}) {
		t.Fatalf("items: %q", got)
	}
}

func TestSpan_ColonRequired(t *testing.T) {
	s := testSchema(false)
	if _, ok := s.Span("ALPHA\nbody", "ALPHA"); ok {
		t.Fatalf("header without colon must not match")
	}
	s = testSchema(true)
	body, ok := s.Span("ALPHA\nbody\nGAMMA\nend", "ALPHA")
	if !ok || body != "\nbody\n" {
		t.Fatalf("ok=%v body=%q", ok, body)
	}
}

func TestSpan_ProseIsNotAHeader(t *testing.T) {
	s := testSchema(true)
	text := "ALPHA:\nGamma rays are mentioned here.\nstill alpha"
	body, ok := s.Span(text, "ALPHA")
	if !ok || body != "\nGamma rays are mentioned here.\nstill alpha" {
		t.Fatalf("ok=%v body=%q", ok, body)
	}
}

func TestSpan_UnknownSection(t *testing.T) {
	if _, ok := testSchema(false).Span("ALPHA: x", "DELTA"); ok {
		t.Fatalf("unknown section reported found")
	}
}

func TestHeadersAndSection(t *testing.T) {
	s := testSchema(false)
	if got := s.Headers(); !reflect.DeepEqual(got, []string{"ALPHA", "BETA ITEMS", "GAMMA"}) {
		t.Fatalf("headers: %v", got)
	}
	sec, ok := s.Section("BETA ITEMS")
	if !ok || sec.Kind != List {
		t.Fatalf("section: %+v %v", sec, ok)
	}
}

func TestStripBullet(t *testing.T) {
	cases := map[string]string{
		"• item":          "item",
		"- item":          "item",
		"*** item":        "item",
		"**Bold:** value": "Bold: value",
		"  plain  ":       "plain",
		"-":               "",
		"well-known term": "well-known term",
	}
	for in, want := range cases {
		if got := StripBullet(in); got != want {
			t.Fatalf("StripBullet(%q) = %q want %q", in, got, want)
		}
	}
}

func TestItems_NeverNil(t *testing.T) {
	if got := Items("\n  \n"); got == nil || len(got) != 0 {
		t.Fatalf("got %#v", got)
	}
}

func TestItemsSplitInline(t *testing.T) {
	got := ItemsSplitInline("• first • second\n• third")
	if !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Fatalf("got %q", got)
	}
	if got := Items("• first • second"); len(got) != 1 {
		t.Fatalf("Items must not split inline bullets: %q", got)
	}
}

func TestSpan_NumberedHeaders(t *testing.T) {
	s := testSchema(false)
	text := "1. ALPHA: first\n2) **BETA ITEMS:**\n- one\n3. GAMMA: tail"
	body, ok := s.Span(text, "BETA ITEMS")
	if !ok {
		t.Fatalf("numbered header not found")
	}
	if got := Items(body); !reflect.DeepEqual(got, []string{"one"}) {
		t.Fatalf("items: %q", got)
	}
}

func TestSpan_MidLineHeaderFallback(t *testing.T) {
	s := testSchema(false)
	text := "Here is my answer. BETA ITEMS:\n- one\nGAMMA: tail"
	body, ok := s.Span(text, "BETA ITEMS")
	if !ok {
		t.Fatalf("mid-line header not found")
	}
	if got := Items(body); !reflect.DeepEqual(got, []string{"one"}) {
		t.Fatalf("items: %q", got)
	}
	// a header at line start is preferred over an earlier mid-line mention
	body, ok = s.Span("see gamma: below\nGAMMA: real", "GAMMA")
	if !ok || body != " real" {
		t.Fatalf("ok=%v body=%q", ok, body)
	}
}
