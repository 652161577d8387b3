package advice

import (
	"reflect"
	"testing"
)

func TestParseTips_Numbered(t *testing.T) {
	in := `Here are some points:

1. **Ask for a lower late fee.** Ten percent is above the local norm.
2) Request a 5-day grace period
3. Cap the annual rent increase
   at 3 percent.`
	want := []string{
		"Ask for a lower late fee. Ten percent is above the local norm.",
		"Request a 5-day grace period",
		"Cap the annual rent increase at 3 percent.",
	}
	if got := ParseTips(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q", got)
	}
}

func TestParseTips_Bulleted(t *testing.T) {
	got := ParseTips("- first\n* second")
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("got %q", got)
	}
}

func TestParseTips_PlainParagraph(t *testing.T) {
	got := ParseTips("Try to negotiate the deposit.\nIt is high.")
	if !reflect.DeepEqual(got, []string{"Try to negotiate the deposit. It is high."}) {
		t.Fatalf("got %q", got)
	}
	if got := ParseTips("   "); len(got) != 0 || got == nil {
		t.Fatalf("empty: %#v", got)
	}
}

func TestAnswer(t *testing.T) {
	if got := Answer("**Yes.**\n\nYou can keep a cat."); got != "Yes. You can keep a cat." {
		t.Fatalf("got %q", got)
	}
}
