package enrich

import (
	"reflect"
	"testing"
)

const clauseResponse = `Here is the triage you asked for.

---ITEM 1---
PRIORITY: High
CATEGORY: Fees
ACTION: Ask to cap the late fee at 5%.

**---ITEM 2---**
- **Priority:** low
- Category: Maintenance
- Action: Confirm who pays for
  appliance repairs.
`

func TestSplitBlocks(t *testing.T) {
	blocks := SplitBlocks(clauseResponse)
	if len(blocks) != 2 {
		t.Fatalf("blocks: %d %q", len(blocks), blocks)
	}
	if blocks[0] != "PRIORITY: High\nCATEGORY: Fees\nACTION: Ask to cap the late fee at 5%." {
		t.Fatalf("block 0: %q", blocks[0])
	}
}

func TestClauses_FieldOnDelimiterLine(t *testing.T) {
	items := []string{"Late fee", "Repairs", "Entry"}
	raw := "---ITEM 1--- PRIORITY: High\nCATEGORY: Fees\n---ITEM 2---\nPRIORITY: Low\n**---ITEM 3---**\nPRIORITY: High"
	got, mm := Clauses(items, raw)
	if !mm.OK() {
		t.Fatalf("mismatch: %s", mm)
	}
	if got[0].Priority != "High" || got[0].Category != "Fees" {
		t.Fatalf("item 1: %+v", got[0])
	}
	if got[1].Priority != "Low" || got[2].Priority != "High" {
		t.Fatalf("items shifted: %+v", got)
	}
}

func TestSplitBlocks_NoDelimiter(t *testing.T) {
	if got := SplitBlocks("PRIORITY: High"); len(got) != 0 {
		t.Fatalf("got %q", got)
	}
}

func TestParseFields_ContinuationAndFirstWins(t *testing.T) {
	f := ParseFields("- Action: Confirm who pays for\n  appliance repairs.\nACTION: ignored\nstill ignored")
	if got := f.Get("action"); got != "Confirm who pays for appliance repairs." {
		t.Fatalf("action: %q", got)
	}
	if len(f) != 1 {
		t.Fatalf("fields: %v", f)
	}
}

func TestZip_Positional(t *testing.T) {
	items := []string{"Late fee of 10%", "Tenant repairs appliances"}
	got, mm := Clauses(items, clauseResponse)
	if !mm.OK() {
		t.Fatalf("mismatch: %s", mm)
	}
	want := []Clause{
		{Text: "Late fee of 10%", Priority: "High", Category: "Fees", Action: "Ask to cap the late fee at 5%."},
		{Text: "Tenant repairs appliances", Priority: "Low", Category: "Maintenance", Action: "Confirm who pays for appliance repairs."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestZip_ShortResponseFillsDefaults(t *testing.T) {
	items := []string{"a", "b", "c"}
	got, mm := Clauses(items, clauseResponse)
	if mm.OK() || mm.Want != 3 || mm.Got != 2 {
		t.Fatalf("mismatch: %+v", mm)
	}
	if len(got) != 3 {
		t.Fatalf("len: %d", len(got))
	}
	last := got[2]
	if last.Text != "c" || last.Priority != DefaultPriority || last.Category != DefaultCategory || last.Action != DefaultAction {
		t.Fatalf("defaults: %+v", last)
	}
	if got[0].Priority != "High" {
		t.Fatalf("first block must stay with first input: %+v", got[0])
	}
}

func TestZip_SurplusBlocksIgnored(t *testing.T) {
	got, mm := Zip(1, clauseResponse)
	if len(got) != 1 || mm.Got != 2 || mm.OK() {
		t.Fatalf("got %d fields, mismatch %+v", len(got), mm)
	}
}

func TestZip_EmptyResponse(t *testing.T) {
	got, mm := Zip(2, "")
	if len(got) != 2 || got[0] == nil || mm.Got != 0 {
		t.Fatalf("got %v %+v", got, mm)
	}
}

func TestCanonicalPriority(t *testing.T) {
	cases := map[string]string{"HIGH": "High", "critical - act now": "High", " low ": "Low", "moderate": "Medium", "": "Medium"}
	for in, want := range cases {
		if got := CanonicalPriority(in); got != want {
			t.Fatalf("%q: got %q want %q", in, got, want)
		}
	}
}

func TestSortByPriority_Stable(t *testing.T) {
	cs := []Clause{{Text: "1", Priority: "Low"}, {Text: "2", Priority: "High"}, {Text: "3", Priority: "Medium"}, {Text: "4", Priority: "High"}}
	SortByPriority(cs)
	var order []string
	for _, c := range cs {
		order = append(order, c.Text)
	}
	if !reflect.DeepEqual(order, []string{"2", "4", "3", "1"}) {
		t.Fatalf("order: %v", order)
	}
}

func TestGlossary_DefaultsAndExpansion(t *testing.T) {
	raw := "---ITEM 1---\nDEFINITION: Money you pay up front that is returned later.\nEXAMPLE: $1,000 held by the landlord."
	terms := []Candidate{{Term: "Security Deposit"}, {Term: "APR", Expansion: "Annual Percentage Rate"}, {Term: "Escrow"}}
	got, mm := Glossary(terms, raw)
	if mm.Got != 1 || mm.Want != 3 {
		t.Fatalf("mismatch: %+v", mm)
	}
	if got[0].Definition != "Money you pay up front that is returned later." || got[0].Example != "$1,000 held by the landlord." {
		t.Fatalf("term 0: %+v", got[0])
	}
	if got[1].Definition != "Annual Percentage Rate" {
		t.Fatalf("term 1: %+v", got[1])
	}
	if got[2].Definition != DefaultDefinition {
		t.Fatalf("term 2: %+v", got[2])
	}
}

func TestExtractTerms(t *testing.T) {
	doc := `This Lease is made between John Smith (the "Landlord") and Jane Doe (the "Tenant").
The Security Deposit is held in escrow. Interest accrues at the Annual Percentage Rate (APR).
The Tenant shall return the Security Deposit form. The Landlord may inspect.`
	got := ExtractTerms(doc, 2, 0)
	var names []string
	for _, c := range got {
		names = append(names, c.Term)
	}
	want := []string{"Landlord", "Tenant", "APR", "Security Deposit"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("terms: %v", names)
	}
	if got[2].Expansion != "Annual Percentage Rate" {
		t.Fatalf("expansion: %+v", got[2])
	}
	if capped := ExtractTerms(doc, 2, 1); len(capped) != 1 {
		t.Fatalf("cap: %d", len(capped))
	}
}
