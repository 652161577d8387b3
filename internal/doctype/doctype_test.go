package doctype

import "testing"

func TestParseDetection_LanguageAndType(t *testing.T) {
	d := ParseDetection("LANGUAGE: Spanish\nTYPE: Rental/Housing Documents")
	if d.Language != "Spanish" {
		t.Fatalf("language: got %q", d.Language)
	}
	if d.Type != "Rental/Housing Documents" {
		t.Fatalf("type: got %q", d.Type)
	}
}

func TestParseDetection_Decorated(t *testing.T) {
	d := ParseDetection("**Language:** es\n**Type:** [residential lease agreement].")
	if d.Language != "Spanish" || d.Type != "Rental/Housing Documents" {
		t.Fatalf("got %+v", d)
	}
}

func TestParseDetection_Fallbacks(t *testing.T) {
	d := ParseDetection("I could not read the file.")
	if d.Type != DefaultType || d.Language != DefaultLanguage {
		t.Fatalf("got %+v", d)
	}
	d = ParseDetection("LANGUAGE:\nTYPE:   ")
	if d.Type != DefaultType || d.Language != DefaultLanguage {
		t.Fatalf("empty values: %+v", d)
	}
}

func TestParseDetection_UnknownTypeKeptVerbatim(t *testing.T) {
	d := ParseDetection("LANGUAGE: English\nTYPE: Purchase Agreement")
	if d.Type != "Purchase Agreement" {
		t.Fatalf("type: %q", d.Type)
	}
	if GetProfile(d.Type).Kind != General {
		t.Fatalf("unknown type should use the general profile")
	}
}

func TestGetProfile(t *testing.T) {
	cases := map[string]Kind{
		"Loan and Credit Agreements":        Loan,
		"credit card agreement":             Loan,
		"Employment Documents":              Employment,
		"Mutual NDA":                        Employment,
		"standard contract":                 General,
		"Terms of Service/Privacy Policies": Terms,
		"Privacy Policy":                    Terms,
		"Auto insurance policy":             Insurance,
		"rental":                            Rental,
		"":                                  General,
	}
	for in, want := range cases {
		if got := GetProfile(in).Kind; got != want {
			t.Fatalf("%q: got %s want %s", in, got, want)
		}
	}
}

func TestProfiles_DistinctFocus(t *testing.T) {
	seen := map[string]Kind{}
	for _, p := range Profiles() {
		if p.Kind == General {
			continue
		}
		if len(p.Focus) == 0 || p.RiskFocus == "" {
			t.Fatalf("%s: missing focus", p.Kind)
		}
		if prev, ok := seen[p.RiskFocus]; ok {
			t.Fatalf("%s and %s share risk focus", p.Kind, prev)
		}
		seen[p.RiskFocus] = p.Kind
	}
}

func TestCanonicalLanguage(t *testing.T) {
	cases := map[string]string{
		"spanish":  "Spanish",
		"Español":  "Spanish",
		"de":       "German",
		"Français": "French",
		"":         "English",
		"Klingon":  "Klingon",
	}
	for in, want := range cases {
		if got := CanonicalLanguage(in); got != want {
			t.Fatalf("%q: got %q want %q", in, got, want)
		}
	}
	if !IsDefaultLanguage("en") || IsDefaultLanguage("fr") {
		t.Fatalf("IsDefaultLanguage")
	}
}

func TestKey(t *testing.T) {
	if got := Key("Rental/Housing Documents"); got != "rental_housing_documents" {
		t.Fatalf("got %q", got)
	}
	if got := Key("Terms of Service/Privacy Policies"); got != "terms_of_service_privacy_policies" {
		t.Fatalf("got %q", got)
	}
}
