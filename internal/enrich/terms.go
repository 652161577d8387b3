package enrich

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hyperifyio/doclens/internal/normalize"
)

// Candidate is a term worth defining, found in the document itself.
type Candidate struct {
	Term string `json:"term" yaml:"term"`
	// Expansion is the long form of an acronym, when the document spells it out.
	Expansion string `json:"expansion,omitempty" yaml:"expansion,omitempty"`
	Count     int    `json:"count" yaml:"count"`
}

var (
	// (the "Landlord"), ("Premises"), "Tenant" means ...
	definedRe = regexp.MustCompile(`(?:\(\s*(?:the\s+|each\s+a\s+)?"([A-Z][A-Za-z' -]{1,40})"\s*\)|"([A-Z][A-Za-z' -]{1,40})"\s+(?:means|shall mean|refers to))`)
	// Long Form (ACRO)
	acroAfterRe = regexp.MustCompile(`\b([A-Za-z][A-Za-z0-9&/\-]+(?:\s+[A-Za-z][A-Za-z0-9&/\-]+){0,6})\s*\(([A-Z]{2,6})\)`)
	// ACRO (Long Form)
	acroBeforeRe = regexp.MustCompile(`\b([A-Z]{2,6})\s*\(([A-Za-z][A-Za-z0-9&/\-]+(?:\s+[A-Za-z][A-Za-z0-9&/\-]+){0,6})\)`)
	// Title-cased 2..4 word phrases
	titlePhraseRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)
)

// phrases that are title-cased in contracts without being terms of art
var termStopwords = map[string]struct{}{
	"this agreement": {}, "the parties": {}, "in witness whereof": {}, "united states": {},
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {}, "june": {},
	"july": {}, "august": {}, "september": {}, "october": {}, "november": {}, "december": {},
}

// ExtractTerms finds glossary candidates in a document: explicitly defined
// terms in document order, then acronyms with their expansions, then
// title-cased phrases seen at least minCount times, most frequent first.
// At most limit candidates are returned; limit <= 0 means no limit.
func ExtractTerms(document string, minCount, limit int) []Candidate {
	text := normalize.Structured(document)
	seen := map[string]struct{}{}
	var out []Candidate
	add := func(c Candidate) {
		key := strings.ToLower(c.Term)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	for _, m := range definedRe.FindAllStringSubmatch(text, -1) {
		term := m[1]
		if term == "" {
			term = m[2]
		}
		term = strings.Join(strings.Fields(term), " ")
		add(Candidate{Term: term, Count: strings.Count(text, term)})
	}

	acronyms := acronymDefinitions(text)
	keys := make([]string, 0, len(acronyms))
	for k := range acronyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(Candidate{Term: k, Expansion: acronyms[k], Count: strings.Count(text, k)})
	}

	for _, c := range keyTerms(text, minCount) {
		add(c)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func acronymDefinitions(text string) map[string]string {
	out := map[string]string{}
	for _, m := range acroAfterRe.FindAllStringSubmatch(text, -1) {
		long := trailingTitleCased(strings.Trim(strings.TrimSpace(m[1]), ":;,. "))
		if reasonableLongForm(long) {
			if _, ok := out[m[2]]; !ok {
				out[m[2]] = long
			}
		}
	}
	for _, m := range acroBeforeRe.FindAllStringSubmatch(text, -1) {
		long := strings.Join(strings.Fields(m[2]), " ")
		if reasonableLongForm(long) {
			if _, ok := out[m[1]]; !ok {
				out[m[1]] = long
			}
		}
	}
	return out
}

func reasonableLongForm(s string) bool {
	letters := 0
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			letters++
		}
	}
	wc := len(strings.Fields(s))
	return letters >= 2 && wc >= 1 && wc <= 7
}

// trailingTitleCased keeps the run of up to four title-cased words right
// before the parenthesis ("you will pay the Annual Percentage Rate" ->
// "Annual Percentage Rate").
func trailingTitleCased(s string) string {
	words := strings.Fields(s)
	start := len(words)
	for i := len(words) - 1; i >= 0 && len(words)-i <= 4; i-- {
		if !isTitleWord(words[i]) {
			break
		}
		start = i
	}
	if start == len(words) {
		return strings.Join(words, " ")
	}
	return strings.Join(words[start:], " ")
}

func isTitleWord(w string) bool {
	if w == "" || w[0] < 'A' || w[0] > 'Z' {
		return false
	}
	return strings.ContainsAny(w, "abcdefghijklmnopqrstuvwxyz")
}

func keyTerms(text string, minCount int) []Candidate {
	counts := map[string]int{}
	firstCased := map[string]string{}
	var order []string
	for _, m := range titlePhraseRe.FindAllStringSubmatch(text, -1) {
		words := strings.Fields(m[1])
		switch words[0] {
		case "The", "This", "Each", "Any", "All":
			words = words[1:]
		}
		if len(words) < 2 {
			continue
		}
		short := false
		for _, w := range words {
			if len(w) <= 2 {
				short = true
				break
			}
		}
		if short {
			continue
		}
		phrase := strings.Join(words, " ")
		key := strings.ToLower(phrase)
		if _, stop := termStopwords[key]; stop {
			continue
		}
		if _, ok := firstCased[key]; !ok {
			firstCased[key] = phrase
			order = append(order, key)
		}
		counts[key]++
	}
	var out []Candidate
	for _, k := range order {
		if counts[k] >= minCount {
			out = append(out, Candidate{Term: firstCased[k], Count: counts[k]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
