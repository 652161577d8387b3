// Package sections holds the header vocabulary shared by prompt construction
// and the extractors, and the header-anchored span search both extractors use.
package sections

import (
	"regexp"
	"strings"
)

// Kind describes how a section body is interpreted.
type Kind int

const (
	// Text bodies are trimmed prose.
	Text Kind = iota
	// List bodies are split into bullet items.
	List
	// Scalar bodies hold a single value on the header line.
	Scalar
)

// Section is one labeled part of the producer's output.
type Section struct {
	Name string
	Kind Kind
	// Hint is the instruction shown to the producer under the header.
	Hint string
}

// Schema is an ordered list of sections. Order matters: a section body ends
// at the first header of any section that follows it.
type Schema struct {
	Sections []Section
	// ColonOptional accepts "HEADER" without a trailing colon as a start
	// marker.
	ColonOptional bool

	starts map[string]*regexp.Regexp
	stops  map[string]*regexp.Regexp
	inline map[string]*regexp.Regexp
}

// New compiles a schema.
func New(colonOptional bool, secs ...Section) *Schema {
	s := &Schema{
		Sections:      secs,
		ColonOptional: colonOptional,
		starts:        make(map[string]*regexp.Regexp, len(secs)),
		stops:         make(map[string]*regexp.Regexp, len(secs)),
		inline:        make(map[string]*regexp.Regexp, len(secs)),
	}
	for _, sec := range secs {
		s.starts[sec.Name] = startPattern(sec.Name, colonOptional)
		s.stops[sec.Name] = stopPattern(sec.Name)
		s.inline[sec.Name] = inlinePattern(sec.Name)
	}
	return s
}

// Headers lists section names in canonical order.
func (s *Schema) Headers() []string {
	out := make([]string, 0, len(s.Sections))
	for _, sec := range s.Sections {
		out = append(out, sec.Name)
	}
	return out
}

// decoration a producer may put in front of a header line: indentation,
// block quotes, markdown heading hashes, a list ordinal ("2." or "2)") and
// bold/italic markers glued to the first word. "* Red flags: ..." is a bullet
// item, not a header.
const lead = `(?im)^[\p{Z}\t]*(?:>[\p{Z}\t]*)*(?:#+[\p{Z}\t]*)?[*_]*(?:\d{1,2}[.)][\p{Z}\t]*)?[*_]*`

func headerWords(name string) string {
	fields := strings.Fields(name)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, `[\p{Z}\t]+`)
}

// A header ends in a colon, or, when the colon is optional, at end of line;
// "Red flags exist" in running prose is never a header.
const (
	colonTail  = `[*_\p{Z}\t]*:[*_]*`
	colonOrEOL = `[*_\p{Z}\t\r]*(?::[*_]*|$)`
)

func startPattern(name string, colonOptional bool) *regexp.Regexp {
	tail := colonTail
	if colonOptional {
		tail = colonOrEOL
	}
	return regexp.MustCompile(lead + headerWords(name) + tail)
}

func stopPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(lead + headerWords(name) + colonOrEOL)
}

// inlinePattern finds "HEADER:" anywhere in a line. The colon is required.
func inlinePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + headerWords(name) + colonTail)
}

// Span returns the body of the named section: the text after its first
// header up to the earliest line-start header of a later section, or end of
// text. A header that starts a line wins; failing that, "HEADER:" in the
// middle of a line is accepted. found is false when neither occurs.
func (s *Schema) Span(text, name string) (body string, found bool) {
	start, ok := s.starts[name]
	if !ok {
		return "", false
	}
	loc := start.FindStringIndex(text)
	if loc == nil {
		loc = s.inline[name].FindStringIndex(text)
	}
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	end := len(rest)
	later := false
	for _, sec := range s.Sections {
		if sec.Name == name {
			later = true
			continue
		}
		if !later {
			continue
		}
		if m := s.stops[sec.Name].FindStringIndex(rest); m != nil && m[0] < end {
			end = m[0]
		}
	}
	return rest[:end], true
}

// Section returns the named section definition.
func (s *Schema) Section(name string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return sec, true
		}
	}
	return Section{}, false
}

var (
	leadingBulletRe = regexp.MustCompile(`^(?:[•●▪◦‣∙·\-]|\*{1,3})[\p{Z}\t]*`)
	emphasisRe      = regexp.MustCompile(`\*+`)
)

// StripBullet removes one leading bullet marker and any emphasis asterisks
// from an item line, then trims it.
func StripBullet(line string) string {
	line = strings.TrimSpace(line)
	line = leadingBulletRe.ReplaceAllString(line, "")
	line = emphasisRe.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// Items splits a list body into bullet items, preserving document order and
// dropping empty lines.
func Items(body string) []string {
	return items(body, false)
}

// ItemsSplitInline is Items but also breaks a line at canonical bullets that
// occur mid-line ("first point • second point").
func ItemsSplitInline(body string) []string {
	return items(body, true)
}

func items(body string, inline bool) []string {
	out := []string{}
	for _, line := range strings.Split(body, "\n") {
		parts := []string{line}
		if inline {
			parts = strings.Split(line, " • ")
		}
		for _, p := range parts {
			if item := StripBullet(p); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
