// Package doctype classifies legal documents: it reads the producer's
// LANGUAGE/TYPE detection answer and maps free-form type names onto the
// analysis profiles.
package doctype

import (
	"regexp"
	"strings"
)

// Defaults used when detection yields nothing usable.
const (
	DefaultType     = "General Legal Document"
	DefaultLanguage = "English"
)

// Detection is the parsed answer to the detection prompt.
type Detection struct {
	Type     string `json:"type" yaml:"type"`
	Language string `json:"language" yaml:"language"`
}

var (
	languageLineRe = regexp.MustCompile(`(?i)\bLANGUAGE[*_]*[\p{Z}\t]*:[*_\p{Z}\t]*([^\n]+)`)
	typeLineRe     = regexp.MustCompile(`(?i)\bTYPE[*_]*[\p{Z}\t]*:[*_\p{Z}\t]*([^\n]+)`)
)

// ParseDetection reads the first LANGUAGE: and TYPE: values from text. A
// recognised type is replaced by its profile name; an unrecognised one is
// kept verbatim. Missing values fall back to DefaultType and
// DefaultLanguage. It never fails.
func ParseDetection(text string) Detection {
	d := Detection{Type: DefaultType, Language: DefaultLanguage}
	if m := languageLineRe.FindStringSubmatch(text); len(m) == 2 {
		if v := cleanValue(m[1]); v != "" {
			d.Language = CanonicalLanguage(v)
		}
	}
	if m := typeLineRe.FindStringSubmatch(text); len(m) == 2 {
		if v := cleanValue(m[1]); v != "" {
			d.Type = CanonicalType(v)
		}
	}
	return d
}

// CanonicalType returns the profile name for a known type, or s trimmed.
func CanonicalType(s string) string {
	s = cleanValue(s)
	if s == "" {
		return DefaultType
	}
	if k := normalizeKind(s); k != General {
		return GetProfile(string(k)).Name
	}
	return s
}

// cleanValue strips the decoration producers wrap answers in:
// "**[Rental/Housing Documents]**".
func cleanValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), "*_`[]\"'. \t")
}

// Key returns the analytics bucket for a document type: lower-cased with
// every character outside [a-z0-9] replaced by '_'.
func Key(docType string) string {
	out := make([]byte, 0, len(docType))
	for _, r := range strings.ToLower(docType) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, byte(r))
			continue
		}
		out = append(out, '_')
	}
	return string(out)
}
