package doctype

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Languages the detection prompt offers, in prompt order.
var Languages = []language.Tag{
	language.English, language.Spanish, language.French, language.German,
	language.Italian, language.Portuguese, language.Chinese, language.Japanese,
	language.Korean, language.Arabic, language.Hindi,
}

var englishNames = display.English.Languages()

// CanonicalLanguage returns the English name of a language given as an
// English name, a native name or a BCP 47 tag ("es", "spanish", "Español"
// all yield "Spanish"). Unknown names are returned trimmed; empty input
// yields DefaultLanguage.
func CanonicalLanguage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage
	}
	for _, tag := range Languages {
		if strings.EqualFold(s, englishNames.Name(tag)) || strings.EqualFold(s, display.Self.Name(tag)) {
			return englishNames.Name(tag)
		}
	}
	if tag, err := language.Parse(s); err == nil {
		base, conf := tag.Base()
		if conf != language.No {
			if name := englishNames.Name(base); name != "" {
				return name
			}
		}
	}
	return s
}

// IsDefaultLanguage reports whether name is the language analyses are
// written in when no instruction is added.
func IsDefaultLanguage(name string) bool {
	return strings.EqualFold(CanonicalLanguage(name), DefaultLanguage)
}
