package normalize

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

// Bullet is the canonical list marker written by NormalizeBullets.
const Bullet = "•"

// hspace matches every rune strings.TrimSpace would remove except line breaks.
const hspace = `[\p{Z}\t\f\v\x{0085}]`

var (
	// Opening fences may carry a language tag (```json); closing fences never do.
	fenceRe        = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*")
	backtickRe     = regexp.MustCompile("`+")
	multiStarRe    = regexp.MustCompile(`\*{2,}`)
	multiUnderRe   = regexp.MustCompile(`_{2,}`)
	lineBulletRe   = regexp.MustCompile(`(?m)^` + hspace + `*(?:[*\-•●▪◦‣∙·]|\*{1,3})(?:` + hspace + `+|$)`)
	inlineBulletRe = regexp.MustCompile(`([^\s])[ \t]+\*[ \t]+`)
	spaceRunRe     = regexp.MustCompile(hspace + `+`)
	anySpaceRe     = regexp.MustCompile(`\s+`)
)

// typographic quotes the producer tends to emit; folded to ASCII so escaping
// and comparisons downstream see one form.
var quoteFolder = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"\r\n", "\n", "\r", "\n",
)

// StripMarkdownArtifacts removes code fence markers (paired or dangling),
// every remaining backtick, bold/italic runs of two or more asterisks or
// underscores, and finally any single asterisk left behind. Line-start
// bullets must be canonicalised before this pass or they are lost.
func StripMarkdownArtifacts(text string) string {
	return safely(text, func(s string) string {
		s = fenceRe.ReplaceAllString(s, "")
		s = backtickRe.ReplaceAllString(s, "")
		s = multiStarRe.ReplaceAllString(s, "")
		s = strings.ReplaceAll(s, "*", "")
		return multiUnderRe.ReplaceAllString(s, "")
	})
}

// NormalizeBullets rewrites every line that starts with '*', '-' or a bullet
// glyph (optionally indented) to start with the canonical bullet and one
// space. A '*' used as a bullet in the middle of a paragraph
// ("Sentence. * next") is converted in place; separating such items onto
// their own lines is left to the extractors.
func NormalizeBullets(text string) string {
	return safely(text, func(s string) string {
		s = lineBulletRe.ReplaceAllString(s, Bullet+" ")
		return inlineBulletRe.ReplaceAllString(s, "$1 "+Bullet+" ")
	})
}

// CollapseWhitespace turns runs of blank lines into a single line break and
// runs of spaces/tabs into one space, trimming each line. Single newlines
// survive.
func CollapseWhitespace(text string) string {
	return safely(text, func(s string) string {
		lines := strings.Split(s, "\n")
		out := make([]string, 0, len(lines))
		for _, line := range lines {
			line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
			if line == "" {
				continue
			}
			out = append(out, line)
		}
		return strings.Join(out, "\n")
	})
}

// Structured is the structure-preserving normaliser used before section
// parsing: NFC, ASCII quotes, canonical bullets, markdown removed, line
// boundaries kept.
func Structured(text string) string {
	return safely(text, func(s string) string {
		s = quoteFolder.Replace(norm.NFC.String(s))
		s = NormalizeBullets(s)
		s = StripMarkdownArtifacts(s)
		// stripping can expose a marker ("__- item")
		s = NormalizeBullets(s)
		s = CollapseWhitespace(s)
		// stripping can also rejoin a base letter with its combining mark
		// ("e*\u0301")
		return norm.NFC.String(s)
	})
}

// Flatten produces single-line prose for chat bubbles and log lines. It is a
// fixed point: Flatten(Flatten(x)) == Flatten(x).
func Flatten(text string) string {
	return safely(text, func(s string) string {
		s = Structured(s)
		return norm.NFC.String(strings.TrimSpace(anySpaceRe.ReplaceAllString(s, " ")))
	})
}

// safely runs fn and returns the untouched input if it panics.
func safely(text string, fn func(string) string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Msg("normalize: returning raw text")
			out = text
		}
	}()
	return fn(text)
}
