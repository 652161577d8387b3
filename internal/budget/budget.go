// Package budget estimates prompt sizes and trims documents so an analysis
// prompt stays inside the model's context window.
package budget

import (
	"math"
	"strings"
	"unicode/utf8"
)

// ReservedOutputTokens is held back for the model's answer.
const ReservedOutputTokens = 2048

// EstimateTokensFromChars converts a character count into an estimated token
// count (about 4 characters per token, rounded up).
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of s.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}

// ModelContextTokens returns the context window of a model. Unknown names
// fall back to a conservative 8192.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return 8192
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	for _, p := range prefixMax {
		if strings.HasPrefix(name, p.prefix) {
			return p.tokens
		}
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"):
		return 128_000
	case strings.HasSuffix(name, "32k"):
		return 32_768
	}
	return 8192
}

// HeadroomTokens is the larger of 5% of the context or 512 tokens, covering
// tokenizer drift and message framing.
func HeadroomTokens(modelName string) int {
	dyn := int(math.Ceil(float64(ModelContextTokens(modelName)) * 0.05))
	if dyn < 512 {
		return 512
	}
	return dyn
}

// DocumentTokens is what is left for document text once the prompt
// scaffolding, the output reservation and the headroom are paid for. Never
// negative.
func DocumentTokens(modelName string, scaffoldTokens int) int {
	left := ModelContextTokens(modelName) - ReservedOutputTokens - HeadroomTokens(modelName) - scaffoldTokens
	if left < 0 {
		return 0
	}
	return left
}

// Fit trims doc to at most maxTokens, cutting at the last paragraph or line
// break inside the allowance when there is one in its second half. It
// reports whether anything was cut.
func Fit(doc string, maxTokens int) (string, bool) {
	maxChars := maxTokens * 4
	if len(doc) <= maxChars {
		return doc, false
	}
	if maxChars <= 0 {
		return "", true
	}
	n := maxChars
	for n > 0 && !utf8.RuneStart(doc[n]) {
		n--
	}
	cut := doc[:n]
	for _, sep := range []string{"\n\n", "\n"} {
		if i := strings.LastIndex(cut, sep); i >= maxChars/2 {
			return strings.TrimRight(cut[:i], " \t\r\n"), true
		}
	}
	return strings.TrimRight(cut, " \t\r\n"), true
}

// knownModelMax holds approximate context sizes for common model names.
var knownModelMax = map[string]int{
	"gpt-4o":        128_000,
	"gpt-4o-mini":   128_000,
	"gpt-4-turbo":   128_000,
	"gpt-3.5-turbo": 16_384,
	"gemini-pro":    32_768,
	"llama-3":       8_192,
	"llama-3.1":     128_000,
}

// prefixMax covers model families whose versions share a window. Checked in
// order, so longer prefixes come first.
var prefixMax = []struct {
	prefix string
	tokens int
}{
	{"gemini-1.5-pro", 2_000_000},
	{"gemini-1.5-flash", 1_000_000},
	{"gemini-2.0-flash", 1_000_000},
	{"gemini-2.5", 1_000_000},
	{"gpt-4.1", 1_000_000},
	{"claude-", 200_000},
}
