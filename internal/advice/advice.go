// Package advice turns free-form negotiation and Q&A answers into display
// text.
package advice

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/doclens/internal/normalize"
	"github.com/hyperifyio/doclens/internal/sections"
)

var numberedRe = regexp.MustCompile(`^(?:\d{1,2}[.)]|•)[\p{Z}\t]*(.*)$`)

// ParseTips splits a negotiation answer into points. Lines opening with
// "1." / "2)" or a bullet start a point; other lines continue the current
// one. A preamble before the first point is dropped. Text without any
// numbered or bulleted line becomes a single point.
func ParseTips(text string) []string {
	clean := normalize.Structured(text)
	tips := []string{}
	cur := -1
	for _, line := range strings.Split(clean, "\n") {
		if m := numberedRe.FindStringSubmatch(line); m != nil {
			tips = append(tips, sections.StripBullet(m[1]))
			cur = len(tips) - 1
			continue
		}
		if cur >= 0 {
			tips[cur] = strings.TrimSpace(tips[cur] + " " + line)
		}
	}
	out := tips[:0]
	for _, t := range tips {
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		if flat := normalize.Flatten(text); flat != "" {
			return []string{flat}
		}
	}
	return out
}

// Answer flattens a Q&A answer into one line for a chat bubble.
func Answer(text string) string {
	return normalize.Flatten(text)
}
