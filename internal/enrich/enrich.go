// Package enrich parses repeated per-item blocks ("---ITEM 1---" followed by
// "LABEL: value" lines) and correlates them with the inputs they describe by
// position.
package enrich

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperifyio/doclens/internal/normalize"
	"github.com/hyperifyio/doclens/internal/sections"
)

var (
	// Text after the delimiter on the same line belongs to the block.
	delimRe = regexp.MustCompile(`(?im)^[\p{Z}\t#*_]*-{3,}[\p{Z}\t]*ITEM[\p{Z}\t]*\d*[\p{Z}\t]*-{3,}[*_\p{Z}\t]*`)
	fieldRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 _/-]{0,40}?)[\p{Z}\t]*:[\p{Z}\t]*(.*)$`)
)

// Delimiter returns the block header for the 1-based item n.
func Delimiter(n int) string {
	return fmt.Sprintf("---ITEM %d---", n)
}

// SplitBlocks returns the text following each delimiter, in order. Text
// before the first delimiter is discarded. The number in the delimiter is
// not trusted; position is.
func SplitBlocks(raw string) []string {
	locs := delimRe.FindAllStringIndex(raw, -1)
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, strings.TrimSpace(raw[loc[1]:end]))
	}
	return out
}

// Fields maps upper-cased labels to values.
type Fields map[string]string

// Get returns the value for label, case-insensitively.
func (f Fields) Get(label string) string {
	return f[strings.ToUpper(strings.TrimSpace(label))]
}

// ParseFields reads "LABEL: value" lines. A line without a label continues
// the previous field. The first occurrence of a label wins.
func ParseFields(block string) Fields {
	fields := Fields{}
	last := ""
	for _, line := range strings.Split(normalize.Structured(block), "\n") {
		line = sections.StripBullet(line)
		if line == "" {
			continue
		}
		if m := fieldRe.FindStringSubmatch(line); m != nil {
			key := strings.ToUpper(strings.Join(strings.Fields(m[1]), " "))
			if _, seen := fields[key]; seen {
				last = ""
				continue
			}
			fields[key] = strings.TrimSpace(m[2])
			last = key
			continue
		}
		if last != "" {
			fields[last] = strings.TrimSpace(fields[last] + " " + line)
		}
	}
	return fields
}

// Mismatch reports how many blocks were expected and how many came back.
type Mismatch struct {
	Want int `json:"want"`
	Got  int `json:"got"`
}

// OK reports whether the counts agree.
func (m Mismatch) OK() bool { return m.Want == m.Got }

func (m Mismatch) String() string {
	return fmt.Sprintf("want %d blocks, got %d", m.Want, m.Got)
}

// Zip parses raw into n field sets. Block i belongs to input i. Inputs
// without a block get empty Fields; surplus blocks are ignored. The count
// comparison is returned so callers can surface it.
func Zip(n int, raw string) ([]Fields, Mismatch) {
	blocks := SplitBlocks(raw)
	out := make([]Fields, n)
	for i := range out {
		if i < len(blocks) {
			out[i] = ParseFields(blocks[i])
		} else {
			out[i] = Fields{}
		}
	}
	return out, Mismatch{Want: n, Got: len(blocks)}
}
