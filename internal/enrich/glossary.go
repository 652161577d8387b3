package enrich

// Labels of a glossary block.
const (
	LabelDefinition = "DEFINITION"
	LabelExample    = "EXAMPLE"
)

// DefaultDefinition fills terms the producer did not define.
const DefaultDefinition = "No plain-language definition available."

// GlossaryLabels are the labels requested per term, in prompt order.
var GlossaryLabels = []string{LabelDefinition, LabelExample}

// Term is a glossary entry.
type Term struct {
	Term       string `json:"term" yaml:"term"`
	Definition string `json:"definition" yaml:"definition"`
	Example    string `json:"example,omitempty" yaml:"example,omitempty"`
}

// Glossary pairs each input term with block i of raw. A term extracted with
// a known expansion keeps it when the producer gives no definition.
func Glossary(terms []Candidate, raw string) ([]Term, Mismatch) {
	fields, mm := Zip(len(terms), raw)
	out := make([]Term, len(terms))
	for i, c := range terms {
		f := fields[i]
		def := f.Get(LabelDefinition)
		if def == "" {
			def = orDefault(c.Expansion, DefaultDefinition)
		}
		out[i] = Term{Term: c.Term, Definition: def, Example: f.Get(LabelExample)}
	}
	return out, mm
}
