package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/hyperifyio/doclens/internal/extract"
)

// manifestInput records one document a report was produced from.
type manifestInput struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	SHA256 string `json:"sha256"`
	Chars  int    `json:"chars"`
}

// manifestMeta captures the producer settings of a run.
type manifestMeta struct {
	Version     string    `json:"version"`
	Model       string    `json:"model"`
	LLMBaseURL  string    `json:"llm_base_url"`
	LLMCache    bool      `json:"llm_cache"`
	ClampRisk   bool      `json:"clamp_risk"`
	GeneratedAt time.Time `json:"generated_at"`
}

// manifest is the sidecar written next to a report file so a report can be
// traced back to the exact text and settings that produced it.
type manifest struct {
	Meta   manifestMeta    `json:"meta"`
	Inputs []manifestInput `json:"inputs"`
	Result any             `json:"result,omitempty"`
}

func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func newManifestInput(doc extract.Document) manifestInput {
	return manifestInput{
		Name:   doc.Name,
		Format: doc.Format,
		SHA256: computeSHA256Hex(doc.Text),
		Chars:  len([]rune(doc.Text)),
	}
}

// deriveManifestSidecarPath returns the sidecar path for a report file.
func deriveManifestSidecarPath(outputPath string) string {
	return outputPath + ".manifest.json"
}

// writeManifest writes the sidecar for a report at out. Reports on stdout get
// none.
func (a *App) writeManifest(out string, result any) error {
	if !a.cfg.Manifest || out == "" || out == "-" {
		return nil
	}
	m := manifest{
		Meta: manifestMeta{
			Version:     BuildVersion,
			Model:       a.cfg.LLMModel,
			LLMBaseURL:  a.cfg.LLMBaseURL,
			LLMCache:    a.Analyzer.Cache != nil,
			ClampRisk:   a.cfg.ClampRisk,
			GeneratedAt: a.Now().UTC(),
		},
		Inputs: a.inputs,
		Result: result,
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(deriveManifestSidecarPath(out), append(b, '\n'), 0o644)
}
