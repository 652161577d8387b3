// Command openai-stub serves a canned OpenAI-compatible chat endpoint that
// answers doclens prompts in the section format the extractors expect. It is
// used for local runs and smoke tests without a real model.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doclens/internal/compare"
	"github.com/hyperifyio/doclens/internal/enrich"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

var (
	itemsRe = regexp.MustCompile(`(?m)^(CLAUSES|TERMS) \((\d+)\):`)
	docRe   = regexp.MustCompile(`(?s)DOCUMENT A:\n"""\n(.*?)\n"""\n\nDOCUMENT B:\n"""\n(.*?)\n"""`)
)

const analysisAnswer = `RISK SCORE: 6
KEY ISSUES:
- The security deposit is non-refundable
- Late fees of 10% apply after three days
PLAIN ENGLISH SUMMARY:
A twelve month agreement with strict payment terms and few protections for the signer.
RED FLAGS:
- Landlord may enter without notice`

const comparisonAnswer = `DOCUMENT COMPARISON:
Two versions of the same agreement.
KEY DIFFERENCES:
- Document B caps late fees at 5%
WHICH IS MORE FAVORABLE:
Document B, because its fees are lower.
SPECIFIC CLAUSE DIFFERENCES:
- Late fee clause
RECOMMENDATION:
Choose Document B.`

// answer picks the canned reply for the user message of a doclens prompt.
func answer(user string) string {
	switch {
	case strings.Contains(user, "Respond in this exact format"):
		return "LANGUAGE: English\nTYPE: Rental/Housing Documents"
	case strings.Contains(user, "DOCUMENT A"):
		m := docRe.FindStringSubmatch(user)
		if m == nil || strings.TrimSpace(m[1]) == "" || strings.TrimSpace(m[2]) == "" {
			return compare.InsufficientToken
		}
		return comparisonAnswer
	case strings.Contains(user, "RISK SCORE"):
		return analysisAnswer
	case strings.Contains(user, "negotiation advice"):
		return "1. Ask for a refundable deposit.\n2. Negotiate a lower late fee.\n3. Require 24 hours notice before entry."
	case strings.Contains(user, "Question:"):
		return "Yes, but only with the written consent of the landlord."
	}
	if m := itemsRe.FindStringSubmatch(user); m != nil {
		n, _ := strconv.Atoi(m[2])
		return blocks(m[1], n)
	}
	return ""
}

func blocks(kind string, n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		sb.WriteString(enrich.Delimiter(i))
		sb.WriteString("\n")
		if kind == "CLAUSES" {
			fmt.Fprintf(&sb, "%s: Medium\n%s: General\n%s: Read this clause carefully.\n", enrich.LabelPriority, enrich.LabelCategory, enrich.LabelAction)
		} else {
			fmt.Fprintf(&sb, "%s: A term used in the agreement.\n%s: As defined in section %d.\n", enrich.LabelDefinition, enrich.LabelExample, i)
		}
	}
	return sb.String()
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		content := answer(req.Messages[len(req.Messages)-1].Content)
		log.Debug().Str("model", req.Model).Int("chars", len(content)).Msg("chat completion")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	srv := &http.Server{Addr: addr, Handler: newMux(model), ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
