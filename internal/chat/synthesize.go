package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/llm"
)

// Citation points at a source document that contributed to an answer.
type Citation struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Answer is a synthesized reply with its deduplicated citations. Citations is
// empty when nothing was retrieved, including for a decline.
type Answer struct {
	Text      string
	Citations []Citation
}

// Synthesizer turns a question and retrieved context into a grounded answer.
type Synthesizer struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
}

// NewSynthesizer returns a synthesizer backed by the given provider.
func NewSynthesizer(provider llm.Provider, model string, maxTokens int, temperature float64) *Synthesizer {
	return &Synthesizer{provider: provider, model: model, maxTokens: maxTokens, temperature: temperature}
}

// Answer generates a reply for question over the retrieved results. An empty
// result set still goes through the model so the decline is phrased in the
// user's language; it is not an error.
func (s *Synthesizer) Answer(ctx context.Context, question string, results []index.Result, window []Turn) (Answer, error) {
	messages := make([]llm.Message, 0, len(window)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf(answerSystemPrompt, contextBlock(results)),
	})
	for _, t := range window {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return Answer{}, err
	}

	ans := Answer{Text: strings.TrimSpace(resp.Content), Citations: dedupeCitations(results)}
	if len(ans.Citations) > 0 {
		ans.Text += formatCitations(ans.Citations)
	}
	return ans, nil
}

func contextBlock(results []index.Result) string {
	if len(results) == 0 {
		return emptyContextNote
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&b, "[%s](%s)\n%s", r.Meta.Title, r.Meta.Source, r.Text)
	}
	return b.String()
}

// dedupeCitations collapses results that share title and source, preserving
// first-seen order. Chunks of one document yield a single citation.
func dedupeCitations(results []index.Result) []Citation {
	seen := make(map[Citation]struct{}, len(results))
	var out []Citation
	for _, r := range results {
		c := Citation{Title: r.Meta.Title, Source: r.Meta.Source}
		if c.Title == "" && c.Source == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func formatCitations(citations []Citation) string {
	var b strings.Builder
	b.WriteString("\n\n**Sources**:\n")
	for _, c := range citations {
		fmt.Fprintf(&b, "\n[%s](%s)\n", c.Title, c.Source)
	}
	return b.String()
}
