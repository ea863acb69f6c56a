package chat

import (
	"context"
	"strings"

	"github.com/grimaldi89/martechito/internal/llm"
)

// Reformulator rewrites a follow-up utterance into a standalone question
// using the recent conversation window.
type Reformulator struct {
	provider llm.Provider
	model    string
}

// NewReformulator returns a reformulator backed by the given provider.
func NewReformulator(provider llm.Provider, model string) *Reformulator {
	return &Reformulator{provider: provider, model: model}
}

// Reformulate produces the retrieval question for an utterance. With an empty
// window the utterance passes through untouched and no model call is made.
func (r *Reformulator) Reformulate(ctx context.Context, window []Turn, utterance string) (string, error) {
	if len(window) == 0 {
		return utterance, nil
	}

	messages := make([]llm.Message, 0, len(window)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: reformulateSystemPrompt})
	for _, t := range window {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: utterance})

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model:    r.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	question := strings.TrimSpace(resp.Content)
	if question == "" {
		return utterance, nil
	}
	return question, nil
}
