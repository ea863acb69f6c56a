package chat

import (
	"context"

	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/llm"
	"github.com/grimaldi89/martechito/internal/retrieval"
)

// Retriever finds indexed chunks relevant to a question. Satisfied by
// retrieval.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, query string, strategy *retrieval.Strategy) ([]index.Result, error)
}

// Emitter receives completed question/answer pairs. Satisfied by
// telemetry.Sink.
type Emitter interface {
	Emit(question, answer string)
}

// Reply is the outcome of one conversational turn.
type Reply struct {
	SessionID string     `json:"session_id"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Engine runs the full turn pipeline: reformulate, retrieve, synthesize,
// record history, emit telemetry.
type Engine struct {
	reformulator *Reformulator
	synthesizer  *Synthesizer
	retriever    Retriever
	emitter      Emitter
}

// NewEngine assembles a turn engine. emitter may be nil when telemetry is
// not configured.
func NewEngine(reformulator *Reformulator, synthesizer *Synthesizer, retriever Retriever, emitter Emitter) *Engine {
	return &Engine{
		reformulator: reformulator,
		synthesizer:  synthesizer,
		retriever:    retriever,
		emitter:      emitter,
	}
}

// Respond processes one user utterance in the session. On any stage failure
// the turn is abandoned and the history keeps its pre-turn state. The raw
// utterance, not the reformulated question, is what enters the history.
func (e *Engine) Respond(ctx context.Context, sess *Session, utterance string) (Reply, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	window := sess.conv.Recent(WindowSize)

	question, err := e.reformulator.Reformulate(ctx, window, utterance)
	if err != nil {
		return Reply{}, err
	}

	results, err := e.retriever.Retrieve(ctx, question, sess.strategy)
	if err != nil {
		return Reply{}, err
	}

	answer, err := e.synthesizer.Answer(ctx, question, results, window)
	if err != nil {
		return Reply{}, err
	}

	sess.conv.Append(llm.RoleUser, utterance)
	sess.conv.Append(llm.RoleAssistant, answer.Text)

	if e.emitter != nil {
		e.emitter.Emit(utterance, answer.Text)
	}

	return Reply{
		SessionID: sess.ID,
		Question:  question,
		Answer:    answer.Text,
		Citations: answer.Citations,
	}, nil
}
