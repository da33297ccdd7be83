package llm

import (
	"context"

	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

const (
	verdictSpecific     = "구체적"
	verdictNeedsContext = "필요"
)

// Judge answers the yes/no questions the clarification flow asks about a
// message. It satisfies conversation.Judge.
type Judge struct {
	completer Completer
	model     string
	logger    *observability.Logger
}

// NewJudge creates a judge using model for every call.
func NewJudge(completer Completer, model string, logger *observability.Logger) *Judge {
	if model == "" {
		model = "gpt-4o"
	}
	return &Judge{completer: completer, model: model, logger: logger.WithOperation("judge")}
}

// IsSpecific reports whether question names both an object and a problem.
func (j *Judge) IsSpecific(ctx context.Context, question, history string) (bool, error) {
	verdict, err := j.completer.Complete(ctx, Request{
		Model:       j.model,
		System:      specificitySystem,
		User:        specificityPrompt(question, history),
		Temperature: 0.1,
		MaxTokens:   50,
	})
	if err != nil {
		return false, err
	}
	j.logger.Debug().Str("question", question).Str("verdict", verdict).Msg("specificity judged")
	return verdict == verdictSpecific, nil
}

// NeedsContext reports whether question only makes sense with the history.
func (j *Judge) NeedsContext(ctx context.Context, question, history string) (bool, error) {
	verdict, err := j.completer.Complete(ctx, Request{
		Model:       j.model,
		System:      contextNeedSystem,
		User:        contextNeedPrompt(question, history),
		Temperature: 0.1,
		MaxTokens:   50,
	})
	if err != nil {
		return false, err
	}
	j.logger.Debug().Str("question", question).Str("verdict", verdict).Msg("context need judged")
	return verdict == verdictNeedsContext, nil
}

// Clarify writes a follow-up question asking for the missing detail.
func (j *Judge) Clarify(ctx context.Context, question string) (string, error) {
	return j.completer.Complete(ctx, Request{
		Model:       j.model,
		System:      clarifySystem,
		User:        clarifyPrompt(question),
		Temperature: 0.7,
		MaxTokens:   200,
	})
}
