package llm

import (
	"context"
	"time"

	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// Models selects the model used per call family.
type Models struct {
	Answer string
	Judge  string
}

// Generator produces the user-facing answers.
type Generator struct {
	completer Completer
	models    Models
	logger    *observability.Logger
}

// NewGenerator creates a generator.
func NewGenerator(completer Completer, models Models, logger *observability.Logger) *Generator {
	if models.Answer == "" {
		models.Answer = "gpt-3.5-turbo"
	}
	if models.Judge == "" {
		models.Judge = "gpt-4o"
	}
	return &Generator{completer: completer, models: models, logger: logger.WithOperation("generate")}
}

// Answer generates a grounded answer for question from context.
func (g *Generator) Answer(ctx context.Context, question, context string) (string, error) {
	start := time.Now()
	answer, err := g.completer.Complete(ctx, Request{
		Model:       g.models.Answer,
		System:      answerSystem,
		User:        answerPrompt(question, context),
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", err
	}

	g.logger.Debug().
		Int("context_chars", len(context)).
		Dur("duration", time.Since(start)).
		Msg("answer generated")
	return answer, nil
}

// ContextualAnswer answers a follow-up question using the conversation
// history and any retrieved documents.
func (g *Generator) ContextualAnswer(ctx context.Context, question, history string, docs []string) (string, error) {
	return g.completer.Complete(ctx, Request{
		Model:       g.models.Judge,
		System:      contextualSystem,
		User:        contextualPrompt(question, history, docs),
		Temperature: 0.7,
		MaxTokens:   1024,
	})
}
