// Package assistant ties retrieval, generation and the clarification flow
// together into the two user-facing operations: solving a classified defect
// and answering a chat message.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cswnn/Capstone-Homefix2/internal/conversation"
	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/llm"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// DocumentSource returns the band-filtered documents for a query.
type DocumentSource interface {
	Documents(ctx context.Context, query string) ([]string, error)
}

// AnswerGenerator produces answers from retrieved context.
type AnswerGenerator interface {
	Answer(ctx context.Context, question, context string) (string, error)
	ContextualAnswer(ctx context.Context, question, history string, docs []string) (string, error)
}

// Reply is the outcome of one chat message.
type Reply struct {
	Text string
	// Final is false when Text asks the user for clarification.
	Final bool
}

// Assistant answers defect and chat questions.
type Assistant struct {
	docs      DocumentSource
	generator AnswerGenerator
	machine   *conversation.Machine
	sessions  *conversation.Sessions
	logger    *observability.Logger
}

// New creates an assistant.
func New(docs DocumentSource, generator AnswerGenerator, machine *conversation.Machine, sessions *conversation.Sessions, logger *observability.Logger) *Assistant {
	return &Assistant{
		docs:      docs,
		generator: generator,
		machine:   machine,
		sessions:  sessions,
		logger:    logger.WithOperation("assistant"),
	}
}

// SolutionQuestion is the question asked for a classified defect.
func SolutionQuestion(defect, location string) string {
	return fmt.Sprintf("%s에서 %s 제거하는 법 알려줘.", location, defect)
}

// Solve generates a repair solution for defect at location.
func (a *Assistant) Solve(ctx context.Context, defect, location string) (string, error) {
	start := time.Now()
	question := SolutionQuestion(defect, location)

	docs, err := a.docs.Documents(ctx, question)
	if err != nil {
		return "", fmt.Errorf("retrieve documents: %w", err)
	}

	answer, err := a.generator.Answer(ctx, question, llm.JoinDocuments(docs))
	if err != nil {
		return "", err
	}

	a.logger.Info().
		Str("defect", defect).
		Str("location", location).
		Int("documents", len(docs)).
		Dur("duration", time.Since(start)).
		Msg("solution generated")
	return answer, nil
}

// Chat advances the conversation of sessionID with message. Turns of one
// session are serialised; different sessions never share state.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string, newTopic bool) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, domain.ValidationError("메시지가 비어 있습니다.", nil)
	}

	var reply Reply
	err := a.sessions.With(ctx, sessionID, func(st *conversation.State) error {
		turn, err := a.machine.Step(ctx, st, message, newTopic)
		if err != nil {
			return err
		}
		if !turn.Final {
			reply = Reply{Text: turn.Text}
			return nil
		}

		docs, err := a.docs.Documents(ctx, turn.Text)
		if err != nil {
			return fmt.Errorf("retrieve documents: %w", err)
		}

		var answer string
		if turn.NeedsContext {
			answer, err = a.generator.ContextualAnswer(ctx, turn.Text, st.Context(), docs)
		} else {
			answer, err = a.generator.Answer(ctx, turn.Text, llm.ChatContext(turn.Text, docs))
		}
		if err != nil {
			return err
		}

		st.AddHistory(turn.Text, answer)
		reply = Reply{Text: answer, Final: true}
		return nil
	})
	if err != nil {
		a.logger.WithSession(sessionID).Error().Err(err).Msg("chat turn failed")
		return Reply{}, err
	}
	return reply, nil
}

// EndSession discards the conversation of sessionID.
func (a *Assistant) EndSession(ctx context.Context, sessionID string) error {
	return a.sessions.End(ctx, sessionID)
}
