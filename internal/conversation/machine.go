package conversation

import (
	"context"
	"fmt"

	"github.com/cswnn/Capstone-Homefix2/internal/metrics"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

const (
	// StillVagueReply answers a clarification that is still not specific.
	StillVagueReply = "더 구체적인 정보를 알려주세요."
	// FallbackClarification is used when no clarification question could be generated.
	FallbackClarification = "더 구체적인 정보가 필요합니다. 어떤 문제가 발생했고, 어디에서 발생했는지 알려주세요."
	// ContextTurnMarker is recorded for turns answered from the history.
	ContextTurnMarker = "문맥 기반 답변"
)

// Judge makes the delegated decisions about a message.
type Judge interface {
	IsSpecific(ctx context.Context, question, history string) (bool, error)
	NeedsContext(ctx context.Context, question, history string) (bool, error)
	Clarify(ctx context.Context, question string) (string, error)
}

// Turn is the outcome of one Step. When Final is false Text is a question
// for the user; otherwise Text is the query to answer.
type Turn struct {
	Text         string
	Final        bool
	NeedsContext bool
}

// Machine drives the IDLE / AWAITING_CLARIFICATION transitions.
type Machine struct {
	judge  Judge
	logger *observability.Logger
}

// NewMachine creates a state machine backed by judge.
func NewMachine(judge Judge, logger *observability.Logger) *Machine {
	return &Machine{judge: judge, logger: logger.WithOperation("conversation")}
}

// CombineQuery merges a clarification reply with the pending question.
func CombineQuery(reply, original string) string {
	return fmt.Sprintf("%s에서 %s", reply, original)
}

// Step advances st with message. newTopic is ignored while a clarification
// is pending. Only a failed context-need judgment is returned as an error.
func (m *Machine) Step(ctx context.Context, st *State, message string, newTopic bool) (Turn, error) {
	if st.AwaitingClarification {
		if m.isSpecific(ctx, st, message) {
			query := CombineQuery(message, st.PendingQuestion)
			st.Reset()
			st.AddHistory(message, query)
			metrics.ConversationTurns.WithLabelValues("clarified").Inc()
			return Turn{Text: query, Final: true}, nil
		}

		// Still vague: the pending question stays as it was.
		st.AddHistory(message, StillVagueReply)
		metrics.ConversationTurns.WithLabelValues("still_vague").Inc()
		return Turn{Text: StillVagueReply}, nil
	}

	if newTopic {
		st.ResetAll()
	}

	needsContext, err := m.judge.NeedsContext(ctx, message, st.Context())
	if err != nil {
		return Turn{}, fmt.Errorf("judge context need: %w", err)
	}
	if needsContext {
		st.AddHistory(message, ContextTurnMarker)
		metrics.ConversationTurns.WithLabelValues("contextual").Inc()
		return Turn{Text: message, Final: true, NeedsContext: true}, nil
	}

	if m.isSpecific(ctx, st, message) {
		st.AddHistory(message, message)
		metrics.ConversationTurns.WithLabelValues("specific").Inc()
		return Turn{Text: message, Final: true}, nil
	}

	st.PendingQuestion = message
	st.AwaitingClarification = true

	question, err := m.judge.Clarify(ctx, message)
	if err != nil {
		m.logger.Warn().Err(err).Msg("clarification generation failed, using fallback")
		question = FallbackClarification
	}
	st.AddHistory(message, question)
	metrics.ConversationTurns.WithLabelValues("clarification_requested").Inc()
	return Turn{Text: question}, nil
}

// isSpecific fails open: a judge error counts as specific.
func (m *Machine) isSpecific(ctx context.Context, st *State, message string) bool {
	specific, err := m.judge.IsSpecific(ctx, message, st.Context())
	if err != nil {
		m.logger.Warn().Err(err).Msg("specificity judgment failed, treating message as specific")
		return true
	}
	return specific
}
