// Package monitoring provides the interaction audit trail.
package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cswnn/Capstone-Homefix2/internal/observability"
	"github.com/cswnn/Capstone-Homefix2/internal/storage"
)

// InteractionStore persists audit rows.
type InteractionStore interface {
	Create(ctx context.Context, in *storage.Interaction) error
	Recent(ctx context.Context, limit int) ([]*storage.Interaction, error)
}

// AuditLogger records every answered request. Failures are logged and never
// returned to the caller.
type AuditLogger struct {
	logger *observability.Logger
	store  InteractionStore
}

// NewAuditLogger creates a new audit logger. store may be nil, in which case
// events only go to the structured log.
func NewAuditLogger(logger *observability.Logger, store InteractionStore) *AuditLogger {
	return &AuditLogger{
		logger: logger.WithOperation("audit"),
		store:  store,
	}
}

// Record logs one interaction and persists it when a store is configured.
func (a *AuditLogger) Record(ctx context.Context, kind storage.InteractionKind, sessionID, input, output string) {
	event := &storage.Interaction{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Kind:       kind,
		Input:      input,
		Output:     output,
		OccurredAt: time.Now(),
	}

	a.logger.WithContext(ctx).Info().
		Str("event_id", event.ID.String()).
		Str("kind", string(kind)).
		Str("session_id", sessionID).
		Int("input_chars", len(input)).
		Int("output_chars", len(output)).
		Msg("Audit event")

	if a.store == nil {
		return
	}
	if err := a.store.Create(ctx, event); err != nil {
		a.logger.Warn().Err(err).Str("event_id", event.ID.String()).Msg("failed to persist audit event")
	}
}

// LogAnalyze records an image analysis.
func (a *AuditLogger) LogAnalyze(ctx context.Context, sessionID, defect, location, solution string) {
	a.Record(ctx, storage.InteractionAnalyze, sessionID, defect+"/"+location, solution)
}

// LogChat records a final chat answer.
func (a *AuditLogger) LogChat(ctx context.Context, sessionID, message, answer string) {
	a.Record(ctx, storage.InteractionChat, sessionID, message, answer)
}

// LogRecommend records a recommendation request and its group count.
func (a *AuditLogger) LogRecommend(ctx context.Context, sessionID, problem, location string, groups int) {
	a.Record(ctx, storage.InteractionRecommend, sessionID, problem+"/"+location, fmt.Sprintf("%d groups", groups))
}

// Recent returns the latest persisted interactions, or nothing without a store.
func (a *AuditLogger) Recent(ctx context.Context, limit int) ([]*storage.Interaction, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.Recent(ctx, limit)
}
