// Package storage persists the interaction audit trail.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// InteractionKind names the endpoint that produced an interaction.
type InteractionKind string

const (
	InteractionAnalyze   InteractionKind = "analyze"
	InteractionChat      InteractionKind = "chat"
	InteractionRecommend InteractionKind = "recommend"
)

// Interaction is one audited request/response pair.
type Interaction struct {
	ID         uuid.UUID       `json:"id"`
	SessionID  string          `json:"session_id"`
	Kind       InteractionKind `json:"kind"`
	Input      string          `json:"input"`
	Output     string          `json:"output"`
	OccurredAt time.Time       `json:"occurred_at"`
}
