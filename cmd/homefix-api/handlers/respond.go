// Package handlers provides HTTP handlers for the Homefix API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cswnn/Capstone-Homefix2/internal/assistant"
	"github.com/cswnn/Capstone-Homefix2/internal/classifier"
	"github.com/cswnn/Capstone-Homefix2/internal/recommend"
)

// ImageClassifier labels base64-encoded photos.
type ImageClassifier interface {
	ClassifyBase64(ctx context.Context, b64 string) (classifier.Prediction, error)
	CheckReady(ctx context.Context) error
}

// Solver generates a solution for a classified defect.
type Solver interface {
	Solve(ctx context.Context, defect, location string) (string, error)
}

// Chatter answers chat messages within a session.
type Chatter interface {
	Chat(ctx context.Context, sessionID, message string, newTopic bool) (assistant.Reply, error)
	EndSession(ctx context.Context, sessionID string) error
}

// Recommender suggests products for a defect.
type Recommender interface {
	Recommend(ctx context.Context, problem, location string) []recommend.Group
}

// Auditor records answered requests.
type Auditor interface {
	LogAnalyze(ctx context.Context, sessionID, defect, location, solution string)
	LogChat(ctx context.Context, sessionID, message, answer string)
	LogRecommend(ctx context.Context, sessionID, problem, location string, groups int)
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
