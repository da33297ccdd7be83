// Package conversation implements the per-session clarification flow of the
// chat assistant.
package conversation

import (
	"strings"
	"time"
)

// Exchange is one history entry. AI holds whatever the assistant recorded
// for the turn, which for non-final turns is the clarification prompt.
type Exchange struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

// State is the conversation state of one session.
type State struct {
	AwaitingClarification bool       `json:"awaiting_clarification"`
	PendingQuestion       string     `json:"pending_question,omitempty"`
	History               []Exchange `json:"history"`
	LastSeen              time.Time  `json:"last_seen"`
}

// Reset clears the clarification fields and keeps the history.
func (s *State) Reset() {
	s.AwaitingClarification = false
	s.PendingQuestion = ""
}

// ResetAll clears the clarification fields and the history.
func (s *State) ResetAll() {
	s.Reset()
	s.History = nil
}

// AddHistory appends one exchange.
func (s *State) AddHistory(user, ai string) {
	s.History = append(s.History, Exchange{User: user, AI: ai})
}

// Context renders the history as alternating "사용자:" and "AI:" lines.
func (s *State) Context() string {
	if len(s.History) == 0 {
		return ""
	}
	lines := make([]string, 0, 2*len(s.History))
	for _, e := range s.History {
		lines = append(lines, "사용자: "+e.User, "AI: "+e.AI)
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	cp := *s
	if s.History != nil {
		cp.History = make([]Exchange, len(s.History))
		copy(cp.History, s.History)
	}
	return &cp
}
