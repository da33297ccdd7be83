package handlers

import (
	"errors"
	"net/http"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-api/middleware"
	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// ChatRequest is the body of POST /chat/.
type ChatRequest struct {
	Message   string `json:"message"`
	NewTopic  bool   `json:"new_topic,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply of POST /chat/.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ChatHandler handles free-text chat.
type ChatHandler struct {
	logger  *observability.Logger
	chatter Chatter
	audit   Auditor
}

// NewChatHandler creates a chat handler.
func NewChatHandler(logger *observability.Logger, chatter Chatter, audit Auditor) *ChatHandler {
	return &ChatHandler{logger: logger, chatter: chatter, audit: audit}
}

// Chat handles POST /chat/.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "잘못된 요청: "+err.Error())
		return
	}

	sessionID := middleware.ResolveSessionID(r, req.SessionID)
	w.Header().Set(middleware.SessionHeader, sessionID)

	reply, err := h.chatter.Chat(ctx, sessionID, req.Message, req.NewTopic)
	if err != nil {
		var de *domain.DomainError
		if domain.IsClientError(err) && errors.As(err, &de) {
			writeError(w, http.StatusBadRequest, de.Message)
			return
		}
		h.logger.WithContext(ctx).WithSession(sessionID).Error().Err(err).Msg("chat failed")
		writeError(w, http.StatusInternalServerError, "채팅 처리 실패: "+err.Error())
		return
	}

	if reply.Final {
		h.audit.LogChat(ctx, sessionID, req.Message, reply.Text)
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: reply.Text, SessionID: sessionID})
}

// EndSession handles DELETE /chat/session/. The session is named the same
// way as for /chat/, with session_id taken from the query string.
func (h *ChatHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.ResolveSessionID(r, r.URL.Query().Get("session_id"))
	w.Header().Set(middleware.SessionHeader, sessionID)

	if err := h.chatter.EndSession(ctx, sessionID); err != nil {
		h.logger.WithContext(ctx).WithSession(sessionID).Error().Err(err).Msg("end session failed")
		writeError(w, http.StatusInternalServerError, "세션 종료 실패: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
