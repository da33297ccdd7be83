package handlers

import (
	"net/http"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-api/middleware"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
	"github.com/cswnn/Capstone-Homefix2/internal/recommend"
)

// RecommendRequest is the body of POST /recommend/.
type RecommendRequest struct {
	Problem  string `json:"problem"`
	Location string `json:"location"`
}

// RecommendResponse is the reply of POST /recommend/.
type RecommendResponse struct {
	Groups []recommend.Group `json:"groups"`
}

// RecommendHandler serves product recommendations.
type RecommendHandler struct {
	logger      *observability.Logger
	recommender Recommender
	audit       Auditor
}

// NewRecommendHandler creates a recommend handler.
func NewRecommendHandler(logger *observability.Logger, recommender Recommender, audit Auditor) *RecommendHandler {
	return &RecommendHandler{logger: logger, recommender: recommender, audit: audit}
}

// Recommend handles POST /recommend/. Search failures never fail the
// request; the pipeline degrades to fallback links instead.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecommendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "잘못된 요청: "+err.Error())
		return
	}

	groups := h.recommender.Recommend(ctx, req.Problem, req.Location)
	if groups == nil {
		groups = []recommend.Group{}
	}

	h.audit.LogRecommend(ctx, middleware.ResolveSessionID(r, ""), req.Problem, req.Location, len(groups))
	writeJSON(w, http.StatusOK, RecommendResponse{Groups: groups})
}
