package handlers

import (
	"net/http"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-api/middleware"
	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// AnalyzeRequest is the body of POST /analyze/.
type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// AnalyzeResponse is the reply of POST /analyze/.
type AnalyzeResponse struct {
	Problem  string `json:"problem"`
	Location string `json:"location"`
	Solution string `json:"solution"`
}

// AnalyzeHandler classifies a photo and generates a solution.
type AnalyzeHandler struct {
	logger     *observability.Logger
	classifier ImageClassifier
	solver     Solver
	audit      Auditor
}

// NewAnalyzeHandler creates an analyze handler.
func NewAnalyzeHandler(logger *observability.Logger, classifier ImageClassifier, solver Solver, audit Auditor) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger, classifier: classifier, solver: solver, audit: audit}
}

// Analyze handles POST /analyze/.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx)

	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "이미지 처리 실패: "+err.Error())
		return
	}
	logger.Debug().Int("base64_len", len(req.ImageBase64)).Msg("image received")

	pred, err := h.classifier.ClassifyBase64(ctx, req.ImageBase64)
	if err != nil {
		if domain.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "이미지 처리 실패: "+err.Error())
			return
		}
		logger.Error().Err(err).Msg("classification failed")
		writeError(w, http.StatusInternalServerError, "이미지 분석 실패: "+err.Error())
		return
	}

	solution, err := h.solver.Solve(ctx, pred.Defect, pred.Location)
	if err != nil {
		logger.Error().Err(err).Str("defect", pred.Defect).Msg("solution generation failed")
		writeError(w, http.StatusInternalServerError, "해결책 생성 실패: "+err.Error())
		return
	}

	h.audit.LogAnalyze(ctx, middleware.ResolveSessionID(r, ""), pred.Defect, pred.Location, solution)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Problem:  pred.Defect,
		Location: pred.Location,
		Solution: solution,
	})
}
