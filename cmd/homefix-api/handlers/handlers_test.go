package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cswnn/Capstone-Homefix2/cmd/homefix-api/middleware"
	"github.com/cswnn/Capstone-Homefix2/internal/assistant"
	"github.com/cswnn/Capstone-Homefix2/internal/classifier"
	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
	"github.com/cswnn/Capstone-Homefix2/internal/recommend"
)

type stubClassifier struct {
	pred     classifier.Prediction
	err      error
	readyErr error
}

func (s *stubClassifier) ClassifyBase64(ctx context.Context, b64 string) (classifier.Prediction, error) {
	return s.pred, s.err
}

func (s *stubClassifier) CheckReady(ctx context.Context) error { return s.readyErr }

type stubSolver struct {
	answer string
	err    error
}

func (s *stubSolver) Solve(ctx context.Context, defect, location string) (string, error) {
	return s.answer, s.err
}

type stubChatter struct {
	reply     assistant.Reply
	err       error
	sessionID string
	newTopic  bool
	ended     []string
}

func (s *stubChatter) Chat(ctx context.Context, sessionID, message string, newTopic bool) (assistant.Reply, error) {
	s.sessionID = sessionID
	s.newTopic = newTopic
	return s.reply, s.err
}

func (s *stubChatter) EndSession(ctx context.Context, sessionID string) error {
	s.ended = append(s.ended, sessionID)
	return s.err
}

type stubRecommender struct {
	groups []recommend.Group
}

func (s *stubRecommender) Recommend(ctx context.Context, problem, location string) []recommend.Group {
	return s.groups
}

type recordingAuditor struct {
	events []string
}

func (a *recordingAuditor) LogAnalyze(ctx context.Context, sessionID, defect, location, solution string) {
	a.events = append(a.events, "analyze:"+sessionID)
}

func (a *recordingAuditor) LogChat(ctx context.Context, sessionID, message, answer string) {
	a.events = append(a.events, "chat:"+sessionID)
}

func (a *recordingAuditor) LogRecommend(ctx context.Context, sessionID, problem, location string, groups int) {
	a.events = append(a.events, "recommend:"+sessionID)
}

func post(t *testing.T, h http.HandlerFunc, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.RemoteAddr = "192.168.0.7:51000"
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func TestAnalyze(t *testing.T) {
	logger := observability.NewNopLogger()

	t.Run("success", func(t *testing.T) {
		audit := &recordingAuditor{}
		h := NewAnalyzeHandler(logger,
			&stubClassifier{pred: classifier.Prediction{Defect: "곰팡이", Location: "욕실"}},
			&stubSolver{answer: "해결 방법"}, audit)

		w := post(t, h.Analyze, `{"image_base64":"aGVsbG8="}`, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp AnalyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, AnalyzeResponse{Problem: "곰팡이", Location: "욕실", Solution: "해결 방법"}, resp)
		assert.Equal(t, []string{"analyze:192.168.0.7"}, audit.events)
	})

	t.Run("undecodable image", func(t *testing.T) {
		h := NewAnalyzeHandler(logger,
			&stubClassifier{err: domain.ImageDecodeError("invalid base64", errors.New("illegal data"))},
			&stubSolver{}, &recordingAuditor{})

		w := post(t, h.Analyze, `{"image_base64":"###"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, strings.HasPrefix(decodeDetail(t, w), "이미지 처리 실패: "))
	})

	t.Run("invalid json", func(t *testing.T) {
		h := NewAnalyzeHandler(logger, &stubClassifier{}, &stubSolver{}, &recordingAuditor{})
		w := post(t, h.Analyze, `{`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("inference failure", func(t *testing.T) {
		h := NewAnalyzeHandler(logger,
			&stubClassifier{err: domain.InferenceError("backend down", nil)},
			&stubSolver{}, &recordingAuditor{})

		w := post(t, h.Analyze, `{"image_base64":"aGVsbG8="}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("generation failure", func(t *testing.T) {
		audit := &recordingAuditor{}
		h := NewAnalyzeHandler(logger,
			&stubClassifier{pred: classifier.Prediction{Defect: "녹", Location: "수전"}},
			&stubSolver{err: domain.GenerationError("quota", nil)}, audit)

		w := post(t, h.Analyze, `{"image_base64":"aGVsbG8="}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, audit.events)
	})
}

func TestChat(t *testing.T) {
	logger := observability.NewNopLogger()

	t.Run("final answer with header session", func(t *testing.T) {
		chatter := &stubChatter{reply: assistant.Reply{Text: "답변", Final: true}}
		audit := &recordingAuditor{}
		h := NewChatHandler(logger, chatter, audit)

		w := post(t, h.Chat, `{"message":"곰팡이 제거법","new_topic":true,"session_id":"body-id"}`,
			map[string]string{middleware.SessionHeader: "hdr-id"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ChatResponse{Response: "답변", SessionID: "hdr-id"}, resp)
		assert.Equal(t, "hdr-id", w.Header().Get(middleware.SessionHeader))
		assert.Equal(t, "hdr-id", chatter.sessionID)
		assert.True(t, chatter.newTopic)
		assert.Equal(t, []string{"chat:hdr-id"}, audit.events)
	})

	t.Run("clarification is not audited", func(t *testing.T) {
		chatter := &stubChatter{reply: assistant.Reply{Text: "어디인가요?"}}
		audit := &recordingAuditor{}
		h := NewChatHandler(logger, chatter, audit)

		w := post(t, h.Chat, `{"message":"곰팡이"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "192.168.0.7", chatter.sessionID)
		assert.Empty(t, audit.events)
	})

	t.Run("validation error", func(t *testing.T) {
		chatter := &stubChatter{err: domain.ValidationError("메시지가 비어 있습니다.", nil)}
		h := NewChatHandler(logger, chatter, &recordingAuditor{})
		w := post(t, h.Chat, `{"message":"   "}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "메시지가 비어 있습니다.", decodeDetail(t, w))
	})

	t.Run("failure", func(t *testing.T) {
		h := NewChatHandler(logger, &stubChatter{err: errors.New("llm down")}, &recordingAuditor{})
		w := post(t, h.Chat, `{"message":"hi"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "채팅 처리 실패: llm down", decodeDetail(t, w))
	})
}

func TestEndSession(t *testing.T) {
	logger := observability.NewNopLogger()

	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"header", "/chat/session/", "hdr-id", "hdr-id"},
		{"query", "/chat/session/?session_id=q-id", "", "q-id"},
		{"client address", "/chat/session/", "", "192.168.0.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatter := &stubChatter{}
			h := NewChatHandler(logger, chatter, &recordingAuditor{})

			r := httptest.NewRequest(http.MethodDelete, tt.target, nil)
			r.RemoteAddr = "192.168.0.7:5555"
			if tt.header != "" {
				r.Header.Set(middleware.SessionHeader, tt.header)
			}
			w := httptest.NewRecorder()
			h.EndSession(w, r)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.want, w.Header().Get(middleware.SessionHeader))
			assert.Equal(t, []string{tt.want}, chatter.ended)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		h := NewChatHandler(logger, &stubChatter{err: errors.New("redis down")}, &recordingAuditor{})
		r := httptest.NewRequest(http.MethodDelete, "/chat/session/", nil)
		w := httptest.NewRecorder()
		h.EndSession(w, r)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "세션 종료 실패: redis down", decodeDetail(t, w))
	})
}

func TestRecommend(t *testing.T) {
	logger := observability.NewNopLogger()

	t.Run("groups", func(t *testing.T) {
		groups := recommend.FallbackGroups(recommend.GroupsFor("녹", ""))
		audit := &recordingAuditor{}
		h := NewRecommendHandler(logger, &stubRecommender{groups: groups}, audit)

		w := post(t, h.Recommend, `{"problem":"녹","location":"수전"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var raw map[string][]map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		require.Len(t, raw["groups"], 2)
		assert.Equal(t, "녹제거제", raw["groups"][0]["group"])
		assert.Equal(t, true, raw["groups"][0]["required"])

		items := raw["groups"][0]["items"].([]interface{})
		first := items[0].(map[string]interface{})
		assert.Contains(t, first, "imageUrl")
		assert.Nil(t, first["price"])
		assert.Equal(t, false, first["ad"])
		assert.Len(t, audit.events, 1)
	})

	t.Run("never null", func(t *testing.T) {
		h := NewRecommendHandler(logger, &stubRecommender{}, &recordingAuditor{})
		w := post(t, h.Recommend, `{"problem":"","location":""}`, nil)
		assert.JSONEq(t, `{"groups":[]}`, w.Body.String())
	})
}

func TestServerInfo(t *testing.T) {
	h := &ServerInfoHandler{port: 8000, localIP: func() string { return "10.1.2.3" }}

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/server-info/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ip":"10.1.2.3","port":8000,"base_url":"http://10.1.2.3:8000"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{})
		w := httptest.NewRecorder()
		h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{readyErr: errors.New("model loading")})
		w := httptest.NewRecorder()
		h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
