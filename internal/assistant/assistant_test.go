package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cswnn/Capstone-Homefix2/internal/conversation"
	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

type fakeDocs struct {
	docs    []string
	err     error
	queries []string
}

func (f *fakeDocs) Documents(ctx context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	return f.docs, f.err
}

type answerCall struct {
	question string
	context  string
	history  string
	docs     []string
}

type fakeGenerator struct {
	answer     string
	err        error
	answers    []answerCall
	contextual []answerCall
}

func (f *fakeGenerator) Answer(ctx context.Context, question, context string) (string, error) {
	f.answers = append(f.answers, answerCall{question: question, context: context})
	return f.answer, f.err
}

func (f *fakeGenerator) ContextualAnswer(ctx context.Context, question, history string, docs []string) (string, error) {
	f.contextual = append(f.contextual, answerCall{question: question, history: history, docs: docs})
	return f.answer, f.err
}

// fixedJudge returns the same verdicts for every call.
type fixedJudge struct {
	specific     bool
	needsContext bool
	needsErr     error
	clarify      string
}

func (j fixedJudge) IsSpecific(ctx context.Context, question, history string) (bool, error) {
	return j.specific, nil
}

func (j fixedJudge) NeedsContext(ctx context.Context, question, history string) (bool, error) {
	return j.needsContext, j.needsErr
}

func (j fixedJudge) Clarify(ctx context.Context, question string) (string, error) {
	return j.clarify, nil
}

func newAssistant(t *testing.T, docs DocumentSource, gen AnswerGenerator, judge conversation.Judge) (*Assistant, *conversation.MemoryStore) {
	t.Helper()
	logger := observability.NewNopLogger()
	store := conversation.NewMemoryStore(time.Hour, logger)
	t.Cleanup(func() { _ = store.Close() })
	return New(docs, gen, conversation.NewMachine(judge, logger), conversation.NewSessions(store), logger), store
}

func TestSolve(t *testing.T) {
	docs := &fakeDocs{docs: []string{"doc A", "doc B"}}
	gen := &fakeGenerator{answer: "해결 방법"}
	a, _ := newAssistant(t, docs, gen, fixedJudge{})

	answer, err := a.Solve(context.Background(), "곰팡이", "욕실")
	require.NoError(t, err)
	assert.Equal(t, "해결 방법", answer)

	assert.Equal(t, []string{"욕실에서 곰팡이 제거하는 법 알려줘."}, docs.queries)
	require.Len(t, gen.answers, 1)
	assert.Equal(t, "욕실에서 곰팡이 제거하는 법 알려줘.", gen.answers[0].question)
	assert.Equal(t, "doc A\n\n---\n\ndoc B", gen.answers[0].context)
}

func TestSolve_Errors(t *testing.T) {
	t.Run("retrieval", func(t *testing.T) {
		a, _ := newAssistant(t, &fakeDocs{err: errors.New("embedding down")}, &fakeGenerator{}, fixedJudge{})
		_, err := a.Solve(context.Background(), "녹", "수전")
		require.Error(t, err)
	})

	t.Run("generation", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("quota")}
		a, _ := newAssistant(t, &fakeDocs{}, gen, fixedJudge{})
		_, err := a.Solve(context.Background(), "녹", "수전")
		require.Error(t, err)
	})
}

func TestChat_SpecificQuestion(t *testing.T) {
	docs := &fakeDocs{docs: []string{"doc"}}
	gen := &fakeGenerator{answer: "답변"}
	a, store := newAssistant(t, docs, gen, fixedJudge{specific: true})

	reply, err := a.Chat(context.Background(), "s1", "욕실 타일 곰팡이 제거법", false)
	require.NoError(t, err)
	assert.Equal(t, Reply{Text: "답변", Final: true}, reply)

	require.Len(t, gen.answers, 1)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(gen.answers[0].context), "사용자 질문: 욕실 타일 곰팡이 제거법"))
	assert.True(t, strings.HasSuffix(gen.answers[0].context, "\n\n관련 문서:\ndoc"))

	st, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []conversation.Exchange{
		{User: "욕실 타일 곰팡이 제거법", AI: "욕실 타일 곰팡이 제거법"},
		{User: "욕실 타일 곰팡이 제거법", AI: "답변"},
	}, st.History)
}

func TestChat_ClarificationRound(t *testing.T) {
	docs := &fakeDocs{}
	gen := &fakeGenerator{answer: "답변"}
	judge := &switchJudge{clarify: "어디에서 발생했나요?"}
	a, _ := newAssistant(t, docs, gen, judge)
	ctx := context.Background()

	reply, err := a.Chat(ctx, "s1", "곰팡이 생겼어", false)
	require.NoError(t, err)
	assert.Equal(t, Reply{Text: "어디에서 발생했나요?"}, reply)
	assert.Empty(t, gen.answers, "no answer before clarification")

	judge.specific = true
	reply, err = a.Chat(ctx, "s1", "욕실", false)
	require.NoError(t, err)
	assert.True(t, reply.Final)
	assert.Equal(t, []string{"욕실에서 곰팡이 생겼어"}, docs.queries)
	require.Len(t, gen.answers, 1)
	assert.Equal(t, "욕실에서 곰팡이 생겼어", gen.answers[0].question)
}

func TestChat_ContextualTurn(t *testing.T) {
	docs := &fakeDocs{docs: []string{"doc"}}
	gen := &fakeGenerator{answer: "이전 답변 기반"}
	a, _ := newAssistant(t, docs, gen, fixedJudge{needsContext: true})

	reply, err := a.Chat(context.Background(), "s1", "그럼 얼마나 걸려?", false)
	require.NoError(t, err)
	assert.Equal(t, Reply{Text: "이전 답변 기반", Final: true}, reply)

	require.Len(t, gen.contextual, 1)
	assert.Empty(t, gen.answers)
	assert.Equal(t, "그럼 얼마나 걸려?", gen.contextual[0].question)
	assert.Equal(t, "사용자: 그럼 얼마나 걸려?\nAI: "+conversation.ContextTurnMarker, gen.contextual[0].history)
	assert.Equal(t, []string{"doc"}, gen.contextual[0].docs)
}

func TestChat_SessionsAreIsolated(t *testing.T) {
	judge := &switchJudge{clarify: "어디인가요?"}
	a, _ := newAssistant(t, &fakeDocs{}, &fakeGenerator{answer: "답변"}, judge)
	ctx := context.Background()

	_, err := a.Chat(ctx, "alice", "곰팡이", false)
	require.NoError(t, err)

	// bob's vague message must start its own clarification, not complete alice's.
	reply, err := a.Chat(ctx, "bob", "녹", false)
	require.NoError(t, err)
	assert.Equal(t, "어디인가요?", reply.Text)
	assert.False(t, reply.Final)
}

func TestChat_Errors(t *testing.T) {
	t.Run("context judgment", func(t *testing.T) {
		a, _ := newAssistant(t, &fakeDocs{}, &fakeGenerator{}, fixedJudge{needsErr: errors.New("llm down")})
		_, err := a.Chat(context.Background(), "s1", "hi", false)
		require.Error(t, err)
	})

	t.Run("generation keeps state transitions", func(t *testing.T) {
		a, store := newAssistant(t, &fakeDocs{}, &fakeGenerator{err: errors.New("quota")}, fixedJudge{specific: true})
		_, err := a.Chat(context.Background(), "s1", "욕실 곰팡이", false)
		require.Error(t, err)

		st, err := store.Load(context.Background(), "s1")
		require.NoError(t, err)
		assert.Len(t, st.History, 1)
	})
}

func TestChat_EmptyMessage(t *testing.T) {
	gen := &fakeGenerator{answer: "x"}
	a, store := newAssistant(t, &fakeDocs{}, gen, fixedJudge{specific: true})

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := a.Chat(context.Background(), "s1", msg, false)
		require.Error(t, err)
		assert.True(t, domain.IsClientError(err))
	}
	assert.Equal(t, 0, store.Len(), "no session is created")
	assert.Empty(t, gen.answers)
}

func TestEndSession(t *testing.T) {
	a, store := newAssistant(t, &fakeDocs{}, &fakeGenerator{answer: "x"}, fixedJudge{specific: true})
	ctx := context.Background()

	_, err := a.Chat(ctx, "s1", "q", false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, a.EndSession(ctx, "s1"))
	assert.Equal(t, 0, store.Len())
}

// switchJudge is a mutable judge whose specificity can be flipped mid-test.
type switchJudge struct {
	specific bool
	clarify  string
}

func (j *switchJudge) IsSpecific(ctx context.Context, question, history string) (bool, error) {
	return j.specific, nil
}

func (j *switchJudge) NeedsContext(ctx context.Context, question, history string) (bool, error) {
	return false, nil
}

func (j *switchJudge) Clarify(ctx context.Context, question string) (string, error) {
	return j.clarify, nil
}
