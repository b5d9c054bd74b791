package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

// mockChatModel 模拟 ChatModel，按固定内容返回
type mockChatModel struct {
	content string
	err     error
	calls   int
	last    []*schema.Message
}

func (m *mockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	m.last = input
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.content}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

const validResponse = `Here is the analysis:
{
	"overall_sentiment": "Positive",
	"confidence_score": "72",
	"key_points": ["Strong airdrop interest"],
	"risks": ["Unlock schedule"],
	"opportunities": ["Restaking narrative"],
	"recommendation": "Watch closely."
}
Let me know if you need more.`

var samplePosts = []dm.Post{
	{Title: "Solayer airdrop is live", Description: "Claim before Friday", Votes: 120},
	{Title: "Is LAYER overvalued?", Votes: -4},
}

func TestSummarize_Valid(t *testing.T) {
	m := &mockChatModel{content: validResponse}
	s := NewWithModel(m, Config{})

	res := s.Summarize(context.Background(), "solayer", samplePosts)
	require.Equal(t, dm.OutcomeValid, res.Outcome)
	require.NoError(t, res.Err)
	assert.Equal(t, dm.SentimentRecord{
		OverallSentiment: dm.SentimentPositive,
		ConfidenceScore:  "72",
		KeyPoints:        []string{"Strong airdrop interest"},
		Risks:            []string{"Unlock schedule"},
		Opportunities:    []string{"Restaking narrative"},
		Recommendation:   "Watch closely.",
	}, res.Record)
	assert.Equal(t, 1, m.calls)
}

func TestSummarize_FallbackOnNonJSON(t *testing.T) {
	m := &mockChatModel{content: "I cannot determine the sentiment for this coin."}
	res := NewWithModel(m, Config{}).Summarize(context.Background(), "1000chems", samplePosts)

	assert.Equal(t, dm.OutcomeFallback, res.Outcome)
	assert.Equal(t, dm.FallbackRecord(), res.Record)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, m.calls)
}

func TestSummarize_FallbackOnMissingField(t *testing.T) {
	m := &mockChatModel{content: `{"overall_sentiment":"negative","confidence_score":"40","key_points":[],"risks":[],"opportunities":[]}`}
	res := NewWithModel(m, Config{}).Summarize(context.Background(), "x", samplePosts)

	assert.Equal(t, dm.OutcomeFallback, res.Outcome)
	assert.Equal(t, dm.FallbackRecord(), res.Record)
}

func TestSummarize_OmittedOnTransportError(t *testing.T) {
	m := &mockChatModel{err: errors.New("dial tcp 127.0.0.1:11434: connection refused")}
	res := NewWithModel(m, Config{}).Summarize(context.Background(), "berachain", samplePosts)

	assert.Equal(t, dm.OutcomeOmitted, res.Outcome)
	assert.Error(t, res.Err)
	assert.Equal(t, dm.SentimentRecord{}, res.Record)
	assert.Equal(t, 1, m.calls)
}

func TestSummarize_Deterministic(t *testing.T) {
	m := &mockChatModel{content: validResponse}
	s := NewWithModel(m, Config{})

	first := s.Summarize(context.Background(), "solayer", samplePosts)
	firstPrompt := m.last[1].Content
	second := s.Summarize(context.Background(), "solayer", samplePosts)

	assert.Equal(t, first, second)
	assert.Equal(t, firstPrompt, m.last[1].Content)
}

func TestSummarize_AlwaysCompleteRecord(t *testing.T) {
	responses := []string{
		validResponse,
		"",
		"{",
		`{"overall_sentiment": 5}`,
		`{"overall_sentiment":"bullish","confidence_score":"50","key_points":[],"risks":[],"opportunities":[],"recommendation":"x"}`,
		`{"overall_sentiment":"neutral","confidence_score":"150","key_points":[],"risks":[],"opportunities":[],"recommendation":"x"}`,
	}
	for _, content := range responses {
		res := NewWithModel(&mockChatModel{content: content}, Config{}).Summarize(context.Background(), "x", samplePosts)
		require.NotEqual(t, dm.OutcomeOmitted, res.Outcome, content)
		r := res.Record
		assert.True(t, r.OverallSentiment.Valid(), content)
		assert.NotEmpty(t, r.ConfidenceScore, content)
		assert.NotNil(t, r.KeyPoints, content)
		assert.NotNil(t, r.Risks, content)
		assert.NotNil(t, r.Opportunities, content)
		assert.NotEmpty(t, r.Recommendation, content)
	}
}

func TestBuildPrompt_TruncatesDescriptions(t *testing.T) {
	long := strings.Repeat("é", 800)
	msgs := BuildPrompt("solayer", []dm.Post{{Title: "t", Description: long, Votes: 3}}, 500)

	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)

	user := msgs[1].Content
	assert.Contains(t, user, "Coin: solayer")
	assert.Contains(t, user, strings.Repeat("é", 500))
	assert.NotContains(t, user, strings.Repeat("é", 501))
	assert.True(t, utf8.ValidString(user))
	for _, field := range requiredFields {
		assert.Contains(t, user, field)
	}
}

func TestBuildPrompt_SkipsEmptyContent(t *testing.T) {
	msgs := BuildPrompt("x", []dm.Post{{Title: "only a title"}}, 500)
	assert.NotContains(t, msgs[1].Content, "Content:")
}
