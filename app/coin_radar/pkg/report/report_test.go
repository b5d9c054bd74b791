package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

func sampleReport() *model.Report {
	rep := model.NewReport("run-1", time.Date(2025, 2, 6, 9, 30, 0, 0, time.UTC))
	rep.Add("SOLV", &model.CoinReport{
		Posts: []model.Post{
			{Title: "SOLV listing <today>", Description: strings.Repeat("a", 250), Votes: 12},
			{Title: "Quiet thread", Votes: -2},
		},
		Sentiment: model.SentimentRecord{
			OverallSentiment: model.SentimentPositive,
			ConfidenceScore:  "70",
			KeyPoints:        []string{"BTCFi narrative"},
			Risks:            []string{"Token unlocks"},
			Opportunities:    []string{"Staking yield"},
			Recommendation:   "Watch closely.",
		},
		Outcome: model.OutcomeValid,
	})
	rep.Add("1000chems", &model.CoinReport{
		Posts:     []model.Post{{Title: "chems"}},
		Sentiment: model.FallbackRecord(),
		Outcome:   model.OutcomeFallback,
	})
	return rep
}

func TestSaveJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	now := time.Date(2025, 2, 6, 9, 30, 15, 0, time.Local)

	path, err := SaveJSON(dir, sampleReport(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "coin_analysis_20250206_093015.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"SOLV\": {")
	assert.Contains(t, string(data), "SOLV listing <today>")

	var decoded map[string]struct {
		Posts     []model.Post          `json:"reddit_posts"`
		Sentiment model.SentimentRecord `json:"sentiment_analysis"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, model.FallbackRecord(), decoded["1000chems"].Sentiment)
	assert.Equal(t, -2, decoded["SOLV"].Posts[1].Votes)

	// 保持上线顺序
	assert.Less(t, strings.Index(string(data), `"SOLV"`), strings.Index(string(data), `"1000chems"`))
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "ANALYSIS REPORT FOR SOLV")
	assert.Contains(t, out, "ANALYSIS REPORT FOR 1000chems")
	assert.Contains(t, out, "• BTCFi narrative")
	assert.Contains(t, out, "RECOMMENDATION: Watch closely.")
	assert.Contains(t, out, strings.Repeat("a", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 201))
	assert.Contains(t, out, "model output could not be parsed")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", Preview("short\n  text", 200))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
}

func TestMailer_Compose(t *testing.T) {
	m := NewMailer(config.EmailConfig{Address: "radar@example.com", To: []string{"client@example.com"}})
	mail, err := m.Compose(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "Market Sentiment Analysis for SOLV, 1000chems", mail.Subject)
	assert.Equal(t, "Coin Radar <radar@example.com>", mail.From)
	assert.Equal(t, []string{"client@example.com"}, mail.To)

	body := string(mail.Text)
	assert.Contains(t, body, "==== SOLV ====")
	assert.Contains(t, body, "positive (confidence 70/100, 2 posts analysed)")
	assert.Contains(t, body, "- Token unlocks")
	assert.Contains(t, body, "Conclusion & recommendation: Watch closely.")
	assert.Contains(t, body, "run run-1")
}
