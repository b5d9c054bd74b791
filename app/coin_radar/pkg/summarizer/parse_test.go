package summarizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("```json\n{\"a\": {\"b\": 1}}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, err = ExtractJSON("no braces")
	assert.ErrorIs(t, err, ErrNoJSONObject)

	_, err = ExtractJSON("} before {")
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestParseResponse_ConfidenceForms(t *testing.T) {
	tpl := `{"overall_sentiment":"neutral","confidence_score":%s,"key_points":["a"],"risks":["b"],"opportunities":["c"],"recommendation":"d"}`
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{`"65"`, "65", false},
		{`65`, "65", false},
		{`"80%"`, "80", false},
		{`0`, "0", false},
		{`"100"`, "100", false},
		{`101`, "", true},
		{`-1`, "", true},
		{`"high"`, "", true},
		{`62.5`, "", true},
		{`null`, "", true},
	}
	for _, tt := range tests {
		rec, err := ParseResponse(fmt.Sprintf(tpl, tt.raw))
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, rec.ConfidenceScore, tt.raw)
		assert.Equal(t, dm.SentimentNeutral, rec.OverallSentiment)
	}
}

func TestParseResponse_WrongTypes(t *testing.T) {
	_, err := ParseResponse(`{"overall_sentiment":"positive","confidence_score":"10","key_points":"not a list","risks":[],"opportunities":[],"recommendation":"d"}`)
	assert.Error(t, err)

	_, err = ParseResponse(`{"overall_sentiment":"positive","confidence_score":"10","key_points":[],"risks":[],"opportunities":[],"recommendation":7}`)
	assert.Error(t, err)
}
