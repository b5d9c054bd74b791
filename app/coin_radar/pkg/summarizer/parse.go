package summarizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	dm "github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

var requiredFields = []string{
	"overall_sentiment",
	"confidence_score",
	"key_points",
	"risks",
	"opportunities",
	"recommendation",
}

// ErrNoJSONObject 模型输出中找不到 {...}
var ErrNoJSONObject = errors.New("no json object in response")

// ExtractJSON 取第一个 "{" 到最后一个 "}" 之间的内容（含括号）
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// ParseResponse 解析模型输出；任一必填字段缺失或类型不符都返回错误
func ParseResponse(text string) (dm.SentimentRecord, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return dm.SentimentRecord{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return dm.SentimentRecord{}, fmt.Errorf("json unmarshal: %w", err)
	}
	for _, name := range requiredFields {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return dm.SentimentRecord{}, fmt.Errorf("missing field %q", name)
		}
	}

	var record dm.SentimentRecord

	var sentiment string
	if err := json.Unmarshal(fields["overall_sentiment"], &sentiment); err != nil {
		return dm.SentimentRecord{}, fmt.Errorf("overall_sentiment: %w", err)
	}
	record.OverallSentiment = dm.Sentiment(strings.ToLower(strings.TrimSpace(sentiment)))
	if !record.OverallSentiment.Valid() {
		return dm.SentimentRecord{}, fmt.Errorf("overall_sentiment: unexpected value %q", sentiment)
	}

	score, err := parseConfidence(fields["confidence_score"])
	if err != nil {
		return dm.SentimentRecord{}, fmt.Errorf("confidence_score: %w", err)
	}
	record.ConfidenceScore = strconv.Itoa(score)

	for name, dst := range map[string]*[]string{
		"key_points":    &record.KeyPoints,
		"risks":         &record.Risks,
		"opportunities": &record.Opportunities,
	} {
		if err := json.Unmarshal(fields[name], dst); err != nil {
			return dm.SentimentRecord{}, fmt.Errorf("%s: %w", name, err)
		}
	}

	if err := json.Unmarshal(fields["recommendation"], &record.Recommendation); err != nil {
		return dm.SentimentRecord{}, fmt.Errorf("recommendation: %w", err)
	}

	return record, nil
}

// parseConfidence 接受数字或数字字符串，范围 0-100
func parseConfidence(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, err
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("out of range: %d", n)
	}
	return n, nil
}
