package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// AssetIdentifier 新上线资产的简称，例如 SOLV、solayer
type AssetIdentifier = string

// Post 单条 Reddit 讨论
type Post struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Votes       int    `json:"votes"`
	URL         string `json:"-"` // 仅用于正文补全，不输出
}

// Sentiment 情绪取值
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid 是否为合法的情绪取值
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// SentimentRecord LLM 对单个资产给出的情绪分析
type SentimentRecord struct {
	OverallSentiment Sentiment `json:"overall_sentiment"`
	ConfidenceScore  string    `json:"confidence_score"` // "0" - "100"
	KeyPoints        []string  `json:"key_points"`
	Risks            []string  `json:"risks"`
	Opportunities    []string  `json:"opportunities"`
	Recommendation   string    `json:"recommendation"`
}

// FallbackRecord 模型输出无法解析时使用的固定记录
func FallbackRecord() SentimentRecord {
	return SentimentRecord{
		OverallSentiment: SentimentNeutral,
		ConfidenceScore:  "0",
		KeyPoints:        []string{"Unable to analyze sentiment from the available discussions"},
		Risks:            []string{"Insufficient data for risk assessment"},
		Opportunities:    []string{"Insufficient data for opportunity assessment"},
		Recommendation:   "Insufficient data to make a recommendation. Monitor the asset and re-run the analysis later.",
	}
}

// Outcome 单个资产情绪分析的结果状态
type Outcome int

const (
	// OutcomeOmitted 模型调用失败，资产不进入报告
	OutcomeOmitted Outcome = iota
	// OutcomeValid 模型输出解析成功
	OutcomeValid
	// OutcomeFallback 模型输出无法解析，使用 FallbackRecord
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeFallback:
		return "fallback"
	default:
		return "omitted"
	}
}

// CoinReport 报告中单个资产的条目
type CoinReport struct {
	Posts     []Post          `json:"reddit_posts"`
	Sentiment SentimentRecord `json:"sentiment_analysis"`
	Outcome   Outcome         `json:"-"`
}

// Report 一次运行的完整报告，按上线顺序保存
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Assets      []AssetIdentifier
	Entries     map[AssetIdentifier]*CoinReport
}

// NewReport 创建空报告
func NewReport(runID string, now time.Time) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: now,
		Entries:     make(map[AssetIdentifier]*CoinReport),
	}
}

// Add 追加一个资产；重复的资产以第一次为准
func (r *Report) Add(asset AssetIdentifier, entry *CoinReport) {
	if _, ok := r.Entries[asset]; ok {
		return
	}
	r.Assets = append(r.Assets, asset)
	r.Entries[asset] = entry
}

// Len 报告中的资产数量
func (r *Report) Len() int {
	return len(r.Assets)
}

// MarshalJSON 以资产为 key 输出，保持上线顺序
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, asset := range r.Assets {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(&buf, asset); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encode(&buf, r.Entries[asset]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encode 不转义 HTML 字符，帖子正文里的 <、& 原样保留
func encode(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode 会追加换行
	buf.Truncate(buf.Len() - 1)
	return nil
}
