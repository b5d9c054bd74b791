package summarizer

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	aclopenai "github.com/cloudwego/eino-ext/libs/acl/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/logger"
	dm "github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

// Config 模型调用配置，构造时传入
type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	Temperature  float32
	JSONFormat   bool
	MaxPostChars int
	Timeout      time.Duration
}

// Result 单个资产的分析结果
type Result struct {
	Outcome dm.Outcome
	Record  dm.SentimentRecord
	Err     error
}

// Summarizer 调用 LLM 生成情绪分析
type Summarizer struct {
	cfg       Config
	chatModel model.BaseChatModel
}

// New 基于 OpenAI 兼容接口（包括本地 Ollama 的 /v1）创建
func New(ctx context.Context, cfg Config) (*Summarizer, error) {
	temperature := cfg.Temperature
	mc := &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout,
		Temperature: &temperature,
	}
	if cfg.JSONFormat {
		mc.ResponseFormat = &aclopenai.ChatCompletionResponseFormat{
			Type: aclopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	chatModel, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewWithModel(chatModel, cfg), nil
}

// NewWithModel 使用已有的 ChatModel
func NewWithModel(cm model.BaseChatModel, cfg Config) *Summarizer {
	if cfg.MaxPostChars <= 0 {
		cfg.MaxPostChars = DefaultMaxPostChars
	}
	return &Summarizer{cfg: cfg, chatModel: cm}
}

// Summarize 对一个资产的帖子做一次模型调用，不重试。
// 调用失败返回 OutcomeOmitted；输出无法解析返回 OutcomeFallback。
func (s *Summarizer) Summarize(ctx context.Context, asset dm.AssetIdentifier, posts []dm.Post) Result {
	messages := BuildPrompt(asset, posts, s.cfg.MaxPostChars)

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return Result{Outcome: dm.OutcomeOmitted, Err: fmt.Errorf("generate: %w", err)}
	}

	record, err := ParseResponse(resp.Content)
	if err != nil {
		logger.Log.Warnf("模型输出解析失败 [%s]，使用默认结果: %v", asset, err)
		return Result{Outcome: dm.OutcomeFallback, Record: dm.FallbackRecord(), Err: err}
	}
	return Result{Outcome: dm.OutcomeValid, Record: record}
}
