package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/discussion"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/listing"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/listing/factory"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/logger"
	dm "github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/reddit"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/storage"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/summarizer"
)

// Summarizer 情绪分析接口
type Summarizer interface {
	Summarize(ctx context.Context, asset dm.AssetIdentifier, posts []dm.Post) summarizer.Result
}

// Enricher 为外链帖子抓取正文
type Enricher func(url string) (string, error)

// Options 引擎依赖
type Options struct {
	Source          listing.Source
	Fetcher         discussion.Fetcher
	Summarizer      Summarizer
	Query           discussion.QueryTemplate
	RequestInterval time.Duration
	Enricher        Enricher // 为 nil 时不补全正文
	Store           *storage.Storage
	Now             func() time.Time
}

// Engine 核心处理引擎：上线列表 -> Reddit 讨论 -> 情绪分析
type Engine struct {
	opts    Options
	limiter *rate.Limiter
}

// New 创建引擎实例
func New(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	// 礼貌间隔：每个令牌对应一次搜索，不是退避
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RequestInterval), 1)
	}
	return &Engine{opts: opts, limiter: limiter}
}

// NewFromConfig 按配置装配真实依赖
func NewFromConfig(ctx context.Context, cfg *config.Config, store *storage.Storage) (*Engine, error) {
	source, err := factory.NewSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("上线来源初始化失败: %w", err)
	}

	sum, err := summarizer.New(ctx, summarizer.Config{
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		JSONFormat:   cfg.LLM.JSONFormat == nil || *cfg.LLM.JSONFormat,
		MaxPostChars: cfg.LLM.MaxPostChars,
		Timeout:      time.Duration(cfg.LLM.Timeout) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	fetcher := reddit.NewClient(reddit.Options{
		UserAgent:    cfg.Reddit.UserAgent,
		UseOAuth:     cfg.Reddit.UseOAuth,
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
	})

	var enricher Enricher
	if cfg.Reddit.EnrichLinkPosts {
		enricher = fetchAndCleanContent
	}

	return New(Options{
		Source:     source,
		Fetcher:    fetcher,
		Summarizer: sum,
		Query: discussion.QueryTemplate{
			Format: cfg.Reddit.QueryFormat,
			Sort:   cfg.Reddit.Sort,
			Time:   cfg.Reddit.Time,
		},
		RequestInterval: cfg.RequestInterval(),
		Enricher:        enricher,
		Store:           store,
	}), nil
}

// Run 执行一次完整分析，中断时返回 ctx.Err() 且不产出部分报告
func (e *Engine) Run(ctx context.Context) (*dm.Report, error) {
	report := dm.NewReport(uuid.NewString(), e.opts.Now())

	// 1. 获取新币上线列表
	logger.Log.Info("1. 正在获取新币上线列表...")
	assets := unique(listing.FetchListings(ctx, e.opts.Source))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		logger.Log.Warn("未发现新上线的币种")
		return report, nil
	}

	// 2. 逐个搜索 Reddit 讨论
	logger.Log.Info("2. 正在搜索 Reddit 讨论...")
	discussions := make(map[dm.AssetIdentifier][]dm.Post, len(assets))
	var withPosts []dm.AssetIdentifier
	for _, asset := range assets {
		posts, err := e.fetchPosts(ctx, asset)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Log.Errorf("搜索讨论失败 [%s]: %v", asset, err)
			continue
		}
		if len(posts) == 0 {
			logger.Log.Infof("未找到 [%s] 的相关讨论", asset)
			continue
		}
		logger.Log.Infof("找到 [%s] 的 %d 条讨论", asset, len(posts))
		discussions[asset] = posts
		withPosts = append(withPosts, asset)
	}

	if len(withPosts) == 0 {
		logger.Log.Warn("所有币种均未找到 Reddit 讨论")
		return report, nil
	}

	// 3. 情绪分析
	logger.Log.Info("3. 正在生成情绪分析...")
	for _, asset := range withPosts {
		posts := discussions[asset]
		res := e.opts.Summarizer.Summarize(ctx, asset, posts)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch res.Outcome {
		case dm.OutcomeOmitted:
			logger.Log.Errorf("情绪分析失败 [%s]，不计入报告: %v", asset, res.Err)
			continue
		case dm.OutcomeFallback:
			logger.Log.Warnf("情绪分析 [%s] 使用默认结果", asset)
		default:
			logger.Log.Infof("情绪分析完成 [%s]: %s (%s)", asset, res.Record.OverallSentiment, res.Record.ConfidenceScore)
		}

		report.Add(asset, &dm.CoinReport{
			Posts:     posts,
			Sentiment: res.Record,
			Outcome:   res.Outcome,
		})
	}

	if e.opts.Store != nil && report.Len() > 0 {
		if err := e.opts.Store.SaveReport(ctx, report); err != nil {
			logger.Log.Errorf("保存报告到数据库失败: %v", err)
		} else {
			logger.Log.Infof("报告已保存到数据库 [run=%s]", report.RunID)
		}
	}

	return report, nil
}

func (e *Engine) fetchPosts(ctx context.Context, asset dm.AssetIdentifier) ([]dm.Post, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("limiter wait error: %w", err)
	}

	posts, err := e.opts.Fetcher.Fetch(ctx, asset, e.opts.Query.Build(asset))
	if err != nil {
		return nil, err
	}

	if e.opts.Enricher != nil {
		for i := range posts {
			if posts[i].Description != "" || posts[i].URL == "" {
				continue
			}
			content, err := e.opts.Enricher(posts[i].URL)
			if err != nil {
				logger.Log.Warnf("原文抓取失败 [%s]: %v", posts[i].URL, err)
				continue
			}
			posts[i].Description = content
		}
	}
	return posts, nil
}

// fetchAndCleanContent 抓取 URL 并提取核心文本
func fetchAndCleanContent(url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func unique(assets []dm.AssetIdentifier) []dm.AssetIdentifier {
	seen := make(map[dm.AssetIdentifier]struct{}, len(assets))
	out := make([]dm.AssetIdentifier, 0, len(assets))
	for _, a := range assets {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
