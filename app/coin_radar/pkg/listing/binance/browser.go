package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/listing"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/logger"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

const (
	tabWait          = 15 * time.Second
	clickWait        = 10 * time.Second
	announcementWait = 10 * time.Second
	// 整个抓取过程的上限，包括启动浏览器和加载首页
	overallTimeout = 90 * time.Second
)

// Source 通过无头浏览器抓取 Binance 首页 "New Listing" 公告
type Source struct {
	cfg config.BrowserConfig
}

// NewSource 创建浏览器抓取来源
func NewSource(cfg config.BrowserConfig) *Source {
	return &Source{cfg: cfg}
}

// Ensure Source implements listing.Source
var _ listing.Source = (*Source)(nil)

// Fetch implements listing.Source；浏览器在本次调用内启动并关闭
func (s *Source) Fetch(ctx context.Context) ([]model.AssetIdentifier, error) {
	ctx, cancel := context.WithTimeout(ctx, overallTimeout)
	defer cancel()

	headless := s.cfg.Headless == nil || *s.cfg.Headless
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(
		ctx,
		append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", headless),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.UserAgent(config.DefaultUserAgent),
		)...,
	)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer func() {
		browserCancel()
		logger.Log.Debug("浏览器已关闭")
	}()

	// 第一次 Run 会启动浏览器，不能使用会被提前取消的子 context
	logger.Log.Infof("正在打开页面: %s", s.cfg.URL)
	if err := chromedp.Run(browserCtx, chromedp.Navigate(s.cfg.URL)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", s.cfg.URL, err)
	}

	if err := runWithTimeout(browserCtx, tabWait,
		chromedp.WaitReady(s.cfg.TabSelector, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("wait for announcements tab: %w", err)
	}
	logger.Log.Debug("已找到公告标签栏")

	if err := runWithTimeout(browserCtx, clickWait,
		chromedp.Click(s.cfg.NewListingSelector, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("click new listing tab: %w", err)
	}
	logger.Log.Debug("已切换到 New Listing 标签")

	selector, err := json.Marshal(s.cfg.AnnouncementSelector)
	if err != nil {
		return nil, fmt.Errorf("encode selector: %w", err)
	}
	var texts []string
	if err := runWithTimeout(browserCtx, announcementWait,
		chromedp.WaitReady(s.cfg.AnnouncementSelector, chromedp.ByQueryAll),
		chromedp.Evaluate(
			fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(e => e.innerText)`, selector),
			&texts,
		),
	); err != nil {
		return nil, fmt.Errorf("read announcements: %w", err)
	}

	assets := listing.ParseSymbols(texts)
	logger.Log.Infof("共读取 %d 条公告，解析出 %d 个新币: %v", len(texts), len(assets), assets)
	return assets, nil
}

func runWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(stepCtx, actions...)
}
