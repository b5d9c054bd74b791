package page

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/listing"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/logger"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

// Source 从静态公告页抓取上线公告，无需浏览器
type Source struct {
	url      string
	selector string
	http     *resty.Client
}

// NewSource 创建静态页面来源
func NewSource(cfg config.PageConfig) *Source {
	client := resty.New()
	client.SetHeader("User-Agent", config.DefaultUserAgent)
	client.SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	return &Source{
		url:      cfg.URL,
		selector: cfg.Selector,
		http:     client,
	}
}

// Ensure Source implements listing.Source
var _ listing.Source = (*Source)(nil)

// Fetch implements listing.Source
func (s *Source) Fetch(ctx context.Context) ([]model.AssetIdentifier, error) {
	res, err := s.http.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("listing page error (status %d)", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse html failed: %w", err)
	}

	selection := doc.Find(s.selector)
	if selection.Length() == 0 {
		return nil, fmt.Errorf("no announcements match selector %q", s.selector)
	}

	texts := make([]string, 0, selection.Length())
	selection.Each(func(_ int, sel *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(sel.Text()))
	})

	assets := listing.ParseSymbols(texts)
	logger.Log.Infof("静态页面共 %d 条公告，解析出 %d 个新币", len(texts), len(assets))
	return assets, nil
}
