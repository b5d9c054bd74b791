package listing

import (
	"context"
	"strings"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/logger"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

// Source 新币上线来源，抓取逻辑（CSS 选择器等）封装在实现内部
type Source interface {
	Fetch(ctx context.Context) ([]model.AssetIdentifier, error)
}

// FetchListings 获取上线列表；任何错误只记录日志并返回空列表
func FetchListings(ctx context.Context, src Source) []model.AssetIdentifier {
	assets, err := src.Fetch(ctx)
	if err != nil {
		logger.Log.Errorf("获取新币上线列表失败: %v", err)
		return []model.AssetIdentifier{}
	}
	if assets == nil {
		return []model.AssetIdentifier{}
	}
	return assets
}

// ParseSymbol 从公告标题中提取第一个括号内的资产名，
// 例如 "Binance Will List Solayer (LAYER)" -> "LAYER"
func ParseSymbol(text string) (model.AssetIdentifier, bool) {
	open := strings.Index(text, "(")
	closing := strings.Index(text, ")")
	if open < 0 || closing < 0 || closing < open {
		return "", false
	}
	symbol := strings.TrimSpace(text[open+1 : closing])
	if symbol == "" {
		return "", false
	}
	return symbol, true
}

// ParseSymbols 按顺序解析多条公告，丢弃不含括号的公告
func ParseSymbols(texts []string) []model.AssetIdentifier {
	assets := make([]model.AssetIdentifier, 0, len(texts))
	for _, text := range texts {
		if symbol, ok := ParseSymbol(text); ok {
			assets = append(assets, symbol)
		}
	}
	return assets
}

// Static 固定列表来源
type Static []model.AssetIdentifier

// Ensure Static implements Source
var _ Source = Static(nil)

// Fetch implements Source
func (s Static) Fetch(_ context.Context) ([]model.AssetIdentifier, error) {
	out := make([]model.AssetIdentifier, 0, len(s))
	for _, coin := range s {
		if coin = strings.TrimSpace(coin); coin != "" {
			out = append(out, coin)
		}
	}
	return out, nil
}
