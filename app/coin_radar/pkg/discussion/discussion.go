package discussion

import (
	"context"
	"strings"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

// PageSize 每个资产最多取的帖子数
const PageSize = 10

// Fetcher 定义讨论搜索接口；返回 error 表示本次结果缺失，调用方按无帖子处理
type Fetcher interface {
	Fetch(ctx context.Context, asset model.AssetIdentifier, query Query) ([]model.Post, error)
}

// Query 一次搜索的参数
type Query struct {
	Q     string
	Sort  string // relevance, hot, top, new；为空则不传
	Time  string // hour, day, week, month, year, all；为空则不传
	Limit int
}

// QueryTemplate 查询构造方式。
// Format 中的 {asset} 会替换为资产名，例如 "{asset} crypto"。
type QueryTemplate struct {
	Format string
	Sort   string
	Time   string
}

// DefaultQueryTemplate 追加 crypto 关键字，按相关度搜索最近一个月
var DefaultQueryTemplate = QueryTemplate{
	Format: "{asset} crypto",
	Sort:   "relevance",
	Time:   "month",
}

// Build 为资产构造查询
func (t QueryTemplate) Build(asset model.AssetIdentifier) Query {
	format := t.Format
	if format == "" {
		format = "{asset}"
	}
	return Query{
		Q:     strings.TrimSpace(strings.ReplaceAll(format, "{asset}", asset)),
		Sort:  t.Sort,
		Time:  t.Time,
		Limit: PageSize,
	}
}
