package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/discussion"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

const (
	publicBaseURL = "https://www.reddit.com"
	oauthBaseURL  = "https://oauth.reddit.com"
)

// Options Reddit 客户端配置
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// 以下为可选的认证搜索路径
	UseOAuth     bool
	ClientID     string
	ClientSecret string

	// 测试时可替换
	PublicBaseURL string
	OAuthBaseURL  string
}

// Client Reddit 搜索客户端
type Client struct {
	opts  Options
	http  *resty.Client
	token string
}

// NewClient 创建一个新的 Reddit 客户端
func NewClient(opts Options) *Client {
	if opts.PublicBaseURL == "" {
		opts.PublicBaseURL = publicBaseURL
	}
	if opts.OAuthBaseURL == "" {
		opts.OAuthBaseURL = oauthBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)

	return &Client{opts: opts, http: client}
}

// Ensure Client implements discussion.Fetcher
var _ discussion.Fetcher = (*Client)(nil)

// listing Reddit Listing 响应结构，只保留用到的字段
type listing struct {
	Data struct {
		Children []struct {
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	Title    string   `json:"title"`
	SelfText *string  `json:"selftext"`
	Score    *float64 `json:"score"`
	URL      string   `json:"url"`
	IsSelf   bool     `json:"is_self"`
}

// Fetch implements discussion.Fetcher
func (c *Client) Fetch(ctx context.Context, asset model.AssetIdentifier, q discussion.Query) ([]model.Post, error) {
	req := c.http.R().SetContext(ctx).SetQueryParams(queryParams(q))

	url := c.opts.PublicBaseURL + "/search.json"
	if c.opts.UseOAuth {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("reddit auth failed: %w", err)
		}
		req.SetAuthToken(token)
		url = c.opts.OAuthBaseURL + "/search"
	}

	res, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("reddit api error (status %d): %s", res.StatusCode(), truncate(res.String(), 200))
	}

	var l listing
	if err := json.Unmarshal(res.Body(), &l); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	return toPosts(l, q.Limit), nil
}

func queryParams(q discussion.Query) map[string]string {
	limit := q.Limit
	if limit <= 0 || limit > discussion.PageSize {
		limit = discussion.PageSize
	}
	params := map[string]string{
		"q":     q.Q,
		"limit": strconv.Itoa(limit),
	}
	if q.Sort != "" {
		params["sort"] = q.Sort
	}
	if q.Time != "" {
		params["t"] = q.Time
	}
	return params
}

// toPosts 按返回顺序映射，缺失的正文默认为空，缺失的分数默认为 0
func toPosts(l listing, limit int) []model.Post {
	if limit <= 0 || limit > discussion.PageSize {
		limit = discussion.PageSize
	}
	children := l.Data.Children
	if len(children) > limit {
		children = children[:limit]
	}

	posts := make([]model.Post, 0, len(children))
	for _, child := range children {
		d := child.Data
		post := model.Post{Title: d.Title}
		if d.SelfText != nil {
			post.Description = *d.SelfText
		}
		if d.Score != nil {
			post.Votes = int(*d.Score)
		}
		if !d.IsSelf {
			post.URL = d.URL
		}
		posts = append(posts, post)
	}
	return posts
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
