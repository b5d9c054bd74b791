package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Listing ListingConfig `yaml:"listing"`
	Reddit  RedditConfig  `yaml:"reddit"`
	Report  ReportConfig  `yaml:"report"`
	Email   EmailConfig   `yaml:"email"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	JSONFormat   *bool   `yaml:"json_format"`
	MaxPostChars int     `yaml:"max_post_chars"`
	Timeout      int     `yaml:"timeout"` // 秒
}

// ListingConfig 新币上线来源配置
type ListingConfig struct {
	Provider string        `yaml:"provider"` // browser | page | static
	Browser  BrowserConfig `yaml:"browser"`
	Page     PageConfig    `yaml:"page"`
	Coins    []string      `yaml:"coins"` // provider=static 时使用
}

// BrowserConfig 浏览器抓取配置
type BrowserConfig struct {
	URL                  string `yaml:"url"`
	TabSelector          string `yaml:"tab_selector"`
	NewListingSelector   string `yaml:"new_listing_selector"`
	AnnouncementSelector string `yaml:"announcement_selector"`
	Headless             *bool  `yaml:"headless"`
}

// PageConfig 静态页面抓取配置
type PageConfig struct {
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
	Timeout  int    `yaml:"timeout"` // 秒
}

// RedditConfig Reddit 搜索配置
type RedditConfig struct {
	QueryFormat     string `yaml:"query_format"`
	Sort            string `yaml:"sort"`
	Time            string `yaml:"time"`
	RequestInterval int    `yaml:"request_interval"` // 毫秒
	UseOAuth        bool   `yaml:"use_oauth"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	UserAgent       string `yaml:"user_agent"`
	EnrichLinkPosts bool   `yaml:"enrich_link_posts"`
}

// ReportConfig 报告输出配置
type ReportConfig struct {
	Dir   string `yaml:"dir"`
	Save  *bool  `yaml:"save"`
	Print *bool  `yaml:"print"`
}

// EmailConfig 邮件发送配置
type EmailConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	Address  string   `yaml:"address"`
	Password string   `yaml:"password"`
	To       []string `yaml:"to"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

const (
	DefaultListingURL           = "https://www.binance.com/en"
	DefaultTabSelector          = "div.bn-tab"
	DefaultNewListingSelector   = "div.bn-tab-list > div:nth-child(2)"
	DefaultAnnouncementSelector = `div.flex.flex-col.items-start.mobile\:items-center.mobile\:gap-\[24px\].noH5\:gap-\[20px\].w-full.flex-initial.tablet\:w-auto.tablet\:flex-1 a div >:nth-child(2)`
	DefaultUserAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv 环境变量优先于配置文件
func (c *Config) applyEnv() {
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		c.Reddit.ClientSecret = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434/v1"
	}
	if c.LLM.APIKey == "" {
		// Ollama 不校验 key，但 OpenAI 客户端要求非空
		c.LLM.APIKey = "ollama"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3.2"
	}
	if c.LLM.JSONFormat == nil {
		c.LLM.JSONFormat = boolPtr(true)
	}
	if c.LLM.MaxPostChars <= 0 {
		c.LLM.MaxPostChars = 500
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120
	}

	if c.Listing.Provider == "" {
		c.Listing.Provider = "browser"
	}
	if c.Listing.Browser.URL == "" {
		c.Listing.Browser.URL = DefaultListingURL
	}
	if c.Listing.Browser.TabSelector == "" {
		c.Listing.Browser.TabSelector = DefaultTabSelector
	}
	if c.Listing.Browser.NewListingSelector == "" {
		c.Listing.Browser.NewListingSelector = DefaultNewListingSelector
	}
	if c.Listing.Browser.AnnouncementSelector == "" {
		c.Listing.Browser.AnnouncementSelector = DefaultAnnouncementSelector
	}
	if c.Listing.Browser.Headless == nil {
		c.Listing.Browser.Headless = boolPtr(true)
	}
	if c.Listing.Page.Timeout <= 0 {
		c.Listing.Page.Timeout = 30
	}

	if c.Reddit.QueryFormat == "" {
		c.Reddit.QueryFormat = "{asset} crypto"
		if c.Reddit.Sort == "" {
			c.Reddit.Sort = "relevance"
		}
		if c.Reddit.Time == "" {
			c.Reddit.Time = "month"
		}
	}
	if c.Reddit.RequestInterval <= 0 {
		c.Reddit.RequestInterval = 2000
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = DefaultUserAgent
	}

	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	if c.Report.Save == nil {
		c.Report.Save = boolPtr(true)
	}
	if c.Report.Print == nil {
		c.Report.Print = boolPtr(true)
	}

	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Listing.Provider {
	case "browser", "static":
	case "page":
		if c.Listing.Page.URL == "" || c.Listing.Page.Selector == "" {
			return fmt.Errorf("listing.page requires url and selector")
		}
	default:
		return fmt.Errorf("unknown listing provider: %s", c.Listing.Provider)
	}
	if c.Listing.Provider == "static" && len(c.Listing.Coins) == 0 {
		return fmt.Errorf("listing.coins is empty for static provider")
	}
	if c.Reddit.UseOAuth && (c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "") {
		return fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set when reddit.use_oauth is enabled")
	}
	if c.Email.Server != "" && len(c.Email.To) == 0 {
		return fmt.Errorf("email.to is empty")
	}
	return nil
}

// RequestInterval 两次 Reddit 搜索之间的礼貌间隔
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.Reddit.RequestInterval) * time.Millisecond
}

// EmailEnabled 是否配置了 SMTP
func (c *Config) EmailEnabled() bool {
	return c.Email.Server != ""
}

func boolPtr(b bool) *bool { return &b }
