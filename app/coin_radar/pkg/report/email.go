package report

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/jordan-wright/email"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

const mailTpl = `Dear subscriber,

Below is the latest market sentiment analysis based on Reddit discussions about {{ .Names }}, newly listed on the exchange.
{{ range .Coins }}
==== {{ .Asset }} ====
Summary of market sentiment: {{ .Sentiment.OverallSentiment }} (confidence {{ .Sentiment.ConfidenceScore }}/100, {{ len .Posts }} posts analysed)

Key insights:
{{- range .Sentiment.KeyPoints }}
- {{ . }}
{{- end }}

Risks:
{{- range .Sentiment.Risks }}
- {{ . }}
{{- end }}

Opportunities:
{{- range .Sentiment.Opportunities }}
- {{ . }}
{{- end }}

Conclusion & recommendation: {{ .Sentiment.Recommendation }}
{{ end }}
Generated {{ .Date }} (run {{ .RunID }}).
`

var mailTemplate = template.Must(template.New("mail").Parse(mailTpl))

type mailCoin struct {
	Asset     string
	Posts     []model.Post
	Sentiment model.SentimentRecord
}

// Mailer 通过 SMTP 发送情绪分析邮件
type Mailer struct {
	cfg config.EmailConfig
}

// NewMailer 创建邮件发送器
func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Subject 邮件标题
func Subject(rep *model.Report) string {
	return fmt.Sprintf("Market Sentiment Analysis for %s", strings.Join(rep.Assets, ", "))
}

// Compose 渲染邮件内容
func (m *Mailer) Compose(rep *model.Report) (*email.Email, error) {
	coins := make([]mailCoin, 0, rep.Len())
	for _, asset := range rep.Assets {
		entry := rep.Entries[asset]
		coins = append(coins, mailCoin{Asset: asset, Posts: entry.Posts, Sentiment: entry.Sentiment})
	}

	var body bytes.Buffer
	err := mailTemplate.Execute(&body, map[string]any{
		"Names": strings.Join(rep.Assets, ", "),
		"Coins": coins,
		"Date":  rep.GeneratedAt.Format("2006-01-02 15:04"),
		"RunID": rep.RunID,
	})
	if err != nil {
		return nil, fmt.Errorf("render mail: %w", err)
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Coin Radar <%s>", m.cfg.Address)
	mail.To = m.cfg.To
	mail.Subject = Subject(rep)
	mail.Text = body.Bytes()
	return mail, nil
}

// Send 发送报告邮件；服务器不支持 AUTH 时不带认证重试一次
func (m *Mailer) Send(rep *model.Report) error {
	mail, err := m.Compose(rep)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	err = mail.Send(addr, smtp.PlainAuth("", m.cfg.Address, m.cfg.Password, m.cfg.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
