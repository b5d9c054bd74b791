package summarizer

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	dm "github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

// DefaultMaxPostChars 每条帖子正文进入 prompt 的最大字符数
const DefaultMaxPostChars = 500

const systemPrompt = "You are a JSON generator. Output a single JSON object and nothing else."

const instructions = `You are an expert financial analyst specializing in cryptocurrency market trends and sentiment analysis.
Analyze the Reddit discussions above about the newly listed coin and respond strictly in this JSON format, without markdown:
{
	"overall_sentiment": "positive | neutral | negative",
	"confidence_score": "integer from 0 to 100",
	"key_points": ["point 1", "point 2"],
	"risks": ["risk 1", "risk 2"],
	"opportunities": ["opportunity 1", "opportunity 2"],
	"recommendation": "one or two sentences of actionable advice"
}`

// BuildPrompt 构造消息，每条帖子正文截断到 maxChars 个字符
func BuildPrompt(asset dm.AssetIdentifier, posts []dm.Post, maxChars int) []*schema.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Coin: %s\n\nReddit discussions (%d posts):\n\n", asset, len(posts))
	for i, p := range posts {
		fmt.Fprintf(&sb, "Post %d:\nTitle: %s\nVotes: %d\n", i+1, p.Title, p.Votes)
		if desc := truncateRunes(p.Description, maxChars); desc != "" {
			fmt.Fprintf(&sb, "Content: %s\n", desc)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(instructions)

	return []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: sb.String()},
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
