package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

const previewChars = 200

// Print 在终端输出报告
func Print(w io.Writer, rep *model.Report) {
	for _, asset := range rep.Assets {
		entry := rep.Entries[asset]
		s := entry.Sentiment

		fmt.Fprintf(w, "\n%s\nANALYSIS REPORT FOR %s\n%s\n", strings.Repeat("=", 80), asset, strings.Repeat("=", 80))

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("SENTIMENT ANALYSIS")
		t.AppendRow(table.Row{"Overall Sentiment", s.OverallSentiment})
		t.AppendRow(table.Row{"Confidence Score", s.ConfidenceScore})
		if entry.Outcome == model.OutcomeFallback {
			t.AppendRow(table.Row{"Note", "model output could not be parsed"})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		printBullets(w, "KEY POINTS", s.KeyPoints)
		printBullets(w, "RISKS", s.Risks)
		printBullets(w, "OPPORTUNITIES", s.Opportunities)
		fmt.Fprintf(w, "\nRECOMMENDATION: %s\n\n", s.Recommendation)

		posts := table.NewWriter()
		posts.SetOutputMirror(w)
		posts.SetTitle("REDDIT DISCUSSIONS")
		posts.AppendHeader(table.Row{"#", "Title", "Votes", "Content"})
		for i, p := range entry.Posts {
			posts.AppendRow(table.Row{i + 1, p.Title, p.Votes, Preview(p.Description, previewChars)})
		}
		posts.SetStyle(table.StyleRounded)
		posts.Render()
	}
}

func printBullets(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "• %s\n", item)
	}
}

// Preview 截断到 n 个字符并追加 "..."
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
