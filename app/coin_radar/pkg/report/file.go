package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

// FileName 报告文件名，例如 coin_analysis_20250301_093000.json
func FileName(now time.Time) string {
	return fmt.Sprintf("coin_analysis_%s.json", now.Format("20060102_150405"))
}

// SaveJSON 将报告写入 dir 下带时间戳的文件，目录不存在时自动创建
func SaveJSON(dir string, rep *model.Report, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rep); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
