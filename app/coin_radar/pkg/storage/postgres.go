package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

type Storage struct {
	db *sql.DB
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id SERIAL PRIMARY KEY,
			run_uuid TEXT NOT NULL UNIQUE,
			generated_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS coin_reports (
			id SERIAL PRIMARY KEY,
			run_id INTEGER REFERENCES report_runs(id),
			asset TEXT NOT NULL,
			position INTEGER NOT NULL,
			overall_sentiment TEXT NOT NULL,
			confidence_score TEXT NOT NULL,
			recommendation TEXT,
			outcome TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS coin_posts (
			id SERIAL PRIMARY KEY,
			coin_report_id INTEGER REFERENCES coin_reports(id),
			position INTEGER NOT NULL,
			title TEXT,
			description TEXT,
			votes INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS coin_points (
			id SERIAL PRIMARY KEY,
			coin_report_id INTEGER REFERENCES coin_reports(id),
			kind TEXT NOT NULL,
			content TEXT
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

// SaveReport 在一个事务内保存整次运行
func (s *Storage) SaveReport(ctx context.Context, report *model.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var runID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO report_runs (run_uuid, generated_at)
		VALUES ($1, $2)
		RETURNING id`,
		report.RunID, report.GeneratedAt).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}

	for pos, asset := range report.Assets {
		entry := report.Entries[asset]
		if err := saveCoinReport(ctx, tx, runID, pos, asset, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func saveCoinReport(ctx context.Context, tx *sql.Tx, runID, pos int, asset string, entry *model.CoinReport) error {
	var coinID int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO coin_reports (run_id, asset, position, overall_sentiment, confidence_score, recommendation, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		runID, asset, pos, string(entry.Sentiment.OverallSentiment), entry.Sentiment.ConfidenceScore,
		cleanText(entry.Sentiment.Recommendation), entry.Outcome.String()).Scan(&coinID)
	if err != nil {
		return fmt.Errorf("failed to insert coin report [%s]: %w", asset, err)
	}

	for i, post := range entry.Posts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO coin_posts (coin_report_id, position, title, description, votes)
			VALUES ($1, $2, $3, $4, $5)`,
			coinID, i, cleanText(post.Title), cleanText(post.Description), post.Votes)
		if err != nil {
			return fmt.Errorf("failed to insert post [%s]: %w", asset, err)
		}
	}

	for _, group := range []struct {
		kind   string
		points []string
	}{
		{"key_point", entry.Sentiment.KeyPoints},
		{"risk", entry.Sentiment.Risks},
		{"opportunity", entry.Sentiment.Opportunities},
	} {
		for _, p := range group.points {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO coin_points (coin_report_id, kind, content)
				VALUES ($1, $2, $3)`,
				coinID, group.kind, cleanText(p))
			if err != nil {
				return fmt.Errorf("failed to insert %s [%s]: %w", group.kind, asset, err)
			}
		}
	}

	return nil
}

// cleanText 移除无效的 UTF-8 字符和 NULL 字节，PostgreSQL 文本字段不支持二者
func cleanText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
