// Package database syncs analysis results to Postgres. Each symbol keeps
// one latest-report row, replaced on every run, plus the individual
// signals behind its score. Undefined indicator values are stored as NULL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/lib/pq"

	"stockmaster/internal/model"
)

// DB wraps the Postgres connection.
type DB struct {
	*sql.DB
}

// New opens a Postgres connection from a DSN and ensures the schema.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_reports (
			symbol TEXT PRIMARY KEY,
			generated_at TIMESTAMPTZ NOT NULL,
			bars INT NOT NULL,
			last_close DOUBLE PRECISION NOT NULL,
			change_percent DOUBLE PRECISION NOT NULL,
			score INT NOT NULL,
			recommendation TEXT NOT NULL,
			rsi DOUBLE PRECISION,
			macd_hist DOUBLE PRECISION,
			atr_percent DOUBLE PRECISION,
			volume_ratio DOUBLE PRECISION
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_signals (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL,
			kind TEXT NOT NULL,
			direction TEXT NOT NULL,
			strength TEXT NOT NULL,
			weight INT NOT NULL,
			value DOUBLE PRECISION
		)
	`)
	return err
}

// SaveReport replaces the symbol's stored report and its signal rows in
// one transaction.
func (db *DB) SaveReport(ctx context.Context, report *model.AnalysisReport) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_reports (
			symbol, generated_at, bars, last_close, change_percent,
			score, recommendation, rsi, macd_hist, atr_percent, volume_ratio
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol)
		DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			bars = EXCLUDED.bars,
			last_close = EXCLUDED.last_close,
			change_percent = EXCLUDED.change_percent,
			score = EXCLUDED.score,
			recommendation = EXCLUDED.recommendation,
			rsi = EXCLUDED.rsi,
			macd_hist = EXCLUDED.macd_hist,
			atr_percent = EXCLUDED.atr_percent,
			volume_ratio = EXCLUDED.volume_ratio
	`,
		report.Symbol, report.GeneratedAt, report.Bars, report.LastClose, report.ChangePercent,
		report.Score, report.Recommendation,
		nullable(report.Indicators.RSI), nullable(report.Indicators.MACDHist),
		nullable(report.Indicators.ATRPercent), nullable(report.Indicators.VolumeRatio))
	if err != nil {
		return fmt.Errorf("upserting report for %s: %w", report.Symbol, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM analysis_signals WHERE symbol = $1`, report.Symbol); err != nil {
		return fmt.Errorf("clearing signals for %s: %w", report.Symbol, err)
	}
	for _, s := range report.Signals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO analysis_signals (symbol, generated_at, kind, direction, strength, weight, value)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, report.Symbol, report.GeneratedAt, s.Kind, s.Direction, s.Strength, s.Weight, nullable(s.Value)); err != nil {
			return fmt.Errorf("inserting signal %s for %s: %w", s.Kind, report.Symbol, err)
		}
	}

	return tx.Commit()
}

// StoredReport is a row of the latest-report table.
type StoredReport struct {
	Symbol         string
	GeneratedAt    time.Time
	Bars           int
	LastClose      float64
	ChangePercent  float64
	Score          int
	Recommendation string
}

// LatestReports lists the stored reports ordered by score descending.
func (db *DB) LatestReports(ctx context.Context) ([]StoredReport, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT symbol, generated_at, bars, last_close, change_percent, score, recommendation
		FROM analysis_reports
		ORDER BY score DESC, symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []StoredReport
	for rows.Next() {
		var r StoredReport
		if err := rows.Scan(&r.Symbol, &r.GeneratedAt, &r.Bars, &r.LastClose,
			&r.ChangePercent, &r.Score, &r.Recommendation); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
