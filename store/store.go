// Package store 将每次运行的面积统计归档到SQLite，便于跨流域、跨批次查询
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/log"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	run_id     TEXT NOT NULL,
	basin      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	rasters    INTEGER NOT NULL,
	PRIMARY KEY (run_id, basin)
);
CREATE TABLE IF NOT EXISTS area_records (
	run_id      TEXT NOT NULL,
	basin       TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	model       INTEGER NOT NULL,
	class       TEXT NOT NULL,
	pixel_count INTEGER NOT NULL,
	area_km2    TEXT NOT NULL,
	PRIMARY KEY (run_id, basin, seq),
	FOREIGN KEY (run_id, basin) REFERENCES reports(run_id, basin) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_reports_basin ON reports(basin, created_at);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

type Store struct {
	db     *sql.DB
	now    func() time.Time
	logTag string
}

func Open(path string) (s *Store, err error) {
	if path != ":memory:" {
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// 单连接，避免:memory:库在多个连接间不共享
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err = db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{db: db, now: time.Now, logTag: "Store:"}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// 归档一个流域的报表，同一run重复写入时覆盖
func (s *Store) SaveReport(ctx context.Context, runID string, r estimate.Report) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM reports WHERE run_id = ? AND basin = ?`, runID, r.Basin); err != nil {
		return
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO reports (run_id, basin, created_at, rasters) VALUES (?, ?, ?, ?)`,
		runID, r.Basin, s.now().UnixNano(), len(r.Rasters)); err != nil {
		return
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO area_records (run_id, basin, seq, model, class, pixel_count, area_km2) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return
	}
	defer stmt.Close()
	for i, rec := range r.Records {
		if _, err = stmt.ExecContext(ctx, runID, r.Basin, i, rec.Model, rec.Class, rec.PixelCount, rec.AreaKm2.String()); err != nil {
			return
		}
	}
	if err = tx.Commit(); err != nil {
		return
	}
	log.Info(s.logTag+"report archived", zap.String("run", runID), zap.String("basin", r.Basin), zap.Int("rows", len(r.Records)))
	return
}

// 某流域最近一次归档的报表
func (s *Store) LatestReport(ctx context.Context, basin string) (runID string, r estimate.Report, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT run_id FROM reports WHERE basin = ? ORDER BY created_at DESC LIMIT 1`, basin).Scan(&runID)
	if err != nil {
		return
	}
	r, err = s.Report(ctx, runID, basin)
	return
}

func (s *Store) Report(ctx context.Context, runID, basin string) (r estimate.Report, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, class, pixel_count, area_km2 FROM area_records WHERE run_id = ? AND basin = ? ORDER BY seq`, runID, basin)
	if err != nil {
		return
	}
	defer rows.Close()
	r.Basin = basin
	for rows.Next() {
		var (
			rec  = estimate.AreaRecord{Basin: basin}
			area string
		)
		if err = rows.Scan(&rec.Model, &rec.Class, &rec.PixelCount, &area); err != nil {
			return
		}
		if rec.AreaKm2, err = decimal.NewFromString(area); err != nil {
			return
		}
		r.Records = append(r.Records, rec)
	}
	err = rows.Err()
	return
}
