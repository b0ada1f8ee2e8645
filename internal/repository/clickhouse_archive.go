package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
	pkgch "MacroPull/pkg/clickhouse"
	"MacroPull/pkg/logger"
)

const reactionTable = "reaction_rows"

// ClickHouseArchive stores flattened reaction snapshots and serves history.
type ClickHouseArchive struct {
	client *pkgch.Client
	db     *sql.DB
	table  string
	log    *logger.Logger
}

func NewClickHouseArchive(client *pkgch.Client, log *logger.Logger) *ClickHouseArchive {
	return &ClickHouseArchive{client: client, db: client.DB(), table: reactionTable, log: log.Component("clickhouse_archive")}
}

// Schema returns the DDL for the reaction table.
func Schema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            snapshot_id String,
            event_time  DateTime64(3, 'UTC'),
            event_name  LowCardinality(String),
            ticker      LowCardinality(String),
            name        String,
            category    LowCardinality(String),
            horizon     LowCardinality(String),
            return_pct  Float64,
            computed_at DateTime64(3, 'UTC')
        )
        ENGINE = ReplacingMergeTree(computed_at)
        PARTITION BY toYYYYMM(event_time)
        ORDER BY (ticker, event_time, horizon, snapshot_id)
    `, table)}
}

func (s *ClickHouseArchive) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, Schema(s.table))
}

// StoreBatch inserts rows using multi-row VALUES in chunks.
func (s *ClickHouseArchive) StoreBatch(ctx context.Context, rows []models.ArchivedReturn) error {
	const chunkSize = 2000
	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		q, args := insertQuery(s.table, rows[start:end])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.log.Error("insert reaction rows",
				logger.Int("rows", end-start),
				logger.Error(err))
			return fmt.Errorf("insert reaction rows: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseArchive) History(ctx context.Context, hq models.HistoryQuery) ([]models.ArchivedReturn, error) {
	q, args := historyQuery(s.table, hq)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]models.ArchivedReturn, 0, 64)
	for rows.Next() {
		var (
			r        models.ArchivedReturn
			category string
		)
		if err := rows.Scan(&r.SnapshotID, &r.EventTime, &r.EventName, &r.Ticker, &r.Name,
			&category, &r.Horizon, &r.ReturnPct, &r.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.Category = models.Category(category)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *ClickHouseArchive) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *ClickHouseArchive) Close() error {
	return s.client.Close()
}

const reactionColumns = "snapshot_id, event_time, event_name, ticker, name, category, horizon, return_pct, computed_at"

func insertQuery(table string, rows []models.ArchivedReturn) (string, []interface{}) {
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*9)
	for _, r := range rows {
		if r.Ticker == "" || r.Horizon == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.SnapshotID,
			r.EventTime.UTC(),
			r.EventName,
			r.Ticker,
			r.Name,
			string(r.Category),
			r.Horizon,
			r.ReturnPct,
			r.ComputedAt.UTC(),
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, reactionColumns, strings.Join(values, ",")), args
}

func historyQuery(table string, hq models.HistoryQuery) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if hq.Ticker != "" {
		where = append(where, "ticker = ?")
		args = append(args, hq.Ticker)
	}
	if !hq.From.IsZero() {
		where = append(where, "event_time >= ?")
		args = append(args, hq.From.UTC())
	}
	if !hq.To.IsZero() {
		where = append(where, "event_time <= ?")
		args = append(args, hq.To.UTC())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s FINAL", reactionColumns, table)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY event_time DESC, ticker ASC, horizon ASC")
	limit := hq.Limit
	if limit <= 0 {
		limit = 500
	}
	b.WriteString(" LIMIT ?")
	args = append(args, limit)
	return b.String(), args
}

var _ drepo.ArchiveStore = (*ClickHouseArchive)(nil)
