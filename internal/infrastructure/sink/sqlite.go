package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"BCVRates/internal/domain"
	"BCVRates/internal/ports"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rate_records (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url       TEXT NOT NULL,
		ssl_mode         TEXT NOT NULL,
		fecha_valor_text TEXT,
		fecha_valor_iso  TEXT,
		scraped_at       TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rate_values (
		record_id INTEGER NOT NULL REFERENCES rate_records(id),
		currency  TEXT NOT NULL,
		value     TEXT NOT NULL,
		PRIMARY KEY (record_id, currency)
	)`,
}

// SQLiteSink appends every record to a local SQLite dataset. Records are
// never read back by the scraper.
type SQLiteSink struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.Sink = (*SQLiteSink)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite sink: output path is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteSink{db: db, now: time.Now}, nil
}

// Push stores the record and its rates in one transaction.
func (s *SQLiteSink) Push(ctx context.Context, record domain.OutputRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := sq.Insert("rate_records").
		Columns("source_url", "ssl_mode", "fecha_valor_text", "fecha_valor_iso", "scraped_at").
		Values(record.SourceURL, string(record.TrustMode), nullable(record.DateText), nullable(record.DateISO), s.now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record insert: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	recordID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record id: %w", err)
	}

	if len(record.Rates) > 0 {
		insert := sq.Insert("rate_values").Columns("record_id", "currency", "value")
		for _, code := range domain.Currencies() {
			if value, ok := record.Rates[code]; ok {
				insert = insert.Values(recordID, string(code), value)
			}
		}

		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("build rates insert: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rates: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
