package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// dbFileName is the database file created inside the store directory.
const dbFileName = "leakscan.db"

// Store provides SQLite-based persistence for seen URLs and verdicts.
// It manages connection pooling and schema creation.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Seen URLs prevent re-fetching pages across restarts
	CREATE TABLE IF NOT EXISTS seen_urls (
		url TEXT PRIMARY KEY,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Verdicts store relevance decisions per analyzed page
	CREATE TABLE IF NOT EXISTS verdicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url TEXT NOT NULL,
		is_relevant INTEGER NOT NULL,
		confidence REAL NOT NULL,
		matched_strings TEXT NOT NULL,
		classification_label TEXT NOT NULL,
		similarity_score REAL NOT NULL,
		language TEXT NOT NULL,
		summary TEXT,
		analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_verdicts_url ON verdicts(source_url);
	CREATE INDEX IF NOT EXISTS idx_verdicts_relevant ON verdicts(is_relevant);
	CREATE INDEX IF NOT EXISTS idx_verdicts_analyzed ON verdicts(analyzed_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// MarkSeen records URLs as processed. Already-known URLs are ignored,
// so the call is safe to repeat with overlapping sets.
func (s *Store) MarkSeen(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO seen_urls (url) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, url := range urls {
		if _, err := stmt.ExecContext(ctx, url); err != nil {
			return fmt.Errorf("failed to insert seen url: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen urls: %w", err)
	}
	return nil
}

// LoadSeen returns every recorded seen URL. Used at startup to warm
// the in-memory deduplication set.
func (s *Store) LoadSeen(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM seen_urls ORDER BY first_seen")
	if err != nil {
		return nil, fmt.Errorf("failed to query seen urls: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan seen url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seen urls: %w", err)
	}
	return urls, nil
}

// SaveVerdict persists one page verdict and returns its row ID.
func (s *Store) SaveVerdict(ctx context.Context, verdict model.PageVerdict) (int64, error) {
	analyzedAt := verdict.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO verdicts (source_url, is_relevant, confidence, matched_strings,
		classification_label, similarity_score, language, summary, analyzed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		verdict.SourceURL,
		verdict.IsRelevant,
		verdict.Confidence,
		joinStrings(verdict.MatchedStrings),
		verdict.ClassificationLabel,
		verdict.SimilarityScore,
		verdict.Language,
		verdict.Summary,
		analyzedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert verdict: %w", err)
	}

	return result.LastInsertId()
}

// SaveReport persists every verdict in a report.
func (s *Store) SaveReport(ctx context.Context, report model.AnalysisReport) error {
	for _, verdict := range report.Results {
		if _, err := s.SaveVerdict(ctx, verdict); err != nil {
			return err
		}
	}
	return nil
}

// ListVerdicts returns stored verdicts, newest first. When relevantOnly
// is set, irrelevant verdicts are filtered out. A limit of 0 means no
// limit.
func (s *Store) ListVerdicts(ctx context.Context, relevantOnly bool, limit int) ([]model.PageVerdict, error) {
	query := `
	SELECT source_url, is_relevant, confidence, matched_strings,
		classification_label, similarity_score, language, summary, analyzed_at
	FROM verdicts
	`
	if relevantOnly {
		query += " WHERE is_relevant = 1"
	}
	query += " ORDER BY analyzed_at DESC, id DESC"

	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var verdicts []model.PageVerdict
	for rows.Next() {
		var (
			v         model.PageVerdict
			matched   string
			summary   sql.NullString
			timestamp string
		)
		if err := rows.Scan(
			&v.SourceURL,
			&v.IsRelevant,
			&v.Confidence,
			&matched,
			&v.ClassificationLabel,
			&v.SimilarityScore,
			&v.Language,
			&summary,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		v.MatchedStrings = splitStrings(matched)
		v.Summary = summary.String
		v.AnalyzedAt = parseTimestamp(timestamp)
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verdicts: %w", err)
	}
	return verdicts, nil
}

// CountVerdicts returns the total and relevant verdict counts.
func (s *Store) CountVerdicts(ctx context.Context) (total, relevant int, err error) {
	query := "SELECT COUNT(*), COALESCE(SUM(is_relevant), 0) FROM verdicts"
	if err := s.db.QueryRowContext(ctx, query).Scan(&total, &relevant); err != nil {
		return 0, 0, fmt.Errorf("failed to count verdicts: %w", err)
	}
	return total, relevant, nil
}
