package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/corpuscrawl/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "corpuscrawl.db"

// CrawlDB provides SQLite-based storage for the document index and
// crawl checkpoints.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

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

	// mode=rw refuses to create a missing file; mode=rwc allows it.
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

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Documents are the persisted corpus artifacts, one per canonical URL
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		path TEXT NOT NULL,
		title TEXT,
		tier INTEGER,
		fingerprint TEXT,
		word_count INTEGER,
		faq_count INTEGER,
		captured_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_fingerprint ON documents(fingerprint);

	-- FAQs extracted from documents, replaced whenever the document is
	CREATE TABLE IF NOT EXISTS faqs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_url TEXT NOT NULL,
		position INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		items TEXT,
		category TEXT,
		keywords TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_faqs_document ON faqs(document_url);

	-- A single-row table holding the latest checkpoint as JSON
	CREATE TABLE IF NOT EXISTS checkpoint (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		state_json TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// DocumentRecord is the index entry for one persisted document.
type DocumentRecord struct {
	ID          int64
	URL         string
	Path        string
	Title       string
	Tier        model.Tier
	Fingerprint string
	WordCount   int
	FAQCount    int
	CapturedAt  time.Time
}

// RecordDocument inserts or updates the index entry for doc and replaces
// its FAQ rows. path is where the artifact was written.
func (cdb *CrawlDB) RecordDocument(ctx context.Context, doc *model.Document, tier model.Tier, path string) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO documents (url, path, title, tier, fingerprint, word_count, faq_count, captured_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		path = excluded.path,
		title = excluded.title,
		tier = excluded.tier,
		fingerprint = excluded.fingerprint,
		word_count = excluded.word_count,
		faq_count = excluded.faq_count,
		captured_at = excluded.captured_at
	`
	if _, err := tx.ExecContext(ctx, query,
		doc.URL,
		path,
		doc.Title,
		int(tier),
		doc.Fingerprint,
		doc.WordCount,
		len(doc.FAQs),
		doc.ExtractedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM faqs WHERE document_url = ?`, doc.URL); err != nil {
		return fmt.Errorf("failed to clear faqs: %w", err)
	}
	for i, faq := range doc.FAQs {
		items, err := json.Marshal(faq.Items)
		if err != nil {
			return fmt.Errorf("failed to serialize faq items: %w", err)
		}
		keywords, err := json.Marshal(faq.Keywords)
		if err != nil {
			return fmt.Errorf("failed to serialize faq keywords: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO faqs (document_url, position, question, answer, items, category, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`, doc.URL, i, faq.Question, faq.Answer, string(items), faq.Category, string(keywords)); err != nil {
			return fmt.Errorf("failed to insert faq: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

// GetDocument retrieves the index entry for url. It returns nil, nil
// when the document is unknown.
func (cdb *CrawlDB) GetDocument(ctx context.Context, url string) (*DocumentRecord, error) {
	query := `
	SELECT id, url, path, title, tier, fingerprint, word_count, faq_count, captured_at
	FROM documents
	WHERE url = ?
	`

	var rec DocumentRecord
	var tier int
	var capturedAt string
	err := cdb.db.QueryRowContext(ctx, query, url).Scan(
		&rec.ID,
		&rec.URL,
		&rec.Path,
		&rec.Title,
		&tier,
		&rec.Fingerprint,
		&rec.WordCount,
		&rec.FAQCount,
		&capturedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	rec.Tier = model.Tier(tier)
	rec.CapturedAt = parseTimestamp(capturedAt)
	return &rec, nil
}

// CountDocuments returns the number of indexed documents.
func (cdb *CrawlDB) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// FAQRecord is one stored FAQ pair with its source document.
type FAQRecord struct {
	model.FAQ
	SourceURL string `json:"source_url"`
}

// ListFAQs returns every stored FAQ ordered by source URL and position.
// An optional category filter restricts the result.
func (cdb *CrawlDB) ListFAQs(ctx context.Context, category string) ([]FAQRecord, error) {
	query := `
	SELECT document_url, question, answer, items, category, keywords
	FROM faqs
	WHERE 1=1
	`
	args := make([]any, 0, 1)
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY document_url, position"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query faqs: %w", err)
	}
	defer rows.Close()

	var results []FAQRecord
	for rows.Next() {
		var rec FAQRecord
		var items, keywords, cat sql.NullString
		if err := rows.Scan(&rec.SourceURL, &rec.Question, &rec.Answer, &items, &cat, &keywords); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		rec.Category = cat.String
		if items.Valid && items.String != "" {
			if err := json.Unmarshal([]byte(items.String), &rec.Items); err != nil {
				return nil, fmt.Errorf("failed to parse faq items: %w", err)
			}
		}
		if keywords.Valid && keywords.String != "" {
			if err := json.Unmarshal([]byte(keywords.String), &rec.Keywords); err != nil {
				return nil, fmt.Errorf("failed to parse faq keywords: %w", err)
			}
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// SaveCheckpoint replaces the stored checkpoint with stateJSON.
func (cdb *CrawlDB) SaveCheckpoint(ctx context.Context, stateJSON []byte) error {
	query := `
	INSERT INTO checkpoint (id, state_json, saved_at)
	VALUES (1, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
		state_json = excluded.state_json,
		saved_at = excluded.saved_at
	`
	if _, err := cdb.db.ExecContext(ctx, query, string(stateJSON)); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the stored checkpoint and when it was saved.
// It returns nil data when no checkpoint exists.
func (cdb *CrawlDB) LoadCheckpoint(ctx context.Context) ([]byte, time.Time, error) {
	var stateJSON, savedAt string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT state_json, saved_at FROM checkpoint WHERE id = 1`,
	).Scan(&stateJSON, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return []byte(stateJSON), parseTimestamp(savedAt), nil
}

// ClearCheckpoint removes the stored checkpoint.
func (cdb *CrawlDB) ClearCheckpoint(ctx context.Context) error {
	if _, err := cdb.db.ExecContext(ctx, `DELETE FROM checkpoint`); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
