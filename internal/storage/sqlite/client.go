package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/models"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

var ErrNotFound = errors.New("record not found")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS medical_terms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		term TEXT NOT NULL,
		category TEXT NOT NULL,
		source_db TEXT NOT NULL,
		concept_id TEXT,
		confidence REAL NOT NULL DEFAULT 0.95,
		created_at INTEGER NOT NULL,
		UNIQUE(term, category, source_db)
	);
	CREATE INDEX IF NOT EXISTS idx_terms_term ON medical_terms(term);
	CREATE INDEX IF NOT EXISTS idx_terms_category ON medical_terms(category);
	CREATE INDEX IF NOT EXISTS idx_terms_source ON medical_terms(source_db);

	CREATE TABLE IF NOT EXISTS db_metadata (
		source_db TEXT PRIMARY KEY,
		total_terms INTEGER NOT NULL,
		version TEXT,
		last_updated INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analysis_results (
		id TEXT PRIMARY KEY,
		patient_id TEXT,
		text_fingerprint TEXT NOT NULL,
		summary TEXT,
		entity_count INTEGER NOT NULL,
		critical_count INTEGER NOT NULL,
		confidence REAL NOT NULL,
		corpus_version TEXT,
		processing_time_ms REAL,
		result_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_patient ON analysis_results(patient_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_analysis_fingerprint ON analysis_results(text_fingerprint);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InsertTerms writes records with insert-or-ignore semantics in a single
// transaction. Invalid records are skipped and counted.
func (c *Client) InsertTerms(ctx context.Context, records []terms.TermRecord) (inserted, skipped int, err error) {
	err = c.inTx(ctx, func(tx *sql.Tx) error {
		inserted, skipped, err = insertTerms(ctx, tx, records)
		return err
	})
	if err != nil {
		return 0, 0, err
	}

	logger.Debug("Terms inserted", zap.Int("inserted", inserted), zap.Int("skipped", skipped))
	return inserted, skipped, nil
}

// ReplaceSource deletes every row of source and inserts records in one
// transaction. On error the previous rows are left untouched.
func (c *Client) ReplaceSource(ctx context.Context, source string, records []terms.TermRecord) (deleted int64, inserted, skipped int, err error) {
	err = c.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM medical_terms WHERE source_db = ?`, source)
		if err != nil {
			return fmt.Errorf("failed to delete source %s: %w", source, err)
		}
		deleted, _ = res.RowsAffected()

		inserted, skipped, err = insertTerms(ctx, tx, records)
		return err
	})
	if err != nil {
		return 0, 0, 0, err
	}

	logger.Info("Source terms replaced",
		zap.String("source", source),
		zap.Int64("deleted", deleted),
		zap.Int("inserted", inserted),
	)
	return deleted, inserted, skipped, nil
}

func (c *Client) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit terms: %w", err)
	}
	return nil
}

func insertTerms(ctx context.Context, tx *sql.Tx, records []terms.TermRecord) (inserted, skipped int, err error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO medical_terms (term, category, source_db, concept_id, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare term insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range records {
		r = terms.NewTermRecord(r.Term, r.Category, r.Source, r.ConceptID, r.Confidence)
		if verr := r.Validate(); verr != nil {
			skipped++
			logger.Debug("Skipping invalid term record", zap.String("term", r.Term), zap.Error(verr))
			continue
		}

		res, err := stmt.ExecContext(ctx, r.Term, string(r.Category), r.Source, r.ConceptID, r.Confidence, now)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert term %q: %w", r.Term, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, skipped, nil
}

func (c *Client) AllTerms(ctx context.Context) ([]terms.TermRecord, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT term, category, source_db, COALESCE(concept_id, ''), confidence FROM medical_terms`)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}
	defer rows.Close()

	var records []terms.TermRecord
	for rows.Next() {
		r, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate terms: %w", err)
	}
	return records, nil
}

// SearchTerms returns terms starting with prefix, shortest first.
func (c *Client) SearchTerms(ctx context.Context, prefix string, category terms.Category, limit int) ([]terms.TermRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	prefix = terms.Normalize(prefix)
	if prefix == "" {
		return []terms.TermRecord{}, nil
	}

	query := `
		SELECT term, category, source_db, COALESCE(concept_id, ''), confidence
		FROM medical_terms
		WHERE term LIKE ? ESCAPE '\'
	`
	args := []any{escapeLike(prefix) + "%"}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY length(term), term, source_db LIMIT ?`
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search terms: %w", err)
	}
	defer rows.Close()

	records := []terms.TermRecord{}
	for rows.Next() {
		r, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanTerm(rows *sql.Rows) (terms.TermRecord, error) {
	var r terms.TermRecord
	var category string
	if err := rows.Scan(&r.Term, &category, &r.Source, &r.ConceptID, &r.Confidence); err != nil {
		return r, fmt.Errorf("failed to scan term: %w", err)
	}
	r.Category = terms.Category(category)
	return r, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (c *Client) CountSource(ctx context.Context, source string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM medical_terms WHERE source_db = ?`, source).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count source %s: %w", source, err)
	}
	return n, nil
}

func (c *Client) UpsertSourceMetadata(ctx context.Context, meta models.SourceMetadata) error {
	query := `
		INSERT INTO db_metadata (source_db, total_terms, version, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_db) DO UPDATE SET
			total_terms = excluded.total_terms,
			version = excluded.version,
			last_updated = excluded.last_updated
	`
	_, err := c.db.ExecContext(ctx, query, meta.Source, meta.TotalTerms, meta.Version, meta.LastUpdated.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert source metadata: %w", err)
	}
	return nil
}

func (c *Client) ListSourceMetadata(ctx context.Context) ([]models.SourceMetadata, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT source_db, total_terms, COALESCE(version, ''), last_updated FROM db_metadata ORDER BY source_db`)
	if err != nil {
		return nil, fmt.Errorf("failed to list source metadata: %w", err)
	}
	defer rows.Close()

	out := []models.SourceMetadata{}
	for rows.Next() {
		var m models.SourceMetadata
		var updated int64
		if err := rows.Scan(&m.Source, &m.TotalTerms, &m.Version, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan source metadata: %w", err)
		}
		m.LastUpdated = time.Unix(updated, 0).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *Client) Stats(ctx context.Context) (*models.CorpusStats, error) {
	stats := &models.CorpusStats{
		ByCategory: make(map[string]int),
		BySource:   make(map[string]int),
	}

	if err := c.groupCount(ctx, "category", stats.ByCategory); err != nil {
		return nil, err
	}
	if err := c.groupCount(ctx, "source_db", stats.BySource); err != nil {
		return nil, err
	}
	for _, n := range stats.ByCategory {
		stats.TotalTerms += n
	}

	sources, err := c.ListSourceMetadata(ctx)
	if err != nil {
		return nil, err
	}
	stats.Sources = sources
	return stats, nil
}

func (c *Client) groupCount(ctx context.Context, column string, into map[string]int) error {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM medical_terms GROUP BY %s`, column, column))
	if err != nil {
		return fmt.Errorf("failed to count terms by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
		into[key] = n
	}
	return rows.Err()
}

func (c *Client) InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		INSERT INTO analysis_results (id, patient_id, text_fingerprint, summary, entity_count, critical_count,
			confidence, corpus_version, processing_time_ms, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(ctx, query,
		record.ID,
		nullString(record.PatientID),
		record.TextFingerprint,
		record.Summary,
		record.EntityCount,
		record.CriticalCount,
		record.Confidence,
		record.CorpusVersion,
		record.ProcessingTimeMs,
		string(record.Result),
		record.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	logger.Debug("Analysis stored",
		zap.String("analysis_id", record.ID),
		zap.Int("entities", record.EntityCount),
	)
	return nil
}

const analysisColumns = `id, COALESCE(patient_id, ''), text_fingerprint, COALESCE(summary, ''), entity_count,
	critical_count, confidence, COALESCE(corpus_version, ''), COALESCE(processing_time_ms, 0), result_json, created_at`

func (c *Client) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analysis_results WHERE id = ?`, id)
	r, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return r, nil
}

// ListAnalyses returns summaries without the stored result body, newest
// first. An empty patientID lists all analyses.
func (c *Client) ListAnalyses(ctx context.Context, patientID string, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + analysisColumns + ` FROM analysis_results`
	args := []any{}
	if patientID != "" {
		query += ` WHERE patient_id = ?`
		args = append(args, patientID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := []models.AnalysisRecord{}
	for rows.Next() {
		r, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		r.Result = nil
		records = append(records, *r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*models.AnalysisRecord, error) {
	var r models.AnalysisRecord
	var result string
	var createdAt int64
	err := s.Scan(
		&r.ID,
		&r.PatientID,
		&r.TextFingerprint,
		&r.Summary,
		&r.EntityCount,
		&r.CriticalCount,
		&r.Confidence,
		&r.CorpusVersion,
		&r.ProcessingTimeMs,
		&result,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	r.Result = []byte(result)
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &r, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
