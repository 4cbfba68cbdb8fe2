package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a document ID does not exist.
var ErrNotFound = errors.New("document not found")

// Store defines the document operations used by ingestion and retrieval.
type Store interface {
	AddDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id int64) (*Document, error)
	FindByKeyword(ctx context.Context, token string, limit int) ([]int64, error)
	IDsUpTo(ctx context.Context, maxID int64) ([]int64, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]Summary, error)
	GetStats(ctx context.Context) (*Stats, error)
	CountBefore(ctx context.Context, date string) (int64, error)
	DeleteBefore(ctx context.Context, date string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	insertDocument *sql.Stmt
	getDocument    *sql.Stmt
	findByKeyword  *sql.Stmt
	idsUpTo        *sql.Stmt
}

// OpenDB opens the SQLite file at path, creating its directory if needed, and
// applies pending migrations. The pool is limited to one connection: the
// tool has a single writer or a single reader at a time, and ":memory:"
// databases are per-connection.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := NewMigrationRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertDocument, err = s.db.Prepare(`
		INSERT INTO documents (title, content, url, keywords, date)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getDocument, err = s.db.Prepare(`
		SELECT id, title, content, url, keywords, date
		FROM documents WHERE id = ?
	`)
	if err != nil {
		return err
	}

	// instr() is a case-sensitive, literal substring test: no LIKE wildcards
	// to escape and no case folding.
	s.findByKeyword, err = s.db.Prepare(`
		SELECT id FROM documents
		WHERE instr(keywords, ?) > 0
		ORDER BY id
		LIMIT ?
	`)
	if err != nil {
		return err
	}

	s.idsUpTo, err = s.db.Prepare(`SELECT id FROM documents WHERE id <= ? ORDER BY id`)
	if err != nil {
		return err
	}

	return nil
}

// AddDocument inserts a document and populates doc.ID. The insert runs
// outside any explicit transaction, so the row is committed when it returns.
func (s *SQLiteStore) AddDocument(ctx context.Context, doc *Document) error {
	res, err := s.insertDocument.ExecContext(ctx,
		doc.Title, doc.Content, doc.URL, doc.Keywords, doc.Date,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read document id: %w", err)
	}
	doc.ID = id
	return nil
}

// GetDocument retrieves a single document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id int64) (*Document, error) {
	var d Document
	var title, content, url, keywords, date sql.NullString

	err := s.getDocument.QueryRowContext(ctx, id).Scan(
		&d.ID, &title, &content, &url, &keywords, &date,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	d.Title = title.String
	d.Content = content.String
	d.URL = url.String
	d.Keywords = keywords.String
	d.Date = date.String
	return &d, nil
}

// FindByKeyword returns up to limit document IDs, lowest first, whose
// keyword field contains token.
func (s *SQLiteStore) FindByKeyword(ctx context.Context, token string, limit int) ([]int64, error) {
	rows, err := s.findByKeyword.QueryContext(ctx, token, limit)
	if err != nil {
		return nil, fmt.Errorf("find by keyword: %w", err)
	}
	return scanIDs(rows)
}

// IDsUpTo returns the IDs of all stored documents with id <= maxID, ascending.
func (s *SQLiteStore) IDsUpTo(ctx context.Context, maxID int64) ([]int64, error) {
	rows, err := s.idsUpTo.QueryContext(ctx, maxID)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListDocuments returns document summaries, newest publication date first.
func (s *SQLiteStore) ListDocuments(ctx context.Context, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, date, url FROM documents
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sm Summary
		var title, date, url sql.NullString
		if err := rows.Scan(&sm.ID, &title, &date, &url); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		sm.Title, sm.Date, sm.URL = title.String, date.String, url.String
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(CAST(content AS BLOB))), 0) FROM documents",
	).Scan(&stats.TotalDocuments, &stats.TotalContentBytes)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	if stats.TotalDocuments > 0 {
		var oldest, newest sql.NullString
		err = s.db.QueryRowContext(ctx, "SELECT MIN(date), MAX(date) FROM documents").Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("document date range: %w", err)
		}
		stats.OldestDate, stats.NewestDate = oldest.String, newest.String
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats.DatabaseSizeBytes = pageCount * pageSize
		}
	}

	return stats, nil
}

// CountBefore counts documents whose date sorts before date (YYYY-MM-DD).
// Documents without a date are not counted.
func (s *SQLiteStore) CountBefore(ctx context.Context, date string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE date <> '' AND date < ?", date,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// DeleteBefore removes documents dated before date and returns how many were
// removed. Documents without a date are kept.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE date <> '' AND date < ?", date)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAll removes every document. IDs keep increasing afterwards because
// the table uses AUTOINCREMENT.
func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents")
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return res.RowsAffected()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.insertDocument, s.getDocument, s.findByKeyword, s.idsUpTo,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
