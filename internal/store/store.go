package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anacondy/examwatch/internal/models"
	_ "modernc.org/sqlite"
)

// Store is the persistent announcement collection. Writes go through a
// single-connection handle so upsert and cleanup are serialized; reads use a
// separate read-only handle. The announcements_fts virtual table mirrors the
// base table row-for-row via triggers, so every insert, update and delete
// propagates to the index inside the same transaction.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// Open opens (and if needed creates) the store at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	s := &Store{writeDB: writeDB}
	if err := s.init(); err != nil {
		writeDB.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	s.readDB = readDB
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS announcements (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			date_text        TEXT NOT NULL DEFAULT '',
			title            TEXT NOT NULL,
			url              TEXT NOT NULL UNIQUE,
			crawled_at       DATETIME NOT NULL,
			summary          TEXT NOT NULL DEFAULT '',
			category         TEXT NOT NULL DEFAULT '',
			translated_title TEXT NOT NULL DEFAULT ''
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS announcements_fts USING fts5(
			title, date_text, summary, translated_title, category,
			content='announcements', content_rowid='id'
		);

		CREATE TRIGGER IF NOT EXISTS announcements_ai AFTER INSERT ON announcements BEGIN
			INSERT INTO announcements_fts(rowid, title, date_text, summary, translated_title, category)
			VALUES (new.id, new.title, new.date_text, new.summary, new.translated_title, new.category);
		END;

		CREATE TRIGGER IF NOT EXISTS announcements_ad AFTER DELETE ON announcements BEGIN
			INSERT INTO announcements_fts(announcements_fts, rowid, title, date_text, summary, translated_title, category)
			VALUES ('delete', old.id, old.title, old.date_text, old.summary, old.translated_title, old.category);
		END;

		CREATE TRIGGER IF NOT EXISTS announcements_au AFTER UPDATE ON announcements BEGIN
			INSERT INTO announcements_fts(announcements_fts, rowid, title, date_text, summary, translated_title, category)
			VALUES ('delete', old.id, old.title, old.date_text, old.summary, old.translated_title, old.category);
			INSERT INTO announcements_fts(rowid, title, date_text, summary, translated_title, category)
			VALUES (new.id, new.title, new.date_text, new.summary, new.translated_title, new.category);
		END;
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close closes both database handles.
func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Upsert inserts the announcement if its URL is unseen, otherwise updates the
// mutable fields in place, keeping the original id and crawled_at. Analysis
// fields are only overwritten by non-empty values, so re-upserting a candidate
// whose analysis failed does not wipe an earlier result.
func (s *Store) Upsert(ctx context.Context, a models.Announcement) error {
	crawledAt := a.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = time.Now().UTC()
	}
	_, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO announcements (date_text, title, url, crawled_at, summary, category, translated_title)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			date_text        = excluded.date_text,
			title            = excluded.title,
			summary          = CASE WHEN excluded.summary <> '' THEN excluded.summary ELSE announcements.summary END,
			category         = CASE WHEN excluded.category <> '' THEN excluded.category ELSE announcements.category END,
			translated_title = CASE WHEN excluded.translated_title <> '' THEN excluded.translated_title ELSE announcements.translated_title END
	`, a.DateText, a.Title, a.URL, crawledAt, a.Summary, a.Category, a.TranslatedTitle)
	if err != nil {
		return fmt.Errorf("upserting announcement %s: %w", a.URL, err)
	}
	return nil
}

// Count returns the number of live announcements.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting announcements: %w", err)
	}
	return n, nil
}

// HasURL reports whether a live row exists for the URL.
func (s *Store) HasURL(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.readDB.QueryRowContext(ctx, `SELECT 1 FROM announcements WHERE url = ?`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking url %s: %w", url, err)
	}
	return true, nil
}

// Cleanup enforces the retention cap: if more than max rows are live, the
// oldest (smallest-id) excess rows are deleted, FTS mirror entries included,
// in one transaction. Returns the number of rows deleted.
func (s *Store) Cleanup(ctx context.Context, max int) (int, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting cleanup: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting during cleanup: %w", err)
	}

	excess := n - max
	if excess <= 0 {
		return 0, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM announcements
		WHERE id IN (SELECT id FROM announcements ORDER BY id ASC LIMIT ?)
	`, excess); err != nil {
		return 0, fmt.Errorf("deleting %d oldest rows: %w", excess, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing cleanup: %w", err)
	}
	return excess, nil
}

const announcementCols = `id, date_text, title, url, crawled_at, summary, category, translated_title`

// Search returns announcements matching the given WHERE clause, most recently
// discovered first. The clause is built by the query interpreter; an empty
// clause matches everything.
func (s *Store) Search(ctx context.Context, where string, args []any) ([]models.Announcement, error) {
	q := `SELECT ` + announcementCols + ` FROM announcements`
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY id DESC"

	rows, err := s.readDB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching announcements: %w", err)
	}
	defer rows.Close()
	return scanAnnouncements(rows)
}

// List returns the most recent announcements, optionally filtered by
// category, newest first.
func (s *Store) List(ctx context.Context, category string, limit int) ([]models.Announcement, error) {
	var (
		where []string
		args  []any
	)
	if category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}

	q := `SELECT ` + announcementCols + ` FROM announcements`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.readDB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing announcements: %w", err)
	}
	defer rows.Close()
	return scanAnnouncements(rows)
}

// Categories returns the distinct category tags present in the store.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT DISTINCT category FROM announcements WHERE category <> '' ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetByURL returns the live announcement for the URL, or sql.ErrNoRows.
func (s *Store) GetByURL(ctx context.Context, url string) (*models.Announcement, error) {
	row := s.readDB.QueryRowContext(ctx, `
		SELECT `+announcementCols+` FROM announcements WHERE url = ?
	`, url)
	var a models.Announcement
	if err := row.Scan(&a.ID, &a.DateText, &a.Title, &a.URL, &a.CrawledAt, &a.Summary, &a.Category, &a.TranslatedTitle); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAnnouncements(rows *sql.Rows) ([]models.Announcement, error) {
	var out []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.DateText, &a.Title, &a.URL, &a.CrawledAt, &a.Summary, &a.Category, &a.TranslatedTitle); err != nil {
			return nil, fmt.Errorf("scanning announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
