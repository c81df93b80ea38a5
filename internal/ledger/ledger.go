// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records completed searches and document downloads in a
// SQLite database. The ledger is a durable record alongside the on-disk
// PDFs: the files themselves remain the export idempotence marker, the
// ledger is what the CLI reports on.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ppubs/pkg/types"
)

// Ledger manages the download ledger database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at cfg.Path, creating the
// parent directory and schema as needed.
func Open(cfg types.LedgerConfig) (*Ledger, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			num_found INTEGER NOT NULL,
			returned INTEGER NOT NULL,
			searched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS downloads (
			guid TEXT PRIMARY KEY,
			publication_number TEXT,
			title TEXT,
			source TEXT,
			page_count INTEGER,
			pdf_path TEXT NOT NULL,
			downloaded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_source ON downloads(source)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordSearch appends one search run to the ledger.
func (l *Ledger) RecordSearch(query string, numFound, returned int) error {
	_, err := l.db.Exec(
		`INSERT INTO searches (query, num_found, returned, searched_at) VALUES (?, ?, ?, ?)`,
		query, numFound, returned, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// RecordDownload records one completed export. Re-recording the same
// document replaces the prior row.
func (l *Ledger) RecordDownload(bib *types.PatentBiblio, pdfPath string) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO downloads
			(guid, publication_number, title, source, page_count, pdf_path, downloaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		bib.GUID, bib.PublicationReferenceDocumentNumber, bib.PatentTitle,
		bib.Type, bib.PageCount(), pdfPath, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording download %s: %w", bib.GUID, err)
	}
	return nil
}

// Download is one recorded export.
type Download struct {
	GUID              string
	PublicationNumber string
	Title             string
	Source            string
	PageCount         int
	PDFPath           string
	DownloadedAt      time.Time
}

// Downloads returns all recorded exports, most recent first.
func (l *Ledger) Downloads() ([]Download, error) {
	rows, err := l.db.Query(
		`SELECT guid, publication_number, title, source, page_count, pdf_path, downloaded_at
			FROM downloads ORDER BY downloaded_at DESC, guid`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying downloads: %w", err)
	}
	defer rows.Close()

	var downloads []Download
	for rows.Next() {
		var d Download
		var at string
		if err := rows.Scan(&d.GUID, &d.PublicationNumber, &d.Title, &d.Source, &d.PageCount, &d.PDFPath, &at); err != nil {
			return nil, fmt.Errorf("scanning download row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, at); parseErr == nil {
			d.DownloadedAt = t
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

// Stats holds ledger counters.
type Stats struct {
	Searches  int
	Downloads int
	Pages     int
}

// Stats returns aggregate counts over the ledger.
func (l *Ledger) Stats() (Stats, error) {
	var s Stats
	if err := l.db.QueryRow(`SELECT count(*) FROM searches`).Scan(&s.Searches); err != nil {
		return s, fmt.Errorf("counting searches: %w", err)
	}
	err := l.db.QueryRow(
		`SELECT count(*), coalesce(sum(page_count), 0) FROM downloads`,
	).Scan(&s.Downloads, &s.Pages)
	if err != nil {
		return s, fmt.Errorf("counting downloads: %w", err)
	}
	return s, nil
}
