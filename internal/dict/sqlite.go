package dict

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Schema for the user dictionary.
const schema = `
CREATE TABLE IF NOT EXISTS words (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    word        TEXT NOT NULL,
    locale      TEXT NOT NULL DEFAULT '',
    frequency   INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL,
    UNIQUE(word, locale)
);

CREATE INDEX IF NOT EXISTS idx_words_locale ON words(locale);
`

// SQLiteStore is the durable user dictionary.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the dictionary database at the given path and runs
// the schema migration.
func Open(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// QueryExact implements Store. Ordering puts a locale-specific row ahead of
// the locale-agnostic fallback.
func (s *SQLiteStore) QueryExact(word, locale string) (*Entry, error) {
	locale = NormLocale(locale)
	var e Entry
	err := s.db.QueryRow(`
		SELECT word, locale, frequency, updated_at
		FROM words
		WHERE word = ? AND (locale = ? OR locale = '')
		ORDER BY locale DESC
		LIMIT 1`, word, locale,
	).Scan(&e.Word, &e.Locale, &e.Frequency, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query word: %w", err)
	}
	return &e, nil
}

// Insert implements Store. Re-inserting an existing (word, locale) pair
// replaces it.
func (s *SQLiteStore) Insert(e Entry) error {
	if e.Word == "" {
		return ErrEmptyWord
	}
	_, err := s.db.Exec(`
		INSERT INTO words (word, locale, frequency, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(word, locale) DO UPDATE SET
			frequency = excluded.frequency,
			updated_at = excluded.updated_at`,
		e.Word, NormLocale(e.Locale), ClampFrequency(e.Frequency), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert word: %w", err)
	}
	return nil
}

// Update implements Store.
func (s *SQLiteStore) Update(e Entry) error {
	if e.Word == "" {
		return ErrEmptyWord
	}
	result, err := s.db.Exec(`
		UPDATE words SET frequency = ?, updated_at = ?
		WHERE word = ? AND locale = ?`,
		ClampFrequency(e.Frequency), e.UpdatedAt, e.Word, NormLocale(e.Locale),
	)
	if err != nil {
		return fmt.Errorf("update word: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// All implements Store. An empty locale returns every entry.
func (s *SQLiteStore) All(locale string) ([]Entry, error) {
	locale = NormLocale(locale)
	var (
		rows *sql.Rows
		err  error
	)
	if locale == "" {
		rows, err = s.db.Query(`
			SELECT word, locale, frequency, updated_at
			FROM words
			ORDER BY word ASC, locale ASC`)
	} else {
		rows, err = s.db.Query(`
			SELECT word, locale, frequency, updated_at
			FROM words
			WHERE locale = ? OR locale = ''
			ORDER BY word ASC, locale ASC`, locale)
	}
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Word, &e.Locale, &e.Frequency, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}
	return entries, nil
}
