package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
)

// verseColumns selects the Verse fields in scanVerse order. Nullable text
// columns are coalesced so sparse metadata scans cleanly.
const verseColumns = `
	volumes.id, books.id, chapters.id, verses.id,
	COALESCE(volumes.volume_title, ''), COALESCE(books.book_title, ''),
	COALESCE(volumes.volume_long_title, ''), COALESCE(books.book_long_title, ''),
	COALESCE(volumes.volume_subtitle, ''), COALESCE(books.book_subtitle, ''),
	COALESCE(volumes.volume_short_title, ''), COALESCE(books.book_short_title, ''),
	COALESCE(volumes.volume_lds_url, ''), COALESCE(books.book_lds_url, ''),
	chapters.chapter_number, verses.verse_number,
	COALESCE(verses.scripture_text, ''),
	COALESCE(verses.verse_title, ''), COALESCE(verses.verse_short_title, '')`

// verseJoins joins a verse to its chapter, book and volume.
const verseJoins = `
	JOIN chapters ON verses.chapter_id = chapters.id
	JOIN books ON chapters.book_id = books.id
	JOIN volumes ON books.volume_id = volumes.id`

// verseDest returns scan destinations for verseColumns.
func verseDest(v *Verse) []any {
	return []any{
		&v.VolumeID, &v.BookID, &v.ChapterID, &v.VerseID,
		&v.VolumeTitle, &v.BookTitle,
		&v.VolumeLongTitle, &v.BookLongTitle,
		&v.VolumeSubtitle, &v.BookSubtitle,
		&v.VolumeShortTitle, &v.BookShortTitle,
		&v.VolumeLDSURL, &v.BookLDSURL,
		&v.ChapterNumber, &v.VerseNumber,
		&v.ScriptureText,
		&v.VerseTitle, &v.VerseShortTitle,
	}
}

// filterClause renders filter as SQL predicates and their arguments.
// Each excluded volume drops rows with that exact volume title.
func filterClause(filter QueryFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`
		(? = 0 OR volumes.volume_title != '` + VolumeBookOfMormon + `')
		AND (? = 0 OR volumes.volume_title != '` + VolumeDoctrineAndCovenants + `')
		AND (? = 0 OR volumes.volume_title != '` + VolumeNewTestament + `')
		AND (? = 0 OR volumes.volume_title != '` + VolumeOldTestament + `')`)

	args := []any{
		boolInt(filter.Volumes.ExcludeBookOfMormon),
		boolInt(filter.Volumes.ExcludeDoctrineAndCovenants),
		boolInt(filter.Volumes.ExcludeNewTestament),
		boolInt(filter.Volumes.ExcludeOldTestament),
	}

	for _, phrase := range filter.Phrases {
		b.WriteString(`
		AND instr(lower(verses.scripture_text), ?) > 0`)
		args = append(args, strings.ToLower(phrase))
	}

	return b.String(), args
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CountVerses returns the number of verses in the corpus.
func (s *SQLiteStore) CountVerses(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM verses`)
}

// AverageTextLength returns the mean verse text length in characters,
// or 0 for an empty corpus.
func (s *SQLiteStore) AverageTextLength(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(LENGTH(scripture_text)) FROM verses`).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average text length: %w", err)
	}
	return avg.Float64, nil
}

// Documents yields every verse as a Document in id order.
func (s *SQLiteStore) Documents(ctx context.Context) iter.Seq2[Document, error] {
	return queryRows(ctx, s, func(rows *sql.Rows) (Document, error) {
		var d Document
		err := rows.Scan(&d.ID, &d.Text)
		return d, err
	}, `SELECT id, COALESCE(scripture_text, '') FROM verses ORDER BY id`)
}

// HasCorpus reports whether the corpus tables exist.
func (s *SQLiteStore) HasCorpus(ctx context.Context) (bool, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('volumes', 'books', 'chapters', 'verses')`)
	return n == 4, err
}

// InitCorpusSchema creates the corpus tables. Production corpora are built
// elsewhere; this seeds fixtures and test databases.
func (s *SQLiteStore) InitCorpusSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS volumes (
		id INTEGER PRIMARY KEY,
		volume_title TEXT,
		volume_long_title TEXT,
		volume_subtitle TEXT,
		volume_short_title TEXT,
		volume_lds_url TEXT
	);
	CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY,
		volume_id INTEGER REFERENCES volumes(id),
		book_title TEXT,
		book_long_title TEXT,
		book_subtitle TEXT,
		book_short_title TEXT,
		book_lds_url TEXT
	);
	CREATE TABLE IF NOT EXISTS chapters (
		id INTEGER PRIMARY KEY,
		book_id INTEGER REFERENCES books(id),
		chapter_number INTEGER
	);
	CREATE TABLE IF NOT EXISTS verses (
		id INTEGER PRIMARY KEY,
		chapter_id INTEGER REFERENCES chapters(id),
		verse_number INTEGER,
		scripture_text TEXT,
		verse_title TEXT,
		verse_short_title TEXT
	);`)
	if err != nil {
		return fmt.Errorf("failed to create corpus schema: %w", err)
	}
	return nil
}

// InsertVerses writes verses and their volume, book and chapter rows.
// Parent rows are keyed by id; the first occurrence of each id wins.
func (s *SQLiteStore) InsertVerses(ctx context.Context, verses []Verse) error {
	if len(verses) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`INSERT OR IGNORE INTO volumes (id, volume_title, volume_long_title, volume_subtitle, volume_short_title, volume_lds_url)
			VALUES (?, ?, ?, ?, ?, ?)`,
		`INSERT OR IGNORE INTO books (id, volume_id, book_title, book_long_title, book_subtitle, book_short_title, book_lds_url)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		`INSERT OR IGNORE INTO chapters (id, book_id, chapter_number) VALUES (?, ?, ?)`,
		`INSERT OR REPLACE INTO verses (id, chapter_id, verse_number, scripture_text, verse_title, verse_short_title)
			VALUES (?, ?, ?, ?, ?, ?)`,
	}
	prepared := make([]*sql.Stmt, len(stmts))
	for i, q := range stmts {
		stmt, err := tx.PrepareContext(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to prepare corpus statement: %w", err)
		}
		defer stmt.Close()
		prepared[i] = stmt
	}

	for _, v := range verses {
		if _, err := prepared[0].ExecContext(ctx, v.VolumeID, v.VolumeTitle, v.VolumeLongTitle,
			v.VolumeSubtitle, v.VolumeShortTitle, v.VolumeLDSURL); err != nil {
			return fmt.Errorf("failed to insert volume %d: %w", v.VolumeID, err)
		}
		if _, err := prepared[1].ExecContext(ctx, v.BookID, v.VolumeID, v.BookTitle, v.BookLongTitle,
			v.BookSubtitle, v.BookShortTitle, v.BookLDSURL); err != nil {
			return fmt.Errorf("failed to insert book %d: %w", v.BookID, err)
		}
		if _, err := prepared[2].ExecContext(ctx, v.ChapterID, v.BookID, v.ChapterNumber); err != nil {
			return fmt.Errorf("failed to insert chapter %d: %w", v.ChapterID, err)
		}
		if _, err := prepared[3].ExecContext(ctx, v.VerseID, v.ChapterID, v.VerseNumber,
			v.ScriptureText, v.VerseTitle, v.VerseShortTitle); err != nil {
			return fmt.Errorf("failed to insert verse %d: %w", v.VerseID, err)
		}
	}

	return tx.Commit()
}
