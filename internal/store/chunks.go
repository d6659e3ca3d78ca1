package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
)

// ReplaceChunks deletes every chunk and stores the chunks written by fill,
// all in one transaction. If fill returns an error the old table is kept.
// fill runs while the store's write lock and connection are held, so it
// must not call back into the store.
func (s *SQLiteStore) ReplaceChunks(ctx context.Context, fill func(write func(Chunk) error) error) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verse_chunks`); err != nil {
		return 0, fmt.Errorf("failed to clear chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verse_chunks (id, verse_id, chunk_text, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare chunk statement: %w", err)
	}
	defer stmt.Close()

	var next int64
	write := func(c Chunk) error {
		next++
		if _, err := stmt.ExecContext(ctx, next, c.VerseID, c.Text, EncodeEmbedding(c.Embedding)); err != nil {
			return fmt.Errorf("failed to insert chunk for verse %d: %w", c.VerseID, err)
		}
		return nil
	}

	if err := fill(write); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit chunks: %w", err)
	}
	return int(next), nil
}

// ScanChunks yields every chunk that passes filter, joined with its verse,
// in chunk id order.
func (s *SQLiteStore) ScanChunks(ctx context.Context, filter QueryFilter) iter.Seq2[ChunkRow, error] {
	where, args := filterClause(filter)
	query := `
		SELECT ` + verseColumns + `,
			verse_chunks.id, verse_chunks.verse_id, verse_chunks.chunk_text, verse_chunks.embedding
		FROM verse_chunks
		JOIN verses ON verse_chunks.verse_id = verses.id` + verseJoins + `
		WHERE ` + where + `
		ORDER BY verse_chunks.id`

	return queryRows(ctx, s, func(rows *sql.Rows) (ChunkRow, error) {
		var (
			r    ChunkRow
			blob []byte
		)
		dest := append(verseDest(&r.Verse), &r.Chunk.ID, &r.Chunk.VerseID, &r.Chunk.Text, &blob)
		if err := rows.Scan(dest...); err != nil {
			return r, err
		}
		emb, err := DecodeEmbedding(blob)
		if err != nil {
			return r, fmt.Errorf("chunk %d: %w", r.Chunk.ID, err)
		}
		r.Chunk.Embedding = emb
		return r, nil
	}, query, args...)
}

// ChunkCount returns the number of stored chunks.
func (s *SQLiteStore) ChunkCount(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM verse_chunks`)
}
