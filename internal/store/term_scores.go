package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
)

// ReplaceTermScores deletes every term score and inserts scores in one
// transaction, so readers see the old table or the new one.
func (s *SQLiteStore) ReplaceTermScores(ctx context.Context, scores []TermScore) (int, error) {
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM term_scores`); err != nil {
		return 0, fmt.Errorf("failed to clear term scores: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO term_scores (verse_id, term, score) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare term score statement: %w", err)
	}
	defer stmt.Close()

	for _, ts := range scores {
		if _, err := stmt.ExecContext(ctx, ts.VerseID, ts.Term, ts.Score); err != nil {
			return 0, fmt.Errorf("failed to insert term score (%d, %q): %w", ts.VerseID, ts.Term, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit term scores: %w", err)
	}
	return len(scores), nil
}

// TopTermScores yields up to limit verses with the highest score for term
// that pass filter, best first. Ties break by verse id.
func (s *SQLiteStore) TopTermScores(ctx context.Context, term string, limit int, filter QueryFilter) iter.Seq2[ScoredVerse, error] {
	where, args := filterClause(filter)
	query := `
		SELECT ` + verseColumns + `, term_scores.score
		FROM term_scores
		JOIN verses ON term_scores.verse_id = verses.id` + verseJoins + `
		WHERE term_scores.term = ? AND ` + where + `
		ORDER BY term_scores.score DESC, term_scores.verse_id ASC
		LIMIT ?`

	params := make([]any, 0, len(args)+2)
	params = append(params, term)
	params = append(params, args...)
	params = append(params, limit)

	return queryRows(ctx, s, func(rows *sql.Rows) (ScoredVerse, error) {
		var sv ScoredVerse
		err := rows.Scan(append(verseDest(&sv.Verse), &sv.Score)...)
		return sv, err
	}, query, params...)
}

// TermScoreCount returns the number of term score rows.
func (s *SQLiteStore) TermScoreCount(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM term_scores`)
}
