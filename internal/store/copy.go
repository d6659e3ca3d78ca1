package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	verrors "github.com/Aman-CERP/versio/internal/errors"
)

// CopyDatabase writes a compacted copy of the SQLite database at src to dst
// using VACUUM INTO. An existing dst (and its WAL/SHM files) is removed
// first. src is opened read-only.
func CopyDatabase(ctx context.Context, src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return verrors.New(verrors.ErrCodeFileNotFound,
				fmt.Sprintf("source corpus %s not found", src), err).
				WithSuggestion("Pass the scripture database with --source or set paths.corpus_db")
		}
		return verrors.New(verrors.ErrCodeFilePermission,
			fmt.Sprintf("cannot read source corpus %s", src), err)
	}

	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dst, err)
	}
	if srcAbs == dstAbs {
		return verrors.ValidationError("source and destination databases are the same file", nil).
			WithDetail("path", srcAbs)
	}

	if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	for _, p := range []string{dstAbs, dstAbs + "-wal", dstAbs + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing %s: %w", p, err)
		}
	}

	start := time.Now()
	db, err := sql.Open("sqlite", "file:"+srcAbs+"?mode=ro")
	if err != nil {
		return verrors.StoreError("failed to open source corpus", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, dstAbs); err != nil {
		_ = os.Remove(dstAbs)
		return verrors.StoreError(fmt.Sprintf("failed to copy %s to %s", src, dst), err)
	}

	slog.Info("corpus_copied",
		slog.String("source", srcAbs),
		slog.String("destination", dstAbs),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// ReadDocuments calls fn for every verse of the database at path, in id
// order, without creating index tables. The file is opened read-only.
func ReadDocuments(ctx context.Context, path string, fn func(Document) error) error {
	if _, err := os.Stat(path); err != nil {
		return verrors.New(verrors.ErrCodeFileNotFound,
			fmt.Sprintf("corpus %s not found", path), err).
			WithSuggestion("Pass the scripture database with --source or set paths.corpus_db")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+abs+"?mode=ro")
	if err != nil {
		return verrors.StoreError("failed to open corpus", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, COALESCE(scripture_text, '') FROM verses ORDER BY id`)
	if err != nil {
		return verrors.StoreError("failed to read verses from "+path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Text); err != nil {
			return fmt.Errorf("failed to scan verse: %w", err)
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	return rows.Err()
}
