package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/gitreview/internal/core"
)

// CreateFileView records that a file has been viewed. The (review, path)
// primary key rejects duplicates.
func (s *sqliteStore) CreateFileView(ctx context.Context, record *core.FileViewRecord) error {
	query := `INSERT INTO file_views (review_id, file_path, created_at)
		VALUES (:review_id, :file_path, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to insert file view for %s: %w", record.FilePath, err)
	}
	return nil
}

// DeleteFileView removes a single viewed marker (toggle off).
func (s *sqliteStore) DeleteFileView(ctx context.Context, reviewID, filePath string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM file_views WHERE review_id = ? AND file_path = ?`, reviewID, filePath)
	if err != nil {
		return fmt.Errorf("failed to delete file view for %s: %w", filePath, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("file view %s/%s: %w", reviewID, filePath, core.ErrNotFound)
	}
	return nil
}

// DeleteFileViews removes the viewed markers for the given paths, returning
// how many were removed. Used by the sync engine's invalidation pass.
func (s *sqliteStore) DeleteFileViews(ctx context.Context, reviewID string, filePaths []string) (int64, error) {
	if len(filePaths) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(
		`DELETE FROM file_views WHERE review_id = ? AND file_path IN (?)`, reviewID, filePaths)
	if err != nil {
		return 0, fmt.Errorf("failed to build file view delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete file views for review %s: %w", reviewID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListFileViews returns the viewed markers of a review.
func (s *sqliteStore) ListFileViews(ctx context.Context, reviewID string) ([]*core.FileViewRecord, error) {
	var records []*core.FileViewRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT review_id, file_path, created_at FROM file_views
		WHERE review_id = ? ORDER BY file_path`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file views for review %s: %w", reviewID, err)
	}
	return records, nil
}
