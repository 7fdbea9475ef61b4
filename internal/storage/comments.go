package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/gitreview/internal/core"
)

const commentColumns = `id, review_id, file_path, line_number, content, resolved, created_at`

// CreateComment inserts a new comment.
func (s *sqliteStore) CreateComment(ctx context.Context, comment *core.Comment) error {
	query := `INSERT INTO comments (` + commentColumns + `)
		VALUES (:id, :review_id, :file_path, :line_number, :content, :resolved, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// ListComments returns all comments of a review, newest first.
func (s *sqliteStore) ListComments(ctx context.Context, reviewID string) ([]*core.Comment, error) {
	var comments []*core.Comment
	err := s.db.SelectContext(ctx, &comments,
		`SELECT `+commentColumns+` FROM comments WHERE review_id = ? ORDER BY created_at DESC`,
		reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for review %s: %w", reviewID, err)
	}
	return comments, nil
}

// ListFileComments returns the comments of one file of a review, newest first.
func (s *sqliteStore) ListFileComments(ctx context.Context, reviewID, filePath string) ([]*core.Comment, error) {
	var comments []*core.Comment
	err := s.db.SelectContext(ctx, &comments,
		`SELECT `+commentColumns+` FROM comments
		WHERE review_id = ? AND file_path = ? ORDER BY created_at DESC`,
		reviewID, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for review %s file %s: %w", reviewID, filePath, err)
	}
	return comments, nil
}

// ResolveComment marks a single comment resolved.
func (s *sqliteStore) ResolveComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve comment %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("comment %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ResolveAllComments marks every comment of a review resolved.
func (s *sqliteStore) ResolveAllComments(ctx context.Context, reviewID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE comments SET resolved = 1 WHERE review_id = ?`, reviewID)
	if err != nil {
		return fmt.Errorf("failed to resolve comments for review %s: %w", reviewID, err)
	}
	return nil
}

// ResolveAllFileComments marks every comment of one file of a review resolved.
// Comments on other files of the review are untouched.
func (s *sqliteStore) ResolveAllFileComments(ctx context.Context, reviewID, filePath string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE comments SET resolved = 1 WHERE review_id = ? AND file_path = ?`,
		reviewID, filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve comments for review %s file %s: %w", reviewID, filePath, err)
	}
	return nil
}

// CopyComments duplicates every comment of one review onto another, with
// fresh ids. Used when a review is duplicated from current heads.
func (s *sqliteStore) CopyComments(ctx context.Context, fromReviewID, toReviewID string) error {
	src, err := s.ListComments(ctx, fromReviewID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, c := range src {
		dup := *c
		dup.ID = uuid.NewString()
		dup.ReviewID = toReviewID
		dup.CreatedAt = now
		if err := s.CreateComment(ctx, &dup); err != nil {
			return fmt.Errorf("failed to copy comment %s: %w", c.ID, err)
		}
	}
	return nil
}
