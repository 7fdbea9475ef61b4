package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sevigo/gitreview/internal/core"
)

const reviewColumns = `id, base_branch, target_branch, base_sha, target_sha,
	base_sha_changed, target_sha_changed, base_branch_exists, target_branch_exists,
	created_at, updated_at`

// CreateReview inserts a new review record.
func (s *sqliteStore) CreateReview(ctx context.Context, review *core.Review) error {
	query := `INSERT INTO reviews (` + reviewColumns + `)
		VALUES (:id, :base_branch, :target_branch, :base_sha, :target_sha,
			:base_sha_changed, :target_sha_changed, :base_branch_exists, :target_branch_exists,
			:created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// GetReview retrieves a review by id. Returns core.ErrNotFound for stale ids.
func (s *sqliteStore) GetReview(ctx context.Context, id string) (*core.Review, error) {
	var r core.Review
	err := s.db.GetContext(ctx, &r, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query review %s: %w", id, err)
	}
	return &r, nil
}

// ListReviews returns all reviews, newest first.
func (s *sqliteStore) ListReviews(ctx context.Context) ([]*core.Review, error) {
	var reviews []*core.Review
	err := s.db.SelectContext(ctx, &reviews,
		`SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// DeleteReview removes a review; comments and file views cascade.
func (s *sqliteStore) DeleteReview(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("review %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// UpdateBranchStatus records the result of a branch probe. All four status
// columns are written as given (nil clears), leaving the stored SHAs intact.
// A pending marker equal to the current stored SHA is dropped; it means a
// concurrent refresh accepted that head after the probe read the review.
func (s *sqliteStore) UpdateBranchStatus(ctx context.Context, id string, status core.BranchStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews
		SET base_sha_changed   = CASE WHEN ? = base_sha THEN NULL ELSE ? END,
			target_sha_changed = CASE WHEN ? = target_sha THEN NULL ELSE ? END,
			base_branch_exists = ?, target_branch_exists = ?, updated_at = ?
		WHERE id = ?`,
		status.BaseSHAChanged, status.BaseSHAChanged,
		status.TargetSHAChanged, status.TargetSHAChanged,
		status.BaseExists, status.TargetExists, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update branch status for review %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("review %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// AcceptRefresh copies the accepted head into the stored SHA for one side and
// clears the pending marker in the same statement.
func (s *sqliteStore) AcceptRefresh(ctx context.Context, id string, side core.RefreshSide, newSHA string) error {
	var query string
	switch side {
	case core.SideBase:
		query = `UPDATE reviews SET base_sha = ?, base_sha_changed = NULL, updated_at = ? WHERE id = ?`
	case core.SideTarget:
		query = `UPDATE reviews SET target_sha = ?, target_sha_changed = NULL, updated_at = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown refresh side %q: %w", side, core.ErrInvalidState)
	}

	res, err := s.db.ExecContext(ctx, query, newSHA, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to accept %s refresh for review %s: %w", side, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("review %s: %w", id, core.ErrNotFound)
	}
	return nil
}
