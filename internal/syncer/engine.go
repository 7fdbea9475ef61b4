// Package syncer keeps a review's recorded SHAs, branch-existence flags and
// per-file viewed markers consistent with the live state of its branches.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/gitreview/internal/core"
)

// Engine is the review synchronization engine. Detection and application are
// two explicit steps: a probe records a new head without touching the stored
// SHA, and only an accepted refresh moves the "what did I actually review"
// anchor forward.
type Engine struct {
	store  core.Store
	git    core.Git
	logger *slog.Logger
}

// NewEngine creates an Engine bound to the given collaborators.
func NewEngine(store core.Store, git core.Git, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, git: git, logger: logger}
}

// ProbeBranch checks one side of a review against the repository: it updates
// the branch-existence flag and, when the live head differs from the stored
// SHA, records it as a pending change. The stored SHA is never mutated here.
func (e *Engine) ProbeBranch(ctx context.Context, reviewID string, side core.RefreshSide) (*core.Review, error) {
	review, err := e.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	status := currentStatus(review)
	if err := e.probeSide(ctx, review, side, &status); err != nil {
		return nil, err
	}

	if err := e.store.UpdateBranchStatus(ctx, review.ID, status); err != nil {
		return nil, err
	}
	return e.store.GetReview(ctx, review.ID)
}

// ProbeReview probes both sides of a review in one pass.
func (e *Engine) ProbeReview(ctx context.Context, reviewID string) (*core.Review, error) {
	review, err := e.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	status := currentStatus(review)
	for _, side := range []core.RefreshSide{core.SideBase, core.SideTarget} {
		if err := e.probeSide(ctx, review, side, &status); err != nil {
			return nil, err
		}
	}

	if err := e.store.UpdateBranchStatus(ctx, review.ID, status); err != nil {
		return nil, err
	}
	return e.store.GetReview(ctx, review.ID)
}

// ProbeAll sweeps every review. Failures on individual reviews are logged and
// skipped so one broken review cannot stall the sweep.
func (e *Engine) ProbeAll(ctx context.Context) error {
	reviews, err := e.store.ListReviews(ctx)
	if err != nil {
		return err
	}
	for _, review := range reviews {
		if _, err := e.ProbeReview(ctx, review.ID); err != nil {
			e.logger.Error("branch status probe failed", "review_id", review.ID, "error", err)
		}
	}
	return nil
}

// ApplyRefresh accepts the pending head change of one side: viewed markers
// for every file that differs between the old and the new head are removed
// (changed files must be re-reviewed), then the pending SHA becomes the
// stored SHA. Requires a pending change and a live branch; calling it again
// without new drift fails with core.ErrInvalidState.
func (e *Engine) ApplyRefresh(ctx context.Context, reviewID string, side core.RefreshSide) (*core.Review, error) {
	review, err := e.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	pending := review.PendingSHA(side)
	if pending == nil {
		return nil, fmt.Errorf("no pending %s head change for review %s: %w", side, reviewID, core.ErrInvalidState)
	}

	branch := review.Branch(side)
	if _, err := e.git.BranchSHA(ctx, branch); err != nil {
		if errors.Is(err, core.ErrBranchNotFound) {
			return nil, fmt.Errorf("branch %q no longer exists: %w", branch, core.ErrInvalidState)
		}
		return nil, err
	}

	if old := review.StoredSHA(side); old != nil {
		changed, err := e.git.ChangedFiles(ctx, *old, *pending)
		if err != nil {
			return nil, fmt.Errorf("failed to compute changed files for refresh: %w", err)
		}
		removed, err := e.store.DeleteFileViews(ctx, review.ID, changed)
		if err != nil {
			return nil, err
		}
		e.logger.Info("invalidated viewed files",
			"review_id", review.ID,
			"side", side,
			"changed_files", len(changed),
			"invalidated", removed,
		)
	}

	if err := e.store.AcceptRefresh(ctx, review.ID, side, *pending); err != nil {
		return nil, err
	}
	return e.store.GetReview(ctx, review.ID)
}

// RefreshResult reports the outcome of one side of a multi-side refresh.
type RefreshResult struct {
	Side core.RefreshSide
	Err  error
}

// ApplyRefreshSides refreshes the given sides independently. The operation is
// atomic per side: one side failing does not roll back the other, and each
// failure is reported individually.
func (e *Engine) ApplyRefreshSides(ctx context.Context, reviewID string, sides []core.RefreshSide) []RefreshResult {
	results := make([]RefreshResult, 0, len(sides))
	for _, side := range sides {
		_, err := e.ApplyRefresh(ctx, reviewID, side)
		results = append(results, RefreshResult{Side: side, Err: err})
	}
	return results
}

// IsRebase reports whether moving from oldSHA to newSHA rewrote history:
// true when newSHA is not a descendant of oldSHA. A branch that was deleted
// and recreated at an unrelated SHA cannot be resolved against the old head
// and is classified as a rebase, which selects the stronger warning.
func (e *Engine) IsRebase(ctx context.Context, oldSHA, newSHA string) (bool, error) {
	ok, err := e.git.IsAncestor(ctx, oldSHA, newSHA)
	if err != nil {
		e.logger.Warn("ancestry check failed, treating as rebase",
			"old_sha", oldSHA, "new_sha", newSHA, "error", err)
		return true, nil
	}
	return !ok, nil
}

// Duplicate creates a new review bound to the current heads of the same
// branch pair, copying all comments. No file is marked viewed in the new
// review, even where contents are unchanged.
func (e *Engine) Duplicate(ctx context.Context, reviewID string) (*core.Review, error) {
	src, err := e.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	baseSHA, err := e.git.BranchSHA(ctx, src.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base branch %q: %w", src.BaseBranch, err)
	}
	targetSHA, err := e.git.BranchSHA(ctx, src.TargetBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target branch %q: %w", src.TargetBranch, err)
	}

	exists := true
	dup := core.NewReview(src.BaseBranch, src.TargetBranch)
	dup.BaseSHA = &baseSHA
	dup.TargetSHA = &targetSHA
	dup.BaseBranchExists = &exists
	dup.TargetBranchExists = &exists

	if err := e.store.CreateReview(ctx, dup); err != nil {
		return nil, err
	}
	if err := e.store.CopyComments(ctx, src.ID, dup.ID); err != nil {
		return nil, err
	}

	e.logger.Info("duplicated review from current heads",
		"source_id", src.ID, "review_id", dup.ID,
		"base_sha", baseSHA, "target_sha", targetSHA,
	)
	return dup, nil
}

// probeSide fills the status fields of one side from the live repository.
func (e *Engine) probeSide(ctx context.Context, review *core.Review, side core.RefreshSide, status *core.BranchStatus) error {
	sha, err := e.git.BranchSHA(ctx, review.Branch(side))
	exists := err == nil
	if err != nil && !errors.Is(err, core.ErrBranchNotFound) {
		return err
	}

	var changed *string
	if exists {
		if stored := review.StoredSHA(side); stored != nil && *stored != sha {
			changed = &sha
		}
	}

	if side == core.SideBase {
		status.BaseExists = &exists
		status.BaseSHAChanged = changed
	} else {
		status.TargetExists = &exists
		status.TargetSHAChanged = changed
	}
	return nil
}

// currentStatus snapshots a review's status columns so a one-sided probe
// preserves the other side.
func currentStatus(review *core.Review) core.BranchStatus {
	return core.BranchStatus{
		BaseSHAChanged:   review.BaseSHAChanged,
		TargetSHAChanged: review.TargetSHAChanged,
		BaseExists:       review.BaseBranchExists,
		TargetExists:     review.TargetBranchExists,
	}
}
