package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// ReviewService owns the review lifecycle: listing, creation, deletion,
// duplication and single-review loads.
type ReviewService struct {
	store  core.Store
	git    core.Git
	bus    event.Publisher
	logger *slog.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(store core.Store, git core.Git, bus event.Publisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, git: git, bus: bus, logger: logger}
}

func (s *ReviewService) Handles(ev event.AppEvent) bool {
	switch ev.(type) {
	case event.ReviewsLoad, event.ReviewCreateSubmit, event.ReviewDelete, event.ReviewLoad:
		return true
	}
	return false
}

func (s *ReviewService) Handle(ctx context.Context, ev event.AppEvent) error {
	switch ev := ev.(type) {
	case event.ReviewsLoad:
		s.loadReviews(ctx)
	case event.ReviewCreateSubmit:
		s.createReview(ctx, ev.Data)
	case event.ReviewDelete:
		s.deleteReview(ctx, ev.ReviewID)
	case event.ReviewLoad:
		s.loadReview(ctx, ev.ReviewID)
	}
	return nil
}

func (s *ReviewService) loadReviews(ctx context.Context) {
	s.bus.PublishApp(event.ReviewsLoadingState{State: event.ReviewsState{Phase: event.PhaseLoading}})

	go func() {
		reviews, err := s.store.ListReviews(ctx)
		if err != nil {
			s.logger.Error("failed to list reviews", "error", err)
			s.bus.PublishApp(event.ReviewsLoadingState{State: event.ReviewsState{
				Phase: event.PhaseError,
				Err:   err.Error(),
			}})
			return
		}
		s.bus.PublishApp(event.ReviewsLoadingState{State: event.ReviewsState{
			Phase:   event.PhaseLoaded,
			Reviews: reviews,
		}})
	}()
}

func (s *ReviewService) createReview(ctx context.Context, data *event.ReviewCreateData) {
	if data == nil {
		s.bus.PublishApp(event.ReviewCreateFailed{Message: "no form data submitted"})
		return
	}
	base, target, err := validateReviewCreate(data)
	if err != nil {
		s.bus.PublishApp(event.ReviewCreateFailed{Message: err.Error()})
		return
	}

	go func() {
		review := core.NewReview(base, target)
		exists := true

		baseSHA, err := s.git.BranchSHA(ctx, base)
		if err != nil {
			s.bus.PublishApp(event.ReviewCreateFailed{Message: branchResolveMessage(base, err)})
			return
		}
		targetSHA, err := s.git.BranchSHA(ctx, target)
		if err != nil {
			s.bus.PublishApp(event.ReviewCreateFailed{Message: branchResolveMessage(target, err)})
			return
		}
		review.BaseSHA = &baseSHA
		review.TargetSHA = &targetSHA
		review.BaseBranchExists = &exists
		review.TargetBranchExists = &exists

		if err := s.store.CreateReview(ctx, review); err != nil {
			s.logger.Error("failed to create review", "error", err)
			s.bus.PublishApp(event.ReviewCreateFailed{Message: "failed to save review: " + err.Error()})
			return
		}

		s.logger.Info("created review", "review_id", review.ID, "title", review.Title())
		s.bus.PublishApp(event.ReviewCreated{Review: review})
		s.bus.PublishApp(event.ReviewsLoad{})
	}()
}

func (s *ReviewService) deleteReview(ctx context.Context, reviewID string) {
	go func() {
		if err := s.store.DeleteReview(ctx, reviewID); err != nil {
			s.logger.Error("failed to delete review", "review_id", reviewID, "error", err)
			s.bus.PublishApp(event.ReviewDeleteFailed{ReviewID: reviewID, Message: err.Error()})
			return
		}
		s.logger.Info("deleted review", "review_id", reviewID)
		s.bus.PublishApp(event.ReviewDeleted{ReviewID: reviewID})
		s.bus.PublishApp(event.ReviewsLoad{})
	}()
}

func (s *ReviewService) loadReview(ctx context.Context, reviewID string) {
	go func() {
		review, err := s.store.GetReview(ctx, reviewID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				s.bus.PublishApp(event.ReviewNotFound{ReviewID: reviewID})
				return
			}
			s.logger.Error("failed to load review", "review_id", reviewID, "error", err)
			s.bus.PublishApp(event.ErrorOccurred{Message: "failed to load review: " + err.Error()})
			return
		}
		s.bus.PublishApp(event.ReviewLoaded{Review: review})
	}()
}

// validateReviewCreate returns the trimmed branch names. The submitted payload
// is already published and must not be written back to.
func validateReviewCreate(data *event.ReviewCreateData) (base, target string, err error) {
	base = strings.TrimSpace(data.BaseBranch)
	target = strings.TrimSpace(data.TargetBranch)
	if base == "" {
		return "", "", &core.ValidationError{Field: "base branch", Msg: "must not be empty"}
	}
	if target == "" {
		return "", "", &core.ValidationError{Field: "target branch", Msg: "must not be empty"}
	}
	if base == target {
		return "", "", &core.ValidationError{Field: "target branch", Msg: "must differ from base branch"}
	}
	return base, target, nil
}

func branchResolveMessage(branch string, err error) string {
	if errors.Is(err, core.ErrBranchNotFound) {
		return fmt.Sprintf("branch %q not found", branch)
	}
	return fmt.Sprintf("failed to resolve branch %q: %v", branch, err)
}
