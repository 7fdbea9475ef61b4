package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// CommentService owns comment creation, loading and resolution. Comments are
// never deleted individually; resolving is the only terminal state.
type CommentService struct {
	store  core.Store
	bus    event.Publisher
	logger *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(store core.Store, bus event.Publisher, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, bus: bus, logger: logger}
}

func (s *CommentService) Handles(ev event.AppEvent) bool {
	switch ev.(type) {
	case event.CommentsLoad, event.CommentCreate, event.CommentResolve, event.CommentResolveAll:
		return true
	}
	return false
}

func (s *CommentService) Handle(ctx context.Context, ev event.AppEvent) error {
	switch ev := ev.(type) {
	case event.CommentsLoad:
		s.loadComments(ctx, ev.ReviewID, ev.FilePath)
	case event.CommentCreate:
		s.createComment(ctx, ev)
	case event.CommentResolve:
		s.resolveComment(ctx, ev)
	case event.CommentResolveAll:
		s.resolveAll(ctx, ev)
	}
	return nil
}

func (s *CommentService) loadComments(ctx context.Context, reviewID, filePath string) {
	s.bus.PublishApp(event.CommentsLoadingState{
		ReviewID: reviewID,
		FilePath: filePath,
		State:    event.CommentsState{Phase: event.PhaseLoading},
	})

	go func() {
		var (
			comments []*core.Comment
			err      error
		)
		if filePath == "" {
			comments, err = s.store.ListComments(ctx, reviewID)
		} else {
			comments, err = s.store.ListFileComments(ctx, reviewID, filePath)
		}
		if err != nil {
			s.logger.Error("failed to load comments", "review_id", reviewID, "error", err)
			s.bus.PublishApp(event.CommentsLoadingState{
				ReviewID: reviewID,
				FilePath: filePath,
				State:    event.CommentsState{Phase: event.PhaseError, Err: err.Error()},
			})
			return
		}
		s.bus.PublishApp(event.CommentsLoadingState{
			ReviewID: reviewID,
			FilePath: filePath,
			State:    event.CommentsState{Phase: event.PhaseLoaded, Comments: comments},
		})
	}()
}

func (s *CommentService) createComment(ctx context.Context, ev event.CommentCreate) {
	if strings.TrimSpace(ev.Content) == "" {
		s.bus.PublishApp(event.CommentCreateFailed{Message: "comment must not be empty"})
		return
	}

	go func() {
		comment := core.NewComment(ev.ReviewID, ev.FilePath, ev.LineNumber, strings.TrimSpace(ev.Content))
		if err := s.store.CreateComment(ctx, comment); err != nil {
			s.logger.Error("failed to create comment", "review_id", ev.ReviewID, "error", err)
			s.bus.PublishApp(event.CommentCreateFailed{Message: "failed to save comment: " + err.Error()})
			return
		}
		s.bus.PublishApp(event.CommentCreated{Comment: comment})
		s.bus.PublishApp(event.CommentsLoad{ReviewID: ev.ReviewID, FilePath: ev.FilePath})
	}()
}

func (s *CommentService) resolveComment(ctx context.Context, ev event.CommentResolve) {
	go func() {
		if err := s.store.ResolveComment(ctx, ev.CommentID); err != nil {
			s.logger.Error("failed to resolve comment", "comment_id", ev.CommentID, "error", err)
			s.bus.PublishApp(event.ErrorOccurred{Message: "failed to resolve comment: " + err.Error()})
			return
		}
		s.bus.PublishApp(event.CommentsLoad{ReviewID: ev.ReviewID, FilePath: ev.FilePath})
	}()
}

func (s *CommentService) resolveAll(ctx context.Context, ev event.CommentResolveAll) {
	go func() {
		var err error
		if ev.FilePath == "" {
			err = s.store.ResolveAllComments(ctx, ev.ReviewID)
		} else {
			err = s.store.ResolveAllFileComments(ctx, ev.ReviewID, ev.FilePath)
		}
		if err != nil {
			s.logger.Error("failed to resolve comments", "review_id", ev.ReviewID, "error", err)
			s.bus.PublishApp(event.ErrorOccurred{Message: "failed to resolve comments: " + err.Error()})
			return
		}
		s.bus.PublishApp(event.CommentsLoad{ReviewID: ev.ReviewID, FilePath: ev.FilePath})
	}()
}
