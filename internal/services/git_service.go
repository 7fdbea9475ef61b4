package services

import (
	"context"
	"log/slog"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// GitService answers branch-list and diff loads against the repository.
type GitService struct {
	git    core.Git
	bus    event.Publisher
	logger *slog.Logger
}

// NewGitService creates a GitService.
func NewGitService(git core.Git, bus event.Publisher, logger *slog.Logger) *GitService {
	return &GitService{git: git, bus: bus, logger: logger}
}

func (s *GitService) Handles(ev event.AppEvent) bool {
	switch ev.(type) {
	case event.GitBranchesLoad, event.GitDiffLoad:
		return true
	}
	return false
}

func (s *GitService) Handle(ctx context.Context, ev event.AppEvent) error {
	switch ev := ev.(type) {
	case event.GitBranchesLoad:
		s.loadBranches(ctx)
	case event.GitDiffLoad:
		s.loadDiff(ctx, ev)
	}
	return nil
}

func (s *GitService) loadBranches(ctx context.Context) {
	s.bus.PublishApp(event.GitBranchesLoadingState{State: event.BranchesState{Phase: event.PhaseLoading}})

	go func() {
		branches, err := s.git.Branches(ctx)
		if err != nil {
			s.logger.Error("failed to list branches", "error", err)
			s.bus.PublishApp(event.GitBranchesLoadingState{State: event.BranchesState{
				Phase: event.PhaseError,
				Err:   err.Error(),
			}})
			return
		}
		s.bus.PublishApp(event.GitBranchesLoadingState{State: event.BranchesState{
			Phase:    event.PhaseLoaded,
			Branches: branches,
		}})
	}()
}

func (s *GitService) loadDiff(ctx context.Context, ev event.GitDiffLoad) {
	s.bus.PublishApp(event.GitDiffLoadingState{
		ReviewID: ev.ReviewID,
		State:    event.DiffState{Phase: event.PhaseLoading},
	})

	go func() {
		diff, err := s.git.Diff(ctx, ev.BaseSHA, ev.TargetSHA)
		if err != nil {
			s.logger.Error("failed to compute diff",
				"review_id", ev.ReviewID, "base_sha", ev.BaseSHA, "target_sha", ev.TargetSHA, "error", err)
			s.bus.PublishApp(event.GitDiffLoadingState{
				ReviewID: ev.ReviewID,
				State:    event.DiffState{Phase: event.PhaseError, Err: err.Error()},
			})
			return
		}
		s.bus.PublishApp(event.GitDiffLoadingState{
			ReviewID: ev.ReviewID,
			State:    event.DiffState{Phase: event.PhaseLoaded, Diff: diff},
		})
	}()
}
