package services

import (
	"context"
	"log/slog"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
	"github.com/sevigo/gitreview/internal/syncer"
)

// SyncService drives the review sync engine: periodic branch probes, refresh
// acceptance and review duplication.
type SyncService struct {
	engine *syncer.Engine
	bus    event.Publisher
	logger *slog.Logger
}

// NewSyncService creates a SyncService.
func NewSyncService(engine *syncer.Engine, bus event.Publisher, logger *slog.Logger) *SyncService {
	return &SyncService{engine: engine, bus: bus, logger: logger}
}

func (s *SyncService) Handles(ev event.AppEvent) bool {
	switch ev.(type) {
	case event.BranchStatusCheck, event.RefreshOpen, event.RefreshApply, event.ReviewDuplicate:
		return true
	}
	return false
}

func (s *SyncService) Handle(ctx context.Context, ev event.AppEvent) error {
	switch ev := ev.(type) {
	case event.BranchStatusCheck:
		s.probeAll(ctx)
	case event.RefreshOpen:
		s.loadRefreshInfo(ctx, ev.ReviewID)
	case event.RefreshApply:
		s.applyRefresh(ctx, ev)
	case event.ReviewDuplicate:
		s.duplicate(ctx, ev.ReviewID)
	}
	return nil
}

func (s *SyncService) probeAll(ctx context.Context) {
	go func() {
		if err := s.engine.ProbeAll(ctx); err != nil {
			s.logger.Error("branch status sweep failed", "error", err)
			return
		}
		// Re-render the list so drift and missing-branch indicators update.
		s.bus.PublishApp(event.ReviewsLoad{})
	}()
}

// loadRefreshInfo classifies each pending head change so the chooser can warn
// about rewritten history before the user accepts.
func (s *SyncService) loadRefreshInfo(ctx context.Context, reviewID string) {
	go func() {
		review, err := s.engine.ProbeReview(ctx, reviewID)
		if err != nil {
			s.logger.Error("failed to probe review for refresh", "review_id", reviewID, "error", err)
			s.bus.PublishApp(event.ErrorOccurred{Message: "failed to check branches: " + err.Error()})
			return
		}

		var infos []event.RefreshInfo
		for _, side := range []core.RefreshSide{core.SideBase, core.SideTarget} {
			pending := review.PendingSHA(side)
			if pending == nil {
				continue
			}
			info := event.RefreshInfo{Side: side, NewSHA: *pending}
			if exists := review.BranchExists(side); exists != nil && !*exists {
				info.Missing = true
			}
			if old := review.StoredSHA(side); old != nil {
				info.OldSHA = *old
				rebase, err := s.engine.IsRebase(ctx, *old, *pending)
				if err == nil {
					info.Rebase = rebase
				}
			}
			infos = append(infos, info)
		}
		s.bus.PublishApp(event.RefreshInfoLoaded{ReviewID: reviewID, Infos: infos})
	}()
}

func (s *SyncService) applyRefresh(ctx context.Context, ev event.RefreshApply) {
	go func() {
		results := s.engine.ApplyRefreshSides(ctx, ev.ReviewID, ev.Sides)
		for _, res := range results {
			if res.Err != nil {
				s.logger.Error("refresh failed",
					"review_id", ev.ReviewID, "side", res.Side, "error", res.Err)
				s.bus.PublishApp(event.RefreshFailed{
					ReviewID: ev.ReviewID,
					Side:     res.Side,
					Message:  res.Err.Error(),
				})
				continue
			}
			s.bus.PublishApp(event.RefreshApplied{ReviewID: ev.ReviewID, Side: res.Side})
		}
		// Reload so the details view picks up new SHAs and surviving markers.
		s.bus.PublishApp(event.ReviewLoad{ReviewID: ev.ReviewID})
		s.bus.PublishApp(event.FileViewsLoad{ReviewID: ev.ReviewID})
	}()
}

func (s *SyncService) duplicate(ctx context.Context, reviewID string) {
	go func() {
		dup, err := s.engine.Duplicate(ctx, reviewID)
		if err != nil {
			s.logger.Error("failed to duplicate review", "review_id", reviewID, "error", err)
			s.bus.PublishApp(event.ErrorOccurred{Message: "failed to duplicate review: " + err.Error()})
			return
		}
		s.bus.PublishApp(event.ReviewDuplicated{Review: dup})
		s.bus.PublishApp(event.ReviewsLoad{})
	}()
}
