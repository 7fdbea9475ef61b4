package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// FileViewService owns the per-file viewed markers of a review.
type FileViewService struct {
	store  core.Store
	bus    event.Publisher
	logger *slog.Logger
}

// NewFileViewService creates a FileViewService.
func NewFileViewService(store core.Store, bus event.Publisher, logger *slog.Logger) *FileViewService {
	return &FileViewService{store: store, bus: bus, logger: logger}
}

func (s *FileViewService) Handles(ev event.AppEvent) bool {
	switch ev.(type) {
	case event.FileViewToggle, event.FileViewsLoad:
		return true
	}
	return false
}

func (s *FileViewService) Handle(ctx context.Context, ev event.AppEvent) error {
	switch ev := ev.(type) {
	case event.FileViewToggle:
		s.toggle(ctx, ev)
	case event.FileViewsLoad:
		s.load(ctx, ev.ReviewID)
	}
	return nil
}

func (s *FileViewService) toggle(ctx context.Context, ev event.FileViewToggle) {
	go func() {
		err := s.store.DeleteFileView(ctx, ev.ReviewID, ev.FilePath)
		if errors.Is(err, core.ErrNotFound) {
			err = s.store.CreateFileView(ctx, &core.FileViewRecord{
				ReviewID:  ev.ReviewID,
				FilePath:  ev.FilePath,
				CreatedAt: time.Now().UTC(),
			})
		}
		if err != nil {
			s.logger.Error("failed to toggle file view",
				"review_id", ev.ReviewID, "file_path", ev.FilePath, "error", err)
			s.bus.PublishApp(event.ErrorOccurred{Message: "failed to toggle viewed marker: " + err.Error()})
			return
		}
		s.bus.PublishApp(event.FileViewsLoad{ReviewID: ev.ReviewID})
	}()
}

func (s *FileViewService) load(ctx context.Context, reviewID string) {
	go func() {
		records, err := s.store.ListFileViews(ctx, reviewID)
		if err != nil {
			s.logger.Error("failed to load file views", "review_id", reviewID, "error", err)
			s.bus.PublishApp(event.ErrorOccurred{Message: "failed to load viewed markers: " + err.Error()})
			return
		}
		s.bus.PublishApp(event.FileViewsLoaded{ReviewID: reviewID, Records: records})
	}()
}
