// Package app assembles the application components and runs the event loop.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/sevigo/gitreview/internal/config"
	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
	"github.com/sevigo/gitreview/internal/services"
	"github.com/sevigo/gitreview/internal/syncer"
	"github.com/sevigo/gitreview/internal/views"
)

// App holds the assembled application: the bus, the dispatcher over the view
// stack and the background event sources.
type App struct {
	cfg        *config.Config
	bus        *event.Bus
	stack      *views.Stack
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewApp wires the event loop from already-constructed collaborators.
func NewApp(cfg *config.Config, store core.Store, git core.Git, engine *syncer.Engine, logger *slog.Logger) *App {
	bus := event.NewBus()
	stack := views.NewStack(views.NewMainView())

	svcs := []services.Service{
		services.NewReviewService(store, git, bus, logger),
		services.NewGitService(git, bus, logger),
		services.NewCommentService(store, bus, logger),
		services.NewFileViewService(store, bus, logger),
		services.NewSyncService(engine, bus, logger),
	}

	return &App{
		cfg:        cfg,
		bus:        bus,
		stack:      stack,
		dispatcher: NewDispatcher(bus, stack, svcs, logger),
		logger:     logger,
	}
}

// Bus exposes the event queue for the terminal bridge and event sources.
func (a *App) Bus() *event.Bus { return a.bus }

// Stack exposes the view stack for rendering.
func (a *App) Stack() *views.Stack { return a.stack }

// Run drives the dispatch loop until a quit event or context cancellation.
// onFrame is called after every handled event with the freshly rendered top
// view; width and height come from the terminal bridge.
func (a *App) Run(ctx context.Context, size func() (int, int), onFrame func(string)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.tickLoop(ctx)

	a.logger.Info("starting event loop",
		"tick_rate", a.cfg.TickRate,
		"branch_check_interval", a.cfg.BranchCheckInterval,
	)

	// Initial loads before the first key arrives.
	a.bus.PublishApp(event.ReviewsLoad{})
	a.bus.PublishApp(event.BranchStatusCheck{})

	for {
		quit, err := a.dispatcher.DispatchNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if quit {
			a.logger.Info("quit requested, stopping event loop")
			return nil
		}
		if onFrame != nil {
			w, h := size()
			onFrame(a.stack.Top().Render(w, h))
		}
	}
}

// tickLoop feeds timer events into the bus and rides the branch status sweep
// on top of them.
func (a *App) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.TickRate)
	defer ticker.Stop()

	lastCheck := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.bus.Publish(event.Tick())
			if now.Sub(lastCheck) >= a.cfg.BranchCheckInterval {
				lastCheck = now
				a.bus.PublishApp(event.BranchStatusCheck{})
			}
		}
	}
}
