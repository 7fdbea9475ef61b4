package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/gitreview/internal/event"
	"github.com/sevigo/gitreview/internal/services"
	"github.com/sevigo/gitreview/internal/views"
)

// Dispatcher runs the three-phase handling of a single event: services first,
// then views, then the global handlers. The phases always run in this order
// and the view stack is only mutated in the global phase, so service and view
// handlers observe a stable stack for the whole event.
type Dispatcher struct {
	bus      *event.Bus
	stack    *views.Stack
	services []services.Service
	logger   *slog.Logger
	quit     bool
}

// NewDispatcher creates a dispatcher over the given stack and service list.
func NewDispatcher(bus *event.Bus, stack *views.Stack, svcs []services.Service, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{bus: bus, stack: stack, services: svcs, logger: logger}
}

// DispatchNext blocks for the next event and runs it through all three
// phases. It returns true when the application should exit.
func (d *Dispatcher) DispatchNext(ctx context.Context) (bool, error) {
	ev, err := d.bus.Next(ctx)
	if err != nil {
		return false, err
	}
	d.Dispatch(ctx, ev)
	return d.quit, nil
}

// Dispatch runs one event through the three phases.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *event.Event) {
	d.runPhase("services", func() {
		d.servicePhase(ctx, ev)
	})
	d.runPhase("views", func() {
		d.viewPhase(ev)
	})
	// Global handlers do not panic-protect: a failure here is a programming
	// error in the loop itself, not in a handler.
	d.globalPhase(ev)
}

// runPhase recovers a panicking handler, surfaces it as an error event and
// lets the loop continue with the next phase.
func (d *Dispatcher) runPhase(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in dispatch phase", "phase", name, "panic", r)
			d.bus.PublishApp(event.ErrorOccurred{Message: fmt.Sprintf("internal error in %s: %v", name, r)})
		}
	}()
	fn()
}

func (d *Dispatcher) servicePhase(ctx context.Context, ev *event.Event) {
	if ev.Kind != event.KindApp {
		return
	}
	for _, svc := range d.services {
		if !svc.Handles(ev.App) {
			continue
		}
		if err := svc.Handle(ctx, ev.App); err != nil {
			d.logger.Error("service handler failed", "event", fmt.Sprintf("%T", ev.App), "error", err)
			d.bus.PublishApp(event.ErrorOccurred{Message: err.Error()})
		}
	}
}

func (d *Dispatcher) viewPhase(ev *event.Event) {
	switch ev.Kind {
	case event.KindKey:
		d.stack.RouteKey(ev.Key, d.bus)
	case event.KindApp:
		d.stack.Broadcast(ev.App, d.bus)
	}
}

// globalPhase owns quitting and every stack mutation. Open events push the
// matching view and kick off its initial loads.
func (d *Dispatcher) globalPhase(ev *event.Event) {
	if ev.Kind != event.KindApp {
		return
	}

	switch ev := ev.App.(type) {
	case event.QuitRequested:
		d.quit = true

	case event.ViewCloseRequested:
		d.stack.Pop()

	case event.ReviewCreateOpen:
		d.stack.Push(views.NewCreateView())
		d.bus.PublishApp(event.GitBranchesLoad{})

	case event.ReviewDetailsOpen:
		d.stack.Push(views.NewDetailsView(ev.ReviewID))
		d.bus.PublishApp(event.ReviewLoad{ReviewID: ev.ReviewID})
		d.bus.PublishApp(event.FileViewsLoad{ReviewID: ev.ReviewID})
		d.bus.PublishApp(event.CommentsLoad{ReviewID: ev.ReviewID})

	case event.CommentsOpen:
		if ev.LineNumber != nil {
			d.stack.Push(views.NewCommentsViewForLine(ev.ReviewID, ev.FilePath, *ev.LineNumber))
		} else {
			d.stack.Push(views.NewCommentsView(ev.ReviewID, ev.FilePath))
		}
		d.bus.PublishApp(event.CommentsLoad{ReviewID: ev.ReviewID, FilePath: ev.FilePath})

	case event.RefreshOpen:
		// The sync service answers this same event with RefreshInfoLoaded.
		d.stack.Push(views.NewRefreshView(ev.ReviewID))

	case event.ReviewDeleteConfirm:
		d.stack.Push(views.NewConfirmView(
			"Delete this review?\nIts comments and viewed markers go with it.",
			event.ReviewDelete{ReviewID: ev.ReviewID},
		))

	case event.HelpOpen:
		d.stack.Push(views.NewHelpView(ev.Bindings))

	case event.ErrorOccurred:
		// Do not stack error modals on top of each other.
		if d.stack.Top().Type() != views.TypeError {
			d.stack.Push(views.NewErrorView(ev.Message))
		}
	}
}
