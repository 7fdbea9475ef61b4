// Package services holds the business-logic handlers that run in the first
// dispatch phase. Each service inspects application events, performs its
// collaborator work and publishes follow-up events; it never touches view
// state directly.
package services

import (
	"context"

	"github.com/sevigo/gitreview/internal/event"
)

// Service is one business-logic handler. Handles is a cheap filter so the
// dispatch loop can skip services that do not care about an event; several
// services may react to the same event.
type Service interface {
	Handles(ev event.AppEvent) bool
	Handle(ctx context.Context, ev event.AppEvent) error
}
