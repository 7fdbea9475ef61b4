// Package views implements the modal view stack and the view variants of the
// terminal UI. Views are pure presenters: they translate key presses into
// application events and update their local state from broadcast events; they
// never call collaborators directly.
package views

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/event"
)

// Type identifies a view variant on the stack.
type Type int

const (
	TypeMain Type = iota
	TypeReviewCreate
	TypeReviewDetails
	TypeComments
	TypeRefresh
	TypeConfirm
	TypeHelp
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeMain:
		return "main"
	case TypeReviewCreate:
		return "review-create"
	case TypeReviewDetails:
		return "review-details"
	case TypeComments:
		return "comments"
	case TypeRefresh:
		return "refresh"
	case TypeConfirm:
		return "confirm"
	case TypeHelp:
		return "help"
	case TypeError:
		return "error"
	}
	return "unknown"
}

// View is one layer of the modal stack. Key input reaches only the top view;
// application events are broadcast to every view so background layers stay
// current while covered.
type View interface {
	Type() Type
	// HandleKey reacts to a key press. Only called on the top view.
	HandleKey(msg tea.KeyMsg, bus event.Publisher)
	// HandleApp updates local state from an application event.
	HandleApp(ev event.AppEvent, bus event.Publisher)
	// Render draws the view into the given terminal size.
	Render(width, height int) string
	// Keybindings lists the keys the view answers to, for the help modal.
	Keybindings() []event.KeyBinding
}
