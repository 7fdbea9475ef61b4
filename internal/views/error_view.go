package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/event"
)

// ErrorView shows a failure message as a dismissible modal. The loop keeps
// running underneath; nothing crashes on an operational error.
type ErrorView struct {
	styles  styles
	message string
}

// NewErrorView creates the error modal.
func NewErrorView(message string) *ErrorView {
	return &ErrorView{styles: defaultStyles(), message: message}
}

func (v *ErrorView) Type() Type { return TypeError }

func (v *ErrorView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{{Key: "any", Description: "dismiss"}}
}

func (v *ErrorView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	bus.PublishApp(event.ViewCloseRequested{})
}

func (v *ErrorView) HandleApp(ev event.AppEvent, bus event.Publisher) {}

func (v *ErrorView) Render(width, height int) string {
	var b strings.Builder
	b.WriteString(v.styles.error.Render("Error"))
	b.WriteString("\n\n")
	b.WriteString(v.message)
	b.WriteString("\n\n")
	b.WriteString(v.styles.footer.Render("press any key to dismiss"))
	return centered(width, height, v.styles.modal.Render(b.String()))
}
