package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/event"
)

// ConfirmView is a yes/no dialog. Confirming publishes the wrapped event and
// closes the dialog; declining just closes it.
type ConfirmView struct {
	styles    styles
	message   string
	onConfirm event.AppEvent
}

// NewConfirmView creates a confirmation dialog that publishes onConfirm when
// the user accepts.
func NewConfirmView(message string, onConfirm event.AppEvent) *ConfirmView {
	return &ConfirmView{styles: defaultStyles(), message: message, onConfirm: onConfirm}
}

func (v *ConfirmView) Type() Type { return TypeConfirm }

func (v *ConfirmView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{
		{Key: "y/enter", Description: "confirm"},
		{Key: "n/esc", Description: "cancel"},
	}
}

func (v *ConfirmView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	switch msg.String() {
	case "y", "enter":
		bus.PublishApp(v.onConfirm)
		bus.PublishApp(event.ViewCloseRequested{})
	case "n", "esc":
		bus.PublishApp(event.ViewCloseRequested{})
	}
}

func (v *ConfirmView) HandleApp(ev event.AppEvent, bus event.Publisher) {}

func (v *ConfirmView) Render(width, height int) string {
	var b strings.Builder
	b.WriteString(v.message)
	b.WriteString("\n\n")
	b.WriteString(v.styles.footer.Render("y confirm · n cancel"))
	return centered(width, height, v.styles.modal.Render(b.String()))
}
