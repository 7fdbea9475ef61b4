package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/event"
)

// HelpView lists the keybindings of the view it covers. Any key dismisses it.
type HelpView struct {
	styles   styles
	bindings []event.KeyBinding
}

// NewHelpView creates the help modal for the given bindings.
func NewHelpView(bindings []event.KeyBinding) *HelpView {
	return &HelpView{styles: defaultStyles(), bindings: bindings}
}

func (v *HelpView) Type() Type { return TypeHelp }

func (v *HelpView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{{Key: "any", Description: "close"}}
}

func (v *HelpView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	bus.PublishApp(event.ViewCloseRequested{})
}

func (v *HelpView) HandleApp(ev event.AppEvent, bus event.Publisher) {}

func (v *HelpView) Render(width, height int) string {
	var b strings.Builder
	b.WriteString(v.styles.header.Render("Keys"))
	b.WriteString("\n\n")

	keyWidth := 0
	for _, kb := range v.bindings {
		if len(kb.Key) > keyWidth {
			keyWidth = len(kb.Key)
		}
	}
	for _, kb := range v.bindings {
		b.WriteString(fmt.Sprintf("%-*s  %s\n", keyWidth, kb.Key, v.styles.inactive.Render(kb.Description)))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.footer.Render("press any key to close"))

	return centered(width, height, v.styles.modal.Render(b.String()))
}
