package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/event"
)

// CreateView is the modal for starting a new review: two branch fields with
// the local branch list for reference.
type CreateView struct {
	styles   styles
	base     textinput.Model
	target   textinput.Model
	focused  int
	branches event.BranchesState
	errMsg   string
}

// NewCreateView creates the review-create modal with the base field focused.
func NewCreateView() *CreateView {
	base := textinput.New()
	base.Placeholder = "base branch (e.g. main)"
	base.CharLimit = 200
	base.Focus()

	target := textinput.New()
	target.Placeholder = "target branch"
	target.CharLimit = 200

	return &CreateView{styles: defaultStyles(), base: base, target: target}
}

func (v *CreateView) Type() Type { return TypeReviewCreate }

func (v *CreateView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{
		{Key: "tab", Description: "next field"},
		{Key: "enter", Description: "create review"},
		{Key: "esc", Description: "cancel"},
	}
}

func (v *CreateView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	switch msg.Type {
	case tea.KeyEsc:
		bus.PublishApp(event.ViewCloseRequested{})
		return
	case tea.KeyTab, tea.KeyShiftTab:
		v.focused = (v.focused + 1) % 2
		if v.focused == 0 {
			v.base.Focus()
			v.target.Blur()
		} else {
			v.base.Blur()
			v.target.Focus()
		}
		return
	case tea.KeyEnter:
		v.errMsg = ""
		bus.PublishApp(event.ReviewCreateSubmit{Data: &event.ReviewCreateData{
			BaseBranch:   v.base.Value(),
			TargetBranch: v.target.Value(),
		}})
		return
	}

	if v.focused == 0 {
		v.base, _ = v.base.Update(msg)
	} else {
		v.target, _ = v.target.Update(msg)
	}
}

func (v *CreateView) HandleApp(ev event.AppEvent, bus event.Publisher) {
	switch ev := ev.(type) {
	case event.GitBranchesLoadingState:
		v.branches = ev.State
	case event.ReviewCreateFailed:
		v.errMsg = ev.Message
	case event.ReviewCreated:
		// The global phase pops this modal on the close request.
		bus.PublishApp(event.ViewCloseRequested{})
	}
}

func (v *CreateView) Render(width, height int) string {
	var b strings.Builder
	b.WriteString(v.styles.header.Render("New review"))
	b.WriteString("\n\n")
	b.WriteString("Base:   " + v.base.View() + "\n")
	b.WriteString("Target: " + v.target.View() + "\n")

	b.WriteString("\n")
	switch v.branches.Phase {
	case event.PhaseLoading:
		b.WriteString(v.styles.inactive.Render("loading branches..."))
	case event.PhaseError:
		b.WriteString(v.styles.error.Render("branches unavailable: " + v.branches.Err))
	case event.PhaseLoaded:
		b.WriteString(v.styles.inactive.Render("local branches: " + strings.Join(v.branches.Branches, ", ")))
	}

	if v.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.error.Render(v.errMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.footer.Render("tab switch field · enter create · esc cancel"))

	return centered(width, height, v.styles.modal.Render(b.String()))
}
