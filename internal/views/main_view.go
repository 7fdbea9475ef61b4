package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// MainView is the permanent bottom view: the list of reviews with drift and
// missing-branch indicators.
type MainView struct {
	styles  styles
	state   event.ReviewsState
	cursor  int
	message string
}

// NewMainView creates the review list view.
func NewMainView() *MainView {
	return &MainView{styles: defaultStyles()}
}

func (v *MainView) Type() Type { return TypeMain }

func (v *MainView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{
		{Key: "j/k", Description: "move selection"},
		{Key: "n", Description: "new review"},
		{Key: "enter", Description: "open review"},
		{Key: "d", Description: "delete review"},
		{Key: "r", Description: "refresh branches"},
		{Key: "c", Description: "duplicate at current heads"},
		{Key: "?", Description: "help"},
		{Key: "q", Description: "quit"},
	}
}

func (v *MainView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	v.message = ""
	switch msg.String() {
	case "q", "ctrl+c":
		bus.PublishApp(event.QuitRequested{})
	case "j", "down":
		if v.cursor < len(v.state.Reviews)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "n":
		bus.PublishApp(event.ReviewCreateOpen{})
	case "enter":
		if r := v.selected(); r != nil {
			bus.PublishApp(event.ReviewDetailsOpen{ReviewID: r.ID})
		}
	case "d":
		if r := v.selected(); r != nil {
			bus.PublishApp(event.ReviewDeleteConfirm{ReviewID: r.ID})
		}
	case "r":
		if r := v.selected(); r != nil {
			if !r.HasDrift() {
				v.message = "branches are up to date"
				return
			}
			bus.PublishApp(event.RefreshOpen{ReviewID: r.ID})
		}
	case "c":
		if r := v.selected(); r != nil {
			bus.PublishApp(event.ReviewDuplicate{ReviewID: r.ID})
		}
	case "?":
		bus.PublishApp(event.HelpOpen{Bindings: v.Keybindings()})
	}
}

func (v *MainView) HandleApp(ev event.AppEvent, bus event.Publisher) {
	switch ev := ev.(type) {
	case event.ReviewsLoadingState:
		v.state = ev.State
		if v.cursor >= len(v.state.Reviews) {
			v.cursor = max(0, len(v.state.Reviews)-1)
		}
	case event.ReviewDuplicated:
		v.message = "duplicated as " + ev.Review.Title()
	}
}

func (v *MainView) Render(width, height int) string {
	var b strings.Builder
	b.WriteString(v.styles.title.Render("Reviews"))
	b.WriteString("\n")

	switch v.state.Phase {
	case event.PhaseInit, event.PhaseLoading:
		b.WriteString(v.styles.inactive.Render("loading reviews..."))
	case event.PhaseError:
		b.WriteString(v.styles.error.Render("error: " + v.state.Err))
	case event.PhaseLoaded:
		if len(v.state.Reviews) == 0 {
			b.WriteString(v.styles.inactive.Render("no reviews yet, press n to create one"))
		} else {
			for i, r := range v.state.Reviews {
				b.WriteString(v.renderRow(i, r, width))
				b.WriteString("\n")
			}
		}
	}

	if v.message != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.warning.Render(v.message))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.footer.Render("n new · enter open · d delete · r refresh · c duplicate · ? help · q quit"))

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func (v *MainView) renderRow(i int, r *core.Review, width int) string {
	line := fmt.Sprintf("%s  %s", r.Title(), v.styles.inactive.Render(r.CreatedAt.Format("2006-01-02 15:04")))

	var badges []string
	if r.HasDrift() {
		badges = append(badges, v.styles.warning.Render("⟳ drift"))
	}
	if missing := missingBranch(r); missing != "" {
		badges = append(badges, v.styles.error.Render("✗ "+missing+" gone"))
	}
	if len(badges) > 0 {
		line += "  " + strings.Join(badges, " ")
	}

	if i == v.cursor {
		return v.styles.selected.Render("▸ " + line)
	}
	return "  " + line
}

func (v *MainView) selected() *core.Review {
	if v.state.Phase != event.PhaseLoaded || len(v.state.Reviews) == 0 {
		return nil
	}
	return v.state.Reviews[v.cursor]
}

// missingBranch names the first branch a probe reported as gone.
func missingBranch(r *core.Review) string {
	if e := r.BaseBranchExists; e != nil && !*e {
		return r.BaseBranch
	}
	if e := r.TargetBranchExists; e != nil && !*e {
		return r.TargetBranch
	}
	return ""
}
