package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// RefreshView is the chooser for accepting pending head changes. Each side
// can be toggled independently; sides with rewritten history carry a rebase
// warning because accepting them invalidates more viewed files than a plain
// fast-forward would.
type RefreshView struct {
	styles   styles
	reviewID string
	infos    []event.RefreshInfo
	checked  map[core.RefreshSide]bool
	cursor   int
	loaded   bool
	failures []string
}

// NewRefreshView creates the refresh chooser for one review.
func NewRefreshView(reviewID string) *RefreshView {
	return &RefreshView{
		styles:   defaultStyles(),
		reviewID: reviewID,
		checked:  make(map[core.RefreshSide]bool),
	}
}

func (v *RefreshView) Type() Type { return TypeRefresh }

func (v *RefreshView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{
		{Key: "j/k", Description: "move selection"},
		{Key: "space", Description: "toggle side"},
		{Key: "enter", Description: "apply refresh"},
		{Key: "esc", Description: "cancel"},
	}
}

func (v *RefreshView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	switch msg.String() {
	case "esc":
		bus.PublishApp(event.ViewCloseRequested{})
	case "j", "down":
		if v.cursor < len(v.infos)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case " ":
		if v.cursor < len(v.infos) {
			side := v.infos[v.cursor].Side
			v.checked[side] = !v.checked[side]
		}
	case "enter":
		sides := v.selectedSides()
		if len(sides) == 0 {
			return
		}
		v.failures = nil
		bus.PublishApp(event.RefreshApply{ReviewID: v.reviewID, Sides: sides})
	}
}

func (v *RefreshView) HandleApp(ev event.AppEvent, bus event.Publisher) {
	switch ev := ev.(type) {
	case event.RefreshInfoLoaded:
		if ev.ReviewID != v.reviewID {
			return
		}
		v.infos = ev.Infos
		v.loaded = true
		// Preselect every refreshable side.
		for _, info := range ev.Infos {
			if !info.Missing {
				v.checked[info.Side] = true
			}
		}
	case event.RefreshApplied:
		if ev.ReviewID == v.reviewID {
			delete(v.checked, ev.Side)
			v.removeInfo(ev.Side)
			if len(v.infos) == 0 && len(v.failures) == 0 {
				bus.PublishApp(event.ViewCloseRequested{})
			}
		}
	case event.RefreshFailed:
		if ev.ReviewID == v.reviewID {
			v.failures = append(v.failures, fmt.Sprintf("%s: %s", ev.Side, ev.Message))
		}
	}
}

func (v *RefreshView) Render(width, height int) string {
	var b strings.Builder
	b.WriteString(v.styles.header.Render("Refresh review"))
	b.WriteString("\n\n")

	switch {
	case !v.loaded:
		b.WriteString(v.styles.inactive.Render("checking branches..."))
	case len(v.infos) == 0:
		b.WriteString(v.styles.inactive.Render("nothing to refresh"))
	default:
		for i, info := range v.infos {
			b.WriteString(v.renderInfo(i, info))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.styles.warning.Render("viewed markers of changed files will be cleared"))
	}

	for _, failure := range v.failures {
		b.WriteString("\n")
		b.WriteString(v.styles.error.Render(failure))
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.footer.Render("space toggle · enter apply · esc cancel"))

	return centered(width, height, v.styles.modal.Render(b.String()))
}

func (v *RefreshView) renderInfo(i int, info event.RefreshInfo) string {
	check := "[ ]"
	if v.checked[info.Side] {
		check = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s → %s", check, info.Side, shortSHA(info.OldSHA), shortSHA(info.NewSHA))
	switch {
	case info.Missing:
		line += "  " + v.styles.error.Render("branch gone")
	case info.Rebase:
		line += "  " + v.styles.warning.Render("⚠ history rewritten")
	}
	if i == v.cursor {
		return v.styles.selected.Render("▸ " + line)
	}
	return "  " + line
}

func (v *RefreshView) selectedSides() []core.RefreshSide {
	var sides []core.RefreshSide
	for _, info := range v.infos {
		if v.checked[info.Side] && !info.Missing {
			sides = append(sides, info.Side)
		}
	}
	return sides
}

func (v *RefreshView) removeInfo(side core.RefreshSide) {
	for i, info := range v.infos {
		if info.Side == side {
			v.infos = append(v.infos[:i], v.infos[i+1:]...)
			break
		}
	}
	if v.cursor >= len(v.infos) {
		v.cursor = max(0, len(v.infos)-1)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	if sha == "" {
		return "none"
	}
	return sha
}
