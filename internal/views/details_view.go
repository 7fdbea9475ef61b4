package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// DetailsView shows one review: its branch pair, the changed-file list with
// viewed and comment markers, and the diff of the selected file. Enter
// switches between file navigation and line navigation; in line mode the
// comment key targets the selected patch line.
type DetailsView struct {
	styles     styles
	reviewID   string
	review     *core.Review
	diff       event.DiffState
	viewed     map[string]bool
	comments   map[string]int
	cursor     int
	lineMode   bool
	lineCursor int
	message    string
}

// NewDetailsView creates a details view for the given review id. Content
// arrives through broadcast load events.
func NewDetailsView(reviewID string) *DetailsView {
	return &DetailsView{
		styles:   defaultStyles(),
		reviewID: reviewID,
		viewed:   make(map[string]bool),
		comments: make(map[string]int),
	}
}

func (v *DetailsView) Type() Type { return TypeReviewDetails }

func (v *DetailsView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{
		{Key: "j/k", Description: "move selection"},
		{Key: "enter", Description: "switch file/line navigation"},
		{Key: "v", Description: "toggle viewed"},
		{Key: "c", Description: "comments for file or line"},
		{Key: "r", Description: "refresh branches"},
		{Key: "?", Description: "help"},
		{Key: "esc", Description: "back"},
	}
}

func (v *DetailsView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	v.message = ""
	switch msg.String() {
	case "esc":
		// Line mode falls back to file navigation; only file mode closes.
		if v.lineMode {
			v.lineMode = false
			return
		}
		bus.PublishApp(event.ViewCloseRequested{})
	case "enter":
		if len(v.files()) > 0 {
			v.lineMode = !v.lineMode
			v.lineCursor = 0
		}
	case "j", "down":
		if v.lineMode {
			if v.lineCursor < len(v.patchLines())-1 {
				v.lineCursor++
			}
			return
		}
		if v.cursor < len(v.files())-1 {
			v.cursor++
			v.lineCursor = 0
		}
	case "k", "up":
		if v.lineMode {
			if v.lineCursor > 0 {
				v.lineCursor--
			}
			return
		}
		if v.cursor > 0 {
			v.cursor--
			v.lineCursor = 0
		}
	case "v":
		if f := v.selectedFile(); f != "" {
			bus.PublishApp(event.FileViewToggle{ReviewID: v.reviewID, FilePath: f})
		}
	case "c":
		if f := v.selectedFile(); f != "" {
			open := event.CommentsOpen{ReviewID: v.reviewID, FilePath: f}
			if v.lineMode {
				line := v.lineCursor + 1
				open.LineNumber = &line
			}
			bus.PublishApp(open)
		}
	case "r":
		if v.review != nil && v.review.HasDrift() {
			bus.PublishApp(event.RefreshOpen{ReviewID: v.reviewID})
		} else {
			v.message = "branches are up to date"
		}
	case "?":
		bus.PublishApp(event.HelpOpen{Bindings: v.Keybindings()})
	}
}

func (v *DetailsView) HandleApp(ev event.AppEvent, bus event.Publisher) {
	switch ev := ev.(type) {
	case event.ReviewLoaded:
		if ev.Review.ID != v.reviewID {
			return
		}
		v.review = ev.Review
		if v.review.BaseSHA != nil && v.review.TargetSHA != nil {
			bus.PublishApp(event.GitDiffLoad{
				ReviewID:  v.reviewID,
				BaseSHA:   *v.review.BaseSHA,
				TargetSHA: *v.review.TargetSHA,
			})
		}
	case event.ReviewNotFound:
		if ev.ReviewID == v.reviewID {
			bus.PublishApp(event.ViewCloseRequested{})
		}
	case event.GitDiffLoadingState:
		if ev.ReviewID != v.reviewID {
			return
		}
		v.diff = ev.State
		if v.cursor >= len(v.files()) {
			v.cursor = max(0, len(v.files())-1)
		}
		if v.lineCursor >= len(v.patchLines()) {
			v.lineCursor = max(0, len(v.patchLines())-1)
		}
	case event.FileViewsLoaded:
		if ev.ReviewID != v.reviewID {
			return
		}
		v.viewed = make(map[string]bool, len(ev.Records))
		for _, rec := range ev.Records {
			v.viewed[rec.FilePath] = true
		}
	case event.CommentsLoadingState:
		// File-scoped loads belong to the comments modal; only the
		// review-wide list feeds the per-file markers.
		if ev.ReviewID != v.reviewID || ev.FilePath != "" || ev.State.Phase != event.PhaseLoaded {
			return
		}
		v.comments = make(map[string]int)
		for _, c := range ev.State.Comments {
			if !c.Resolved {
				v.comments[c.FilePath]++
			}
		}
	case event.RefreshApplied:
		if ev.ReviewID == v.reviewID {
			v.message = fmt.Sprintf("%s branch refreshed", ev.Side)
		}
	}
}

func (v *DetailsView) Render(width, height int) string {
	var b strings.Builder

	title := "Review"
	if v.review != nil {
		title = v.review.Title()
	}
	b.WriteString(v.styles.title.Render(title))
	b.WriteString("\n")

	if v.review != nil {
		b.WriteString(v.renderStatus())
		b.WriteString("\n")
	}

	switch v.diff.Phase {
	case event.PhaseInit, event.PhaseLoading:
		b.WriteString(v.styles.inactive.Render("loading diff..."))
	case event.PhaseError:
		b.WriteString(v.styles.error.Render("diff unavailable: " + v.diff.Err))
	case event.PhaseLoaded:
		b.WriteString(v.renderFiles())
		b.WriteString("\n")
		b.WriteString(v.renderPatch(width, height))
	}

	if v.message != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.success.Render(v.message))
	}
	footer := "j/k move · enter lines · v viewed · c comments · r refresh · esc back"
	if v.lineMode {
		footer = "j/k move line · c comment on line · enter/esc files"
	}
	b.WriteString("\n")
	b.WriteString(v.styles.footer.Render(footer))

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func (v *DetailsView) renderStatus() string {
	var parts []string
	if v.review.HasDrift() {
		parts = append(parts, v.styles.warning.Render("⟳ branches moved, press r to refresh"))
	}
	if missing := missingBranch(v.review); missing != "" {
		parts = append(parts, v.styles.error.Render("✗ branch "+missing+" no longer exists"))
	}
	if len(parts) == 0 {
		return v.styles.inactive.Render("up to date")
	}
	return strings.Join(parts, "  ")
}

func (v *DetailsView) renderFiles() string {
	files := v.files()
	if len(files) == 0 {
		return v.styles.inactive.Render("no changes between these branches")
	}

	var b strings.Builder
	for i, f := range files {
		marker := "  "
		if v.viewed[f.Path] {
			marker = v.styles.viewed.Render("✓ ")
		}
		line := marker + f.Path
		if n := v.comments[f.Path]; n > 0 {
			line += v.styles.warning.Render(fmt.Sprintf(" ⚑%d", n))
		}
		if i == v.cursor {
			line = v.styles.selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(files)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderPatch shows the selected file's patch, truncated to the remaining
// screen estate. In line mode the window follows the selected line and the
// line is highlighted.
func (v *DetailsView) renderPatch(width, height int) string {
	lines := v.patchLines()
	if len(lines) == 0 {
		return ""
	}
	budget := height - len(v.files()) - 8
	if budget < 3 {
		budget = 3
	}

	start := 0
	if v.lineMode && v.lineCursor >= budget {
		start = v.lineCursor - budget + 1
	}
	end := start + budget

	var out []string
	for i := start; i < end && i < len(lines); i++ {
		line := lines[i]
		if v.lineMode && i == v.lineCursor {
			line = v.styles.selected.Render("▸ " + line)
		}
		out = append(out, line)
	}
	if end < len(lines) {
		out = append(out, v.styles.inactive.Render("..."))
	}
	return strings.Join(out, "\n")
}

// patchLines returns the lines of the selected file's patch.
func (v *DetailsView) patchLines() []string {
	files := v.files()
	if len(files) == 0 || v.cursor >= len(files) {
		return nil
	}
	patch := files[v.cursor].Patch
	if patch == "" {
		return nil
	}
	return strings.Split(patch, "\n")
}

func (v *DetailsView) files() []core.DiffFile {
	if v.diff.Diff == nil {
		return nil
	}
	return v.diff.Diff.Files
}

func (v *DetailsView) selectedFile() string {
	files := v.files()
	if len(files) == 0 || v.cursor >= len(files) {
		return ""
	}
	return files[v.cursor].Path
}
