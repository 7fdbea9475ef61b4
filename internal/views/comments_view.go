package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/core"
	"github.com/sevigo/gitreview/internal/event"
)

// CommentsView is the modal listing the comments of one file with an input
// line for new comments. With a line target only that line's comments are
// shown and new comments are anchored to it. Comments can be resolved but
// never deleted.
type CommentsView struct {
	styles     styles
	reviewID   string
	filePath   string
	lineNumber *int
	state      event.CommentsState
	cursor     int
	input      textinput.Model
	typing     bool
	errMsg     string
}

// NewCommentsView creates the comments modal for one file of a review.
func NewCommentsView(reviewID, filePath string) *CommentsView {
	input := textinput.New()
	input.Placeholder = "write a comment"
	input.CharLimit = 500

	return &CommentsView{
		styles:   defaultStyles(),
		reviewID: reviewID,
		filePath: filePath,
		input:    input,
	}
}

// NewCommentsViewForLine creates the comments modal for one line of a file.
func NewCommentsViewForLine(reviewID, filePath string, line int) *CommentsView {
	v := NewCommentsView(reviewID, filePath)
	v.lineNumber = &line
	return v
}

func (v *CommentsView) Type() Type { return TypeComments }

func (v *CommentsView) Keybindings() []event.KeyBinding {
	return []event.KeyBinding{
		{Key: "j/k", Description: "move selection"},
		{Key: "enter", Description: "new comment"},
		{Key: "r", Description: "resolve selected"},
		{Key: "R", Description: "resolve all"},
		{Key: "esc", Description: "back"},
	}
}

func (v *CommentsView) HandleKey(msg tea.KeyMsg, bus event.Publisher) {
	if v.typing {
		v.handleInputKey(msg, bus)
		return
	}

	switch msg.String() {
	case "esc":
		bus.PublishApp(event.ViewCloseRequested{})
	case "j", "down":
		if v.cursor < len(v.visible())-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "enter":
		v.typing = true
		v.errMsg = ""
		v.input.Focus()
	case "r":
		if c := v.selected(); c != nil && !c.Resolved {
			bus.PublishApp(event.CommentResolve{
				CommentID: c.ID,
				ReviewID:  v.reviewID,
				FilePath:  v.filePath,
			})
		}
	case "R":
		bus.PublishApp(event.CommentResolveAll{ReviewID: v.reviewID, FilePath: v.filePath})
	}
}

func (v *CommentsView) handleInputKey(msg tea.KeyMsg, bus event.Publisher) {
	switch msg.Type {
	case tea.KeyEsc:
		v.typing = false
		v.input.Blur()
		v.input.Reset()
	case tea.KeyEnter:
		bus.PublishApp(event.CommentCreate{
			ReviewID:   v.reviewID,
			FilePath:   v.filePath,
			LineNumber: v.lineNumber,
			Content:    v.input.Value(),
		})
		v.typing = false
		v.input.Blur()
		v.input.Reset()
	default:
		v.input, _ = v.input.Update(msg)
	}
}

func (v *CommentsView) HandleApp(ev event.AppEvent, bus event.Publisher) {
	switch ev := ev.(type) {
	case event.CommentsLoadingState:
		if ev.ReviewID != v.reviewID || ev.FilePath != v.filePath {
			return
		}
		v.state = ev.State
		if v.cursor >= len(v.visible()) {
			v.cursor = max(0, len(v.visible())-1)
		}
		// Keep the review-wide markers in the details view current.
		if ev.State.Phase == event.PhaseLoaded && v.filePath != "" {
			bus.PublishApp(event.CommentsLoad{ReviewID: v.reviewID})
		}
	case event.CommentCreateFailed:
		v.errMsg = ev.Message
	}
}

func (v *CommentsView) Render(width, height int) string {
	title := "Comments · " + v.filePath
	if v.lineNumber != nil {
		title = fmt.Sprintf("%s:L%d", title, *v.lineNumber)
	}

	var b strings.Builder
	b.WriteString(v.styles.header.Render(title))
	b.WriteString("\n\n")

	switch v.state.Phase {
	case event.PhaseInit, event.PhaseLoading:
		b.WriteString(v.styles.inactive.Render("loading comments..."))
	case event.PhaseError:
		b.WriteString(v.styles.error.Render("error: " + v.state.Err))
	case event.PhaseLoaded:
		if len(v.visible()) == 0 {
			b.WriteString(v.styles.inactive.Render("no comments yet, press enter to add one"))
		} else {
			for i, c := range v.visible() {
				line := c.Content
				if c.LineNumber != nil {
					line = fmt.Sprintf("L%d: %s", *c.LineNumber, line)
				}
				if c.Resolved {
					line = v.styles.resolved.Render(line)
				}
				if i == v.cursor {
					line = v.styles.selected.Render("▸ " + line)
				} else {
					line = "  " + line
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	if v.typing {
		b.WriteString("\n")
		b.WriteString(v.input.View())
	}
	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.error.Render(v.errMsg))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.footer.Render("enter comment · r resolve · R resolve all · esc back"))

	return centered(width, height, v.styles.modal.Render(b.String()))
}

func (v *CommentsView) selected() *core.Comment {
	visible := v.visible()
	if v.state.Phase != event.PhaseLoaded || len(visible) == 0 {
		return nil
	}
	return visible[v.cursor]
}

// visible returns the loaded comments restricted to the line target, or all
// of the file's comments when there is none.
func (v *CommentsView) visible() []*core.Comment {
	if v.lineNumber == nil {
		return v.state.Comments
	}
	var out []*core.Comment
	for _, c := range v.state.Comments {
		if c.LineNumber != nil && *c.LineNumber == *v.lineNumber {
			out = append(out, c)
		}
	}
	return out
}
