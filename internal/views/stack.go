package views

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/event"
)

// Stack is the modal view stack. The bottom view is always present: Pop on a
// single-element stack is ignored, so there is no empty state to render.
// Mutations happen only between dispatch phases; handlers observe a stable
// stack.
type Stack struct {
	views []View
}

// NewStack creates a stack with root as its permanent bottom view.
func NewStack(root View) *Stack {
	return &Stack{views: []View{root}}
}

// Push puts v on top, giving it key focus.
func (s *Stack) Push(v View) {
	s.views = append(s.views, v)
}

// Pop removes the top view. The last remaining view is never removed.
func (s *Stack) Pop() {
	if len(s.views) <= 1 {
		return
	}
	s.views[len(s.views)-1] = nil
	s.views = s.views[:len(s.views)-1]
}

// Top returns the focused view.
func (s *Stack) Top() View {
	return s.views[len(s.views)-1]
}

// Len reports the stack depth.
func (s *Stack) Len() int {
	return len(s.views)
}

// RouteKey delivers a key press to the top view only.
func (s *Stack) RouteKey(msg tea.KeyMsg, bus event.Publisher) {
	s.Top().HandleKey(msg, bus)
}

// Broadcast delivers an application event to every view, top to bottom, so
// covered views keep their state current.
func (s *Stack) Broadcast(ev event.AppEvent, bus event.Publisher) {
	for i := len(s.views) - 1; i >= 0; i-- {
		s.views[i].HandleApp(ev, bus)
	}
}
