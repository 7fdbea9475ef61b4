// Package tui bridges the event loop to the terminal. Bubble Tea owns the
// screen and the raw input; every key press is forwarded onto the bus and
// rendered frames come back through the program's message channel, so all
// application state stays on the dispatch goroutine.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/gitreview/internal/event"
)

// frameMsg carries a rendered frame from the dispatch loop to the terminal.
type frameMsg string

type model struct {
	bus event.Publisher

	mu     sync.Mutex
	width  int
	height int
	frame  string
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width, m.height = msg.Width, msg.Height
		m.mu.Unlock()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.bus.PublishApp(event.QuitRequested{})
			return m, nil
		}
		m.bus.Publish(event.Key(msg))
	case frameMsg:
		m.frame = string(msg)
	}
	return m, nil
}

func (m *model) View() string {
	return m.frame
}

func (m *model) size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.width == 0 {
		return 80, 24
	}
	return m.width, m.height
}

// Terminal wraps the Bubble Tea program for the dispatch loop.
type Terminal struct {
	model   *model
	program *tea.Program
}

// New creates the terminal bridge publishing input to bus.
func New(bus event.Publisher) *Terminal {
	m := &model{bus: bus}
	return &Terminal{
		model:   m,
		program: tea.NewProgram(m, tea.WithAltScreen()),
	}
}

// Run blocks until the program exits.
func (t *Terminal) Run() error {
	_, err := t.program.Run()
	return err
}

// SetFrame delivers a rendered frame to the screen. Safe to call from any
// goroutine.
func (t *Terminal) SetFrame(frame string) {
	t.program.Send(frameMsg(frame))
}

// Size reports the current terminal dimensions, defaulting before the first
// window-size message arrives.
func (t *Terminal) Size() (int, int) {
	return t.model.size()
}

// Quit stops the program.
func (t *Terminal) Quit() {
	t.program.Quit()
}
