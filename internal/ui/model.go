// ABOUTME: Bubbletea model for the player TUI
// ABOUTME: Shows connection, stream, and playback state with transport keys
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Command is a transport action requested from the keyboard
type Command int

const (
	CommandPlayPause Command = iota
	CommandReset
)

// Control carries keyboard commands out of the TUI
type Control struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControl creates a control channel set
func NewControl() *Control {
	return &Control{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// Model represents the TUI state
type Model struct {
	// Connection
	connected  bool
	serverName string

	// Stream
	codec      string
	sampleRate int
	chunkMs    int
	title      string

	// Playback
	state    string
	queued   int
	inFlight int
	ended    int

	control *Control

	// Dimensions
	width  int
	height int
}

// NewModel creates the initial model
func NewModel(control *Control) Model {
	return Model{
		state:   "idle",
		control: control,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderStreamInfo()
	s += m.renderPlayback()
	s += m.renderHelp()

	return s
}

// renderHeader renders connection status
func (m Model) renderHeader() string {
	connStatus := "Disconnected"
	if m.connected {
		connStatus = fmt.Sprintf("Connected to %s", m.serverName)
	}

	return fmt.Sprintf(`┌─ Chunkcast Player ───────────────────────────────────┐
│ Status: %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(connStatus, 45))
}

// renderStreamInfo renders the negotiated stream format
func (m Model) renderStreamInfo() string {
	if !m.connected || m.codec == "" {
		return "│ No stream                                            │\n"
	}

	s := ""
	if m.title != "" {
		s += fmt.Sprintf("│ Track:  %-45s │\n", truncate(m.title, 45))
	}
	s += fmt.Sprintf("│ Format: %s %dHz mono, %dms chunks%-16s │\n",
		m.codec, m.sampleRate, m.chunkMs, "")

	return s
}

// renderPlayback renders player state and queue depth
func (m Model) renderPlayback() string {
	stateIcon := "■"
	switch m.state {
	case "playing":
		stateIcon = "▶"
	case "paused":
		stateIcon = "⏸"
	case "ended":
		stateIcon = "✓"
	}

	return fmt.Sprintf("│                                                      │\n"+
		"│ Player: %s %-43s │\n"+
		"│ Queued: %d  In flight: %d  Streams ended: %d%-11s │\n",
		stateIcon, m.state, m.queued, m.inFlight, m.ended, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ space:Play/Pause  r:Reset  q:Quit                    │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			select {
			case m.control.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case " ":
		m.sendCommand(CommandPlayPause)
	case "r":
		m.sendCommand(CommandReset)
	}

	return m, nil
}

// sendCommand forwards a command without blocking the update loop
func (m Model) sendCommand(cmd Command) {
	if m.control == nil {
		return
	}
	select {
	case m.control.Commands <- cmd:
	default:
	}
}

// applyStatus updates model fields from a status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	if msg.Codec != "" {
		m.codec = msg.Codec
		m.sampleRate = msg.SampleRate
		m.chunkMs = msg.ChunkMs
	}
	if msg.Title != "" {
		m.title = msg.Title
	}
	if msg.State != "" {
		m.state = msg.State
		m.queued = msg.Queued
		m.inFlight = msg.InFlight
	}
	if msg.StreamEnded {
		m.ended++
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Connected   *bool
	ServerName  string
	Codec       string
	SampleRate  int
	ChunkMs     int
	Title       string
	State       string
	Queued      int
	InFlight    int
	StreamEnded bool
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
