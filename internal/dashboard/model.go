// Package dashboard renders the reconciled railway view in the terminal. It
// performs no network I/O: snapshots are pushed in and intents leave through
// the injected Callbacks.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/store"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const actionTimeout = 30 * time.Second

// Callbacks carry operator intents out of the dashboard
type Callbacks struct {
	Accept   func(ctx context.Context, suggestionID, conflictID string) error
	Simulate func(ctx context.Context, scenario domain.SimulationScenario) (*domain.SimulationResult, error)
}

// Source is the state the dashboard follows
type Source interface {
	Snapshot() store.Snapshot
	Subscribe() (<-chan uint64, func())
}

// --- Messages ---

// SnapshotMsg replaces the rendered state
type SnapshotMsg struct {
	Snapshot store.Snapshot
}

type acceptDoneMsg struct {
	suggestionID string
	conflictID   string
	err          error
}

type simulationDoneMsg struct {
	result *domain.SimulationResult
	err    error
}

type tickMsg struct{}

// --- Views ---

type viewID int

const (
	viewDashboard viewID = iota
	viewConflicts
	viewKPIs
	viewSimulator
	viewCount
)

func (v viewID) String() string {
	switch v {
	case viewDashboard:
		return "Dashboard"
	case viewConflicts:
		return "Conflicts"
	case viewKPIs:
		return "KPIs"
	case viewSimulator:
		return "Simulator"
	}
	return "?"
}

// simulator fields, in display order
const (
	fieldPriorityBoost = iota
	fieldDelayTolerance
	fieldRerouting
	fieldCount
)

// --- Model ---

// Model is the bubbletea model of the dashboard
type Model struct {
	cb   Callbacks
	snap store.Snapshot

	activeView viewID
	width      int
	height     int
	selected   int
	field      int

	scenario   domain.SimulationScenario
	simulation *domain.SimulationResult
	simulating bool
	accepting  bool

	status    string
	statusErr bool

	help     help.Model
	showHelp bool

	lastUpdate time.Time
}

// New creates a Model showing snap
func New(snap store.Snapshot, cb Callbacks) Model {
	return Model{
		cb:         cb,
		snap:       snap,
		scenario:   domain.DefaultScenario(),
		help:       help.New(),
		lastUpdate: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case SnapshotMsg:
		m.snap = msg.Snapshot
		m.lastUpdate = time.Now()
		m.clampSelection()

	case acceptDoneMsg:
		m.accepting = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("accept %s failed: %v", msg.suggestionID, msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("accepted %s for %s", msg.suggestionID, msg.conflictID), false)
		}

	case simulationDoneMsg:
		m.simulating = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("simulation failed: %v", msg.err), true)
		} else {
			m.simulation = msg.result
			m.setStatus("simulation complete", false)
		}

	case tickMsg:
		return m, tickEvery()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v, ok := viewKeys[msg.String()]; ok {
		m.activeView = v
		m.selected = 0
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		m.activeView = (m.activeView + 1) % viewCount
		m.selected = 0

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, keys.Up):
		if m.activeView == viewSimulator {
			m.field = max(0, m.field-1)
		} else {
			m.selected = max(0, m.selected-1)
		}

	case key.Matches(msg, keys.Down):
		if m.activeView == viewSimulator {
			m.field = min(fieldCount-1, m.field+1)
		} else {
			m.selected = min(max(0, m.listLen()-1), m.selected+1)
		}

	case key.Matches(msg, keys.Accept):
		return m.accept()

	case m.activeView == viewSimulator && key.Matches(msg, keys.Increase):
		m.adjust(1)

	case m.activeView == viewSimulator && key.Matches(msg, keys.Decrease):
		m.adjust(-1)

	case m.activeView == viewSimulator && key.Matches(msg, keys.Toggle):
		m.scenario.ReroutingEnabled = !m.scenario.ReroutingEnabled

	case m.activeView == viewSimulator && key.Matches(msg, keys.Run):
		return m.runSimulation()
	}

	return m, nil
}

// accept resolves the selection to a suggestion/conflict pair and hands it
// to the Accept callback.
func (m Model) accept() (tea.Model, tea.Cmd) {
	if m.accepting || m.cb.Accept == nil {
		return m, nil
	}

	var sug domain.Suggestion
	switch m.activeView {
	case viewDashboard:
		if m.selected >= len(m.snap.Suggestions) {
			return m, nil
		}
		sug = m.snap.Suggestions[m.selected]
	case viewConflicts:
		if m.selected >= len(m.snap.Conflicts) {
			return m, nil
		}
		c := m.snap.Conflicts[m.selected]
		s, ok := domain.SuggestionFor(m.snap.Suggestions, c.ID)
		if !ok {
			m.setStatus("no suggestion for conflict "+c.ID, true)
			return m, nil
		}
		sug = s
	default:
		return m, nil
	}

	m.accepting = true
	m.setStatus(fmt.Sprintf("accepting %s...", sug.ID), false)

	accept := m.cb.Accept
	sid, cid := sug.ID, sug.ConflictID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return acceptDoneMsg{suggestionID: sid, conflictID: cid, err: accept(ctx, sid, cid)}
	}
}

func (m Model) runSimulation() (tea.Model, tea.Cmd) {
	if m.simulating || m.cb.Simulate == nil {
		return m, nil
	}
	m.simulating = true
	m.setStatus("running simulation...", false)

	simulate := m.cb.Simulate
	scenario := m.scenario
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		res, err := simulate(ctx, scenario)
		return simulationDoneMsg{result: res, err: err}
	}
}

func (m *Model) adjust(dir int) {
	switch m.field {
	case fieldPriorityBoost:
		m.scenario.PriorityBoost = clamp(m.scenario.PriorityBoost+5*dir, 0, 50)
	case fieldDelayTolerance:
		m.scenario.DelayTolerance = clamp(m.scenario.DelayTolerance+dir, 1, 15)
	case fieldRerouting:
		m.scenario.ReroutingEnabled = !m.scenario.ReroutingEnabled
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) listLen() int {
	switch m.activeView {
	case viewDashboard:
		return len(m.snap.Suggestions)
	case viewConflicts:
		return len(m.snap.Conflicts)
	}
	return 0
}

// clampSelection keeps the cursor in range after collections shrink
func (m *Model) clampSelection() {
	n := m.listLen()
	if n == 0 {
		m.selected = 0
	} else if m.selected >= n {
		m.selected = n - 1
	}
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

// Run drives the dashboard until the user quits or ctx is cancelled. Store
// updates are forwarded with p.Send so the model never reads the store itself.
func Run(ctx context.Context, src Source, cb Callbacks, opts ...tea.ProgramOption) error {
	updates, cancel := src.Subscribe()
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(src.Snapshot(), cb), opts...)

	go func() {
		for range updates {
			p.Send(SnapshotMsg{Snapshot: src.Snapshot()})
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
