package dashboard

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	Up       key.Binding
	Down     key.Binding
	Accept   key.Binding
	Increase key.Binding
	Decrease key.Binding
	Toggle   key.Binding
	Run      key.Binding
	Help     key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Accept:   key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter/a", "accept suggestion")),
	Increase: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "increase")),
	Decrease: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "decrease")),
	Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle rerouting")),
	Run:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run simulation")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// viewKeys maps single keys to views. Lower-case k is taken by selection, so
// the KPI view sits on K.
var viewKeys = map[string]viewID{
	"d": viewDashboard,
	"c": viewConflicts,
	"K": viewKPIs,
	"s": viewSimulator,
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Accept, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Up, k.Down, k.Accept},
		{k.Increase, k.Decrease, k.Toggle, k.Run},
		{k.Help, k.Quit},
	}
}

func contextHelp(v viewID) string {
	switch v {
	case viewDashboard, viewConflicts:
		return "j/k: select | enter/a: accept | d/c/K/s: views | tab: next | ?: help | q: quit"
	case viewSimulator:
		return "j/k: field | +/-: adjust | space: rerouting | r: run | d/c/K/s: views | q: quit"
	default:
		return "d/c/K/s: views | tab: next | ?: help | q: quit"
	}
}
