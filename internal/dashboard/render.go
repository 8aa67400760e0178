package dashboard

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/charmbracelet/lipgloss"
)

const connectionErrorText = "Connection Error: Unable to connect to RailOptiX backend. Please ensure the server is running."

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')
	b.WriteString(m.renderTabBar())
	b.WriteRune('\n')

	if !m.snap.Connected {
		b.WriteString(bannerStyle.Render(connectionErrorText))
		b.WriteRune('\n')
	}
	b.WriteRune('\n')

	var content string
	switch m.activeView {
	case viewDashboard:
		content = m.renderDashboard()
	case viewConflicts:
		content = m.renderConflicts()
	case viewKPIs:
		content = m.renderKPIs()
	case viewSimulator:
		content = m.renderSimulator()
	}

	contentHeight := m.height - strings.Count(b.String(), "\n") - 2
	if m.showHelp {
		contentHeight -= 3
	}
	lines := strings.Split(content, "\n")
	if contentHeight > 0 && len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}
	b.WriteString(truncateLines(strings.Join(lines, "\n"), m.width))

	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-2 {
		b.WriteRune('\n')
		rendered++
	}

	b.WriteRune('\n')
	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar())
	}

	return b.String()
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("RailOptiX")
	conn := badStyle.Render("● disconnected")
	if m.snap.Connected {
		conn = goodStyle.Render("● live via " + m.snap.Transport)
	}
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(conn)-1))
	return title + gap + conn
}

func (m Model) renderTabBar() string {
	var tabs []string
	for i := viewID(0); i < viewCount; i++ {
		if i == m.activeView {
			tabs = append(tabs, tabActiveStyle.Render(i.String()))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(i.String()))
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderStatusBar() string {
	counts := fmt.Sprintf(" %d trains | %d conflicts | %d suggestions | %d pending",
		len(m.snap.Trains), len(m.snap.Conflicts), len(m.snap.Suggestions), len(m.snap.Pending))
	right := contextHelp(m.activeView) + " "
	if m.status != "" {
		right = m.status + " "
	}
	gap := strings.Repeat(" ", max(1, m.width-lipgloss.Width(counts)-lipgloss.Width(right)))
	bar := statusBarStyle.Render(counts + gap)
	if m.statusErr {
		return bar + badStyle.Render(right)
	}
	return bar + statusBarStyle.Render(right)
}

// --- Dashboard view ---

func (m Model) renderDashboard() string {
	var b strings.Builder

	k := m.snap.KPIs
	b.WriteString(fmt.Sprintf("Avg delay %s   Throughput %s   Re-plan %s   Acceptance %s\n\n",
		goodStyle.Render(fmt.Sprintf("%+.0f min", k.AvgDelayReduced)),
		goodStyle.Render(fmt.Sprintf("+%.0f%%", k.ThroughputIncrease)),
		headerStyle.Render(fmt.Sprintf("%.0f min", k.ReplanTime)),
		headerStyle.Render(fmt.Sprintf("%.0f%%", k.SuggestionAcceptance)),
	))

	b.WriteString(headerStyle.Render("Live Trains"))
	b.WriteRune('\n')
	if len(m.snap.Trains) == 0 {
		b.WriteString(dimStyle.Render("  no trains reported"))
		b.WriteRune('\n')
	} else {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %-8s %-24s %-8s %-14s %7s  %s",
			"ID", "Name", "Priority", "Status", "Delay", "Current")))
		b.WriteRune('\n')
		for _, t := range m.snap.Trains {
			b.WriteString(fmt.Sprintf("  %-8s %-24s %s %s %7s  %s\n",
				t.ID,
				truncate(t.Name, 24),
				priorityStyle(t.Priority).Render(fmt.Sprintf("%-8s", t.Priority)),
				trainStatusStyle(t.Status).Render(fmt.Sprintf("%-14s", t.Status)),
				fmt.Sprintf("%.0f min", t.Delay),
				t.CurrentStation,
			))
		}
	}
	b.WriteRune('\n')

	b.WriteString(headerStyle.Render("AI Suggestions"))
	b.WriteRune('\n')
	if len(m.snap.Suggestions) == 0 {
		b.WriteString(dimStyle.Render("  no open suggestions"))
		b.WriteRune('\n')
		return b.String()
	}
	for i, s := range m.snap.Suggestions {
		line := fmt.Sprintf("  %-6s %-6s %s", s.ID, s.ConflictID, suggestionSummary(s))
		if i == m.selected {
			line = selectedStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line)
		b.WriteRune('\n')
	}
	return b.String()
}

// --- Conflicts view ---

func (m Model) renderConflicts() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Active Conflicts (%d)", len(m.snap.Conflicts))))
	b.WriteRune('\n')
	if len(m.snap.Conflicts) == 0 {
		b.WriteString(goodStyle.Render("  no conflicts detected"))
		b.WriteRune('\n')
		return b.String()
	}

	for i, c := range m.snap.Conflicts {
		line := fmt.Sprintf("  %-6s %-28s %s vs %s  +%.0f min",
			c.ID, truncate(c.Location, 28), c.Train1.ID, c.Train2.ID, c.PotentialDelay)
		if i == m.selected {
			line = selectedStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line)
		b.WriteString(" ")
		b.WriteString(priorityStyle(c.Severity).Render(c.Severity))
		b.WriteRune('\n')
	}

	if m.selected < len(m.snap.Conflicts) {
		c := m.snap.Conflicts[m.selected]
		b.WriteRune('\n')
		b.WriteString(headerStyle.Render("Conflict " + c.ID))
		b.WriteRune('\n')
		status := c.Status
		switch status {
		case domain.ConflictResolved:
			status = goodStyle.Render(status)
		case "":
			status = domain.ConflictActive
		}
		b.WriteString(fmt.Sprintf("  %s, %s, detected %s, estimated %s\n",
			conflictTypeLabel(c.Type), status, clockTime(c.DetectedAt), c.EstimatedTime))
		b.WriteString(fmt.Sprintf("  %s %s (%s), delay %.0f min\n", c.Train1.ID, c.Train1.Name, c.Train1.Priority, c.Train1.CurrentDelay))
		b.WriteString(fmt.Sprintf("  %s %s (%s), delay %.0f min\n", c.Train2.ID, c.Train2.Name, c.Train2.Priority, c.Train2.CurrentDelay))

		if s, ok := domain.SuggestionFor(m.snap.Suggestions, c.ID); ok {
			b.WriteRune('\n')
			b.WriteString(headerStyle.Render("Suggested resolution " + s.ID))
			b.WriteRune('\n')
			if s.Explanation != "" {
				b.WriteString("  " + s.Explanation + "\n")
			}
			for _, o := range s.Options {
				b.WriteString(fmt.Sprintf("  - %s (%s): -%.0f min\n", o.Name, strategyLabel(o.Strategy), o.ExpectedDelayReduction))
			}
			b.WriteString(dimStyle.Render(fmt.Sprintf("  confidence %.0f%%", s.ImpactAnalysis.Confidence)))
			b.WriteRune('\n')
		} else {
			b.WriteString(dimStyle.Render("\n  awaiting suggestion"))
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// --- KPI view ---

func (m Model) renderKPIs() string {
	var b strings.Builder
	k := m.snap.KPIs

	b.WriteString(headerStyle.Render("Network KPIs"))
	b.WriteString("\n\n")
	b.WriteString(kpiLine("Avg delay reduced", fmt.Sprintf("%+.0f min", k.AvgDelayReduced), -k.AvgDelayReduced, 20))
	b.WriteString(kpiLine("Throughput increase", fmt.Sprintf("+%.0f%%", k.ThroughputIncrease), k.ThroughputIncrease, 30))
	b.WriteString(kpiLine("Re-plan time", fmt.Sprintf("%.0f min", k.ReplanTime), k.ReplanTime, 15))
	b.WriteString(kpiLine("Suggestion acceptance", fmt.Sprintf("%.0f%%", k.SuggestionAcceptance), k.SuggestionAcceptance, 100))

	b.WriteRune('\n')
	if n := len(m.snap.Pending); n > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d acceptance(s) awaiting server confirmation", n)))
	} else {
		b.WriteString(dimStyle.Render("all figures confirmed by server"))
	}
	b.WriteRune('\n')
	return b.String()
}

func kpiLine(label, value string, v, scale float64) string {
	const width = 30
	filled := 0
	if scale > 0 && v > 0 {
		filled = min(width, int(v/scale*width))
	}
	bar := goodStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("  %-22s %10s  %s\n", label, value, bar)
}

// --- Simulator view ---

func (m Model) renderSimulator() string {
	var b strings.Builder
	sc := m.scenario

	b.WriteString(headerStyle.Render("What-If Scenario: " + sc.Name))
	b.WriteString("\n\n")

	rerouting := "off"
	if sc.ReroutingEnabled {
		rerouting = "on"
	}
	fields := []string{
		fmt.Sprintf("Priority boost    %3d%%  (0-50)", sc.PriorityBoost),
		fmt.Sprintf("Delay tolerance   %3d min (1-15)", sc.DelayTolerance),
		fmt.Sprintf("Rerouting         %s", rerouting),
	}
	for i, f := range fields {
		if i == m.field {
			b.WriteString(selectedStyle.Render("> " + f))
		} else {
			b.WriteString("  " + f)
		}
		b.WriteRune('\n')
	}
	b.WriteRune('\n')

	switch {
	case m.simulating:
		b.WriteString(dimStyle.Render("running..."))
		b.WriteRune('\n')
	case m.simulation != nil:
		b.WriteString(renderSimulation(m.simulation))
	default:
		b.WriteString(dimStyle.Render("press r to run the scenario"))
		b.WriteRune('\n')
	}
	return b.String()
}

func renderSimulation(r *domain.SimulationResult) string {
	var b strings.Builder
	before, after := r.Results.Before, r.Results.After

	b.WriteString(headerStyle.Render(fmt.Sprintf("Result %s (confidence %.0f%%)", r.ID, r.Confidence)))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-12s %10s %10s", "", "before", "after")))
	b.WriteRune('\n')
	b.WriteString(fmt.Sprintf("  %-12s %10s %10s\n", "Avg delay",
		fmt.Sprintf("%.1f min", before.AvgDelay), fmt.Sprintf("%.1f min", after.AvgDelay)))
	b.WriteString(fmt.Sprintf("  %-12s %10.0f %10.0f\n", "Throughput", before.Throughput, after.Throughput))
	b.WriteString(fmt.Sprintf("  %-12s %10.0f %10.0f\n", "Conflicts", before.Conflicts, after.Conflicts))
	b.WriteString(fmt.Sprintf("  %-12s %9.0f%% %9.0f%%\n", "Efficiency", before.Efficiency, after.Efficiency))

	if len(r.Recommendations) > 0 {
		b.WriteRune('\n')
		b.WriteString(headerStyle.Render("Recommendations"))
		b.WriteRune('\n')
		for _, rec := range r.Recommendations {
			b.WriteString("  - " + rec + "\n")
		}
	}
	return b.String()
}

// --- Helpers ---

func suggestionSummary(s domain.Suggestion) string {
	if s.RecommendedOption != nil && s.RecommendedOption.Name != "" {
		return fmt.Sprintf("%s (-%.0f min)", s.RecommendedOption.Name, s.RecommendedOption.ExpectedDelayReduction)
	}
	if s.Explanation != "" {
		return truncate(s.Explanation, 60)
	}
	return fmt.Sprintf("%d option(s)", len(s.Options))
}

func conflictTypeLabel(t string) string {
	switch t {
	case domain.ConflictTrainCrossing:
		return "train crossing"
	case domain.ConflictPlatform:
		return "platform conflict"
	case domain.ConflictSignal:
		return "signal conflict"
	case domain.ConflictTrackMaintenance:
		return "track maintenance"
	case "":
		return "unclassified"
	}
	return t
}

func strategyLabel(s string) string {
	switch s {
	case domain.StrategyPriorityBased:
		return "priority based"
	case domain.StrategyBalanced:
		return "balanced"
	case domain.StrategyRerouting:
		return "rerouting"
	}
	return s
}

// clockTime shows a backend timestamp as a UTC wall clock time
func clockTime(ts string) string {
	t, ok := domain.ParseTimestamp(ts)
	if !ok {
		return "-"
	}
	return t.UTC().Format("15:04:05")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// truncateLines cuts each line to width using ANSI-aware measurement
func truncateLines(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = lipgloss.NewStyle().MaxWidth(width).Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
