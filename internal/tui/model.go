// Package tui implements the interactive topology explorer.
//
// The explorer renders the positioned topology as a navigable service
// list with the same controls the graph canvas offers: focus toggling,
// group collapse, view modes, grouping taxonomies, and search.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/launchmap/launchmap/pkg/engine"
	"github.com/launchmap/launchmap/pkg/topo"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleDimmed   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleHealthy  = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleDegraded = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// viewModes cycles in this order under the "v" key.
var viewModes = []topo.ViewMode{topo.ViewAll, topo.ViewConnections, topo.ViewDependencies}

// groupings cycles in this order under the "g" key.
var groupings = []topo.GroupingMode{topo.GroupByCategory, topo.GroupByDomain, topo.GroupBySimplified}

// Model is the bubbletea model for the topology explorer.
type Model struct {
	eng       *engine.Engine
	projectID string

	view      engine.View
	rows      []row // cursor-addressable lines, derived from view
	cursor    int
	height    int
	offset    int
	err       error
	searching bool
	search    string

	viewModeIdx int
	groupingIdx int
}

// row is one cursor-addressable line: either a group header or a service.
type row struct {
	node    topo.Node
	isGroup bool
}

// New creates the explorer over an engine whose snapshot is already
// refreshed for projectID.
func New(eng *engine.Engine, projectID string) Model {
	m := Model{eng: eng, projectID: projectID, height: 20}
	m.recompute()
	return m
}

// recompute pulls a fresh view from the engine and rebuilds the rows.
func (m *Model) recompute() {
	v, err := m.eng.View(context.Background())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.view = v

	// Services sorted under their group header, groups in emission order.
	var rows []row
	for _, grp := range v.Graph.Groups() {
		rows = append(rows, row{node: grp, isGroup: true})
		var members []topo.Node
		for _, n := range v.Graph.Nodes {
			if n.Kind == topo.NodeService && n.GroupKey == grp.GroupKey {
				members = append(members, n)
			}
		}
		sort.SliceStable(members, func(i, j int) bool { return members[i].Label < members[j].Label })
		for _, n := range members {
			rows = append(rows, row{node: n})
		}
	}
	m.rows = rows

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
	case "backspace":
		if len(m.search) > 0 {
			m.search = m.search[:len(m.search)-1]
		}
		m.eng.SetSearchQuery(m.search)
		m.recompute()
	default:
		if len(msg.Runes) > 0 {
			m.search += string(msg.Runes)
			m.eng.SetSearchQuery(m.search)
			m.recompute()
		}
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter", "f":
		if r, ok := m.current(); ok && !r.isGroup {
			m.eng.Focus(r.node.ID)
			m.recompute()
		}
	case "esc":
		m.eng.Unfocus()
		m.recompute()
	case "c", " ":
		if r, ok := m.current(); ok {
			m.eng.ToggleGroup(r.node.GroupKey)
			m.recompute()
		}
	case "v":
		m.viewModeIdx = (m.viewModeIdx + 1) % len(viewModes)
		m.eng.SetViewMode(viewModes[m.viewModeIdx])
		m.recompute()
	case "g":
		m.groupingIdx = (m.groupingIdx + 1) % len(groupings)
		m.eng.SetGroupingMode(groupings[m.groupingIdx])
		m.recompute()
	case "/":
		m.searching = true
	case "x":
		m.search = ""
		m.eng.SetSearchQuery("")
		m.recompute()
	case "r":
		if err := m.eng.Refresh(context.Background(), m.projectID); err != nil {
			m.err = err
			return m, nil
		}
		m.recompute()
	}
	return m, nil
}

func (m Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Launchmap — " + m.projectID))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleError.Render("error: " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	t := table.New().Border(lipgloss.HiddenBorder())
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		t.Row(cursor+m.renderRow(r, i == m.cursor), m.renderMeta(r))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")

	b.WriteString(styleDim.Render("↑/↓ move  ⏎/f focus  esc unfocus  c collapse  v view  g grouping  / search  r refresh  q quit"))
	if m.searching {
		b.WriteString("\n")
		b.WriteString(styleTitle.Render("search: ") + m.search + "▌")
	}
	return b.String()
}

func (m Model) statusLine() string {
	h := m.view.Health
	parts := []string{
		fmt.Sprintf("view:%s", m.view.ViewMode),
		fmt.Sprintf("grouping:%s", m.view.Grouping),
		fmt.Sprintf("health %s/%s/%d",
			styleHealthy.Render(fmt.Sprint(h.Healthy)),
			styleDegraded.Render(fmt.Sprint(h.Degraded)),
			h.Unhealthy+h.Unknown),
	}
	if m.view.FocusedID != "" {
		parts = append(parts, "focus:"+m.view.FocusedID)
	}
	if m.search != "" {
		parts = append(parts, "search:"+m.search)
	}
	return styleDim.Render(strings.Join(parts, "  "))
}

func (m Model) renderRow(r row, selected bool) string {
	if r.isGroup {
		label := fmt.Sprintf("%s (%d)", r.node.Label, r.node.ChildCount)
		if r.node.Collapsed {
			label += " [collapsed]"
		}
		return styleTitle.Render(label)
	}

	label := "  " + r.node.Label
	switch {
	case selected:
		return styleSelected.Render(label)
	case r.node.FocusOpacity < 1.0:
		return styleDimmed.Render(label)
	case !r.node.Highlighted:
		return styleDim.Render(label)
	default:
		return label
	}
}

func (m Model) renderMeta(r row) string {
	if r.isGroup {
		return ""
	}

	parts := []string{string(r.node.Status)}
	switch r.node.Health {
	case topo.HealthHealthy:
		parts = append(parts, styleHealthy.Render("●"))
	case topo.HealthDegraded:
		parts = append(parts, styleDegraded.Render("●"))
	case topo.HealthUnhealthy:
		parts = append(parts, styleError.Render("●"))
	}
	if r.node.EnvRequired > 0 {
		parts = append(parts, fmt.Sprintf("env %d/%d", r.node.EnvConfigured, r.node.EnvRequired))
	}
	if r.node.Connections > 0 {
		parts = append(parts, fmt.Sprintf("%d conn", r.node.Connections))
	}
	return styleDim.Render(strings.Join(parts, "  "))
}
