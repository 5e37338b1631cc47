package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/entrawatch/internal/check"
)

var (
	critStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // magenta
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // dim gray

	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	detailStyle    = lipgloss.NewStyle().Padding(0, 1)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the BubbleTea model for the now TUI.
type Model struct {
	tenant      string
	snap        check.Snapshot
	allOutcomes []check.ServiceOutcome // full sorted set
	outcomes    []check.ServiceOutcome // current view (may be filtered)
	table       table.Model
	width       int
	height      int
	quitting    bool
	searching   bool
	searchInput textinput.Model
}

// NewModel creates a TUI model from a completed snapshot.
func NewModel(snap check.Snapshot, tenant string) *Model {
	outcomes := sortOutcomes(snap.Outcomes)

	cols := []table.Column{
		{Title: "STATE", Width: 8},
		{Title: "SECTION", Width: 22},
		{Title: "SERVICE", Width: 36},
		{Title: "SUMMARY", Width: 40},
	}

	rows := make([]table.Row, len(outcomes))
	for i := range outcomes {
		rows[i] = outcomeToRow(&outcomes[i])
	}

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("57"))

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(s),
	)

	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 64

	return &Model{
		snap:        snap,
		table:       t,
		allOutcomes: outcomes,
		outcomes:    outcomes,
		tenant:      tenant,
		width:       80,
		height:      24,
		searchInput: ti,
	}
}

// Init satisfies tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.updateSearch(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.searchInput.Value() != "" {
				m.searchInput.SetValue("")
				m.applyFilter()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.searching = true
			return m, m.searchInput.Focus()
		case "g":
			m.table.GotoTop()
			return m, nil
		case "G":
			m.table.GotoBottom()
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			n := int(msg.String()[0] - '0')
			if n <= len(m.outcomes) {
				m.table.SetCursor(n - 1)
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		m.table.SetWidth(m.width)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.applyFilter()
			return m, nil
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		m.table.SetWidth(m.width)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

// View renders the full TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	b.WriteString(m.table.View())
	b.WriteByte('\n')
	b.WriteString(separatorStyle.Render(strings.Repeat("─", m.width)))
	b.WriteByte('\n')
	b.WriteString(m.detailView())
	b.WriteByte('\n')
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) headerView() string {
	tenant := m.tenant
	if tenant == "" {
		tenant = "(unknown tenant)"
	}

	var crit, warn, unknown, ok int
	for i := range m.outcomes {
		switch m.outcomes[i].Outcome.State {
		case check.StateCrit:
			crit++
		case check.StateWarn:
			warn++
		case check.StateUnknown:
			unknown++
		default:
			ok++
		}
	}

	title := headerStyle.Render(fmt.Sprintf("entrawatch · %s · %s",
		tenant, m.snap.At.UTC().Format("2006-01-02 15:04 UTC")))

	totalStr := fmt.Sprintf("Total: %d", len(m.outcomes))
	if len(m.outcomes) != len(m.allOutcomes) {
		totalStr = fmt.Sprintf("Showing: %d/%d", len(m.outcomes), len(m.allOutcomes))
	}

	counts := headerStyle.Render(fmt.Sprintf(
		"%s  %s  %s  %s  %s",
		critStyle.Render(fmt.Sprintf("Crit: %d", crit)),
		warnStyle.Render(fmt.Sprintf("Warn: %d", warn)),
		unknownStyle.Render(fmt.Sprintf("Unknown: %d", unknown)),
		fmt.Sprintf("OK: %d", ok),
		totalStr,
	))

	return title + "\n" + counts
}

func (m *Model) detailView() string {
	if len(m.outcomes) == 0 {
		if m.searchInput.Value() != "" {
			return detailStyle.Render(dimStyle.Render("No matches."))
		}
		return detailStyle.Render("No services.")
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.outcomes) {
		return ""
	}

	o := &m.outcomes[idx]
	var lines []string

	lines = append(lines, o.Outcome.Summary)
	if o.Outcome.Details != "" {
		lines = append(lines, "", o.Outcome.Details)
	}
	if mt := o.Outcome.Metric; mt != nil {
		lines = append(lines, "", fmt.Sprintf("%s: %.0fs", mt.Name, mt.Value))
	}

	return detailStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) footerView() string {
	if m.searching {
		return " /" + m.searchInput.View()
	}
	help := " q quit · ↑↓/jk navigate · g/G top/bottom · 1-9 jump · / search"
	if m.searchInput.Value() != "" {
		help += " · esc clear"
	}
	return dimStyle.Render(help)
}

func (m *Model) tableHeight() int {
	// Reserve space for header, table chrome, separator, detail panel, and footer.
	reserved := 14
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) applyFilter() {
	query := strings.ToLower(m.searchInput.Value())
	if query == "" {
		m.outcomes = m.allOutcomes
	} else {
		var filtered []check.ServiceOutcome
		for i := range m.allOutcomes {
			o := &m.allOutcomes[i]
			hay := strings.ToLower(o.Service + " " + o.Section + " " + o.Item + " " + o.Outcome.Summary)
			if strings.Contains(hay, query) {
				filtered = append(filtered, m.allOutcomes[i])
			}
		}
		m.outcomes = filtered
	}
	m.rebuildRows()
}

func (m *Model) rebuildRows() {
	rows := make([]table.Row, len(m.outcomes))
	for i := range m.outcomes {
		rows[i] = outcomeToRow(&m.outcomes[i])
	}
	m.table.SetRows(rows)
}

// PlainText returns a non-interactive text representation for piped output.
func PlainText(snap check.Snapshot) string {
	outcomes := sortOutcomes(snap.Outcomes)
	if len(outcomes) == 0 && len(snap.Errors) == 0 {
		return "No services."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-22s %-36s %s\n", "STATE", "SECTION", "SERVICE", "SUMMARY")
	fmt.Fprintf(&b, "%-8s %-22s %-36s %s\n", "-----", "-------", "-------", "-------")
	for i := range outcomes {
		row := outcomeToRow(&outcomes[i])
		fmt.Fprintf(&b, "%-8s %-22s %-36s %s\n", row[0], row[1], row[2], row[3])
	}
	for _, name := range sortedKeys(snap.Errors) {
		fmt.Fprintf(&b, "%-8s %-22s %-36s %s\n", "ERROR", name, "", snap.Errors[name])
	}
	return b.String()
}

// outcomeToRow converts an outcome to a table row with plain text (no ANSI).
// Embedding ANSI in cells causes the table to miscalculate column widths
// and truncate escape sequences, bleeding color into adjacent cells/rows.
func outcomeToRow(o *check.ServiceOutcome) table.Row {
	return table.Row{
		o.Outcome.State.String(),
		o.Section,
		truncate(o.Service, 36),
		truncate(o.Outcome.Summary, 60),
	}
}

// sortOutcomes returns a sorted copy: critical first, then unknown,
// then warn, then OK. Within the same state, by service name.
func sortOutcomes(outcomes []check.ServiceOutcome) []check.ServiceOutcome {
	sorted := make([]check.ServiceOutcome, len(outcomes))
	copy(sorted, outcomes)

	stateOrder := map[check.State]int{
		check.StateCrit:    0,
		check.StateUnknown: 1,
		check.StateWarn:    2,
		check.StateOK:      3,
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := stateOrder[sorted[i].Outcome.State], stateOrder[sorted[j].Outcome.State]
		if si != sj {
			return si < sj
		}
		return sorted[i].Service < sorted[j].Service
	})

	return sorted
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
