// Package tui implements `devshield review`, an interactive table over the
// decisions of the last scan with a detail pane for the explanation and the
// matching security education tip.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devshield/devshield/internal/education"
	"github.com/devshield/devshield/internal/policy"
	"github.com/devshield/devshield/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	blockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	allowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const defaultHints = "q: quit | ?: help | /: search | y: copy advice | i: ignore file | r: rescan"

// Options configures the review UI.
type Options struct {
	// Root is the repository root used for ignore file edits.
	Root string
	// Cached marks results loaded from the last-scan file taken at Timestamp.
	Cached    bool
	Timestamp time.Time
	// Rescan reruns the scan. Nil disables the r key.
	Rescan func() ([]types.Result, error)
	Prefs  Prefs
}

// actionText returns plain text for an action (ANSI codes break table
// truncation).
func actionText(a types.Action) string {
	switch a {
	case types.ActionBlock:
		return "BLOCK"
	case types.ActionWarn:
		return "WARN"
	case types.ActionAllow:
		return "ALLOW"
	default:
		return strings.ToUpper(string(a))
	}
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

type (
	resultsMsg []types.Result
	statusMsg  string
)

// Model is the review UI state.
type Model struct {
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model

	results []types.Result
	// display maps table rows to indices in results.
	display []int

	opts  Options
	prefs Prefs

	searchMode   bool
	searchInput  textinput.Model
	searchQuery  string
	actionFilter types.Action

	ready         bool
	quitting      bool
	scanning      bool
	showHelp      bool
	width, height int
	lastScanTime  time.Time

	statusMessage string
	statusTimeout *time.Time
}

// NewModel builds a model over results.
func NewModel(results []types.Result, opts Options) Model {
	columns := []table.Column{
		{Title: "Action", Width: 7},
		{Title: "Score", Width: 5},
		{Title: "Type", Width: 22},
		{Title: "Location", Width: 36},
		{Title: "Value", Width: 28},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "Search path, type or value..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = "/ "

	prefs := opts.Prefs
	if prefs.Language == "" {
		prefs.Language = "en"
	}
	m := Model{
		table:         t,
		viewport:      viewport.New(80, 10),
		spinner:       sp,
		results:       results,
		opts:          opts,
		prefs:         prefs,
		searchInput:   ti,
		lastScanTime:  time.Now(),
		statusMessage: defaultHints,
	}
	if opts.Cached && !opts.Timestamp.IsZero() {
		m.lastScanTime = opts.Timestamp
	}
	m.applyFilters()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// applyFilters recomputes the visible rows from the search query, the action
// filter and the hide-allowed preference.
func (m *Model) applyFilters() {
	query := strings.ToLower(m.searchQuery)
	m.display = nil
	for i, r := range m.results {
		if m.actionFilter != "" && r.Decision.Action != m.actionFilter {
			continue
		}
		if m.prefs.HideAllowed && m.actionFilter == "" && r.Decision.Action == types.ActionAllow {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Finding.Path), query) &&
			!strings.Contains(strings.ToLower(r.Finding.SecretType), query) &&
			!strings.Contains(strings.ToLower(r.Finding.Redacted), query) {
			continue
		}
		m.display = append(m.display, i)
	}
	rows := make([]table.Row, len(m.display))
	for row, i := range m.display {
		r := m.results[i]
		rows[row] = table.Row{
			actionText(r.Decision.Action),
			strconv.Itoa(r.Decision.RiskScore),
			r.Finding.SecretType,
			fmt.Sprintf("%s:%d", r.Finding.Path, r.Finding.Line),
			r.Finding.Redacted,
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) || m.table.Cursor() < 0 {
		m.table.SetCursor(0)
	}
	m.updateViewportContent()
}

func (m *Model) clearFilters() {
	m.searchQuery = ""
	m.actionFilter = ""
	m.applyFilters()
}

// selected returns the result under the cursor.
func (m Model) selected() *types.Result {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.display) {
		return nil
	}
	return &m.results[m.display[c]]
}

func (m *Model) setStatus(s string, d time.Duration) {
	timeout := time.Now().Add(d)
	m.statusTimeout = &timeout
	m.statusMessage = s
}

func (m *Model) tip(r types.Result) education.Tip {
	ctx := policy.Context{VariableName: r.Metadata.VariableName, Filename: r.Finding.Path}
	return education.Message(r.Finding.SecretType, ctx, m.prefs.Language)
}

func (m *Model) detailContent(r types.Result) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s:%d", r.Finding.Path, r.Finding.Line)))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s %s\n", keyStyle.Render("Type:"), r.Finding.SecretType)
	fmt.Fprintf(&sb, "%s %s\n", keyStyle.Render("Value:"), r.Finding.Redacted)
	fmt.Fprintf(&sb, "%s %s (score %d)\n", keyStyle.Render("Decision:"), styledAction(r.Decision.Action), r.Decision.RiskScore)
	if r.Assessment.Severity != "" {
		fmt.Fprintf(&sb, "%s %s, confidence %.2f\n", keyStyle.Render("Severity:"), r.Assessment.Severity, r.Assessment.Confidence)
	}
	if r.Metadata.VariableName != "" {
		fmt.Fprintf(&sb, "%s %s\n", keyStyle.Render("Variable:"), r.Metadata.VariableName)
	}
	if r.Assessment.Degraded {
		sb.WriteString(warnStyle.Render("Risk assessment degraded; score-implied action may be understated.") + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(r.Decision.Explanation)
	sb.WriteString("\n\n")
	sb.WriteString(m.tip(r).String())
	return sb.String()
}

func styledAction(a types.Action) string {
	switch a {
	case types.ActionBlock:
		return blockStyle.Render(string(a))
	case types.ActionWarn:
		return warnStyle.Render(string(a))
	default:
		return allowStyle.Render(string(a))
	}
}

func (m *Model) updateViewportContent() {
	r := m.selected()
	if r == nil {
		m.viewport.SetContent("")
		return
	}
	content := m.detailContent(*r)
	if m.viewport.Width > 4 {
		content = lipgloss.NewStyle().Width(m.viewport.Width - 2).Render(content)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m *Model) rescan() tea.Cmd {
	rescan := m.opts.Rescan
	return func() tea.Msg {
		if rescan == nil {
			return statusMsg("Rescan not available")
		}
		rs, err := rescan()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return resultsMsg(rs)
	}
}

func (m *Model) cycleLanguage() {
	langs := education.Languages()
	next := langs[0]
	for i, l := range langs {
		if l == m.prefs.Language {
			next = langs[(i+1)%len(langs)]
			break
		}
	}
	m.prefs.Language = next
	_ = SavePrefs(m.prefs)
	m.updateViewportContent()
	m.setStatus("Education language: "+next, 3*time.Second)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.searchMode {
			switch msg.String() {
			case "enter":
				m.searchMode = false
				m.searchQuery = m.searchInput.Value()
				m.searchInput.Blur()
				m.applyFilters()
				return m, nil
			case "esc":
				m.searchMode = false
				m.searchInput.Blur()
				return m, nil
			}
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "/":
			m.searchMode = true
			m.searchInput.SetValue(m.searchQuery)
			m.searchInput.Focus()
			return m, textinput.Blink
		case "1", "2", "3":
			m.actionFilter = map[string]types.Action{"1": types.ActionBlock, "2": types.ActionWarn, "3": types.ActionAllow}[msg.String()]
			m.applyFilters()
			m.setStatus(fmt.Sprintf("Showing %s only (Esc to clear)", actionText(m.actionFilter)), 3*time.Second)
			return m, nil
		case "esc":
			if m.searchQuery != "" || m.actionFilter != "" {
				m.clearFilters()
				m.setStatus("Filters cleared", 3*time.Second)
			}
			return m, nil
		case "a":
			m.prefs.HideAllowed = !m.prefs.HideAllowed
			_ = SavePrefs(m.prefs)
			m.applyFilters()
			return m, nil
		case "l":
			m.cycleLanguage()
			return m, nil
		case "y":
			return m, m.copyAdvice()
		case "Y":
			return m, m.copyLocation()
		case "i":
			return m, m.ignoreFile()
		case "r":
			if m.opts.Rescan == nil {
				m.setStatus("Rescan not available", 3*time.Second)
				return m, nil
			}
			m.scanning = true
			return m, tea.Batch(m.spinner.Tick, m.rescan())
		case "pgdown", "pgup":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		cols := m.table.Columns()
		fixed := cols[0].Width + cols[1].Width + cols[2].Width
		rest := m.width - 14 - fixed
		if rest < 40 {
			rest = 40
		}
		cols[3].Width = rest * 55 / 100
		cols[4].Width = rest - cols[3].Width
		m.table.SetColumns(cols)

		available := m.height - 3
		tableHeight := available * 45 / 100
		viewportHeight := available - tableHeight - detailPaneBorderStyle.GetVerticalFrameSize() - tableBorderStyle.GetVerticalFrameSize()
		if viewportHeight < 3 {
			viewportHeight = 3
		}
		m.table.SetWidth(m.width)
		m.table.SetHeight(tableHeight)
		m.viewport.Width = m.width - 2
		m.viewport.Height = viewportHeight
		m.updateViewportContent()
		statusStyle = statusStyle.Width(m.width)
		return m, nil

	case resultsMsg:
		m.results = msg
		m.scanning = false
		m.opts.Cached = false
		m.lastScanTime = time.Now()
		m.applyFilters()
		if len(m.results) == 0 {
			m.setStatus("Rescan complete - no secrets found", 5*time.Second)
		} else {
			m.setStatus(fmt.Sprintf("Rescan complete - %d findings", len(m.results)), 5*time.Second)
		}
		return m, nil

	case statusMsg:
		m.scanning = false
		m.setStatus(string(msg), 3*time.Second)
		return m, nil

	case spinner.TickMsg:
		var spinCmd tea.Cmd
		m.spinner, spinCmd = m.spinner.Update(msg)
		if m.statusTimeout != nil && time.Now().After(*m.statusTimeout) {
			m.statusTimeout = nil
			m.statusMessage = defaultHints
		}
		return m, spinCmd
	}

	if !m.quitting && len(m.display) > 0 {
		before := m.table.Cursor()
		m.table, cmd = m.table.Update(msg)
		if m.table.Cursor() != before {
			m.updateViewportContent()
		}
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.scanning {
		box := popupStyle.Width(50).Align(lipgloss.Center).Render(m.spinner.View() + "  Rescanning...\n\nPlease wait")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(helpText))
	}

	counts := map[types.Action]int{}
	for _, i := range m.display {
		counts[m.results[i].Decision.Action]++
	}
	stats := fmt.Sprintf("Showing: %d/%d  |  %s %d  |  %s %d  |  %s %d",
		len(m.display), len(m.results),
		blockStyle.Render("Block:"), counts[types.ActionBlock],
		warnStyle.Render("Warn:"), counts[types.ActionWarn],
		allowStyle.Render("Allow:"), counts[types.ActionAllow])
	if m.searchQuery != "" {
		stats += fmt.Sprintf("  [search:'%s']", m.searchQuery)
	}
	if m.actionFilter != "" {
		stats += fmt.Sprintf("  [action:%s]", m.actionFilter)
	}
	header := lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 2).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("237")).
		Render(stats)

	tableRender := tableBorderStyle.Width(m.width - 2).Render(m.table.View())

	var detail string
	if len(m.display) == 0 {
		msg := "No secrets to review.\n\nPress 'r' to rescan\nPress '?' for help"
		if len(m.results) > 0 {
			msg = "No findings match filter.\n\nPress 'Esc' to clear filter"
		}
		detail = lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, emptyTextStyle.Render(msg))
	} else {
		detail = m.viewport.View()
	}
	detailRender := detailPaneBorderStyle.Width(m.width - 2).Render(detail)

	when := "scanned " + formatAge(time.Since(m.lastScanTime)) + " ago"
	if m.opts.Cached {
		when = "cached " + when
	}
	status := m.statusMessage + "  (" + when + ")"
	if m.searchMode {
		status = m.searchInput.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, tableRender, detailRender, statusStyle.Render(status))
}

const helpText = `DevShield review

j/k, up/down   move
pgup/pgdown    scroll details
/              search
1 / 2 / 3      show block / warn / allow only
esc            clear filters
a              toggle allowed findings
l              cycle education language
y              copy remediation advice
Y              copy file:line
i              add file to .devshieldignore
r              rescan
q              quit

press any key to close`
