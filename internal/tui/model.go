// Package tui renders the collection stats table in the terminal with
// bubbletea. The model owns a table.View and applies every key press as a
// controller intent; fetch results arrive as messages sent by the caller.
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bubbletable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cryptogamefiverse/nftdash/internal/fetch"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// RowsMsg carries a freshly published row batch.
type RowsMsg struct {
	Rows []models.Row
}

// CollectionFailedMsg reports one collection that could not be loaded.
type CollectionFailedMsg struct {
	Slug string
	Err  error
}

// NoticeMsg is a warning or error line from the log, shown under the table.
type NoticeMsg struct {
	Text  string
	Error bool
}

// FetchDoneMsg ends a batch.
type FetchDoneMsg struct {
	Summary fetch.Summary
}

// RefreshFunc starts a new batch. It is only called while no batch is running.
type RefreshFunc func() tea.Cmd

// Option configures a Model.
type Option func(*Model)

// WithRefresh enables the refresh key.
func WithRefresh(fn RefreshFunc) Option {
	return func(m *Model) { m.refresh = fn }
}

// WithLoading marks a batch as already running when the program starts.
func WithLoading(loading bool) Option {
	return func(m *Model) { m.loading = loading }
}

// WithStyles replaces DefaultStyles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

const (
	nameWidth = 24
	// title, frame borders, status and help lines
	chromeHeight = 7
)

// Model is the bubbletea model for the stats table.
type Model struct {
	view    table.View
	tbl     bubbletable.Model
	keys    keyMap
	help    help.Model
	styles  Styles
	refresh RefreshFunc

	width, height int

	loading  bool
	failures []string
	summary  *fetch.Summary
	notice   *NoticeMsg
}

// New creates a Model over view.
func New(view table.View, opts ...Option) Model {
	m := Model{
		view:   view,
		keys:   defaultKeyMap(),
		help:   help.New(),
		styles: DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.tbl = bubbletable.New(
		bubbletable.WithFocused(true),
		bubbletable.WithKeyMap(tableKeyMap(m.keys)),
		bubbletable.WithStyles(m.styles.Table),
	)
	m.sync()
	return m
}

// Table returns the controller state.
func (m Model) Table() table.View {
	return m.view
}

// Failures lists slugs that failed during the current batch.
func (m Model) Failures() []string {
	return slices.Clone(m.failures)
}

// Loading reports whether a batch is running.
func (m Model) Loading() bool {
	return m.loading
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.sync()
		return m, nil

	case RowsMsg:
		m.view = m.view.SetRows(msg.Rows)
		m.sync()
		return m, nil

	case CollectionFailedMsg:
		m.failures = append(m.failures, msg.Slug)
		return m, nil

	case NoticeMsg:
		m.notice = &msg
		return m, nil

	case FetchDoneMsg:
		m.loading = false
		summary := msg.Summary
		m.summary = &summary
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			m.sync()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Sort):
		idx := int(msg.String()[0] - '1')
		if idx < 0 || idx >= len(table.SortKeys) {
			return nil, true
		}
		// keys are always valid here
		m.view, _ = m.view.RequestSort(table.SortKeys[idx])

	case key.Matches(msg, m.keys.Select):
		snap := m.view.Snapshot()
		cursor := m.tbl.Cursor()
		if cursor < 0 || cursor >= len(snap.Rows) {
			return nil, true
		}
		m.view = m.view.ToggleSelectOne(snap.Rows[cursor].Name)

	case key.Matches(msg, m.keys.SelectAll):
		m.view = m.view.ToggleSelectAll(!m.view.Snapshot().AllSelected)

	case key.Matches(msg, m.keys.PrevPage):
		if m.view.Page.PageIndex > 0 {
			m.view = m.view.ChangePage(m.view.Page.PageIndex - 1)
			m.tbl.GotoTop()
		}

	case key.Matches(msg, m.keys.NextPage):
		m.view = m.view.ChangePage(m.view.Page.PageIndex + 1)
		m.tbl.GotoTop()

	case key.Matches(msg, m.keys.PageSize):
		i := slices.Index(table.PageSizes, m.view.Page.PageSize)
		next := table.PageSizes[(i+1)%len(table.PageSizes)]
		m.view, _ = m.view.ChangePageSize(next)

	case key.Matches(msg, m.keys.Density):
		m.view = m.view.ChangeDensity(!m.view.Dense)

	case key.Matches(msg, m.keys.Window):
		m.view = m.view.ChangeTimeWindow(m.view.Window.Next())

	case key.Matches(msg, m.keys.Refresh):
		if m.refresh == nil || m.loading {
			return nil, true
		}
		m.loading = true
		m.failures = nil
		m.summary = nil
		return m.refresh(), true

	default:
		return nil, false
	}
	return nil, true
}

// sync pushes the current snapshot into the bubbles table.
func (m *Model) sync() {
	snap := m.view.Snapshot()

	ts := m.styles.Table
	if snap.Dense {
		ts.Cell = ts.Cell.Padding(0, 0)
		ts.Header = ts.Header.Padding(0, 0)
	}
	m.tbl.SetStyles(ts)

	m.tbl.SetColumns(columns(snap))

	rows := make([]bubbletable.Row, 0, len(snap.Rows)+snap.Placeholders)
	for _, r := range snap.Rows {
		rows = append(rows, cells(r, nameWidth))
	}
	for range snap.Placeholders {
		rows = append(rows, make(bubbletable.Row, len(columnSpecs)+1))
	}
	m.tbl.SetRows(rows)

	height := snap.Page.PageSize + 1
	if m.height > 0 {
		height = min(height, max(m.height-chromeHeight, 3))
	}
	m.tbl.SetHeight(height)

	if n := len(snap.Rows); n > 0 && m.tbl.Cursor() >= n {
		m.tbl.SetCursor(n - 1)
	}
}

type columnSpec struct {
	name     string
	key      table.SortKey
	width    int
	windowed bool
}

// columnSpecs are the data columns in table.SortKeys order.
var columnSpecs = []columnSpec{
	{"Name", table.KeyName, nameWidth, false},
	{"Supply", table.KeyTotalSupply, 10, false},
	{"Floor", table.KeyFloorPrice, 10, false},
	{"Mkt Cap", table.KeyMarketCap, 14, false},
	{"Owners", table.KeyNumOwners, 10, false},
	{"Avg", table.KeyAveragePrice, 12, true},
	{"Chg", table.KeyChange, 12, true},
	{"Sales", table.KeySales, 12, true},
	{"Vol", table.KeyVolume, 14, true},
}

func headerTitle(snap table.Snapshot, c columnSpec) string {
	name := c.name
	if c.windowed {
		name += " " + snap.Window.Label()
	}
	return name + sortArrow(snap.Sort, c.key)
}

func columns(snap table.Snapshot) []bubbletable.Column {
	cols := make([]bubbletable.Column, 0, len(columnSpecs)+1)
	cols = append(cols, bubbletable.Column{Title: checkbox(snap.AllSelected, snap.Indeterminate), Width: 3})
	for i, c := range columnSpecs {
		cols = append(cols, bubbletable.Column{
			Title: fmt.Sprintf("%d %s", i+1, headerTitle(snap, c)),
			Width: c.width,
		})
	}
	return cols
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("NFT collection stats"))
	b.WriteString("\n")
	b.WriteString(frame.Render(m.tbl.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.notice != nil {
		style := m.styles.Muted
		if m.notice.Error {
			style = m.styles.Error
		}
		b.WriteString(style.Render(truncate(m.notice.Text, max(m.width, 40))))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	snap := m.view.Snapshot()

	pages := max(snap.Pages, 1)
	parts := []string{
		m.styles.Status.Render(fmt.Sprintf("page %d/%d", snap.Page.PageIndex+1, pages)),
		m.styles.Muted.Render(fmt.Sprintf("%d rows/page", snap.Page.PageSize)),
		m.styles.Muted.Render(fmt.Sprintf("%d collections", snap.Total)),
		m.styles.Muted.Render("window " + snap.Window.Label()),
	}
	if n := len(snap.Selected); n > 0 {
		parts = append(parts, m.styles.Selected.Render(fmt.Sprintf("%d selected", n)))
	}
	if snap.Dense {
		parts = append(parts, m.styles.Muted.Render("dense"))
	}
	if m.loading {
		parts = append(parts, m.styles.Status.Render("loading…"))
	}
	if n := len(m.failures); n > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("%d failed", n)))
	}
	if m.summary != nil && m.summary.Cancelled {
		parts = append(parts, m.styles.Error.Render("cancelled"))
	}
	return strings.Join(parts, " · ")
}
