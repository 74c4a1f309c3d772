package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type column interface {
	SetSize(width, height int)
	Update(msg tea.Msg) (column, tea.Cmd)
	View(styles styles, focused bool) string
	Title() string
	FocusValue() string
}

// catalogEntry is one line of the catalog column: either a group header
// or a table beneath it.
type catalogEntry struct {
	header   bool
	group    string
	desc     tableDescriptor
	expanded bool
	pinned   bool
}

func (e catalogEntry) Title() string {
	if e.header {
		return "— " + e.group + " —"
	}
	marker := " "
	if e.expanded {
		marker = "▾"
	}
	name := e.desc.DisplayName
	if strings.TrimSpace(name) == "" {
		name = e.desc.Key
	}
	if e.pinned {
		name += " ★"
	}
	icon := strings.TrimSpace(e.desc.Icon)
	if icon != "" {
		return fmt.Sprintf("%s %s %s", marker, icon, name)
	}
	return fmt.Sprintf("%s %s", marker, name)
}

func (e catalogEntry) Description() string {
	if e.header {
		return ""
	}
	return fmt.Sprintf("%d columns", len(e.desc.Columns))
}

func (e catalogEntry) FilterValue() string {
	if e.header {
		return ""
	}
	return e.desc.DisplayName
}

type catalogColumn struct {
	title    string
	model    list.Model
	width    int
	height   int
	onSelect func(tableDescriptor) tea.Cmd
}

func newCatalogColumn(title string, s styles) *catalogColumn {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.SelectedDesc = s.listSel
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.NormalDesc = s.listItem.Foreground(palette.textMuted)

	m := list.New([]list.Item{}, delegate, 32, 20)
	m.Title = title
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(false)

	return &catalogColumn{
		title: title,
		model: m,
	}
}

func (c *catalogColumn) SetSelectFunc(fn func(tableDescriptor) tea.Cmd) {
	c.onSelect = fn
}

// SetGroups rebuilds the list from the grouped catalog. Pinned tables
// sort first within their group; at most one table is marked expanded.
func (c *catalogColumn) SetGroups(groups []tableGroup, expandedKey string, pinned map[string]bool) {
	selectedKey := ""
	if entry, ok := c.selectedEntry(); ok && !entry.header {
		selectedKey = entry.desc.Key
	}

	var items []list.Item
	for _, group := range groups {
		items = append(items, catalogEntry{header: true, group: group.Name})
		ordered := append([]tableDescriptor(nil), group.Tables...)
		if len(pinned) > 0 {
			var first, rest []tableDescriptor
			for _, desc := range ordered {
				if pinned[desc.Key] {
					first = append(first, desc)
				} else {
					rest = append(rest, desc)
				}
			}
			ordered = append(first, rest...)
		}
		for _, desc := range ordered {
			items = append(items, catalogEntry{
				group:    group.Name,
				desc:     desc,
				expanded: desc.Key == expandedKey,
				pinned:   pinned[desc.Key],
			})
		}
	}
	c.model.SetItems(items)

	target := -1
	for idx, item := range items {
		entry, ok := item.(catalogEntry)
		if !ok || entry.header {
			continue
		}
		if entry.desc.Key == selectedKey {
			target = idx
			break
		}
		if target < 0 {
			target = idx
		}
	}
	if target >= 0 {
		c.model.Select(target)
	}
}

func (c *catalogColumn) selectedEntry() (catalogEntry, bool) {
	if entry, ok := c.model.SelectedItem().(catalogEntry); ok {
		return entry, true
	}
	return catalogEntry{}, false
}

func (c *catalogColumn) SelectedTable() (tableDescriptor, bool) {
	if entry, ok := c.selectedEntry(); ok && !entry.header {
		return entry.desc, true
	}
	return tableDescriptor{}, false
}

func (c *catalogColumn) SetSize(width, height int) {
	c.width = width
	if height < 3 {
		height = 3
	}
	c.height = height
	c.model.SetSize(width, height-2)
}

func (c *catalogColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "enter" && c.onSelect != nil {
			if entry, ok := c.selectedEntry(); ok && !entry.header {
				return c, c.onSelect(entry.desc)
			}
		}
	}
	var cmd tea.Cmd
	c.model, cmd = c.model.Update(msg)
	return c, cmd
}

func (c *catalogColumn) View(s styles, focused bool) string {
	header := s.columnTitle.Render(c.title)
	if entry, ok := c.selectedEntry(); ok && !entry.header && entry.group != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, s.groupHeader.Render(entry.group))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, header, c.model.View())
	if focused {
		return s.panelFocused.Width(c.width).Render(body)
	}
	return s.panel.Width(c.width).Render(body)
}

func (c *catalogColumn) Title() string {
	return c.title
}

func (c *catalogColumn) FocusValue() string {
	if entry, ok := c.selectedEntry(); ok && !entry.header {
		return entry.desc.DisplayName
	}
	return ""
}

// rowsColumn is the editor panel body: the row table for the expanded
// lookup table plus the client-side filter input.
type rowsColumn struct {
	title       string
	table       table.Model
	filter      textinput.Model
	filtering   bool
	desc        tableDescriptor
	hasTable    bool
	rows        []lookupItem
	visible     []lookupItem
	loading     bool
	width       int
	height      int
	onHighlight func(lookupItem) tea.Cmd
}

func newRowsColumn(title string, s styles) *rowsColumn {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tStyles := table.DefaultStyles()
	tStyles.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.textMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.border).
		Padding(0, 1)
	tStyles.Cell = lipgloss.NewStyle().Padding(0, 1)
	tStyles.Selected = lipgloss.NewStyle().
		Foreground(palette.text).
		Background(palette.selection).
		Padding(0, 1)
	t.SetStyles(tStyles)

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter rows"
	filter.CharLimit = 128

	return &rowsColumn{
		title:  title,
		table:  t,
		filter: filter,
	}
}

func (c *rowsColumn) SetHighlightFunc(fn func(lookupItem) tea.Cmd) {
	c.onHighlight = fn
}

// SetTable switches the panel to a new descriptor, dropping rows and the
// filter term from the previous table.
func (c *rowsColumn) SetTable(desc tableDescriptor) {
	c.desc = desc
	c.hasTable = true
	c.title = desc.DisplayName
	c.rows = nil
	c.visible = nil
	c.filter.SetValue("")
	c.filtering = false
	c.filter.Blur()
	c.rebuildColumns()
	c.table.SetRows(nil)
}

func (c *rowsColumn) Clear() {
	c.hasTable = false
	c.desc = tableDescriptor{}
	c.rows = nil
	c.visible = nil
	c.table.SetRows(nil)
	c.title = "Rows"
}

// SetRows replaces the panel's entire row set.
func (c *rowsColumn) SetRows(rows []lookupItem) {
	c.rows = rows
	c.applyFilter()
}

func (c *rowsColumn) SetLoading(loading bool) {
	c.loading = loading
}

func (c *rowsColumn) FilterTerm() string {
	return c.filter.Value()
}

func (c *rowsColumn) VisibleRows() []lookupItem {
	return c.visible
}

func (c *rowsColumn) applyFilter() {
	c.visible = filterRows(c.rows, c.desc.Columns, c.filter.Value())
	tableRows := make([]table.Row, len(c.visible))
	for i, item := range c.visible {
		cells := make(table.Row, len(c.desc.Columns))
		for j, col := range c.desc.Columns {
			cells[j] = stringifyValue(item[col.Name], col.Type)
		}
		tableRows[i] = cells
	}
	c.table.SetRows(tableRows)
	if c.table.Cursor() >= len(tableRows) {
		c.table.SetCursor(maxInt(0, len(tableRows)-1))
	}
}

func (c *rowsColumn) SelectedRow() (lookupItem, bool) {
	if len(c.visible) == 0 {
		return nil, false
	}
	idx := c.table.Cursor()
	if idx < 0 || idx >= len(c.visible) {
		return nil, false
	}
	return c.visible[idx], true
}

// CursorLine approximates the on-screen line of the cursor row within the
// panel, used to anchor popovers near the triggering row.
func (c *rowsColumn) CursorLine() int {
	headerLines := 4
	visibleRows := maxInt(1, c.height-headerLines-2)
	line := c.table.Cursor()
	if line > visibleRows-1 {
		line = visibleRows - 1
	}
	return headerLines + line
}

func (c *rowsColumn) Filtering() bool {
	return c.filtering
}

func (c *rowsColumn) rebuildColumns() {
	if !c.hasTable || len(c.desc.Columns) == 0 {
		c.table.SetColumns(nil)
		return
	}
	count := len(c.desc.Columns)
	colWidth := maxInt(10, (c.width-2*count)/maxInt(1, count))
	cols := make([]table.Column, count)
	for i, col := range c.desc.Columns {
		cols[i] = table.Column{Title: col.Label, Width: colWidth}
	}
	c.table.SetColumns(cols)
}

func (c *rowsColumn) SetSize(width, height int) {
	if width < 30 {
		width = 30
	}
	if height < 6 {
		height = 6
	}
	c.width = width
	c.height = height
	c.filter.Width = maxInt(16, width-8)
	c.rebuildColumns()
	c.table.SetHeight(height - 5)
}

func (c *rowsColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	if c.filtering {
		if isKey {
			switch keyMsg.String() {
			case "esc":
				c.filter.SetValue("")
				c.filter.Blur()
				c.filtering = false
				c.applyFilter()
				return c, nil
			case "enter":
				c.filter.Blur()
				c.filtering = false
				return c, nil
			}
		}
		var cmd tea.Cmd
		c.filter, cmd = c.filter.Update(msg)
		c.applyFilter()
		return c, cmd
	}

	if isKey && keyMsg.String() == "/" && c.hasTable {
		c.filtering = true
		c.filter.Focus()
		return c, textinput.Blink
	}

	prev := c.table.Cursor()
	var cmd tea.Cmd
	c.table, cmd = c.table.Update(msg)
	if c.table.Cursor() != prev && c.onHighlight != nil {
		if row, ok := c.SelectedRow(); ok {
			if run := c.onHighlight(row); run != nil {
				if cmd != nil {
					return c, tea.Batch(cmd, run)
				}
				return c, run
			}
		}
	}
	return c, cmd
}

func (c *rowsColumn) View(s styles, focused bool) string {
	title := s.columnTitle.Render(c.title)
	filterLine := c.filter.View()
	if !c.filtering && strings.TrimSpace(c.filter.Value()) == "" {
		filterLine = s.cmdHint.Render("/ filter • a add • e edit • d delete • x export")
	}

	var body string
	switch {
	case !c.hasTable:
		body = s.emptyState.Render("Select a table to edit its entries")
	case c.loading && len(c.rows) == 0:
		body = s.emptyState.Render("Loading…")
	case len(c.rows) == 0:
		body = s.emptyState.Render("No entries yet. Press a to add one.")
	case len(c.visible) == 0:
		body = s.emptyState.Render("No entries match the filter")
	default:
		body = c.table.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, filterLine, body)
	if focused {
		return s.panelFocused.Width(c.width).Render(content)
	}
	return s.panel.Width(c.width).Render(content)
}

func (c *rowsColumn) Title() string {
	return c.title
}

func (c *rowsColumn) FocusValue() string {
	if row, ok := c.SelectedRow(); ok {
		return c.desc.RowLabel(row)
	}
	return ""
}

type previewColumn struct {
	title   string
	width   int
	height  int
	content string
	view    viewport.Model
}

func newPreviewColumn(width int) *previewColumn {
	vp := viewport.New(width, 20)
	return &previewColumn{
		title: "Detail",
		view:  vp,
	}
}

func (p *previewColumn) SetSize(width, height int) {
	p.width = width
	if height < 3 {
		height = 3
	}
	p.height = height
	p.view.Width = width - 2
	p.view.Height = height - 3
}

func (p *previewColumn) SetContent(content string) {
	p.content = content
	p.view.SetContent(content)
}

func (p *previewColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	p.view, cmd = p.view.Update(msg)
	return p, cmd
}

func (p *previewColumn) View(s styles, focused bool) string {
	header := s.columnTitle.Render(p.title)
	body := header + "\n" + p.view.View()
	if focused {
		return s.panelFocused.Width(p.width).Render(body)
	}
	return s.panel.Width(p.width).Render(body)
}

func (p *previewColumn) Title() string {
	return p.title
}

func (p *previewColumn) FocusValue() string {
	return ""
}
