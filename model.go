package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusCatalog focusArea = iota
	focusRows
	focusPreview
)

const maxLogLines = 200

type catalogLoadedMsg struct {
	descriptors []tableDescriptor
	err         error
}

type tableSelectedMsg struct {
	desc tableDescriptor
}

type rowsLoadedMsg struct {
	tableKey string
	token    int
	rows     []lookupItem
	err      error
}

type rowHighlightedMsg struct {
	row lookupItem
}

type saveDoneMsg struct {
	tableKey string
	mode     formMode
	err      error
}

type deleteDoneMsg struct {
	tableKey string
	rowID    string
	err      error
}

type exportDoneMsg struct {
	path string
	err  error
}

type keyMap struct {
	quit       key.Binding
	nextFocus  key.Binding
	prevFocus  key.Binding
	reload     key.Binding
	pin        key.Binding
	add        key.Binding
	edit       key.Binding
	remove     key.Binding
	export     key.Binding
	copyRow    key.Binding
	copyCell   key.Binding
	toggleLogs key.Binding
	toggleHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload table"),
		),
		pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin table"),
		),
		add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add entry"),
		),
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit entry"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete entry"),
		),
		export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export csv"),
		),
		copyRow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy row"),
		),
		copyCell: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy cell"),
		),
		toggleLogs: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("F6", "toggle logs"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextFocus,
		k.add,
		k.edit,
		k.remove,
		k.export,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextFocus, k.prevFocus, k.reload},
		{k.pin, k.add, k.edit, k.remove},
		{k.copyRow, k.copyCell, k.export},
		{k.toggleLogs, k.toggleHelp, k.quit},
	}
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	client    *apiClient
	store     *profileStore
	telemetry *telemetryLogger

	uiConfig     *uiConfig
	uiConfigPath string
	pinnedKeys   map[string]bool

	groups         []tableGroup
	catalogLoading bool
	catalogErr     error

	expanded    *tableDescriptor
	rowsLoading bool
	listTokens  map[string]int
	colOffsets  []int
	colWidths   []int

	catalogCol *catalogColumn
	rowsCol    *rowsColumn
	previewCol *previewColumn
	columns    []column
	focus      int

	form     *formModel
	formRect rect

	confirmOpen bool
	confirmRow  lookupItem
	confirmRect rect
	deleting    bool

	showHelp bool

	showLogs   bool
	logsHeight int
	logs       viewport.Model
	logLines   []string

	spinner        spinner.Model
	spinnerActive  bool
	spinnerMessage string

	toastMessage string
	toastExpires time.Time
}

func initialModel(client *apiClient, store *profileStore) *model {
	s := newStyles()
	m := &model{
		styles:     s,
		keys:       newKeyMap(),
		help:       help.New(),
		client:     client,
		store:      store,
		showLogs:   false,
		logsHeight: 6,
		listTokens: make(map[string]int),
		pinnedKeys: make(map[string]bool),
	}

	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = m.styles.statusHint.Copy()
	m.help.Styles.ShortDesc = m.styles.statusHint.Copy()
	m.help.Styles.ShortSeparator = m.styles.statusSeg.Copy()

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Copy().Bold(true)

	m.logs = viewport.New(80, m.logsHeight-2)

	if cfg, cfgPath := loadUIConfig(); cfg != nil {
		m.uiConfig = cfg
		m.uiConfigPath = cfgPath
		for _, pin := range cfg.Pinned {
			if trimmed := strings.TrimSpace(pin); trimmed != "" {
				m.pinnedKeys[trimmed] = true
			}
		}
		if theme := strings.TrimSpace(cfg.Theme); theme != "" {
			setMarkdownTheme(markdownThemeFromString(theme))
		}
	}

	m.telemetry = newTelemetryLogger(filepath.Join(resolveConfigDir(), "ui-events.ndjson"))

	m.catalogCol = newCatalogColumn("Tables", s)
	m.catalogCol.SetSelectFunc(func(desc tableDescriptor) tea.Cmd {
		return func() tea.Msg { return tableSelectedMsg{desc: desc} }
	})
	m.rowsCol = newRowsColumn("Rows", s)
	m.rowsCol.SetHighlightFunc(func(row lookupItem) tea.Cmd {
		return func() tea.Msg { return rowHighlightedMsg{row: row} }
	})
	m.previewCol = newPreviewColumn(40)
	m.previewCol.SetContent(RenderMarkdown(helpMarkdown))
	m.columns = []column{m.catalogCol, m.rowsCol, m.previewCol}
	m.focus = int(focusCatalog)

	m.catalogLoading = true
	m.appendLog("[INFO] Connecting to " + client.baseURL)
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCatalogCmd())
}

func (m *model) loadCatalogCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		descriptors, err := client.Catalog(context.Background())
		return catalogLoadedMsg{descriptors: descriptors, err: err}
	}
}

// loadRowsCmd starts a list fetch tagged with a fresh per-table token so
// a response that lost the race against a newer fetch can be discarded.
func (m *model) loadRowsCmd(desc tableDescriptor) tea.Cmd {
	m.listTokens[desc.Key]++
	token := m.listTokens[desc.Key]
	client := m.client
	return func() tea.Msg {
		rows, err := client.ListRows(context.Background(), desc.Key)
		return rowsLoadedMsg{tableKey: desc.Key, token: token, rows: rows, err: err}
	}
}

func (m *model) saveCmd(desc tableDescriptor, draft map[string]any, mode formMode, rowID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		var err error
		if mode == formCreate {
			err = client.CreateRow(context.Background(), desc.Key, draft)
		} else {
			err = client.UpdateRow(context.Background(), desc.Key, rowID, draft)
		}
		return saveDoneMsg{tableKey: desc.Key, mode: mode, err: err}
	}
}

func (m *model) deleteCmd(desc tableDescriptor, rowID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.DeleteRow(context.Background(), desc.Key, rowID)
		return deleteDoneMsg{tableKey: desc.Key, rowID: rowID, err: err}
	}
}

func (m *model) exportCmd(desc tableDescriptor, rows []lookupItem) tea.Cmd {
	return func() tea.Msg {
		path, err := exportRowsCSV(desc, rows)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		setMarkdownWordWrap(minInt(80, m.width/3))
		m.applyLayout()
		return m, tea.Batch(cmds...)

	case catalogLoadedMsg:
		m.handleCatalogLoaded(message)
		return m, tea.Batch(cmds...)

	case rowsLoadedMsg:
		m.handleRowsLoaded(message)
		return m, tea.Batch(cmds...)

	case saveDoneMsg:
		if cmd := m.handleSaveDone(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case deleteDoneMsg:
		if cmd := m.handleDeleteDone(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case exportDoneMsg:
		if message.err != nil {
			m.setToast("Export failed: "+message.err.Error(), 6*time.Second)
		} else {
			m.setToast("Exported to "+message.path, 6*time.Second)
			m.appendLog("[INFO] Exported " + message.path)
		}
		return m, tea.Batch(cmds...)

	case formSubmitMsg:
		if m.expanded != nil {
			m.spinnerMessage = "Saving…"
			m.spinnerActive = true
			cmds = append(cmds, m.saveCmd(*m.expanded, message.draft, message.mode, message.rowID))
		}
		return m, tea.Batch(cmds...)

	case formCancelMsg:
		m.form = nil
		return m, tea.Batch(cmds...)

	case tableSelectedMsg:
		if cmd := m.handleTableSelected(message.desc); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case rowHighlightedMsg:
		m.updatePreview(message.row)
		return m, tea.Batch(cmds...)
	}

	if m.showHelp {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc", "?", "q":
				m.showHelp = false
			}
		}
		return m, tea.Batch(cmds...)
	}

	if m.form != nil {
		if cmd := m.updateForm(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	if m.confirmOpen {
		if cmd := m.updateConfirm(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if handled, cmd := m.handleGlobalKey(keyMsg); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
	}

	if m.focus >= 0 && m.focus < len(m.columns) {
		col := m.columns[m.focus]
		var cmd tea.Cmd
		m.columns[m.focus], cmd = col.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// updateForm routes input to the open form popover. Keys never fall
// through to the panels while the form is open.
func (m *model) updateForm(msg tea.Msg) tea.Cmd {
	if mouse, ok := msg.(tea.MouseMsg); ok {
		if mouse.Type == tea.MouseLeft && !m.form.saving && !pointInRect(mouse.X, mouse.Y, m.formRect) {
			m.form = nil
			return nil
		}
		return nil
	}
	form, cmd := m.form.Update(msg)
	m.form = &form
	return cmd
}

func (m *model) updateConfirm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if mouse, isMouse := msg.(tea.MouseMsg); isMouse {
			if mouse.Type == tea.MouseLeft && !m.deleting && !pointInRect(mouse.X, mouse.Y, m.confirmRect) {
				m.closeConfirm()
			}
		}
		return nil
	}
	if m.deleting {
		return nil
	}
	switch keyMsg.String() {
	case "enter", "y":
		if m.expanded == nil || m.confirmRow == nil {
			m.closeConfirm()
			return nil
		}
		m.deleting = true
		m.spinnerMessage = "Deleting…"
		m.spinnerActive = true
		return m.deleteCmd(*m.expanded, m.expanded.RowID(m.confirmRow))
	case "esc", "n":
		m.closeConfirm()
	}
	return nil
}

func (m *model) closeConfirm() {
	m.confirmOpen = false
	m.confirmRow = nil
	m.deleting = false
}

func (m *model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	typing := m.rowsCol.Filtering() && focusArea(m.focus) == focusRows

	switch {
	case msg.String() == "ctrl+c":
		return true, tea.Quit
	case key.Matches(msg, m.keys.quit) && !typing:
		return true, tea.Quit
	case key.Matches(msg, m.keys.nextFocus):
		m.focus = (m.focus + 1) % len(m.columns)
		return true, nil
	case key.Matches(msg, m.keys.prevFocus):
		m.focus = (m.focus - 1 + len(m.columns)) % len(m.columns)
		return true, nil
	case key.Matches(msg, m.keys.toggleHelp) && !typing:
		m.showHelp = !m.showHelp
		return true, nil
	case key.Matches(msg, m.keys.toggleLogs) && !typing:
		m.showLogs = !m.showLogs
		m.applyLayout()
		return true, nil
	case key.Matches(msg, m.keys.reload) && !typing && focusArea(m.focus) == focusRows:
		if m.expanded != nil {
			m.rowsLoading = true
			m.rowsCol.SetLoading(true)
			m.spinnerMessage = "Loading " + m.expanded.DisplayName
			m.spinnerActive = true
			return true, m.loadRowsCmd(*m.expanded)
		}
		return true, nil
	case key.Matches(msg, m.keys.pin) && !typing && focusArea(m.focus) == focusCatalog:
		m.togglePinnedTable()
		return true, nil
	case key.Matches(msg, m.keys.add) && !typing && focusArea(m.focus) == focusRows:
		m.requestAdd()
		return true, nil
	case key.Matches(msg, m.keys.edit) && !typing && focusArea(m.focus) == focusRows:
		m.requestEdit()
		return true, nil
	case key.Matches(msg, m.keys.remove) && !typing && focusArea(m.focus) == focusRows:
		m.requestDelete()
		return true, nil
	case key.Matches(msg, m.keys.export) && !typing && focusArea(m.focus) == focusRows:
		if m.expanded != nil && len(m.rowsCol.VisibleRows()) > 0 {
			m.emitTelemetry("export", *m.expanded, "")
			return true, m.exportCmd(*m.expanded, m.rowsCol.VisibleRows())
		}
		m.setToast("Nothing to export", 3*time.Second)
		return true, nil
	case key.Matches(msg, m.keys.copyRow) && !typing && focusArea(m.focus) == focusRows:
		m.copySelectedRow()
		return true, nil
	case key.Matches(msg, m.keys.copyCell) && !typing && focusArea(m.focus) == focusRows:
		m.copySelectedCell()
		return true, nil
	}
	return false, nil
}

func (m *model) handleCatalogLoaded(msg catalogLoadedMsg) {
	m.catalogLoading = false
	m.spinnerActive = false
	if msg.err != nil {
		// all-or-nothing: without column schemas no table can render
		m.catalogErr = msg.err
		m.appendLog("[ERROR] " + msg.err.Error())
		return
	}
	m.catalogErr = nil
	m.groups = groupCatalog(msg.descriptors)
	m.catalogCol.SetGroups(m.groups, m.expandedKey(), m.pinnedKeys)
	m.appendLog(fmt.Sprintf("[INFO] Catalog loaded: %d tables in %d groups", len(msg.descriptors), len(m.groups)))
}

func (m *model) expandedKey() string {
	if m.expanded == nil {
		return ""
	}
	return m.expanded.Key
}

// handleTableSelected applies the accordion rule: one expanded table at a
// time, selecting the expanded one collapses it.
func (m *model) handleTableSelected(desc tableDescriptor) tea.Cmd {
	if m.expanded != nil && m.expanded.Key == desc.Key {
		m.expanded = nil
		m.rowsCol.Clear()
		m.catalogCol.SetGroups(m.groups, "", m.pinnedKeys)
		m.previewCol.SetContent(RenderMarkdown(helpMarkdown))
		return nil
	}
	expanded := desc
	m.expanded = &expanded
	m.rowsCol.SetTable(desc)
	m.rowsLoading = true
	m.rowsCol.SetLoading(true)
	m.catalogCol.SetGroups(m.groups, desc.Key, m.pinnedKeys)
	m.spinnerMessage = "Loading " + desc.DisplayName
	m.spinnerActive = true
	m.focus = int(focusRows)
	m.emitTelemetry("table_open", desc, "")
	return m.loadRowsCmd(desc)
}

func (m *model) handleRowsLoaded(msg rowsLoadedMsg) {
	if m.expanded == nil || m.expanded.Key != msg.tableKey {
		return
	}
	if msg.token < m.listTokens[msg.tableKey] {
		// a newer fetch for this table is already in flight or landed
		return
	}
	m.rowsLoading = false
	m.rowsCol.SetLoading(false)
	m.spinnerActive = false
	if msg.err != nil {
		// keep whatever rows were already shown
		m.setToast(msg.err.Error(), 6*time.Second)
		m.appendLog("[ERROR] " + msg.err.Error())
		return
	}
	m.rowsCol.SetRows(msg.rows)
	m.appendLog(fmt.Sprintf("[INFO] %s: %d rows", msg.tableKey, len(msg.rows)))
	if row, ok := m.rowsCol.SelectedRow(); ok {
		m.updatePreview(row)
	} else {
		m.previewCol.SetContent(m.styles.emptyState.Render("No entry selected"))
	}
}

func (m *model) requestAdd() {
	if m.expanded == nil {
		return
	}
	form := newFormModel(*m.expanded, nil, m.styles)
	m.form = &form
}

func (m *model) requestEdit() {
	if m.expanded == nil {
		return
	}
	row, ok := m.rowsCol.SelectedRow()
	if !ok {
		m.setToast("No entry selected", 3*time.Second)
		return
	}
	form := newFormModel(*m.expanded, row, m.styles)
	m.form = &form
}

func (m *model) requestDelete() {
	if m.expanded == nil {
		return
	}
	row, ok := m.rowsCol.SelectedRow()
	if !ok {
		m.setToast("No entry selected", 3*time.Second)
		return
	}
	m.confirmOpen = true
	m.confirmRow = row
}

func (m *model) handleSaveDone(msg saveDoneMsg) tea.Cmd {
	m.spinnerActive = false
	if msg.err != nil {
		if m.form != nil {
			failed := m.form.saveFailed(msg.err.Error())
			m.form = &failed
		}
		m.appendLog("[ERROR] " + msg.err.Error())
		return nil
	}
	m.form = nil
	verb := "added"
	event := "row_create"
	if msg.mode == formUpdate {
		verb = "updated"
		event = "row_update"
	}
	m.setToast("Entry "+verb, 4*time.Second)
	if m.expanded != nil && m.expanded.Key == msg.tableKey {
		m.emitTelemetry(event, *m.expanded, "")
		m.rowsLoading = true
		m.rowsCol.SetLoading(true)
		return m.loadRowsCmd(*m.expanded)
	}
	return nil
}

func (m *model) handleDeleteDone(msg deleteDoneMsg) tea.Cmd {
	m.spinnerActive = false
	m.deleting = false
	if msg.err != nil {
		// no optimistic removal: the row is still listed
		m.closeConfirm()
		m.setToast(msg.err.Error(), 6*time.Second)
		m.appendLog("[ERROR] " + msg.err.Error())
		return nil
	}
	m.closeConfirm()
	m.setToast("Entry deleted", 4*time.Second)
	if m.expanded != nil && m.expanded.Key == msg.tableKey {
		m.emitTelemetry("row_delete", *m.expanded, msg.rowID)
		m.rowsLoading = true
		m.rowsCol.SetLoading(true)
		return m.loadRowsCmd(*m.expanded)
	}
	return nil
}

// togglePinnedTable pins or unpins the highlighted catalog table and
// persists the pinned set.
func (m *model) togglePinnedTable() {
	desc, ok := m.catalogCol.SelectedTable()
	if !ok {
		return
	}
	if m.pinnedKeys[desc.Key] {
		delete(m.pinnedKeys, desc.Key)
		m.setToast("Unpinned "+desc.DisplayName, 3*time.Second)
	} else {
		m.pinnedKeys[desc.Key] = true
		m.setToast("Pinned "+desc.DisplayName, 3*time.Second)
	}
	m.catalogCol.SetGroups(m.groups, m.expandedKey(), m.pinnedKeys)

	if m.uiConfig == nil || m.uiConfigPath == "" {
		return
	}
	pinned := make([]string, 0, len(m.pinnedKeys))
	for key := range m.pinnedKeys {
		pinned = append(pinned, key)
	}
	sort.Strings(pinned)
	m.uiConfig.Pinned = pinned
	if err := saveUIConfig(m.uiConfig, m.uiConfigPath); err != nil {
		m.appendLog("[ERROR] save config: " + err.Error())
	}
}

func (m *model) updatePreview(row lookupItem) {
	if m.expanded == nil || row == nil {
		return
	}
	m.previewCol.SetContent(RenderMarkdown(rowDetailMarkdown(*m.expanded, row)))
}

func (m *model) copySelectedRow() {
	if m.expanded == nil {
		return
	}
	row, ok := m.rowsCol.SelectedRow()
	if !ok {
		return
	}
	data, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		m.setToast("Copy failed: "+err.Error(), 4*time.Second)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.setToast("Copy failed: "+err.Error(), 4*time.Second)
		return
	}
	m.setToast("Row copied as JSON", 3*time.Second)
}

func (m *model) copySelectedCell() {
	if m.expanded == nil || len(m.expanded.Columns) == 0 {
		return
	}
	row, ok := m.rowsCol.SelectedRow()
	if !ok {
		return
	}
	first := m.expanded.Columns[0]
	value := stringifyValue(row[first.Name], first.Type)
	if err := clipboard.WriteAll(value); err != nil {
		m.setToast("Copy failed: "+err.Error(), 4*time.Second)
		return
	}
	m.setToast("Copied "+first.Label, 3*time.Second)
}

func (m *model) emitTelemetry(event string, desc tableDescriptor, rowID string) {
	if m.telemetry == nil {
		return
	}
	m.telemetry.Emit(telemetryEvent{
		Event: event,
		Table: desc.Key,
		RowID: rowID,
	})
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}

func (m *model) appendLog(line string) {
	m.logLines = append(m.logLines, time.Now().Format("15:04:05")+" "+line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	m.logs.GotoBottom()
}

func (m *model) applyLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	topChrome := 1
	bottomChrome := 1

	helpWidth := m.width - 4
	if helpWidth < 0 {
		helpWidth = 0
	}
	m.help.Width = helpWidth
	helpView := m.help.View(m.keys)
	if helpView != "" {
		bottomChrome += lipgloss.Height(helpView)
	}

	bodyHeight := m.height - topChrome - bottomChrome
	if bodyHeight < 6 {
		bodyHeight = 6
	}

	if m.showLogs {
		bodyHeight -= m.logsHeight
		if bodyHeight < 3 {
			bodyHeight = 3
		}
		m.logs.Width = m.width - 2
		m.logs.Height = m.logsHeight - 2
	}

	catalogWidth := minInt(36, m.width/3)
	previewWidth := minInt(42, m.width/3)
	rowsWidth := m.width - catalogWidth - previewWidth
	if rowsWidth < 30 {
		rowsWidth = maxInt(30, m.width-catalogWidth)
		previewWidth = maxInt(0, m.width-catalogWidth-rowsWidth)
	}
	widths := []int{catalogWidth, rowsWidth, previewWidth}

	m.colWidths = widths
	m.colOffsets = make([]int, len(widths))
	offset := 0
	for i, w := range widths {
		m.colOffsets[i] = offset
		offset += w
	}

	for i, col := range m.columns {
		col.SetSize(widths[i], bodyHeight)
		m.columns[i] = col
	}
}

// rowAnchor is the screen rect of the highlighted row, the control the
// popovers attach to.
func (m *model) rowAnchor() rect {
	x := 0
	width := 20
	if len(m.colOffsets) > int(focusRows) {
		x = m.colOffsets[int(focusRows)] + 2
		width = maxInt(8, m.colWidths[int(focusRows)]-4)
	}
	y := 1 + m.rowsCol.CursorLine()
	if y > m.height-2 {
		y = m.height - 2
	}
	return rect{X: x, Y: y, Width: width, Height: 1}
}

func (m *model) View() string {
	var builder strings.Builder

	title := "lookup-admin"
	if m.client != nil {
		title += " • " + m.client.baseURL
	}
	if m.expanded != nil {
		title += " • " + m.expanded.DisplayName
	}
	builder.WriteString(m.styles.topBar.Width(m.width).Render(title))
	builder.WriteRune('\n')

	if m.catalogErr != nil {
		banner := m.styles.errorBanner.Render(
			"Could not load the table catalog:\n" + m.catalogErr.Error() +
				"\n\nThe editor needs the column schemas before any table can render.\nPress q to quit and check the server.")
		builder.WriteString(lipgloss.Place(m.width, maxInt(3, m.height-3), lipgloss.Center, lipgloss.Center, banner))
		builder.WriteRune('\n')
		builder.WriteString(m.renderStatus())
		return m.styles.app.Render(builder.String())
	}

	var colViews []string
	for i, col := range m.columns {
		colViews = append(colViews, col.View(m.styles, i == m.focus))
	}
	builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, colViews...))
	builder.WriteRune('\n')

	if m.showLogs {
		logTitle := m.styles.columnTitle.Render("Activity")
		builder.WriteString(m.styles.panel.Width(m.width).Render(logTitle + "\n" + m.logs.View()))
		builder.WriteRune('\n')
	}

	if helpView := m.help.View(m.keys); helpView != "" {
		builder.WriteString(helpView)
		if !strings.HasSuffix(helpView, "\n") {
			builder.WriteRune('\n')
		}
	}
	builder.WriteString(m.renderStatus())

	view := builder.String()

	// popover placement is recomputed on every frame
	if m.form != nil {
		overlay := m.styles.cmdOverlay.Render(m.form.View())
		content := m.form.Size()
		pos := computePosition(m.rowAnchor(), content, size{Width: m.width, Height: m.height})
		m.formRect = rect{X: pos.X, Y: pos.Y, Width: content.Width, Height: content.Height}
		view = overlayAt(view, overlay, pos)
	} else if m.confirmOpen {
		overlay := m.renderConfirm()
		content := size{Width: lipgloss.Width(overlay), Height: lipgloss.Height(overlay)}
		pos := computePosition(m.rowAnchor(), content, size{Width: m.width, Height: m.height})
		m.confirmRect = rect{X: pos.X, Y: pos.Y, Width: content.Width, Height: content.Height}
		view = overlayAt(view, overlay, pos)
	}

	if m.showHelp {
		helpBox := m.styles.cmdOverlay.Render(RenderMarkdown(helpMarkdown))
		view = overlayAt(view, helpBox, point{
			X: maxInt(0, (m.width-lipgloss.Width(helpBox))/2),
			Y: maxInt(0, (m.height-lipgloss.Height(helpBox))/2),
		})
	}

	return m.styles.app.Render(view)
}

func (m *model) renderConfirm() string {
	label := ""
	if m.expanded != nil && m.confirmRow != nil {
		label = m.expanded.RowLabel(m.confirmRow)
	}
	var b strings.Builder
	b.WriteString(m.styles.cmdPrompt.Render(fmt.Sprintf("Delete %q?", label)))
	b.WriteRune('\n')
	if m.deleting {
		b.WriteString(m.styles.cmdHint.Render("deleting…"))
	} else {
		b.WriteString(m.styles.cmdHint.Render("enter delete • esc keep"))
	}
	return m.styles.confirmOverlay.Render(b.String())
}

func (m *model) renderStatus() string {
	focusTitle := m.columns[m.focus].Title()
	focusValue := strings.TrimSpace(m.columns[m.focus].FocusValue())
	if focusValue == "" {
		focusValue = "—"
	}

	segments := []string{
		m.styles.statusSeg.Render(fmt.Sprintf("%s: %s", focusTitle, focusValue)),
	}
	if m.expanded != nil {
		total := len(m.rowsCol.rows)
		visible := len(m.rowsCol.VisibleRows())
		if visible != total {
			segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Rows: %d/%d", visible, total)))
		} else {
			segments = append(segments, m.styles.statusSeg.Render(fmt.Sprintf("Rows: %d", total)))
		}
		if term := m.rowsCol.FilterTerm(); term != "" {
			segments = append(segments, m.styles.statusSeg.Render("Filter: "+term))
		}
	}
	if m.spinnerActive {
		spin := m.spinner.View()
		if trimmed := strings.TrimSpace(m.spinnerMessage); trimmed != "" {
			spin = fmt.Sprintf("%s %s", spin, trimmed)
		}
		segments = append(segments, m.styles.statusSeg.Render(spin))
	}
	if m.toastMessage != "" {
		if time.Now().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
		}
	}
	content := strings.Join(segments, lipgloss.NewStyle().Render("│"))
	return m.styles.statusBar.Width(m.width).Render(content)
}

func pointInRect(x, y int, r rect) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
