package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formMode int

const (
	formCreate formMode = iota
	formUpdate
)

type formSubmitMsg struct {
	draft map[string]any
	mode  formMode
	rowID string
}

type formCancelMsg struct{}

type formField struct {
	column    columnDescriptor
	input     textinput.Model
	area      textarea.Model
	boolValue bool
	err       string
}

func (f *formField) value() string {
	switch {
	case f.column.Type == columnBoolean:
		if f.boolValue {
			return "true"
		}
		return "false"
	case f.column.Multiline():
		return f.area.Value()
	default:
		return f.input.Value()
	}
}

type formModel struct {
	table       tableDescriptor
	mode        formMode
	rowID       string
	fields      []formField
	focusIndex  int
	saving      bool
	serverError string
	styles      styles
}

// newFormModel builds one control per declared column in declaration
// order, pre-filled from editing when present.
func newFormModel(table tableDescriptor, editing lookupItem, s styles) formModel {
	form := formModel{
		table:  table,
		mode:   formCreate,
		styles: s,
	}
	if editing != nil {
		form.mode = formUpdate
		form.rowID = table.RowID(editing)
	}
	for _, col := range table.Columns {
		field := formField{column: col}
		initial := ""
		if editing != nil {
			initial = stringifyValue(editing[col.Name], col.Type)
			if col.Type == columnBoolean {
				field.boolValue = truthyValue(editing[col.Name])
				initial = ""
			}
		}
		switch {
		case col.Type == columnBoolean:
			// toggle, no text control
		case col.Multiline():
			area := textarea.New()
			area.Prompt = ""
			area.ShowLineNumbers = false
			area.SetHeight(3)
			area.SetWidth(formInputWidth)
			if col.MaxLength > 0 {
				area.CharLimit = col.MaxLength
			}
			area.SetValue(initial)
			area.Blur()
			field.area = area
		default:
			input := textinput.New()
			input.Prompt = ""
			input.Width = formInputWidth
			if col.MaxLength > 0 {
				input.CharLimit = col.MaxLength
			}
			if col.Type == columnDate {
				input.Placeholder = "YYYY-MM-DD"
			}
			input.SetValue(initial)
			input.Blur()
			field.input = input
		}
		form.fields = append(form.fields, field)
	}
	form.applyFocus()
	return form
}

const formInputWidth = 36

func (f *formModel) applyFocus() {
	for i := range f.fields {
		field := &f.fields[i]
		if field.column.Type == columnBoolean {
			continue
		}
		if i == f.focusIndex {
			if field.column.Multiline() {
				field.area.Focus()
			} else {
				field.input.Focus()
			}
		} else {
			field.area.Blur()
			field.input.Blur()
		}
	}
}

func (f *formModel) moveFocus(delta int) {
	count := len(f.fields)
	if count == 0 {
		return
	}
	f.focusIndex = (f.focusIndex + delta + count) % count
	f.applyFocus()
}

func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			// esc is ignored while a save is in flight
			if f.saving {
				return f, nil
			}
			return f, func() tea.Msg { return formCancelMsg{} }
		case "tab", "down":
			if !f.currentFieldWantsKey(keyMsg.String()) {
				f.moveFocus(1)
				return f, nil
			}
		case "shift+tab", "up":
			if !f.currentFieldWantsKey(keyMsg.String()) {
				f.moveFocus(-1)
				return f, nil
			}
		case " ", "space":
			if field := f.currentField(); field != nil && !f.saving && field.column.Type == columnBoolean {
				field.boolValue = !field.boolValue
				return f, nil
			}
		case "ctrl+s":
			return f.submit()
		case "enter":
			if field := f.currentField(); field != nil && !field.column.Multiline() {
				return f.submit()
			}
		}
	}

	if f.saving {
		return f, nil
	}
	if field := f.currentField(); field != nil {
		var cmd tea.Cmd
		switch {
		case field.column.Type == columnBoolean:
		case field.column.Multiline():
			field.area, cmd = field.area.Update(msg)
		default:
			field.input, cmd = field.input.Update(msg)
		}
		return f, cmd
	}
	return f, nil
}

// currentFieldWantsKey reports whether the focused control consumes the
// key itself, as a textarea does for up/down.
func (f *formModel) currentFieldWantsKey(key string) bool {
	field := f.currentField()
	if field == nil {
		return false
	}
	if field.column.Multiline() && (key == "up" || key == "down") {
		return true
	}
	return false
}

func (f *formModel) currentField() *formField {
	if f.focusIndex < 0 || f.focusIndex >= len(f.fields) {
		return nil
	}
	return &f.fields[f.focusIndex]
}

// submit validates every field, collecting all errors instead of stopping
// at the first, and only emits the draft when none remain.
func (f formModel) submit() (formModel, tea.Cmd) {
	if f.saving {
		return f, nil
	}
	hasErrors := false
	for i := range f.fields {
		f.fields[i].err = validateColumn(f.fields[i].column, f.fields[i].value())
		if f.fields[i].err != "" {
			hasErrors = true
		}
	}
	if hasErrors {
		return f, nil
	}
	f.saving = true
	f.serverError = ""
	draft := buildDraft(f.fields)
	mode := f.mode
	rowID := f.rowID
	return f, func() tea.Msg {
		return formSubmitMsg{draft: draft, mode: mode, rowID: rowID}
	}
}

// saveFailed keeps the popover open with the draft intact so the user can
// correct and retry.
func (f formModel) saveFailed(message string) formModel {
	f.saving = false
	f.serverError = message
	return f
}

// validateColumn applies the per-column constraints: required (booleans
// exempt, zero counts as non-empty), max length in characters to match
// the input widgets' CharLimit, integer parse.
func validateColumn(col columnDescriptor, value string) string {
	if col.Type == columnBoolean {
		return ""
	}
	trimmed := strings.TrimSpace(value)
	if col.Required && trimmed == "" {
		return fmt.Sprintf("%s is required", col.Label)
	}
	if col.MaxLength > 0 && utf8.RuneCountInString(value) > col.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", col.Label, col.MaxLength)
	}
	if col.Type == columnInteger && trimmed != "" {
		if _, err := strconv.Atoi(trimmed); err != nil {
			return fmt.Sprintf("%s must be a whole number", col.Label)
		}
	}
	return ""
}

// buildDraft produces the flat key/value body handed to the persistence
// callback. Keys are exactly the declared column names.
func buildDraft(fields []formField) map[string]any {
	draft := make(map[string]any, len(fields))
	for _, field := range fields {
		col := field.column
		switch col.Type {
		case columnBoolean:
			draft[col.Name] = field.boolValue
		case columnInteger:
			trimmed := strings.TrimSpace(field.value())
			if trimmed == "" {
				draft[col.Name] = nil
				continue
			}
			n, _ := strconv.Atoi(trimmed)
			draft[col.Name] = n
		default:
			draft[col.Name] = field.value()
		}
	}
	return draft
}

func (f formModel) View() string {
	var b strings.Builder
	title := "Add " + f.table.DisplayName
	if f.mode == formUpdate {
		title = "Edit " + f.table.DisplayName
	}
	b.WriteString(f.styles.cmdPrompt.Render(title))
	b.WriteRune('\n')

	for i, field := range f.fields {
		label := field.column.Label
		if field.column.Required && field.column.Type != columnBoolean {
			label += " *"
		}
		marker := "  "
		if i == f.focusIndex {
			marker = "> "
		}
		b.WriteString(marker + f.styles.columnTitle.Render(label))
		b.WriteRune('\n')
		switch {
		case field.column.Type == columnBoolean:
			box := "[ ]"
			if field.boolValue {
				box = "[x]"
			}
			b.WriteString("    " + box + " " + f.styles.cmdHint.Render("space toggles"))
		case field.column.Multiline():
			b.WriteString(field.area.View())
		default:
			b.WriteString("    " + field.input.View())
		}
		b.WriteRune('\n')
		if field.err != "" {
			b.WriteString("    " + f.styles.formError.Render(field.err))
			b.WriteRune('\n')
		}
	}

	if f.serverError != "" {
		b.WriteRune('\n')
		b.WriteString(f.styles.formError.Render(f.serverError))
		b.WriteRune('\n')
	}
	b.WriteRune('\n')
	if f.saving {
		b.WriteString(f.styles.cmdHint.Render("saving…"))
	} else {
		b.WriteString(f.styles.cmdHint.Render("enter save • tab next field • esc cancel"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Size reports the rendered popover dimensions for positioning.
func (f formModel) Size() size {
	view := f.styles.cmdOverlay.Render(f.View())
	return size{Width: lipgloss.Width(view), Height: lipgloss.Height(view)}
}
