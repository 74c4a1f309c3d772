package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func holidayTable() tableDescriptor {
	return tableDescriptor{
		Key:         "tblHolidays",
		DisplayName: "Holidays",
		IDColumn:    "holidayID",
		Columns: []columnDescriptor{
			{Name: "holidayName", Label: "Holiday Name", Type: columnText, Required: true, MaxLength: 50},
			{Name: "holidayDate", Label: "Date", Type: columnDate, Required: true},
			{Name: "durationDays", Label: "Duration", Type: columnInteger},
			{Name: "recurring", Label: "Recurring", Type: columnBoolean},
		},
	}
}

func TestValidateColumn(t *testing.T) {
	name := columnDescriptor{Name: "n", Label: "Name", Type: columnText, Required: true, MaxLength: 5}
	assert.NotEmpty(t, validateColumn(name, ""))
	assert.NotEmpty(t, validateColumn(name, "   "))
	assert.Empty(t, validateColumn(name, "abc"))
	assert.NotEmpty(t, validateColumn(name, "abcdef"), "over max length")
	assert.Empty(t, validateColumn(name, "şğüıö"), "max length counts characters, not bytes")
	assert.NotEmpty(t, validateColumn(name, "şğüıöç"))

	count := columnDescriptor{Name: "c", Label: "Count", Type: columnInteger, Required: true}
	assert.NotEmpty(t, validateColumn(count, "abc"))
	assert.Empty(t, validateColumn(count, "0"), "zero is a value, not an empty field")
	assert.Empty(t, validateColumn(count, "-3"))

	optional := columnDescriptor{Name: "o", Label: "Opt", Type: columnInteger}
	assert.Empty(t, validateColumn(optional, ""))
	assert.NotEmpty(t, validateColumn(optional, "1.5"))

	flag := columnDescriptor{Name: "f", Label: "Flag", Type: columnBoolean, Required: true}
	assert.Empty(t, validateColumn(flag, "false"), "booleans are exempt from required")
}

func TestSubmitCollectsAllErrors(t *testing.T) {
	form := newFormModel(holidayTable(), nil, newStyles())
	form.fields[2].input.SetValue("soon")

	result, cmd := form.submit()
	assert.Nil(t, cmd, "an invalid form must not reach the network")
	assert.False(t, result.saving)
	assert.NotEmpty(t, result.fields[0].err, "missing required name")
	assert.NotEmpty(t, result.fields[1].err, "missing required date")
	assert.NotEmpty(t, result.fields[2].err, "non-numeric integer")
	assert.Empty(t, result.fields[3].err)
}

func TestSubmitEmitsDraftWithDeclaredKeys(t *testing.T) {
	form := newFormModel(holidayTable(), nil, newStyles())
	form.fields[0].input.SetValue("New Year")
	form.fields[1].input.SetValue("2025-01-01")
	form.fields[3].boolValue = true

	result, cmd := form.submit()
	require.NotNil(t, cmd)
	assert.True(t, result.saving)

	msg, ok := cmd().(formSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, formCreate, msg.mode)
	require.Len(t, msg.draft, 4)
	assert.Equal(t, "New Year", msg.draft["holidayName"])
	assert.Equal(t, "2025-01-01", msg.draft["holidayDate"])
	assert.Nil(t, msg.draft["durationDays"], "empty optional integer is sent as null")
	assert.Equal(t, true, msg.draft["recurring"])
}

func TestSubmitParsesIntegerDraftValue(t *testing.T) {
	form := newFormModel(holidayTable(), nil, newStyles())
	form.fields[0].input.SetValue("Eid")
	form.fields[1].input.SetValue("2025-03-30")
	form.fields[2].input.SetValue(" 3 ")

	_, cmd := form.submit()
	require.NotNil(t, cmd)
	msg := cmd().(formSubmitMsg)
	assert.Equal(t, 3, msg.draft["durationDays"])
}

func TestEditModePrefillsAndTargetsRow(t *testing.T) {
	row := lookupItem{
		"holidayID":    float64(12),
		"holidayName":  "Republic Day",
		"holidayDate":  "2024-10-29T00:00:00",
		"durationDays": float64(1),
		"recurring":    true,
	}
	form := newFormModel(holidayTable(), row, newStyles())

	assert.Equal(t, formUpdate, form.mode)
	assert.Equal(t, "12", form.rowID)
	assert.Equal(t, "Republic Day", form.fields[0].input.Value())
	assert.Equal(t, "2024-10-29", form.fields[1].input.Value(), "timestamp trimmed to the date part")
	assert.Equal(t, "1", form.fields[2].input.Value())
	assert.True(t, form.fields[3].boolValue)
}

func TestEscBlockedWhileSaving(t *testing.T) {
	form := newFormModel(holidayTable(), nil, newStyles())
	form.saving = true

	result, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.True(t, result.saving)

	result.saving = false
	_, cmd = result.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok := cmd().(formCancelMsg)
	assert.True(t, ok)
}

func TestDoubleSubmitIsIgnoredWhileSaving(t *testing.T) {
	form := newFormModel(holidayTable(), nil, newStyles())
	form.fields[0].input.SetValue("X")
	form.fields[1].input.SetValue("2025-01-01")

	first, cmd := form.submit()
	require.NotNil(t, cmd)
	_, second := first.submit()
	assert.Nil(t, second, "a save in flight swallows further submits")
}

func TestSaveFailedKeepsDraftAndShowsError(t *testing.T) {
	form := newFormModel(holidayTable(), nil, newStyles())
	form.fields[0].input.SetValue("Bayram")
	form.fields[1].input.SetValue("2025-04-10")
	saving, _ := form.submit()
	require.True(t, saving.saving)

	failed := saving.saveFailed("Holiday already exists")
	assert.False(t, failed.saving)
	assert.Equal(t, "Holiday already exists", failed.serverError)
	assert.Equal(t, "Bayram", failed.fields[0].input.Value(), "draft survives a rejected save")
}

func TestSpaceTogglesBooleanField(t *testing.T) {
	form := newFormModel(holidayTable(), nil, newStyles())
	form.focusIndex = 3
	form.applyFocus()

	toggled, _ := form.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, toggled.fields[3].boolValue)
	toggled, _ = toggled.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, toggled.fields[3].boolValue)

	toggled.saving = true
	frozen, _ := toggled.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, frozen.fields[3].boolValue, "the draft is frozen while a save is in flight")
}
