package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRowsCSV(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	desc := holidayTable()
	path, err := exportRowsCSV(desc, sampleRows())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "tblHolidays-"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Holiday Name", "Date", "Duration", "Recurring"}, records[0])
	assert.Equal(t, "New Year", records[1][0])
	assert.Equal(t, "Yes", records[1][3], "boolean cells export their display form")
}

func TestExportRowsCSVEmptyTable(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path, err := exportRowsCSV(holidayTable(), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(string(data)), "\n")+1, "header only")
}
