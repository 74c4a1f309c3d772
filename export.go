package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// exportRowsCSV writes the given rows (typically the currently filtered
// view) to a timestamped CSV in the working directory, one column per
// declared column in declaration order. Returns the written path.
func exportRowsCSV(desc tableDescriptor, rows []lookupItem) (string, error) {
	name := fmt.Sprintf("%s-%s.csv", desc.Key, time.Now().UTC().Format("20060102-150405"))
	file, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := make([]string, len(desc.Columns))
	for i, col := range desc.Columns {
		header[i] = col.Label
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("write export header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(desc.Columns))
		for i, col := range desc.Columns {
			record[i] = stringifyValue(row[col.Name], col.Type)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush export: %w", err)
	}
	return name, nil
}
