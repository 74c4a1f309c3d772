package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

type rawEvent struct {
	SessionID string            `json:"session_id"`
	Timestamp string            `json:"timestamp"`
	Event     string            `json:"event"`
	Table     string            `json:"table,omitempty"`
	RowID     string            `json:"row_id,omitempty"`
	ExtraJSON map[string]string `json:"extra_json,omitempty"`
}

type attribute struct {
	label string
	value string
}

func main() {
	var inputPath string
	var outputPath string
	var tableFilter string
	flag.StringVar(&inputPath, "in", "", "input ndjson event file (required)")
	flag.StringVar(&outputPath, "out", "", "output file path (optional, defaults to stdout)")
	flag.StringVar(&tableFilter, "table", "", "only show events for this table key")
	flag.Parse()

	if inputPath == "" {
		exitWithError(errors.New("missing --in path"))
	}

	events, err := parseEventFile(inputPath)
	if err != nil {
		exitWithError(fmt.Errorf("parse events: %w", err))
	}
	if tableFilter != "" {
		events = filterByTable(events, tableFilter)
	}

	rendered := renderEvents(events)
	if outputPath == "" {
		fmt.Println(rendered)
		return
	}
	if err := os.WriteFile(outputPath, []byte(rendered+"\n"), 0o644); err != nil {
		exitWithError(fmt.Errorf("write output: %w", err))
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "eventlog: %v\n", err)
	os.Exit(1)
}

func parseEventFile(path string) ([]rawEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseEvents(bufio.NewScanner(file))
}

func parseEvents(scanner *bufio.Scanner) ([]rawEvent, error) {
	var events []rawEvent
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var evt rawEvent
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func filterByTable(events []rawEvent, table string) []rawEvent {
	var out []rawEvent
	for _, evt := range events {
		if evt.Table == table {
			out = append(out, evt)
		}
	}
	return out
}

func renderEvents(events []rawEvent) string {
	var out []string
	session := ""
	for _, evt := range events {
		if evt.SessionID != session {
			session = evt.SessionID
			out = append(out, "==================")
			out = append(out, "Session "+session)
			out = append(out, "==================")
		}
		out = append(out, renderEvent(evt)...)
		out = append(out, "")
	}
	if len(out) > 0 {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func renderEvent(evt rawEvent) []string {
	var out []string
	out = append(out, "------------------")
	out = append(out, fmt.Sprintf("%s · %s", titleFor(evt.Event), evt.Event))
	out = append(out, "------------------")
	for _, attr := range eventAttributes(evt) {
		out = append(out, fmt.Sprintf("%s: %s", attr.label, attr.value))
	}
	return out
}

func eventAttributes(evt rawEvent) []attribute {
	attrs := []attribute{
		{label: "timestamp", value: formatTimestamp(evt.Timestamp)},
	}
	if evt.Table != "" {
		attrs = append(attrs, attribute{label: "table", value: evt.Table})
	}
	if evt.RowID != "" {
		attrs = append(attrs, attribute{label: "row_id", value: evt.RowID})
	}
	keys := make([]string, 0, len(evt.ExtraJSON))
	for k := range evt.ExtraJSON {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute{label: k, value: evt.ExtraJSON[k]})
	}
	return attrs
}

func titleFor(event string) string {
	switch event {
	case "table_open":
		return "Table Opened"
	case "row_create":
		return "Entry Added"
	case "row_update":
		return "Entry Updated"
	case "row_delete":
		return "Entry Deleted"
	case "export":
		return "CSV Export"
	default:
		return "Event"
	}
}

func formatTimestamp(raw string) string {
	if raw == "" {
		return "-"
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.Local().Format("2006-01-02 15:04:05")
	}
	return raw
}
