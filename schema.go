package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type columnType int

const (
	columnText columnType = iota
	columnInteger
	columnBoolean
	columnDate
)

// multilineThreshold is the maxLength above which a text column renders
// as a multi-line input instead of a single-line one.
const multilineThreshold = 100

func columnTypeFromString(value string) columnType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "int", "integer":
		return columnInteger
	case "bit", "boolean", "bool":
		return columnBoolean
	case "date", "datetime":
		return columnDate
	default:
		// varchar, nvarchar, text and anything unrecognised
		return columnText
	}
}

func (t columnType) String() string {
	switch t {
	case columnInteger:
		return "integer"
	case columnBoolean:
		return "boolean"
	case columnDate:
		return "date"
	default:
		return "text"
	}
}

func (t *columnType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("column type must be a string: %w", err)
	}
	*t = columnTypeFromString(raw)
	return nil
}

func (t columnType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

type columnDescriptor struct {
	Name      string     `json:"name"`
	Label     string     `json:"label"`
	Type      columnType `json:"type"`
	Required  bool       `json:"required,omitempty"`
	MaxLength int        `json:"maxLength,omitempty"`
}

func (c columnDescriptor) Multiline() bool {
	return c.Type == columnText && c.MaxLength > multilineThreshold
}

type tableDescriptor struct {
	Key         string             `json:"key"`
	DisplayName string             `json:"displayName"`
	Icon        string             `json:"icon"`
	Columns     []columnDescriptor `json:"columns"`
	IDColumn    string             `json:"idColumn"`
}

func (t tableDescriptor) Column(name string) (columnDescriptor, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return columnDescriptor{}, false
}

// RowID returns the value under the table's identifying column as a string
// suitable for a resource path segment.
func (t tableDescriptor) RowID(item lookupItem) string {
	return stringifyValue(item[t.IDColumn], columnText)
}

// RowLabel names a row by the value of the first declared column, which is
// how the delete confirmation refers to it.
func (t tableDescriptor) RowLabel(item lookupItem) string {
	if len(t.Columns) == 0 {
		return t.RowID(item)
	}
	first := t.Columns[0]
	label := stringifyValue(item[first.Name], first.Type)
	if strings.TrimSpace(label) == "" {
		return t.RowID(item)
	}
	return label
}

// lookupItem is one row of a lookup table: a flat mapping from column name
// to value as decoded from JSON. Values are display-time coerced against
// the declared column type, never rejected.
type lookupItem map[string]any

// stringifyValue coerces any fetched value to its display string for the
// declared column type. It is total: unknown shapes fall back to fmt.
func stringifyValue(value any, colType columnType) string {
	if value == nil {
		return ""
	}
	switch colType {
	case columnBoolean:
		if truthyValue(value) {
			return "Yes"
		}
		return "No"
	case columnDate:
		s := rawString(value)
		// keep just the date part of timestamp-shaped values
		if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
			return s[:10]
		}
		return s
	default:
		return rawString(value)
	}
}

func rawString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truthyValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y":
			return true
		}
		return false
	default:
		return false
	}
}

// filterRows returns the rows whose stringified value in any declared
// column contains term case-insensitively. Whitespace in the term is
// significant. An empty term matches every row. The result preserves
// order and never mutates the input.
func filterRows(rows []lookupItem, columns []columnDescriptor, term string) []lookupItem {
	needle := strings.ToLower(term)
	if needle == "" {
		return rows
	}
	var out []lookupItem
	for _, row := range rows {
		for _, col := range columns {
			value := stringifyValue(row[col.Name], col.Type)
			if strings.Contains(strings.ToLower(value), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

type tableGroup struct {
	Name   string
	Tables []tableDescriptor
}

type groupDefinition struct {
	name string
	keys []string
}

// groupDefinitions drives catalog grouping. Keys not claimed by any group
// land in a trailing "Other" group in catalog order.
var groupDefinitions = []groupDefinition{
	{name: "Scheduling", keys: []string{
		"tblHolidays",
		"tblAppointmentTypes",
		"tblTimePoints",
		"tblChairs",
		"tblCancellationReasons",
	}},
	{name: "Clinical", keys: []string{
		"tblWorkTypes",
		"tblWorkStatuses",
		"tblAlignerTypes",
		"tblAlignerMaterials",
		"tblKeywords",
		"tblDiagnoses",
	}},
	{name: "Patient Information", keys: []string{
		"tblTitles",
		"tblCities",
		"tblReferralSources",
		"tblInsuranceProviders",
		"tblOccupations",
	}},
	{name: "Templates", keys: []string{
		"tblMessageTemplates",
		"tblNoteTemplates",
		"tblLetterTemplates",
	}},
}

const otherGroupName = "Other"

// groupCatalog partitions the fetched descriptors into the static groups.
// Group order and within-group order follow the definitions; unmatched
// descriptors keep their catalog order in the trailing group.
func groupCatalog(descriptors []tableDescriptor) []tableGroup {
	byKey := make(map[string]tableDescriptor, len(descriptors))
	for _, desc := range descriptors {
		byKey[desc.Key] = desc
	}

	claimed := make(map[string]bool)
	var groups []tableGroup
	for _, def := range groupDefinitions {
		var tables []tableDescriptor
		for _, key := range def.keys {
			if desc, ok := byKey[key]; ok {
				tables = append(tables, desc)
				claimed[key] = true
			}
		}
		if len(tables) > 0 {
			groups = append(groups, tableGroup{Name: def.name, Tables: tables})
		}
	}

	var rest []tableDescriptor
	for _, desc := range descriptors {
		if !claimed[desc.Key] {
			rest = append(rest, desc)
		}
	}
	if len(rest) > 0 {
		groups = append(groups, tableGroup{Name: otherGroupName, Tables: rest})
	}
	return groups
}
