package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// dataTable is the envelope returned by the site's AJAX list endpoints.
type dataTable struct {
	Error        string          `json:"error"`
	TotalRecords json.RawMessage `json:"iTotalRecords"`
	Data         [][]any         `json:"aaData"`
}

// decodeDataTable decodes a DataTables payload and maps each row with
// rowFn. Rows shorter than minCells are rejected.
func decodeDataTable[T any](kind string, data []byte, minCells int, rowFn func(cells []string) (T, string)) (*Page[T], error) {
	var table dataTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, documentError(kind, "invalid json", err)
	}

	if table.Error != "" {
		return nil, documentError(kind, "server reported error: "+table.Error, nil)
	}
	if table.Data == nil {
		return nil, documentError(kind, "missing aaData", ErrUnrecognizedPayload)
	}

	page := &Page[T]{
		Items: make([]T, 0, len(table.Data)),
		Total: parseTotal(table.TotalRecords),
	}

	for i, raw := range table.Data {
		if len(raw) < minCells {
			return nil, rowError(kind, i, fmt.Sprintf("expected at least %d cells, got %d", minCells, len(raw)))
		}

		cells := make([]string, len(raw))
		for j, v := range raw {
			cells[j] = cellString(v)
		}

		item, reason := rowFn(cells)
		if reason != "" {
			return nil, rowError(kind, i, reason)
		}
		page.Items = append(page.Items, item)
	}

	return page, nil
}

// parseTotal accepts a JSON number or a quoted number. Anything else is
// treated as an absent total.
func parseTotal(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	s := strings.Trim(string(raw), `"`)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
