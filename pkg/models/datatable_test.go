package models

import (
	"errors"
	"testing"

	"github.com/Sternrassler/metal-archives-client/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTotal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{"number", `1234`, intPtr(1234)},
		{"quoted number", `"42"`, intPtr(42)},
		{"zero", `0`, intPtr(0)},
		{"absent", ``, nil},
		{"null", `null`, nil},
		{"negative", `-1`, nil},
		{"garbage", `"many"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTotal([]byte(tt.raw)))
		})
	}
}

func TestDecodeDataTable_Envelope(t *testing.T) {
	kind := BandAdditionKind{}

	t.Run("rows and total", func(t *testing.T) {
		page, err := kind.Decode([]byte(testutil.DataTableJSON(testutil.BandRows(3), 1234)))
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		require.NotNil(t, page.Total)
		assert.Equal(t, 1234, *page.Total)
	})

	t.Run("no total", func(t *testing.T) {
		page, err := kind.Decode([]byte(testutil.DataTableJSON(testutil.BandRows(2), -1)))
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Nil(t, page.Total)
	})

	t.Run("empty page", func(t *testing.T) {
		page, err := kind.Decode([]byte(testutil.DataTableJSON(nil, 0)))
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		require.NotNil(t, page.Total)
		assert.Equal(t, 0, *page.Total)
	})

	t.Run("numeric cells", func(t *testing.T) {
		payload := `{"iTotalRecords": 1, "aaData": [["<a href=\"/bands/X/1\">X</a>", "Norway", "Black Metal", 2019]]}`
		page, err := kind.Decode([]byte(payload))
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "2019", page.Items[0].Date)
	})
}

func TestDecodeDataTable_Errors(t *testing.T) {
	kind := BandAdditionKind{}

	tests := []struct {
		name    string
		payload string
		row     int
		reason  string
	}{
		{"invalid json", `{"aaData": [`, -1, "invalid json"},
		{"html instead of json", `<html><body>Maintenance</body></html>`, -1, "invalid json"},
		{"missing aaData", `{"iTotalRecords": 10}`, -1, "missing aaData"},
		{"null aaData", `{"iTotalRecords": 10, "aaData": null}`, -1, "missing aaData"},
		{"server error", `{"error": "Invalid selection", "aaData": []}`, -1, "server reported error: Invalid selection"},
		{"short row", `{"aaData": [["<a href=\"/b\">B</a>"]]}`, 0, "expected at least 3 cells, got 1"},
		{"missing band anchor", `{"aaData": [["<a href=\"/b\">B</a>", "SE", "Doom"], ["Plain", "SE", "Doom"]]}`, 1, "missing band link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := kind.Decode([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, page)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "band_addition", parseErr.Kind)
			assert.Equal(t, tt.row, parseErr.Row)
			assert.Equal(t, tt.reason, parseErr.Reason)
		})
	}
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ParseError
		want string
	}{
		{
			name: "document",
			err:  &ParseError{Kind: "news", Row: -1, Reason: "could not find #news in HTML", Err: ErrUnrecognizedPayload},
			want: "parse news: could not find #news in HTML: unrecognized payload",
		},
		{
			name: "row",
			err:  &ParseError{Kind: "latest_review", Row: 4, Reason: "missing release link"},
			want: "parse latest_review: row 4: missing release link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	assert.ErrorIs(t, tests[0].err, ErrUnrecognizedPayload)
}

func intPtr(n int) *int { return &n }
