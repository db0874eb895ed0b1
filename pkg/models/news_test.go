package models

import (
	"errors"
	"testing"

	"github.com/Sternrassler/metal-archives-client/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsKind_Decode(t *testing.T) {
	page, err := NewsKind{}.Decode([]byte(testutil.NewsHTML(testutil.NewsPosts(3)...)))
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Nil(t, page.Total, "news pages never report a total")

	got := page.Items[1]
	assert.Equal(t, "News 1", got.Title)
	assert.Equal(t, "https://www.metal-archives.com/news/view/id/101", got.URL)
	assert.Equal(t, "February 27th, 2019", got.Date)
	assert.Equal(t, Link{Name: "Morrigan", URL: "https://www.metal-archives.com/users/Morrigan"}, got.Author)
	assert.Equal(t, "Body of post 1.", got.Body)
	assert.Equal(t, "News 1 (February 27th, 2019)", got.String())
}

func TestNewsKind_EmptyContainer(t *testing.T) {
	page, err := NewsKind{}.Decode([]byte(testutil.NewsHTML()))
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestNewsKind_Errors(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		row    int
		reason string
	}{
		{
			name:   "missing container",
			html:   `<html><body><p>Site under maintenance</p></body></html>`,
			row:    -1,
			reason: "could not find #news in HTML",
		},
		{
			name:   "post without title link",
			html:   `<div id="news"><div class="motd"><h3><a href="/news/view/id/1">Ok</a></h3></div><div class="motd"><h3>No link</h3></div></div>`,
			row:    1,
			reason: "missing title link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NewsKind{}.Decode([]byte(tt.html))
			assert.Nil(t, page)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "news", parseErr.Kind)
			assert.Equal(t, tt.row, parseErr.Row)
			assert.Equal(t, tt.reason, parseErr.Reason)
		})
	}
}
