package stats

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sternrassler/metal-archives-client/internal/testutil"
	"github.com/Sternrassler/metal-archives-client/pkg/client"
	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s, err := Parse([]byte(testutil.StatsHTML))
	require.NoError(t, err)

	assert.Equal(t, Bands{
		Total:       142839,
		Active:      78564,
		OnHold:      3262,
		SplitUp:     49170,
		ChangedName: 4120,
		Unknown:     7723,
	}, s.Bands)
	assert.Equal(t, &Reviews{Total: 109214, UniqueAlbums: 61418}, s.Reviews)
	assert.Equal(t, Labels{Total: 43110, Active: 25046, Closed: 8201, ChangedName: 630, Unknown: 9233}, s.Labels)
	assert.Equal(t, &Users{Total: 876133, Active: 12345}, s.Users)
}

func TestParse_OptionalSections(t *testing.T) {
	html := strings.Replace(testutil.StatsHTML, "<h2>Users</h2>", "<h2>Members</h2>", 1)
	html = strings.Replace(html, "approved reviews", "reviews", 1)

	s, err := Parse([]byte(html))
	require.NoError(t, err)

	assert.Nil(t, s.Reviews)
	assert.Nil(t, s.Users)
	assert.Equal(t, "142,839 bands (78,564 active), 43,110 labels", s.Summary())
}

func TestParse_RequiredSections(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		section string
	}{
		{"no bands", strings.Replace(testutil.StatsHTML, "<h2>Bands</h2>", "<h2>Groups</h2>", 1), "bands"},
		{"no labels", strings.Replace(testutil.StatsHTML, "approved labels", "labels", 1), "labels"},
		{"maintenance page", "<html><body>Down for maintenance</body></html>", "bands"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.html))
			assert.Nil(t, s)

			var parseErr *models.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "statistic", parseErr.Kind)
			assert.Contains(t, parseErr.Reason, tt.section)
			assert.ErrorIs(t, err, models.ErrUnrecognizedPayload)
		})
	}
}

func TestLabels_Statuses(t *testing.T) {
	labels := Labels{Total: 10, Active: 4, Closed: 3, ChangedName: 2, Unknown: 1}

	assert.Equal(t, []Status{
		{"Active", 4},
		{"Closed", 3},
		{"Changed name", 2},
		{"Unknown", 1},
	}, labels.Statuses())
}

func TestSummary(t *testing.T) {
	s, err := Parse([]byte(testutil.StatsHTML))
	require.NoError(t, err)

	assert.Equal(t, "142,839 bands (78,564 active), 109,214 reviews, 43,110 labels, 876,133 users", s.Summary())
}

func TestGroup(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-4200:   "-4,200",
	}
	for n, want := range tests {
		assert.Equal(t, want, group(n))
	}
}

func TestFetch(t *testing.T) {
	site := testutil.NewMockSite()
	defer site.Close()
	site.SetResponse(testutil.StatsPath, testutil.MockResponse{StatusCode: 200, Body: testutil.StatsHTML})

	c, err := client.New(client.Config{BaseURL: site.URL(), UserAgent: "metalfeed-test/1.0", Timeout: client.DefaultConfig("").Timeout})
	require.NoError(t, err)

	s, err := Fetch(context.Background(), c, site.URL()+"/")
	require.NoError(t, err)
	assert.Equal(t, 142839, s.Bands.Total)
	assert.Equal(t, 1, site.GetPathCount(testutil.StatsPath))
}

func TestFetch_TransportErrorUnchanged(t *testing.T) {
	site := testutil.NewMockSite()
	defer site.Close()

	c, err := client.New(client.Config{BaseURL: site.URL(), UserAgent: "metalfeed-test/1.0", Timeout: client.DefaultConfig("").Timeout})
	require.NoError(t, err)

	_, err = Fetch(context.Background(), c, site.URL())

	var transportErr *client.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.IsNotFound())
}
