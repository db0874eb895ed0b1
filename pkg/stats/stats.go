// Package stats decodes the site statistics page (/stats).
package stats

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Sternrassler/metal-archives-client/pkg/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Path of the statistics page.
const Path = "/stats"

const kindName = "statistic"

// Transport performs a single GET.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Bands holds the band statistics.
type Bands struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	OnHold      int `json:"on_hold"`
	SplitUp     int `json:"split_up"`
	ChangedName int `json:"changed_name"`
	Unknown     int `json:"unknown"`
}

// Reviews holds the review statistics.
type Reviews struct {
	Total        int `json:"total"`
	UniqueAlbums int `json:"unique_albums"`
}

// Labels holds the label statistics.
type Labels struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Closed      int `json:"closed"`
	ChangedName int `json:"changed_name"`
	Unknown     int `json:"unknown"`
}

// Status is one labelled count.
type Status struct {
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// Statuses returns the label counts by status in display order.
func (l Labels) Statuses() []Status {
	return []Status{
		{"Active", l.Active},
		{"Closed", l.Closed},
		{"Changed name", l.ChangedName},
		{"Unknown", l.Unknown},
	}
}

// Users holds the user statistics.
type Users struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Statistic is the decoded statistics page. Reviews and Users are nil when
// the page omits them.
type Statistic struct {
	Bands   Bands    `json:"bands"`
	Reviews *Reviews `json:"reviews,omitempty"`
	Labels  Labels   `json:"labels"`
	Users   *Users   `json:"users,omitempty"`
}

// Summary renders the one-line text shown on the homepage.
func (s *Statistic) Summary() string {
	parts := []string{
		fmt.Sprintf("%s bands (%s active)", group(s.Bands.Total), group(s.Bands.Active)),
	}
	if s.Reviews != nil {
		parts = append(parts, fmt.Sprintf("%s reviews", group(s.Reviews.Total)))
	}
	parts = append(parts, fmt.Sprintf("%s labels", group(s.Labels.Total)))
	if s.Users != nil {
		parts = append(parts, fmt.Sprintf("%s users", group(s.Users.Total)))
	}
	return strings.Join(parts, ", ")
}

// Fetch downloads and decodes the statistics page. Transport errors are
// returned unchanged.
func Fetch(ctx context.Context, transport Transport, baseURL string) (*Statistic, error) {
	data, err := transport.Get(ctx, strings.TrimRight(baseURL, "/")+Path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

const numberPattern = `([\d,]+)`

var (
	bandsPattern = regexp.MustCompile(`total of ` + numberPattern + ` approved bands\. ` +
		numberPattern + ` are active, ` + numberPattern + ` are on hold, ` +
		numberPattern + ` are split-up, ` + numberPattern + ` changed their names and ` +
		numberPattern + ` are unknown`)

	reviewsPattern = regexp.MustCompile(`total of ` + numberPattern + ` approved reviews, for ` +
		numberPattern + ` unique albums`)

	labelsPattern = regexp.MustCompile(`total of ` + numberPattern + ` approved labels\. ` +
		numberPattern + ` are active, ` + numberPattern + ` are closed, ` +
		numberPattern + ` changed their names and ` + numberPattern + ` are unknown`)

	usersPattern = regexp.MustCompile(`total of ` + numberPattern + ` registered users, of which ` +
		numberPattern + ` have been active`)
)

// Parse decodes a statistics page. The Bands and Labels sections are
// required.
func Parse(data []byte) (*Statistic, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &models.ParseError{Kind: kindName, Row: -1, Reason: "invalid html", Err: err}
	}

	sections := map[string]string{}
	doc.Find("h2").Each(func(_ int, h *goquery.Selection) {
		title := strings.ToLower(strings.TrimSpace(h.Text()))
		sections[title] = strings.Join(strings.Fields(h.NextFiltered("p").Text()), " ")
	})

	var s Statistic

	bands, ok := match(bandsPattern, sections["bands"], 6)
	if !ok {
		return nil, missing("bands")
	}
	s.Bands = Bands{
		Total:       bands[0],
		Active:      bands[1],
		OnHold:      bands[2],
		SplitUp:     bands[3],
		ChangedName: bands[4],
		Unknown:     bands[5],
	}

	labels, ok := match(labelsPattern, sections["labels"], 5)
	if !ok {
		return nil, missing("labels")
	}
	s.Labels = Labels{
		Total:       labels[0],
		Active:      labels[1],
		Closed:      labels[2],
		ChangedName: labels[3],
		Unknown:     labels[4],
	}

	if reviews, ok := match(reviewsPattern, sections["reviews"], 2); ok {
		s.Reviews = &Reviews{Total: reviews[0], UniqueAlbums: reviews[1]}
	}
	if users, ok := match(usersPattern, sections["users"], 2); ok {
		s.Users = &Users{Total: users[0], Active: users[1]}
	}

	return &s, nil
}

func missing(section string) error {
	return &models.ParseError{
		Kind:   kindName,
		Row:    -1,
		Reason: "could not find " + section + " statistics in HTML",
		Err:    models.ErrUnrecognizedPayload,
	}
}

func match(re *regexp.Regexp, text string, n int) ([]int, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) != n+1 {
		return nil, false
	}

	values := make([]int, n)
	for i, raw := range m[1:] {
		v, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

var printer = message.NewPrinter(language.English)

// group formats n with thousands separators.
func group(n int) string {
	return printer.Sprintf("%d", n)
}
