package testutil

import (
	"fmt"
	"html"
	"strings"
)

const site = "https://www.metal-archives.com"

// Paths of the list endpoints for the month used throughout the tests.
const (
	TestMonth          = "2019-02"
	BandAdditionsPath  = "/archives/ajax-band-list/selection/" + TestMonth + "/by/created//json/1"
	BandUpdatesPath    = "/archives/ajax-band-list/selection/" + TestMonth + "/by/modified//json/1"
	LatestReviewsPath  = "/review/ajax-list-browse/by/date/selection/" + TestMonth + "/json/1"
	UpcomingAlbumsPath = "/release/ajax-upcoming/json/1"
	StatsPath          = "/stats"
	NewsPathPrefix     = "/news/index/page/"
)

// BandRow builds a band list row: band, country, genre, date, added at, user.
func BandRow(i int) []string {
	return []string{
		fmt.Sprintf(`<a href="%s/bands/Band_%d/%d">Band %d</a>`, site, i, 1000+i, i),
		fmt.Sprintf(`<a href="%s/lists/SE">Sweden</a>`, site),
		"Melodic Death Metal",
		"February 2nd",
		"2019-02-02 10:00:00",
		fmt.Sprintf(`<a href="%s/users/user%d" class="profileMenu">user%d</a>`, site, i, i),
	}
}

// BandRows builds n band rows numbered from 0.
func BandRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = BandRow(i)
	}
	return rows
}

// ReviewRow builds a review row: date, review link, band, release, rating,
// author, time.
func ReviewRow(i int) []string {
	return []string{
		"February 27",
		fmt.Sprintf(`<a href="%s/reviews/Band_%d/Album/%d/user/%d">Read</a>`, site, i, 2000+i, 3000+i),
		fmt.Sprintf(`<a href="%s/bands/Band_%d/%d">Band %d</a>`, site, i, 1000+i, i),
		fmt.Sprintf(`<a href="%s/albums/Band_%d/Album/%d">Album %d</a>`, site, i, 2000+i, i),
		fmt.Sprintf("%d%%", 50+i%50),
		fmt.Sprintf(`<a href="%s/users/reviewer%d" class="profileMenu">reviewer%d</a>`, site, i, i),
		"14:32",
	}
}

// ReviewRows builds n review rows numbered from 0.
func ReviewRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = ReviewRow(i)
	}
	return rows
}

// UpcomingRow builds an upcoming release row: bands, release, type, genre,
// date. Every third row is a split with two bands.
func UpcomingRow(i int) []string {
	bands := fmt.Sprintf(`<a href="%s/bands/Band_%d/%d">Band %d</a>`, site, i, 1000+i, i)
	releaseType := "Full-length"
	if i%3 == 2 {
		bands += fmt.Sprintf(` / <a href="%s/bands/Other_%d/%d">Other %d</a>`, site, i, 5000+i, i)
		releaseType = "Split"
	}
	return []string{
		bands,
		fmt.Sprintf(`<a href="%s/albums/Band_%d/Release/%d">Release %d</a>`, site, i, 4000+i, i),
		releaseType,
		"Black Metal",
		"March 1st, 2019",
	}
}

// UpcomingRows builds n upcoming rows numbered from 0.
func UpcomingRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = UpcomingRow(i)
	}
	return rows
}

// NewsPost is one post rendered by NewsHTML.
type NewsPost struct {
	ID     int
	Title  string
	Date   string
	Author string
	Body   string
}

// NewsPosts builds n posts numbered from 0.
func NewsPosts(n int) []NewsPost {
	posts := make([]NewsPost, n)
	for i := range posts {
		posts[i] = NewsPost{
			ID:     100 + i,
			Title:  fmt.Sprintf("News %d", i),
			Date:   "February 27th, 2019",
			Author: "Morrigan",
			Body:   fmt.Sprintf("Body of post %d.", i),
		}
	}
	return posts
}

// NewsHTML renders a news page holding posts.
func NewsHTML(posts ...NewsPost) string {
	var b strings.Builder
	b.WriteString("<html><body><div id=\"content_wrapper\"><div id=\"news\">\n")
	for _, p := range posts {
		fmt.Fprintf(&b, `<div class="motd">
<h3><a href="%s/news/view/id/%d">%s</a></h3>
<p class="details"><span class="date">%s</span> by <a class="author" href="%s/users/%s">%s</a></p>
<div class="body">%s</div>
</div>
`, site, p.ID, html.EscapeString(p.Title), html.EscapeString(p.Date), site, p.Author, html.EscapeString(p.Author), html.EscapeString(p.Body))
	}
	b.WriteString("</div></div></body></html>")
	return b.String()
}

// StatsHTML is a statistics page with all four sections.
const StatsHTML = `<html><body><div id="content_wrapper">
<h1 class="page_title">Statistics</h1>
<h2>Bands</h2>
<p>There is a total of 142,839 approved bands. 78,564 are active, 3,262 are on hold, 49,170 are split-up, 4,120 changed their names and 7,723 are unknown.</p>
<h2>Reviews</h2>
<p>There is a total of 109,214 approved reviews, for 61,418 unique albums.</p>
<h2>Labels</h2>
<p>There is a total of 43,110 approved labels. 25,046 are active, 8,201 are closed, 630 changed their names and 9,233 are unknown.</p>
<h2>Users</h2>
<p>There is a total of 876,133 registered users, of which 12,345 have been active in the last month.</p>
</div></body></html>`
