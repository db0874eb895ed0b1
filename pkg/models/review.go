package models

import (
	"strconv"
	"strings"
)

// ReviewPageSize is the page size of the review browse endpoint.
const ReviewPageSize = 200

// LatestReview is one row of the latest reviews list.
// Cells: date, review link, band, release, rating, author, time.
type LatestReview struct {
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	ReviewURL string `json:"review_url"`
	Band      Link   `json:"band"`
	Release   Link   `json:"release"`
	Rating    *int   `json:"rating,omitempty"`
	Author    Link   `json:"author"`
}

// LatestReviewKind decodes the latest reviews list.
type LatestReviewKind struct{}

func (LatestReviewKind) Name() string { return "latest_review" }

func (LatestReviewKind) URLTemplate() string {
	return "/review/ajax-list-browse/by/date/selection/" + OptionYearMonth +
		"/json/1?sEcho=1&iDisplayStart=<DISPLAY_START>&iDisplayLength=<DISPLAY_LENGTH>"
}

func (LatestReviewKind) PageSize() int { return ReviewPageSize }

func (k LatestReviewKind) Decode(data []byte) (*Page[LatestReview], error) {
	return decodeDataTable(k.Name(), data, 6, parseLatestReview)
}

func parseLatestReview(cells []string) (LatestReview, string) {
	review, ok := firstAnchor(cells[1])
	if !ok || review.URL == "" {
		return LatestReview{}, "missing review link"
	}
	band, ok := firstAnchor(cells[2])
	if !ok {
		return LatestReview{}, "missing band link"
	}
	release, ok := firstAnchor(cells[3])
	if !ok {
		return LatestReview{}, "missing release link"
	}

	r := LatestReview{
		Date:      text(cells[0]),
		ReviewURL: review.URL,
		Band:      band,
		Release:   release,
		Rating:    parseRating(text(cells[4])),
		Author:    anchorOrText(cells[5]),
	}
	if len(cells) > 6 {
		r.Time = text(cells[6])
	}
	return r, ""
}

// parseRating reads "85%" style ratings. Returns nil when unreadable.
func parseRating(s string) *int {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return nil
	}
	return &n
}
