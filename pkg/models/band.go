package models

import "fmt"

const bandListTemplate = "/archives/ajax-band-list/selection/" + OptionYearMonth +
	"/by/%s//json/1?sEcho=1&iDisplayStart=<DISPLAY_START>&iDisplayLength=<DISPLAY_LENGTH>"

// BandPageSize is the page size of the band list endpoints.
const BandPageSize = 200

// BandListing is one row of the recently added or updated band lists.
// Cells: band, country, genre, date, added at, user.
type BandListing struct {
	Band    Link   `json:"band"`
	Country Link   `json:"country"`
	Genre   string `json:"genre,omitempty"`
	Date    string `json:"date,omitempty"`
	AddedAt string `json:"added_at,omitempty"`
	User    Link   `json:"user"`
}

// BandAddition is a recently added band.
type BandAddition struct {
	BandListing
}

// BandUpdate is a recently modified band.
type BandUpdate struct {
	BandListing
}

func parseBandListing(cells []string) (BandListing, string) {
	band, ok := firstAnchor(cells[0])
	if !ok {
		return BandListing{}, "missing band link"
	}

	listing := BandListing{
		Band:    band,
		Country: anchorOrText(cells[1]),
		Genre:   text(cells[2]),
	}
	if len(cells) > 3 {
		listing.Date = text(cells[3])
	}
	if len(cells) > 4 {
		listing.AddedAt = text(cells[4])
	}
	if len(cells) > 5 {
		listing.User = anchorOrText(cells[5])
	}
	return listing, ""
}

// BandAdditionKind decodes the recently added band list.
type BandAdditionKind struct{}

func (BandAdditionKind) Name() string { return "band_addition" }

func (BandAdditionKind) URLTemplate() string {
	return fmt.Sprintf(bandListTemplate, "created")
}

func (BandAdditionKind) PageSize() int { return BandPageSize }

func (k BandAdditionKind) Decode(data []byte) (*Page[BandAddition], error) {
	return decodeDataTable(k.Name(), data, 3, func(cells []string) (BandAddition, string) {
		listing, reason := parseBandListing(cells)
		return BandAddition{listing}, reason
	})
}

// BandUpdateKind decodes the recently modified band list.
type BandUpdateKind struct{}

func (BandUpdateKind) Name() string { return "band_update" }

func (BandUpdateKind) URLTemplate() string {
	return fmt.Sprintf(bandListTemplate, "modified")
}

func (BandUpdateKind) PageSize() int { return BandPageSize }

func (k BandUpdateKind) Decode(data []byte) (*Page[BandUpdate], error) {
	return decodeDataTable(k.Name(), data, 3, func(cells []string) (BandUpdate, string) {
		listing, reason := parseBandListing(cells)
		return BandUpdate{listing}, reason
	})
}
