package models

import "strings"

// UpcomingPageSize is the page size of the upcoming releases endpoint.
const UpcomingPageSize = 100

// UpcomingAlbum is one row of the upcoming releases list. Split releases
// list several bands.
// Cells: bands, release, type, genre, date.
type UpcomingAlbum struct {
	Bands       []Link `json:"bands"`
	Release     Link   `json:"release"`
	ReleaseType string `json:"release_type,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Date        string `json:"date,omitempty"`
}

// BandNames joins the band names with " / ".
func (a UpcomingAlbum) BandNames() string {
	names := make([]string, len(a.Bands))
	for i, b := range a.Bands {
		names[i] = b.Name
	}
	return strings.Join(names, " / ")
}

// UpcomingAlbumKind decodes the upcoming releases list.
type UpcomingAlbumKind struct{}

func (UpcomingAlbumKind) Name() string { return "upcoming_album" }

func (UpcomingAlbumKind) URLTemplate() string {
	return "/release/ajax-upcoming/json/1?sEcho=1&iDisplayStart=<DISPLAY_START>&iDisplayLength=<DISPLAY_LENGTH>"
}

func (UpcomingAlbumKind) PageSize() int { return UpcomingPageSize }

func (k UpcomingAlbumKind) Decode(data []byte) (*Page[UpcomingAlbum], error) {
	return decodeDataTable(k.Name(), data, 5, func(cells []string) (UpcomingAlbum, string) {
		bands := anchors(cells[0])
		if len(bands) == 0 {
			return UpcomingAlbum{}, "missing band link"
		}
		release, ok := firstAnchor(cells[1])
		if !ok {
			return UpcomingAlbum{}, "missing release link"
		}
		return UpcomingAlbum{
			Bands:       bands,
			Release:     release,
			ReleaseType: text(cells[2]),
			Genre:       text(cells[3]),
			Date:        text(cells[4]),
		}, ""
	})
}
