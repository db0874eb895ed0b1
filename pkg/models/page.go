package models

// Page is one decoded batch of records.
type Page[T any] struct {
	// Items in server order.
	Items []T

	// Total is the server-reported record count across all pages, nil when
	// the payload carries no usable total.
	Total *int
}

// Link is an anchor found in a payload.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// IsZero reports whether the link carries neither name nor URL.
func (l Link) IsZero() bool {
	return l.Name == "" && l.URL == ""
}
