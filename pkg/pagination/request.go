package pagination

import (
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
)

// Built-in template placeholders.
const (
	PlaceholderDisplayStart  = "<DISPLAY_START>"
	PlaceholderDisplayLength = "<DISPLAY_LENGTH>"
	PlaceholderPageNumber    = "<PAGE_NUMBER>"
)

var placeholderPattern = regexp.MustCompile(`<[A-Z0-9_]+>`)

// PageRequest describes one page to fetch.
type PageRequest struct {
	Kind  string
	Index int
	Size  int

	options map[string]string
}

// NewPageRequest creates a request holding its own copy of options.
func NewPageRequest(kind string, index, size int, options map[string]string) PageRequest {
	return PageRequest{
		Kind:    kind,
		Index:   index,
		Size:    size,
		options: maps.Clone(options),
	}
}

// Options returns a copy of the template options.
func (r PageRequest) Options() map[string]string {
	return maps.Clone(r.options)
}

// URL substitutes the placeholders of template and prefixes baseURL when
// the result is a path. Option keys are replaced verbatim.
func (r PageRequest) URL(baseURL, template string) (string, error) {
	pairs := []string{
		PlaceholderDisplayStart, strconv.Itoa(r.Index * r.Size),
		PlaceholderDisplayLength, strconv.Itoa(r.Size),
		PlaceholderPageNumber, strconv.Itoa(r.Index + 1),
	}
	for key, value := range r.options {
		pairs = append(pairs, key, value)
	}

	resolved := strings.NewReplacer(pairs...).Replace(template)
	if leftover := placeholderPattern.FindString(resolved); leftover != "" {
		return "", fmt.Errorf("%w: %s in %s", ErrUnresolvedPlaceholder, leftover, template)
	}

	if baseURL != "" && strings.HasPrefix(resolved, "/") {
		resolved = strings.TrimRight(baseURL, "/") + resolved
	}
	return resolved, nil
}
