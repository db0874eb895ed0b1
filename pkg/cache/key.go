package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "ma:page"

// Key identifies a cached response.
type Key struct {
	// Path is the request path, e.g. "/release/ajax-upcoming/json/1".
	Path string

	// Query holds the request query parameters.
	Query url.Values
}

// KeyFromURL builds a Key from a resolved request URL.
func KeyFromURL(u *url.URL) Key {
	return Key{
		Path:  u.Path,
		Query: u.Query(),
	}
}

// String generates a deterministic key.
// Format: ma:page:<path>:k1=v1:k2=v2a,v2b
//
// Example:
//
//	ma:page:release/ajax-upcoming/json/1:iDisplayLength=100:iDisplayStart=0:sEcho=1
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if path := strings.Trim(k.Path, "/"); path != "" {
		parts = append(parts, path)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, name+"="+strings.Join(k.Query[name], ","))
		}
	}

	return strings.Join(parts, ":")
}
