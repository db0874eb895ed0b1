package cache

import (
	"net/http"
	"time"
)

// DefaultTTL is used when the site sends no usable Expires header, which is
// the normal case for the AJAX list endpoints.
const DefaultTTL = 5 * time.Minute

// NewEntry builds an Entry from response headers and an already read body.
func NewEntry(headers http.Header, body []byte, defaultTTL time.Duration) *Entry {
	entry := &Entry{
		Body:        body,
		ETag:        headers.Get("ETag"),
		ContentType: headers.Get("Content-Type"),
		Expires:     parseExpires(headers, defaultTTL),
		CachedAt:    time.Now(),
	}

	if lastModStr := headers.Get("Last-Modified"); lastModStr != "" {
		if lastMod, err := http.ParseTime(lastModStr); err == nil {
			entry.LastModified = lastMod
		}
	}

	return entry
}

// parseExpires returns the Expires header time, or now+defaultTTL when the
// header is missing or invalid. An Expires in the past yields now.
func parseExpires(headers http.Header, defaultTTL time.Duration) time.Time {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return time.Now().Add(defaultTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return time.Now().Add(defaultTTL)
	}

	if expires.Before(time.Now()) {
		return time.Now()
	}
	return expires
}

// ShouldMakeConditionalRequest reports whether the entry carries a validator.
func ShouldMakeConditionalRequest(entry *Entry) bool {
	if entry == nil {
		return false
	}
	return entry.ETag != "" || !entry.LastModified.IsZero()
}

// AddConditionalHeaders adds If-None-Match, or If-Modified-Since when no
// ETag is known.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil {
		return
	}

	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.Format(http.TimeFormat))
	}
}
