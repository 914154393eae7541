package wikipedia

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPageNotFound is returned when no article matches the query.
var ErrPageNotFound = errors.New("wikipedia: page not found")

// DisambiguationError reports a title that resolves to a disambiguation
// page. Options holds the candidate article titles in page order.
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("wikipedia: %q may refer to: %s", e.Title, strings.Join(e.Options, ", "))
}

// RedirectError is returned when a title redirects and the request asked not
// to follow redirects.
type RedirectError struct {
	Title string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("wikipedia: %q resulted in a redirect", e.Title)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("wikipedia: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// APIError is the error object the MediaWiki API returns with a 200 status.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wikipedia: api error %s: %s", e.Code, e.Info)
}
