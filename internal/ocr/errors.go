package ocr

import (
	"fmt"
	"regexp"
	"strings"
)

var htmlTagRe = regexp.MustCompile(`<[^<]+?>`)

// RequestError indicates the provider rejected the request as invalid
// (HTTP 400). The message is the provider's own diagnostic with any HTML
// markup stripped, safe to surface to an end user. Not retryable.
type RequestError struct {
	Name        string
	Description string
}

func (e *RequestError) Error() string {
	if e.Description == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Description)
}

// TransportError indicates the provider was unreachable or answered with an
// unexpected status. Retryable.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ocr provider returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ocr provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// stripHTML removes markup from a provider diagnostic so it reads as plain
// text.
func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}
