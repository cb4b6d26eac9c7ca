package releases

import (
	"fmt"
	"strings"
)

// Criteria describes what the caller is searching for.
type Criteria struct {
	Artist string
	Album  string
}

// Term builds the worker's search query string from the criteria. Empty
// fields are omitted; quotes inside values are stripped rather than escaped
// since the worker's parser has no escape syntax.
func (c Criteria) Term() string {
	var parts []string
	if a := sanitize(c.Artist); a != "" {
		parts = append(parts, fmt.Sprintf("artist:%q", a))
	}
	if a := sanitize(c.Album); a != "" {
		parts = append(parts, fmt.Sprintf("album:%q", a))
	}
	return strings.Join(parts, " ")
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
