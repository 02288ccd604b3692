// Package content normalizes user-supplied text before it is validated or
// stored. Participant names and message bodies pass through here.
package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean strips all HTML from the input and trims surrounding whitespace.
// Chat text is rendered by arbitrary polling clients, so markup is dropped
// entirely rather than escaped.
func Clean(input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}
