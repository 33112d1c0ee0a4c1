package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips any markup from operator-entered free text before storage.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
