package statline

import (
	"fmt"
	"regexp"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// formatName builds the final dotted metric name shipped on the wire. The format string is
// printf-substituted only when substitution arguments are present; a configured prefix is
// joined with a "." separator; every whitespace run in the result collapses to a single
// underscore, since whitespace is not representable in the line protocol.
//
// Returns the empty string when no name material is present. Name formatting never consumes
// value arguments: values are threaded to the emitters separately.
func formatName(prefix string, format string, args ...interface{}) string {
	name := format
	if len(args) > 0 {
		name = fmt.Sprintf(format, args...)
	}

	if name == "" {
		return ""
	}

	if prefix != "" {
		name = prefix + "." + name
	}

	return whitespaceRun.ReplaceAllString(name, "_")
}
