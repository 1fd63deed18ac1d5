package statline

import (
	"strconv"
	"strings"
)

// Metric kind indicators in the wire line format.
const (
	kindCounter   = "c"
	kindGauge     = "g"
	kindHistogram = "h"
)

// deletePayload is the sentinel payload instructing the aggregator to drop a metric.
const deletePayload = "delete"

// updateLine formats a value update for a typed metric: <name>:<value>|<kind>.
func updateLine(name string, kind string, value string) string {
	return name + ":" + value + "|" + kind
}

// deleteLine formats a deletion event for a typed metric: <name>:delete|<kind>.
func deleteLine(name string, kind string) string {
	return name + ":" + deletePayload + "|" + kind
}

// markLine formats a meter mark, which is a bare name with no payload.
func markLine(name string) string {
	return name
}

// meterDeleteLine formats a meter deletion: <name>:delete, with no kind indicator.
func meterDeleteLine(name string) string {
	return name + ":" + deletePayload
}

// formatValue serializes a numeric value with the minimum number of digits necessary, so that
// integer-valued updates appear on the wire without a fractional part.
func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// terminateLine guarantees exactly one trailing newline: a line already ending with one is
// passed through unmodified.
func terminateLine(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}

	return line + "\n"
}
