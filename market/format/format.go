// Package format renders numbers and optional values for outbound messages.
package format

import "strconv"

// Number renders a float without a trailing ".0" for whole values.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OptionalNumber renders a possibly missing number, falling back to defaultVal.
func OptionalNumber(v *float64, defaultVal string) string {
	if v == nil {
		return defaultVal
	}
	return Number(*v)
}

// DerefString safely dereferences a *string and returns a default value if nil.
func DerefString(s *string, defaultVal string) string {
	if s != nil {
		return *s
	}
	return defaultVal
}
