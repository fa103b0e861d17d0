package core

import (
	"strconv"
	"strings"
	"time"
)

var NowFunc = time.Now // mockable

// Now returns the current UTC time.
func Now() time.Time {
	return NowFunc().UTC()
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// StringValue dereferences `s`, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func IntString(i int) string {
	return strconv.Itoa(i)
}
