// Package formatting converts document sizes between byte counts and the
// human-readable form used in configuration and log output.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// ParseSize parses a size such as "6MB", "512 kb" or "1024" into bytes.
// Units are base-1024 and case-insensitive; a bare number is bytes. Sizes
// that do not fit in an int64 are rejected.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}
	if number == "" {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	scale := -1
	if unit == "" {
		scale = 0
	}
	for i, u := range units {
		if u == unit {
			scale = i
		}
	}
	if scale < 0 {
		return 0, fmt.Errorf("unknown size unit %q", unit)
	}

	bytes := value * float64(int64(1)<<(10*scale))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("size %q overflows int64", s)
	}
	return int64(bytes), nil
}

// FormatSize renders n bytes with the largest unit that keeps the value at
// or above one, using one decimal place for anything above bytes.
func FormatSize(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}

	value := float64(n)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + units[i]
}
