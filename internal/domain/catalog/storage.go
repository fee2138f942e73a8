package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var storageRegex = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*(tb|gb)?`)

// ParseStorageGB extracts the capacity in gigabytes from values like
// "512", "512GB", "1 TB" or "512 GB SSD".
func ParseStorageGB(s string) (float64, error) {
	m := storageRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("no numeric storage size in %q", s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse storage %q: %w", s, err)
	}
	if strings.EqualFold(m[2], "tb") {
		v *= 1024
	}
	return v, nil
}

// FormatStorage renders a capacity as "512GB" or "1TB".
func FormatStorage(gb float64) string {
	if gb >= 1024 && int(gb)%1024 == 0 {
		return fmt.Sprintf("%dTB", int(gb)/1024)
	}
	return strconv.FormatFloat(gb, 'f', -1, 64) + "GB"
}
