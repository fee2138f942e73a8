package catalog

import (
	"regexp"
	"strings"
)

// Tier is a processor tier. Intel tiers are ordered; Ryzen is a separate family.
type Tier int

// Processor tier constants.
const (
	TierUnknown Tier = iota
	TierI3
	TierI5
	TierI7
	TierI9
	// TierRyzen is matched by family, not by rank.
	TierRyzen
)

var (
	tierNames = map[Tier]string{
		TierUnknown: "unknown",
		TierI3:      "i3",
		TierI5:      "i5",
		TierI7:      "i7",
		TierI9:      "i9",
		TierRyzen:   "ryzen",
	}

	intelTierRegex = regexp.MustCompile(`(?:^|[^a-z0-9])i([3579])(?:$|[^0-9])`)
)

// String returns the lower-case tier name.
func (t Tier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return tierNames[TierUnknown]
}

// IsIntel reports whether the tier is one of the ordered Core tiers.
func (t Tier) IsIntel() bool {
	return t >= TierI3 && t <= TierI9
}

// Satisfies reports whether an item with tier t meets a requested floor.
// Intel floors match the same or a higher Core tier; Ryzen matches Ryzen only.
func (t Tier) Satisfies(floor Tier) bool {
	switch {
	case floor == TierUnknown:
		return true
	case floor == TierRyzen:
		return t == TierRyzen
	case floor.IsIntel():
		return t.IsIntel() && t >= floor
	default:
		return false
	}
}

// ParseTier derives the tier from a processor name such as
// "Intel Core i5-1135G7" or "AMD Ryzen 7 5800H".
func ParseTier(processor string) Tier {
	p := strings.ToLower(processor)
	if strings.Contains(p, "ryzen") {
		return TierRyzen
	}
	m := intelTierRegex.FindStringSubmatch(p)
	if m == nil {
		return TierUnknown
	}
	switch m[1] {
	case "3":
		return TierI3
	case "5":
		return TierI5
	case "7":
		return TierI7
	case "9":
		return TierI9
	}
	return TierUnknown
}

// ParseTierFloor parses a requested tier such as "i5", "Core i7" or "ryzen".
// ok is false when the request names no known tier.
func ParseTierFloor(s string) (Tier, bool) {
	t := ParseTier(strings.TrimSpace(s))
	return t, t != TierUnknown
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
