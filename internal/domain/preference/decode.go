package preference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
)

type rangeJSON struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type preferenceJSON struct {
	Price          *rangeJSON                 `json:"price_range"`
	Performance    *rangeJSON                 `json:"performance_range"`
	Portability    *rangeJSON                 `json:"portability_range"`
	Specifications map[string]json.RawMessage `json:"specifications"`
}

// specification key aliases, after NormalizeKey.
var specKeys = map[string]string{
	"ram":                "ram",
	"ram_gb":             "ram",
	"memory":             "ram",
	"storage":            "storage",
	"storage_gb":         "storage",
	"screen_size":        "screen_size",
	"screen":             "screen_size",
	"display_size":       "screen_size",
	"processor":          "processor",
	"processor_tier":     "processor",
	"cpu":                "processor",
	"gpu":                "dedicated_gpu",
	"dedicated_gpu":      "dedicated_gpu",
	"dedicated_graphics": "dedicated_gpu",
}

var leadingNumberRegex = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)`)

// NormalizeKey lower-cases a specification key and maps spaces and hyphens
// to underscores, so "Screen Size" and "screen-size" both read screen_size.
func NormalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(k)
}

// Decode parses a preference document. Shape problems come back as
// *domain.ValidationError; bounds are checked separately by Validate.
func Decode(data []byte) (*Preference, error) {
	var raw preferenceJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, domain.NewValidationError(typeErr.Field, "must be a "+typeErr.Type.String())
		}
		return nil, domain.NewValidationError("body", "is not valid JSON")
	}

	p := &Preference{}
	var err error
	if p.Price, err = toRange("price_range", raw.Price); err != nil {
		return nil, err
	}
	if p.Performance, err = toRange("performance_range", raw.Performance); err != nil {
		return nil, err
	}
	if p.Portability, err = toRange("portability_range", raw.Portability); err != nil {
		return nil, err
	}
	if p.Specifications, err = decodeSpecifications(raw.Specifications); err != nil {
		return nil, err
	}
	return p, nil
}

func toRange(field string, r *rangeJSON) (*Range, error) {
	if r == nil {
		return nil, nil
	}
	if r.Min == nil {
		return nil, domain.NewValidationError(field+".min", "is required")
	}
	if r.Max == nil {
		return nil, domain.NewValidationError(field+".max", "is required")
	}
	return &Range{Min: *r.Min, Max: *r.Max}, nil
}

func decodeSpecifications(raw map[string]json.RawMessage) (Specifications, error) {
	var s Specifications
	for key, value := range raw {
		name, ok := specKeys[NormalizeKey(key)]
		if !ok || isNull(value) {
			continue
		}
		field := "specifications." + name
		switch name {
		case "ram":
			v, err := decodeCapacity(value)
			if err != nil {
				return s, domain.NewValidationError(field, err.Error())
			}
			s.RAMGB = &v
		case "storage":
			v, err := decodeCapacity(value)
			if err != nil {
				return s, domain.NewValidationError(field, err.Error())
			}
			s.StorageGB = &v
		case "screen_size":
			v, err := decodeNumber(value)
			if err != nil {
				return s, domain.NewValidationError(field, err.Error())
			}
			s.ScreenSize = &v
		case "processor":
			var str string
			if err := json.Unmarshal(value, &str); err != nil {
				return s, domain.NewValidationError(field, "must be a string")
			}
			tier, ok := catalog.ParseTierFloor(str)
			if !ok {
				return s, domain.NewValidationError(field, fmt.Sprintf("unknown processor tier %q", str))
			}
			s.Processor = tier
		case "dedicated_gpu":
			v, err := decodeBool(value)
			if err != nil {
				return s, domain.NewValidationError(field, err.Error())
			}
			s.DedicatedGPU = &v
		}
	}
	return s, nil
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

// decodeCapacity accepts 16, "16", "16GB", "512 GB SSD" or "1TB" and returns GB.
func decodeCapacity(v json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, errors.New("must be a number or a size string")
	}
	gb, err := catalog.ParseStorageGB(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return gb, nil
}

// decodeNumber accepts 15.6, "15.6" or "15.6 inch".
func decodeNumber(v json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, errors.New("must be a number")
	}
	m := leadingNumberRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return strconv.ParseFloat(m[1], 64)
}

// decodeBool accepts true/false, 0/1 and the strings "yes"/"no".
func decodeBool(v json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b, nil
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		switch n {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, errors.New("must be 0 or 1")
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "y":
			return true, nil
		case "0", "false", "no", "n":
			return false, nil
		}
	}
	return false, errors.New("must be a boolean")
}
