package preference

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/lapmatch/internal/domain"
)

// Bounds are the global limits every preference range must lie within.
type Bounds struct {
	Price       Range
	Performance Range
	Portability Range
}

// DefaultBounds covers the catalog the engine ships with.
func DefaultBounds() Bounds {
	return Bounds{
		Price:       Range{Min: 15990, Max: 301990},
		Performance: Range{Min: 0, Max: 100},
		Portability: Range{Min: 0, Max: 100},
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

var tagMessages = map[string]string{
	"required": "is required",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"gtefield": "must be greater than or equal to %s",
}

// Validate checks the shape of p and that every range lies within b.
// The first violation is returned as *domain.ValidationError.
func Validate(p *Preference, b Bounds) error {
	if p == nil {
		return domain.NewValidationError("body", "is required")
	}
	if err := structValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return domain.NewValidationError("body", err.Error())
		}
		return translate(verrs[0])
	}

	checks := []struct {
		field  string
		r      *Range
		bounds Range
	}{
		{"price_range", p.Price, b.Price},
		{"performance_range", p.Performance, b.Performance},
		{"portability_range", p.Portability, b.Portability},
	}
	for _, c := range checks {
		if c.r == nil {
			continue
		}
		if !c.bounds.Covers(*c.r) {
			return domain.NewValidationError(c.field,
				fmt.Sprintf("must lie within [%g, %g]", c.bounds.Min, c.bounds.Max))
		}
	}
	return nil
}

func translate(fe validator.FieldError) error {
	// Namespace is "Preference.price_range.max"; drop the type name.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return domain.NewValidationError(field, "failed "+fe.Tag()+" check")
	}
	if strings.Contains(msg, "%s") {
		param := fe.Param()
		if fe.Tag() == "gtefield" {
			param = strings.ToLower(param)
		}
		msg = fmt.Sprintf(msg, param)
	}
	return domain.NewValidationError(field, msg)
}
