package validation

import (
	"fmt"
	"time"

	"github.com/goliatone/go-dynform/pkg/model"
)

const (
	// MessageRequired is reported when a required field holds no value.
	MessageRequired = "This field is required."
	// MessageInvalid is the pattern failure message when the rule has none.
	MessageInvalid = "Invalid value."
)

// DefaultMatchTimeout bounds a single pattern evaluation.
const DefaultMatchTimeout = 250 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithMatchTimeout overrides the per-match timeout. Non-positive values
// disable the timeout.
func WithMatchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// Engine evaluates field rules. It holds configuration only, so a single
// instance can be shared across goroutines.
type Engine struct {
	timeout time.Duration
}

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{timeout: DefaultMatchTimeout}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Validate runs the field rules with the default engine.
func Validate(field model.FieldDescriptor, value model.FieldValue) (string, bool) {
	return defaultEngine.Validate(field, value)
}

// ValidateAll runs the default engine across fields in declaration order.
func ValidateAll(fields []model.FieldDescriptor, values model.Values) map[string]string {
	return defaultEngine.ValidateAll(fields, values)
}

// Validate checks value against the descriptor. Rules run in a fixed order
// (required, pattern, minLength, maxLength) and the first failure wins. The
// boolean is true when a rule failed.
//
// Text checks see absent values as the empty string. Checkbox groups are
// measured by member count and skip the pattern check. File fields only take
// part in the required check.
func (e *Engine) Validate(field model.FieldDescriptor, value model.FieldValue) (string, bool) {
	if field.Required && value.IsEmpty() {
		return MessageRequired, true
	}

	rule := field.Rule()
	kind := field.Type.Normalize()
	if kind == model.FieldTypeFile || value.Kind() == model.KindFile {
		return "", false
	}

	isSet := kind == model.FieldTypeCheckbox || value.Kind() == model.KindSet
	if rule.Pattern != "" && !isSet {
		text, _ := value.AsText()
		if !e.matches(rule.Pattern, text) {
			if rule.Message != "" {
				return rule.Message, true
			}
			return MessageInvalid, true
		}
	}

	size := value.Len()
	if rule.MinLength != nil && size < *rule.MinLength {
		return fmt.Sprintf("Minimum length is %d.", *rule.MinLength), true
	}
	if rule.MaxLength != nil && size > *rule.MaxLength {
		return fmt.Sprintf("Maximum length is %d.", *rule.MaxLength), true
	}
	return "", false
}

// ValidateAll returns the failing fields keyed by id. Valid fields are absent
// from the result. Missing values default to None.
func (e *Engine) ValidateAll(fields []model.FieldDescriptor, values model.Values) map[string]string {
	out := make(map[string]string)
	for _, field := range fields {
		if msg, failed := e.Validate(field, values.Get(field.ID)); failed {
			out[field.ID] = msg
		}
	}
	return out
}

func (e *Engine) matches(pattern, text string) bool {
	re, err := CompilePattern(pattern)
	if err != nil {
		return false
	}
	if e.timeout > 0 {
		re.MatchTimeout = e.timeout
	}
	ok, err := re.MatchString(text)
	if err != nil {
		return false
	}
	return ok
}
