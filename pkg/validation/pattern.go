package validation

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// patternOptions selects ECMAScript semantics so \d, \w and \s stay ASCII the
// way browser RegExp treats them.
const patternOptions = regexp2.ECMAScript

// CompilePattern compiles a rule pattern so that it must match the entire
// value. The pattern must compile on its own before it is anchored; a pattern
// such as `a)|(b` only balances once wrapped and is rejected.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	if _, err := regexp2.Compile(pattern, patternOptions); err != nil {
		return nil, fmt.Errorf("validation: compile pattern %q: %w", pattern, err)
	}
	re, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, patternOptions)
	if err != nil {
		return nil, fmt.Errorf("validation: compile pattern %q: %w", pattern, err)
	}
	return re, nil
}
