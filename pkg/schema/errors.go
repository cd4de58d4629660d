package schema

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-dynform/pkg/validation"
)

// ErrInvalidSchema is matched by every *ParseError through errors.Is.
var ErrInvalidSchema = errors.New("schema: invalid schema document")

// ParseError reports a document that could not be turned into a FormSchema.
// The active schema of any caller is never touched when this is returned.
type ParseError struct {
	// Source names where the text came from (file name, "editor", ...).
	Source string
	// Issues lists every problem found, each with a JSON pointer path when
	// one is known.
	Issues []validation.SchemaIssue
	// Err is the underlying decoder error, if any.
	Err error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("schema: invalid schema document")
	if e.Source != "" {
		b.WriteString(" ")
		b.WriteString(e.Source)
	}
	if len(e.Issues) > 0 {
		b.WriteString(": ")
		b.WriteString(issueText(e.Issues[0]))
		if extra := len(e.Issues) - 1; extra > 0 {
			b.WriteString(" (and ")
			b.WriteString(plural(extra))
			b.WriteString(")")
		}
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidSchema) succeed for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// Messages flattens the issues into display strings.
func (e *ParseError) Messages() []string {
	out := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		out = append(out, issueText(issue))
	}
	return out
}

func issueText(issue validation.SchemaIssue) string {
	if issue.Path == "" {
		return issue.Message
	}
	return issue.Path + ": " + issue.Message
}

func plural(n int) string {
	if n == 1 {
		return "1 more issue"
	}
	return strconv.Itoa(n) + " more issues"
}

func newParseError(source string, err error, issues ...validation.SchemaIssue) *ParseError {
	return &ParseError{Source: source, Issues: issues, Err: err}
}

func errorIssue(path, message string) validation.SchemaIssue {
	return validation.SchemaIssue{Path: path, Message: message, Severity: validation.SeverityError}
}
