package validation_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

func TestValidate_RequiredFailsForEmptyValuesOfEveryType(t *testing.T) {
	types := []model.FieldType{
		model.FieldTypeText,
		model.FieldTypeTextArea,
		model.FieldTypeSelect,
		model.FieldTypeRadio,
		model.FieldTypeCheckbox,
		model.FieldTypeFile,
		model.FieldTypeEmail,
		model.FieldTypeNumber,
	}
	empties := map[string]model.FieldValue{
		"absent":     model.None(),
		"empty text": model.Text(""),
		"empty set":  model.Set(),
	}

	for _, typ := range types {
		for name, value := range empties {
			field := model.FieldDescriptor{ID: "f", Type: typ, Label: "F", Required: true}
			msg, failed := validation.Validate(field, value)
			if !failed || msg != validation.MessageRequired {
				t.Fatalf("%s/%s: expected required error, got %q (failed=%v)", typ, name, msg, failed)
			}
		}
	}
}

func TestValidate_RuleOrderFirstFailureWins(t *testing.T) {
	field := model.FieldDescriptor{
		ID:       "code",
		Type:     model.FieldTypeText,
		Required: true,
		Validation: &model.ValidationRule{
			Pattern:   `[A-Z]+`,
			Message:   "Upper case only.",
			MinLength: model.IntPtr(3),
			MaxLength: model.IntPtr(4),
		},
	}

	cases := []struct {
		value string
		want  string
	}{
		{value: "", want: validation.MessageRequired},
		{value: "ab", want: "Upper case only."},
		{value: "AB", want: "Minimum length is 3."},
		{value: "ABCDE", want: "Maximum length is 4."},
		{value: "ABC", want: ""},
		{value: "ABCD", want: ""},
	}
	for _, tc := range cases {
		got, failed := validation.Validate(field, model.Text(tc.value))
		if got != tc.want || failed != (tc.want != "") {
			t.Fatalf("value %q: got %q (failed=%v), want %q", tc.value, got, failed, tc.want)
		}
	}
}

func TestValidate_PatternMustMatchWholeValue(t *testing.T) {
	field := model.FieldDescriptor{
		ID:         "zip",
		Type:       model.FieldTypeText,
		Validation: &model.ValidationRule{Pattern: `\d{5}`},
	}

	for value, wantOK := range map[string]bool{
		"12345":   true,
		"123456":  false,
		"a12345":  false,
		"12345\n": false,
		"1234":    false,
		"":        false,
	} {
		msg, failed := validation.Validate(field, model.Text(value))
		if failed == wantOK {
			t.Fatalf("value %q: failed=%v msg=%q, want ok=%v", value, failed, msg, wantOK)
		}
		if failed && msg != validation.MessageInvalid {
			t.Fatalf("value %q: expected default message, got %q", value, msg)
		}
	}
}

func TestValidate_PatternSupportsLookahead(t *testing.T) {
	field := model.FieldDescriptor{
		ID:   "password",
		Type: model.FieldTypePassword,
		Validation: &model.ValidationRule{
			Pattern: `(?=.*\d)(?=.*[a-z]).{6,}`,
			Message: "Use letters and digits.",
		},
	}

	if msg, failed := validation.Validate(field, model.Text("abc123")); failed {
		t.Fatalf("expected match, got %q", msg)
	}
	if msg, _ := validation.Validate(field, model.Text("abcdef")); msg != "Use letters and digits." {
		t.Fatalf("expected custom message, got %q", msg)
	}
}

func TestValidate_InvalidPatternFailsTheRule(t *testing.T) {
	field := model.FieldDescriptor{
		ID:         "broken",
		Type:       model.FieldTypeText,
		Validation: &model.ValidationRule{Pattern: `([a-z`},
	}
	if _, failed := validation.Validate(field, model.Text("abc")); !failed {
		t.Fatalf("expected uncompilable pattern to fail")
	}
}

func TestValidate_PatternThatOnlyBalancesWhenWrappedIsRejected(t *testing.T) {
	for _, pattern := range []string{`[0-9]+)|(?:x`, `a)|(b`} {
		if _, err := validation.CompilePattern(pattern); err == nil {
			t.Fatalf("pattern %q: expected compile error", pattern)
		}

		field := model.FieldDescriptor{
			ID:         "code",
			Type:       model.FieldTypeText,
			Validation: &model.ValidationRule{Pattern: pattern},
		}
		for _, value := range []string{"123-not-digits", "anything-x", "a", "b"} {
			if _, failed := validation.Validate(field, model.Text(value)); !failed {
				t.Fatalf("pattern %q accepted %q", pattern, value)
			}
		}
	}
}

func TestValidate_PatternClassesAreASCII(t *testing.T) {
	field := model.FieldDescriptor{
		ID:         "pin",
		Type:       model.FieldTypeText,
		Validation: &model.ValidationRule{Pattern: `\d{3}`},
	}
	if msg, failed := validation.Validate(field, model.Text("123")); failed {
		t.Fatalf("expected ASCII digits to match, got %q", msg)
	}
	if _, failed := validation.Validate(field, model.Text("\u0661\u0662\u0663")); !failed {
		t.Fatalf("expected Arabic-Indic digits to be rejected")
	}
}

func TestValidate_LengthBoundaries(t *testing.T) {
	field := model.FieldDescriptor{
		ID:   "bio",
		Type: model.FieldTypeTextArea,
		Validation: &model.ValidationRule{
			MinLength: model.IntPtr(2),
			MaxLength: model.IntPtr(5),
		},
	}

	cases := map[int]string{
		1: "Minimum length is 2.",
		2: "",
		5: "",
		6: "Maximum length is 5.",
	}
	for size, want := range cases {
		got, _ := validation.Validate(field, model.Text(strings.Repeat("é", size)))
		if got != want {
			t.Fatalf("size %d: got %q, want %q", size, got, want)
		}
	}
}

func TestValidate_MaxLengthZeroIsEnforced(t *testing.T) {
	field := model.FieldDescriptor{
		ID:         "empty",
		Type:       model.FieldTypeText,
		Validation: &model.ValidationRule{MaxLength: model.IntPtr(0)},
	}
	if _, failed := validation.Validate(field, model.Text("")); failed {
		t.Fatalf("empty value should satisfy maxLength 0")
	}
	if msg, _ := validation.Validate(field, model.Text("x")); msg != "Maximum length is 0." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestValidate_CheckboxGroupsCountMembersAndSkipPattern(t *testing.T) {
	field := model.FieldDescriptor{
		ID:   "interests",
		Type: model.FieldTypeCheckbox,
		Validation: &model.ValidationRule{
			Pattern:   `never`,
			MinLength: model.IntPtr(1),
			MaxLength: model.IntPtr(2),
		},
	}

	if msg, _ := validation.Validate(field, model.Set()); msg != "Minimum length is 1." {
		t.Fatalf("empty set: %q", msg)
	}
	if msg, failed := validation.Validate(field, model.Set("sports", "music")); failed {
		t.Fatalf("two members should pass, got %q", msg)
	}
	if msg, _ := validation.Validate(field, model.Set("sports", "music", "travel")); msg != "Maximum length is 2." {
		t.Fatalf("three members: %q", msg)
	}
}

func TestValidate_FileFieldsOnlyCheckRequired(t *testing.T) {
	field := model.FieldDescriptor{
		ID:       "resume",
		Type:     model.FieldTypeFile,
		Required: true,
		Validation: &model.ValidationRule{
			Pattern:   `.*\.pdf`,
			MinLength: model.IntPtr(100),
		},
	}
	ref := model.File(model.FileRef{Name: "cv.docx", Size: 3})
	if msg, failed := validation.Validate(field, ref); failed {
		t.Fatalf("file with value should pass, got %q", msg)
	}
	if msg, _ := validation.Validate(field, model.None()); msg != validation.MessageRequired {
		t.Fatalf("missing file: %q", msg)
	}
}

func TestValidateAll_DeclarationOrderAndAbsentValid(t *testing.T) {
	fields := []model.FieldDescriptor{
		{ID: "name", Type: model.FieldTypeText, Required: true},
		{ID: "nickname", Type: model.FieldTypeText},
		{ID: "email", Type: model.FieldTypeEmail, Validation: &model.ValidationRule{Pattern: `[^@]+@[^@]+`, Message: "Bad email."}},
	}
	values := model.Values{
		"email": model.Text("nope"),
		"stale": model.Text("ignored"),
	}

	got := validation.ValidateAll(fields, values)
	want := map[string]string{
		"name":  validation.MessageRequired,
		"email": "Bad email.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}
