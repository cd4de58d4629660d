package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
)

func errorSchema() model.FormSchema {
	return model.FormSchema{Fields: []model.FieldDescriptor{
		{ID: "name", Type: model.FieldTypeText},
		{ID: "email", Type: model.FieldTypeEmail},
	}}
}

func TestVisibleErrors_DropsUndeclaredIDs(t *testing.T) {
	got := render.VisibleErrors(errorSchema(), map[string]string{
		"name":    "This field is required.",
		"removed": "Invalid value.",
		"email":   "  ",
	})
	want := map[string]string{"name": "This field is required."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visible errors mismatch (-want +got):\n%s", diff)
	}
	if render.VisibleErrors(errorSchema(), map[string]string{"removed": "x"}) != nil {
		t.Fatalf("expected nil when nothing is visible")
	}
}

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"/body/name":       {"Name is taken"},
		"$.data.email":     {" Email bounced ", "Email bounced"},
		"non_field_errors": {"Try again later"},
		"request/unknown":  {"Unknown field"},
		"":                 {"Try again later"},
	}

	got := render.MapErrorPayload(errorSchema(), payload)
	want := render.ErrorMapping{
		Fields: map[string]string{"name": "Name is taken", "email": "Email bounced"},
	}
	if diff := cmp.Diff(want.Fields, got.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if len(got.Form) != 2 {
		t.Fatalf("expected two form-level messages, got %v", got.Form)
	}
}

func TestMergeFormErrors(t *testing.T) {
	got := render.MergeFormErrors([]string{"a", " b "}, "b", "", "c")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}
