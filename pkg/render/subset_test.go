package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
)

func subsetSchema() model.FormSchema {
	return model.FormSchema{Fields: []model.FieldDescriptor{
		{ID: "name", Type: model.FieldTypeText},
		{ID: "email", Type: model.FieldTypeEmail},
		{ID: "resume", Type: model.FieldTypeFile},
		{ID: "cover", Type: model.FieldTypeFile},
	}}
}

func ids(schema model.FormSchema) []string {
	return schema.FieldIDs()
}

func TestApplySubset(t *testing.T) {
	cases := []struct {
		name   string
		subset render.FieldSubset
		want   []string
	}{
		{name: "empty keeps all", subset: render.FieldSubset{}, want: []string{"name", "email", "resume", "cover"}},
		{name: "ids keep declaration order", subset: render.FieldSubset{IDs: []string{"email", " name "}}, want: []string{"name", "email"}},
		{name: "types", subset: render.FieldSubset{Types: []model.FieldType{"FILE"}}, want: []string{"resume", "cover"}},
		{name: "ids or types", subset: render.FieldSubset{IDs: []string{"name"}, Types: []model.FieldType{"file"}}, want: []string{"name", "resume", "cover"}},
		{name: "ids are case-sensitive", subset: render.FieldSubset{IDs: []string{"NAME"}}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schema := subsetSchema()
			render.ApplySubset(&schema, tc.subset)
			if diff := cmp.Diff(tc.want, ids(schema)); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFieldSubset(t *testing.T) {
	got := render.ParseFieldSubset(" name, email,,name ")
	if diff := cmp.Diff([]string{"name", "email"}, got.IDs); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if !render.ParseFieldSubset("").IsEmpty() {
		t.Fatalf("blank input should be an empty subset")
	}
}
