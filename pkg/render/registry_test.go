package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
)

type stubRenderer struct {
	name string
	err  error
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }

func (s stubRenderer) Render(_ context.Context, schema model.FormSchema, _ render.RenderOptions) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(schema.FormTitle), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry(stubRenderer{name: "text"})
	registry.MustRegister(stubRenderer{name: "broken", err: errors.New("boom")})

	if err := registry.Register(stubRenderer{name: "text"}); !errors.Is(err, render.ErrDuplicateRenderer) {
		t.Fatalf("expected duplicate registration to fail, got %v", err)
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if diff := cmp.Diff([]string{"broken", "text"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has("text") || registry.Has("html") {
		t.Fatalf("Has reports wrong membership")
	}

	out, err := registry.Render(context.Background(), "text", model.FormSchema{FormTitle: "Hello"}, render.RenderOptions{})
	if err != nil || string(out) != "Hello" {
		t.Fatalf("unexpected render %q %v", out, err)
	}
	if _, err := registry.Render(context.Background(), "missing", model.FormSchema{}, render.RenderOptions{}); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}
	_, err = registry.Render(context.Background(), "broken", model.FormSchema{}, render.RenderOptions{})
	if err == nil || !strings.Contains(err.Error(), "render: broken: boom") {
		t.Fatalf("expected wrapped renderer error, got %v", err)
	}
}

func TestHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(map[string]string{" version ": "1"}, render.CSRFToken("tok"), render.Hidden("", "x"))
	got := render.SortedHiddenFields(merged)
	want := []render.HiddenField{{Name: "_csrf", Value: "tok"}, {Name: "version", Value: "1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if render.MergeHiddenFields(nil) != nil {
		t.Fatalf("expected nil for no fields")
	}
}
