package dynform

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
)

const pollYAML = `formTitle: Poll
formDescription: Pick one
fields:
  - id: answer
    type: radio
    label: Answer
    required: true
    options:
      - value: "yes"
        label: "Yes"
      - value: "no"
        label: "No"
`

func TestLoadSchema_DecodesByName(t *testing.T) {
	got, err := LoadSchema(context.Background(), fileio.SourceFromReader("poll.yml", strings.NewReader(pollYAML)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := FormSchema{
		FormTitle:       "Poll",
		FormDescription: "Pick one",
		Fields: []model.FieldDescriptor{{
			ID:       "answer",
			Type:     model.FieldTypeRadio,
			Label:    "Answer",
			Required: true,
			Options:  []model.FieldOption{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadSchema(context.Background(), fileio.SourceFromReader("poll.json", strings.NewReader(pollYAML))); err == nil {
		t.Fatalf("yaml under a .json name should fail")
	}
}

func TestNewRegistry_HoldsBothRenderers(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"tui", "vanilla"}, registry.List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateHTML(t *testing.T) {
	out, err := GenerateHTML(context.Background(), fileio.SourceFromReader("poll.yaml", strings.NewReader(pollYAML)))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, want := range []string{"<title>Poll</title>", `id="answer-yes"`, `data-field="answer"`} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestStoreAndSessionShareTheSchema(t *testing.T) {
	store := NewStore(DefaultSchema())
	sess := NewSession(DefaultSchema())
	if diff := cmp.Diff(store.Schema(), sess.Store().Schema()); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/page.tmpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
}
