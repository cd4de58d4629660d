package fileio_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-dynform/pkg/fileio"
)

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"":                  fileio.DefaultExportName,
		"   ":               fileio.DefaultExportName,
		"/":                 fileio.DefaultExportName,
		"..":                fileio.DefaultExportName,
		"form.json":         "form.json",
		"../../etc/passwd":  "passwd",
		"nested/dir/a.yaml": "a.yaml",
	}
	for input, want := range cases {
		if got := fileio.SafeName(input); got != want {
			t.Fatalf("SafeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDirSink_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink := &fileio.DirSink{Dir: dir}

	if err := sink.Download(context.Background(), sampleDoc, ""); err != nil {
		t.Fatalf("download: %v", err)
	}
	want := filepath.Join(dir, fileio.DefaultExportName)
	if sink.Written != want {
		t.Fatalf("written = %q, want %q", sink.Written, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != sampleDoc {
		t.Fatalf("unexpected file contents %q", data)
	}
}

func TestWriterSink(t *testing.T) {
	var buf strings.Builder
	if err := (fileio.WriterSink{W: &buf}).Download(context.Background(), "abc", "ignored.json"); err != nil {
		t.Fatalf("download: %v", err)
	}
	if buf.String() != "abc" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestHTTPAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := fileio.HTTPAttachment(rec).Download(context.Background(), sampleDoc, "formSchema.json"); err != nil {
		t.Fatalf("download: %v", err)
	}

	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename=formSchema.json` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if rec.Body.String() != sampleDoc {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestContentType_SniffsUnknownExtensions(t *testing.T) {
	got := fileio.ContentType("schema", sampleDoc)
	if !strings.HasPrefix(got, "application/json") {
		t.Fatalf("expected sniffed json type, got %q", got)
	}
}
