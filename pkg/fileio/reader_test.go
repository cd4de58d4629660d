package fileio_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-dynform/pkg/fileio"
)

const sampleDoc = `{"formTitle": "T", "formDescription": "", "fields": []}`

func TestReadText_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := fileio.ReadText(context.Background(), fileio.SourceFromFile(path))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != sampleDoc {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestReadText_MissingFile(t *testing.T) {
	_, err := fileio.ReadText(context.Background(), fileio.SourceFromFile(filepath.Join(t.TempDir(), "nope.json")))
	var rerr *fileio.ReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", err)
	}
	if rerr.Kind != fileio.SourceKindFile {
		t.Fatalf("unexpected kind %q", rerr.Kind)
	}
}

func TestReadText_FS(t *testing.T) {
	reader := fileio.NewReader(fileio.WithFS(fstest.MapFS{
		"forms/a.yaml": {Data: []byte("formTitle: A\nfields: []\n")},
	}))

	got, err := reader.ReadText(context.Background(), fileio.SourceFromFS("/forms/a.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(got, "formTitle: A") {
		t.Fatalf("unexpected text %q", got)
	}

	if _, err := fileio.ReadText(context.Background(), fileio.SourceFromFS("forms/a.yaml")); err == nil {
		t.Fatalf("expected error when no fs is configured")
	}
}

func TestReadText_RejectsBinary(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	_, err := fileio.ReadText(context.Background(), fileio.SourceFromReader("logo.png", bytes.NewReader(png)))
	if !errors.Is(err, fileio.ErrNotText) {
		t.Fatalf("expected ErrNotText, got %v", err)
	}

	pdf := []byte("%PDF-1.4\n%\n1 0 obj\n")
	_, err = fileio.ReadText(context.Background(), fileio.SourceFromReader("doc.pdf", bytes.NewReader(pdf)))
	if !errors.Is(err, fileio.ErrNotText) {
		t.Fatalf("expected pdf to be rejected, got %v", err)
	}
}

func TestReadText_AcceptsNonJSONText(t *testing.T) {
	got, err := fileio.ReadText(context.Background(), fileio.SourceFromReader("notes.txt", strings.NewReader("not json")))
	if err != nil {
		t.Fatalf("plain text must be readable, got %v", err)
	}
	if got != "not json" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestReadText_SizeLimit(t *testing.T) {
	reader := fileio.NewReader(fileio.WithMaxBytes(8))
	_, err := reader.ReadText(context.Background(), fileio.SourceFromReader("big", strings.NewReader(strings.Repeat("a", 9))))
	if !errors.Is(err, fileio.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	got, err := reader.ReadText(context.Background(), fileio.SourceFromReader("fits", strings.NewReader(strings.Repeat("a", 8))))
	if err != nil || len(got) != 8 {
		t.Fatalf("expected exact-limit read to pass, got %q %v", got, err)
	}
}

func TestReadText_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fileio.ReadText(ctx, fileio.SourceFromReader("x", strings.NewReader(sampleDoc)))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReadText_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer srv.Close()

	if _, err := fileio.ReadText(context.Background(), fileio.SourceFromURL(srv.URL)); !errors.Is(err, fileio.ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	reader := fileio.NewReader(fileio.WithHTTPClient(srv.Client()), fileio.WithTimeout(time.Second))
	got, err := reader.ReadText(context.Background(), fileio.SourceFromURL(srv.URL+"/schema.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != sampleDoc {
		t.Fatalf("unexpected text %q", got)
	}

	if _, err := reader.ReadText(context.Background(), fileio.SourceFromURL(srv.URL+"/missing")); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestReadText_Upload(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("schema", "upload.json")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte(sampleDoc))
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/schema/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	header := req.MultipartForm.File["schema"][0]

	src := fileio.SourceFromUpload(header)
	if src.Location() != "upload.json" {
		t.Fatalf("unexpected location %q", src.Location())
	}
	got, err := fileio.ReadText(context.Background(), src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != sampleDoc {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestReadTextAsync_DeliversOnce(t *testing.T) {
	reader := fileio.NewReader()
	results := reader.ReadTextAsync(context.Background(), fileio.SourceFromReader("x", strings.NewReader(sampleDoc)))

	select {
	case res := <-results:
		if res.Err != nil || res.Text != sampleDoc {
			t.Fatalf("unexpected result %+v", res)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for result")
	}
	if _, ok := <-results; ok {
		t.Fatalf("channel should be closed after the result")
	}
}
