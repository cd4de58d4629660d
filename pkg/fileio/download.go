package fileio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultExportName is suggested when the caller does not supply one.
const DefaultExportName = "formSchema.json"

// Downloader delivers text to the user as a named file.
type Downloader interface {
	Download(ctx context.Context, text, suggestedName string) error
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, text, suggestedName string) error

func (f DownloaderFunc) Download(ctx context.Context, text, suggestedName string) error {
	return f(ctx, text, suggestedName)
}

// SafeName reduces name to a bare file name, falling back to
// DefaultExportName.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultExportName
	}
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." {
		return DefaultExportName
	}
	return base
}

// DirSink writes downloads into a directory.
type DirSink struct {
	Dir string
	// Written records the last path written.
	Written string
}

// Download writes text to Dir/SafeName(suggestedName), replacing any
// existing file.
func (d *DirSink) Download(ctx context.Context, text, suggestedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fileio: create %s: %w", dir, err)
	}
	target := filepath.Join(dir, SafeName(suggestedName))
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return fmt.Errorf("fileio: write %s: %w", target, err)
	}
	d.Written = target
	return nil
}

// WriterSink streams the text to W, ignoring the suggested name.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Download(ctx context.Context, text, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.W == nil {
		return errors.New("fileio: writer is nil")
	}
	if _, err := io.WriteString(s.W, text); err != nil {
		return fmt.Errorf("fileio: write: %w", err)
	}
	return nil
}

// HTTPAttachment answers an HTTP request with the text as a file download.
func HTTPAttachment(w http.ResponseWriter) Downloader {
	return DownloaderFunc(func(ctx context.Context, text, suggestedName string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := SafeName(suggestedName)
		w.Header().Set("Content-Type", ContentType(name, text))
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		w.WriteHeader(http.StatusOK)
		_, err := io.WriteString(w, text)
		return err
	})
}

// ContentType picks a media type for an exported document, preferring the
// file extension and falling back to content sniffing.
func ContentType(name, text string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json; charset=utf-8"
	case ".yaml", ".yml":
		return "application/yaml; charset=utf-8"
	}
	return mimetype.Detect([]byte(text)).String()
}
