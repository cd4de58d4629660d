package tui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/goliatone/go-dynform/pkg/model"
)

// describeFile builds the reference a file picker stores for path. Only
// metadata is read; the content type is sniffed from the file header.
func describeFile(path string) (model.FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.FileRef{}, fmt.Errorf("tui: file %q: %w", path, err)
	}
	if info.IsDir() {
		return model.FileRef{}, fmt.Errorf("tui: file %q is a directory", path)
	}
	ref := model.FileRef{Name: filepath.Base(path), Size: info.Size()}
	if mtype, err := mimetype.DetectFile(path); err == nil {
		ref.ContentType = mtype.String()
	}
	return ref, nil
}
