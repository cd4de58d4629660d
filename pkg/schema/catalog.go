package schema

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// Entry is one schema loaded into a Catalog.
type Entry struct {
	Name     string
	Path     string
	Document Document
	Schema   model.FormSchema
	Lint     validation.SchemaValidationResult
}

// Catalog is a named set of schemas loaded from a directory tree.
type Catalog struct {
	entries map[string]Entry
}

// LoadFS walks fsys and parses every JSON/YAML schema file. Entries are named
// after the file path without its extension. When fsys is nil the catalog is
// empty. The first file that fails to parse aborts the load.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{entries: make(map[string]Entry)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", p, err)
		}
		doc, err := NewDocument(p, data)
		if err != nil {
			return fmt.Errorf("schema: file %s: %w", p, err)
		}
		parsed, err := doc.Schema()
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(p, path.Ext(p))
		if _, exists := catalog.entries[name]; exists {
			return fmt.Errorf("schema: duplicate schema name %q (file %s)", name, p)
		}
		catalog.entries[name] = Entry{
			Name:     name,
			Path:     p,
			Document: doc,
			Schema:   parsed,
			Lint:     validation.Lint(parsed),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Get returns the entry registered under name.
func (c *Catalog) Get(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.entries[name]
	if ok {
		entry.Schema = entry.Schema.Clone()
	}
	return entry, ok
}

// Names returns the sorted entry names.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of loaded schemas.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func isSchemaFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
