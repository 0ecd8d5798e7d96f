package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is a base template.
type Entry struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	File string `yaml:"file" json:"file,omitempty"`
}

// Catalog is an ordered, read-only set of built-in entries.
type Catalog struct {
	entries []Entry
}

//go:embed templates/*.html
var builtinFS embed.FS

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	return &Catalog{entries: []Entry{
		{ID: "ad", Name: "AD", File: "templates/ad.html"},
	}}
}

// New returns a catalog of entries. Entries without an id or file are
// rejected, as are duplicate ids and ids in the user namespace.
func New(entries ...Entry) (*Catalog, error) {
	out := slices.Clone(entries)
	seen := make(map[string]struct{}, len(out))
	for i, e := range out {
		switch {
		case e.ID == "" || e.File == "":
			return nil, fmt.Errorf("%w: entry %d needs id and file", ErrInvalidCatalog, i)
		case IsUserID(e.ID):
			return nil, fmt.Errorf("%w: id %q uses the %q prefix", ErrInvalidCatalog, e.ID, UserPrefix)
		}
		if _, ok := seen[e.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.Name == "" {
			out[i].Name = e.ID
		}
	}
	return &Catalog{entries: out}, nil
}

type catalogFile struct {
	Templates []Entry `yaml:"templates"`
}

// Parse reads a YAML catalog:
//
//	templates:
//	  - id: ad
//	    name: AD
//	    file: templates/ad.html
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return New(f.Templates...)
}

// LoadFile parses the YAML catalog at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return Parse(data)
}

// Entries returns a copy of the built-in entries in catalog order.
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Lookup finds a built-in entry by id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	i := slices.IndexFunc(c.entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Builtin returns the embedded copy of a shipped template file.
func Builtin(file string) ([]byte, bool) {
	data, err := fs.ReadFile(builtinFS, strings.TrimPrefix(file, "/"))
	if err != nil {
		return nil, false
	}
	return data, true
}
