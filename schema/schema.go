// Package schema provides the read-only tag id → type/level lookup that
// drives an ebml.Decoder or ebml.Encoder.
//
// Schema is deliberately minimal: it answers one question ("what is tag
// id X?") and is consulted once per tag on the decoder's hot path. The
// catalog that populates a schema is an external collaborator per
// spec.md — this package knows how to parse the JSON document shape
// spec.md §6 describes, but validating that tags appear only at
// schema-permitted levels is explicitly out of scope (spec.md
// Non-goals); Entry.Level is carried through for diagnostics only.
//
// This package intentionally does not import the root ebml package:
// ebml imports schema to resolve tags, so Entry.Type is the catalog's
// own single-letter type code rather than ebml.ElementType. The ebml
// package converts that code to its own type on lookup.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// Entry describes one tag id's schema-declared type and nesting level.
// Type is one of the eight single-letter EBML type codes: "m" (master),
// "u" (uint), "i" (int), "f" (float), "s" (ASCII string), "8" (UTF-8
// string), "b" (binary), "d" (date).
type Entry struct {
	Name  string
	Type  string
	Level int
}

// Schema is a read-only mapping from EBML tag id to Entry. The decoder
// treats an absent key as ebml.ErrUnknownTag.
type Schema interface {
	Lookup(id int64) (Entry, bool)
}

// MapSchema is the reference in-memory Schema: a single map lookup per
// tag, which is all the hot path needs.
type MapSchema map[int64]Entry

// Lookup implements Schema.
func (m MapSchema) Lookup(id int64) (Entry, bool) {
	e, ok := m[id]
	return e, ok
}

// catalogEntry is the permissive JSON shape of one schema entry, per
// spec.md §6: required name/type/level, plus optional fields the core
// ignores but the loader must tolerate without erroring.
type catalogEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Level       int    `json:"level"`
	Description string `json:"description,omitempty"`
	CppName     string `json:"cppname,omitempty"`
	Multiple    bool   `json:"multiple,omitempty"`
	WebM        bool   `json:"webm,omitempty"`
	MinVer      int    `json:"minver,omitempty"`
	ByteSize    string `json:"bytesize,omitempty"`
	Range       string `json:"range,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// ErrInvalidSchemaEntry is returned by LoadCatalog when an entry's type
// field is not one of the eight recognized single-letter codes, or its
// key is not a decimal tag id.
var ErrInvalidSchemaEntry = fmt.Errorf("ebml/schema: invalid schema entry")

var validTypes = map[string]bool{
	"m": true, "u": true, "i": true, "f": true,
	"s": true, "8": true, "b": true, "d": true,
}

// LoadCatalog parses the JSON catalog document read from r: an object
// whose keys are decimal string tag ids and whose values carry at least
// name/type/level. Entries with an unrecognized type are rejected at
// load time, so a Decoder can assume every Entry it is handed carries
// one of the eight known type codes.
func LoadCatalog(r io.Reader) (MapSchema, error) {
	var raw map[string]catalogEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("ebml/schema: decode catalog: %w", err)
	}
	out := make(MapSchema, len(raw))
	for key, ce := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: id %q is not a decimal integer", ErrInvalidSchemaEntry, key)
		}
		if !validTypes[ce.Type] {
			return nil, fmt.Errorf("%w: id %d has unrecognized type %q", ErrInvalidSchemaEntry, id, ce.Type)
		}
		out[id] = Entry{Name: ce.Name, Type: ce.Type, Level: ce.Level}
	}
	return out, nil
}

// LoadCatalogFile is a convenience wrapper around LoadCatalog for a
// catalog stored on disk.
func LoadCatalogFile(path string) (MapSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ebml/schema: open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadCatalog(f)
}

//go:embed data/default_schema.json
var defaultCatalogFS embed.FS

var (
	defaultSchemaOnce sync.Once
	defaultSchema     MapSchema
	defaultSchemaErr  error
)

// DefaultSchema returns the built-in Matroska/WebM element catalog,
// parsed once and cached for the lifetime of the process. Every call
// returns the same cached map, so a change one caller makes to it is
// seen by every other caller; nothing in this package modifies it after
// LoadCatalog returns it.
func DefaultSchema() (MapSchema, error) {
	defaultSchemaOnce.Do(func() {
		f, err := defaultCatalogFS.Open("data/default_schema.json")
		if err != nil {
			defaultSchemaErr = fmt.Errorf("ebml/schema: open embedded default catalog: %w", err)
			return
		}
		defer func() { _ = f.Close() }()
		defaultSchema, defaultSchemaErr = LoadCatalog(f)
	})
	return defaultSchema, defaultSchemaErr
}
