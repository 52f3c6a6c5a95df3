package config

import (
	"fmt"
	"sort"

	errs "github.com/nickclare/texman/pkg/errors"
)

// Table is a decoded config document. Values are read through typed
// accessors that report shape mismatches as NOT_VALID errors naming the key.
type Table struct {
	path   string
	values map[string]any
	used   map[string]bool
}

func newTable(path string, values map[string]any) *Table {
	return &Table{path: path, values: values, used: map[string]bool{}}
}

// NewTable wraps already-decoded values. path is only used in diagnostics.
func NewTable(path string, values map[string]any) *Table {
	if values == nil {
		values = map[string]any{}
	}
	return newTable(path, values)
}

// Path returns the file the table was read from.
func (t *Table) Path() string { return t.path }

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Aliases maps alternate key spellings to their canonical key.
type Aliases map[string]string

// ApplyAliases rewrites every alternate key present in the table to its
// canonical spelling. A table holding both spellings of the same field is
// rejected as a duplicate.
func (t *Table) ApplyAliases(aliases Aliases) error {
	alternates := make([]string, 0, len(aliases))
	for alt := range aliases {
		alternates = append(alternates, alt)
	}
	sort.Strings(alternates)

	for _, alt := range alternates {
		canonical := aliases[alt]
		v, ok := t.values[alt]
		if !ok {
			continue
		}
		if _, dup := t.values[canonical]; dup {
			return errs.NotValid(t.path, nil, "duplicate field %q (also given as %q)", canonical, alt)
		}
		t.values[canonical] = v
		delete(t.values, alt)
	}
	return nil
}

// String returns the string at key, or def when the key is absent.
func (t *Table) String(key, def string) (string, error) {
	v, ok := t.lookup(key)
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", t.shapeError(key, "a string", v)
	}
	return s, nil
}

// Strings returns the string sequence at key in declaration order, or a
// copy of def when the key is absent.
func (t *Table) Strings(key string, def []string) ([]string, error) {
	v, ok := t.lookup(key)
	if !ok {
		return append([]string{}, def...), nil
	}

	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, t.shapeError(fmt.Sprintf("%s[%d]", key, i), "a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, t.shapeError(key, "an array of strings", v)
	}
}

// Unused returns the keys that no accessor has read, sorted.
func (t *Table) Unused() []string {
	var keys []string
	for k := range t.values {
		if !t.used[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (t *Table) lookup(key string) (any, bool) {
	t.used[key] = true
	v, ok := t.values[key]
	return v, ok
}

func (t *Table) shapeError(key, want string, got any) error {
	return errs.NotValid(t.path, nil, "field %q must be %s, got %T", key, want, got)
}
