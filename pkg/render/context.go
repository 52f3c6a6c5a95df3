package render

import (
	"os"
	"strings"
)

// Context is an ordered mapping from template variable names to values.
// Insertion order is kept so the context can be inspected (and logged)
// in the order it was built.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{values: map[string]any{}}
}

// Insert sets key to v. Re-inserting an existing key replaces its value
// but keeps its original position.
func (c *Context) Insert(key string, v any) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = v
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (c *Context) Keys() []string {
	return append([]string(nil), c.keys...)
}


// Data returns a copy of the context as a plain map for template execution.
func (c *Context) Data() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// DirPath returns dir with exactly one trailing path separator.
func DirPath(dir string) string {
	sep := string(os.PathSeparator)
	return strings.TrimRight(dir, sep) + sep
}
