// Package config reads the declarative metadata files of a texman workspace.
//
// A config file is decoded into a format-neutral [Table] first, then typed
// values are pulled out of it by a [Loadable] implementation. Splitting the
// two steps lets one set of field rules (defaults, alternate key spellings,
// shape checks) apply identically to every supported format:
//
//   - .toml: github.com/BurntSushi/toml (the canonical format)
//   - .yaml, .yml: gopkg.in/yaml.v3
//   - .json, .jsonc: github.com/tidwall/jsonc, then encoding/json
//
// # Errors
//
// Loading distinguishes three failure modes, all as [errors.Error]:
//
//   - NOT_FOUND: the file is absent (the path is carried on the error)
//   - NOT_VALID: the file is present but malformed or has the wrong shape
//   - IO_ERROR: any other read failure
//
// A missing file is an expected signal to callers such as the workspace
// resolver; a malformed one is always a hard stop.
//
// # Usage
//
//	path, err := config.Find(dir, "metadata")
//	if err != nil {
//	    return err
//	}
//	var meta DocumentMeta
//	if err := config.Load(path, &meta); err != nil {
//	    return err
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	errs "github.com/nickclare/texman/pkg/errors"
)

// Extensions lists the supported config file extensions in lookup order.
var Extensions = []string{".toml", ".yaml", ".yml", ".json", ".jsonc"}

// Loadable is implemented by types that can populate themselves from a Table.
type Loadable interface {
	FromTable(t *Table) error
}

// Load reads the config file at path and decodes it into v.
func Load(path string, v Loadable) error {
	t, err := Read(path)
	if err != nil {
		return err
	}
	return v.FromTable(t)
}

// Read reads the whole file at path and decodes it by extension.
func Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.FromFS(err, path, "config file not found")
	}
	values, err := decode(path, data)
	if err != nil {
		return nil, errs.NotValid(path, err, "malformed config")
	}
	return newTable(path, values), nil
}

// Find returns the first existing "<base><ext>" in dir, trying [Extensions]
// in order. It returns a NOT_FOUND error naming the canonical .toml path
// when none exists.
func Find(dir, base string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, base+ext)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", errs.FromFS(err, path, "stat config file")
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", errs.NotFound(filepath.Join(dir, base+Extensions[0]), "config file not found")
}

// Exists reports whether dir directly contains a "<base><ext>" config file.
func Exists(dir, base string) bool {
	_, err := Find(dir, base)
	return err == nil
}

// decode parses data according to the extension of path.
func decode(path string, data []byte) (map[string]any, error) {
	values := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &values); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// WriteTOML encodes v as TOML and writes it to path.
func WriteTOML(path string, v any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errs.FromFS(err, path, "write config file")
	}
	return nil
}
