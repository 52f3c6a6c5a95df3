package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/workspace"
)

// openWorkspace resolves the workspace enclosing dir and layers engine
// overrides over workspace.toml, lowest precedence first:
//
//	workspace.toml < <root>/.env < process environment < --engine
func (c *CLI) openWorkspace(dir, engineFlag string) (*workspace.Workspace, error) {
	templates, err := c.loadTemplates()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Resolve(dir, templates)
	if err != nil {
		return nil, err
	}

	name, source, err := engineOverride(ws.Root(), engineFlag)
	if err != nil {
		return nil, err
	}
	if name != "" {
		e, err := workspace.ParseEngine(name)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "engine from %s", source)
		}
		ws = ws.WithEngine(e)
	}

	c.Logger.Debug("loaded workspace",
		"root", ws.Root(),
		"marker", filepath.Base(ws.MarkerPath()),
		"engine", engineLabel(ws.Metadata().EngineName()),
		"source", engineSource(source, ws))
	return ws, nil
}

// engineOverride returns the highest-precedence engine override and where
// it came from, or "" when workspace.toml decides.
func engineOverride(root, flag string) (name, source string, err error) {
	if flag != "" {
		return flag, "--engine", nil
	}
	if v, ok := os.LookupEnv(envEngine); ok && v != "" {
		return v, envEngine, nil
	}

	path := filepath.Join(root, envFile)
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", nil
		}
		return "", "", errs.NotValid(path, err, "malformed env file")
	}
	if v := vars[envEngine]; v != "" {
		return v, envFile, nil
	}
	return "", "", nil
}

func engineSource(source string, ws *workspace.Workspace) string {
	switch {
	case source != "":
		return source
	case ws.Metadata().Engine != nil:
		return filepath.Base(ws.MarkerPath())
	default:
		return "default"
	}
}

func engineLabel(name string) string {
	if name == "" {
		return "pdflatex (default)"
	}
	return name
}
