// Package pkg provides the libraries behind texman.
//
// # Overview
//
// texman turns per-document metadata into a LaTeX main file and compiles it.
// The packages, leaves first:
//
//  1. [errors] - Coded errors shared by every layer
//  2. [config] - Metadata files in TOML, YAML or JSON with comments
//  3. [render] - The embedded document template and its context
//  4. [workspace] - Workspace resolution, documents and scaffolding
//  5. [build] - Compilation, artifact installation and file watching
//  6. [server] - HTTP preview of a workspace
//  7. [observability] - Build hooks
//
// # Data Flow
//
//	working directory
//	         ↓
//	    [workspace] Resolve (walk up to workspace.toml)
//	         ↓
//	    [workspace] Document (docs/<key>/metadata.*)
//	         ↓
//	    [render] Render (context → main.tex)
//	         ↓
//	    [build] Builder (engine → docs/<key>/output.pdf)
//
// # Quick Start
//
//	templates, err := render.New()
//	if err != nil {
//	    return err
//	}
//	ws, err := workspace.Resolve(".", templates)
//	if err != nil {
//	    return err
//	}
//	doc, err := ws.Document("report")
//	if err != nil {
//	    return err
//	}
//	b := build.NewBuilder(build.NewEngineCompiler(), logger)
//	res, err := b.Build(ctx, doc, build.Options{})
//
// [errors]: https://pkg.go.dev/github.com/nickclare/texman/pkg/errors
// [config]: https://pkg.go.dev/github.com/nickclare/texman/pkg/config
// [render]: https://pkg.go.dev/github.com/nickclare/texman/pkg/render
// [workspace]: https://pkg.go.dev/github.com/nickclare/texman/pkg/workspace
// [build]: https://pkg.go.dev/github.com/nickclare/texman/pkg/build
// [server]: https://pkg.go.dev/github.com/nickclare/texman/pkg/server
// [observability]: https://pkg.go.dev/github.com/nickclare/texman/pkg/observability
package pkg
