// Package render turns a document rendering context into LaTeX source.
//
// # Overview
//
// The package owns a single template, compiled from an embedded definition
// (templates/document.tex.tmpl). The template source is fixed at build time,
// so it is parsed exactly once per process by [New] and the resulting
// [Templates] value is shared by every document:
//
//	tmpl, err := render.New()
//	if err != nil {
//	    return err // packaging defect
//	}
//	src, err := tmpl.Render(ctx)
//
// # Template contract
//
// The template uses << and >> as action delimiters because LaTeX source is
// full of braces. Rendering is strict: a key referenced by the template but
// absent from the [Context] is an error, never an empty substitution.
// Directory values (prelude_root, document_root) must end in a path
// separator; the template concatenates them with bare file names since
// LaTeX has no path-joining primitive.
//
// Both failure modes (a template that fails to parse, a context missing a
// required key) indicate a defect in the program rather than in the user's
// workspace and are reported with the INTERNAL error code.
package render
