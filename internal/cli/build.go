package cli

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nickclare/texman/pkg/build"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/workspace"
)

// buildOpts holds options for the build command.
type buildOpts struct {
	generate bool
	watch    bool
	engine   string
	passes   int
	debounce time.Duration
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{passes: 1, debounce: build.DefaultDebounce}

	cmd := &cobra.Command{
		Use:   "build [document]",
		Short: "Build a document to docs/<document>/output.pdf",
		Long: `Generate the main LaTeX source for a document from its metadata and compile it.

The document argument is required unless the command runs inside docs/<document>/.
On a terminal, texman otherwise offers a list of documents to pick from.

The engine is taken from workspace.toml, then <root>/.env, then $TEXMAN_ENGINE,
and finally --engine, later sources overriding earlier ones.`,
		Example: `  # Build from anywhere in the workspace
  texman build report

  # Print the generated source instead of compiling
  texman build report --generate > main.tex

  # Rebuild on every change, running the engine twice for cross-references
  texman build report --watch --passes 2`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.generate, "generate", "g", false, "print the generated source to stdout instead of compiling")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rebuild whenever workspace files change")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "engine override: pdflatex, xelatex or lualatex")
	cmd.Flags().IntVar(&opts.passes, "passes", opts.passes, "number of engine runs per build")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", opts.debounce, "quiet period before a watch rebuild")
	cmd.MarkFlagsMutuallyExclusive("generate", "watch")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, args []string, opts buildOpts) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "get working directory")
	}
	ws, err := c.openWorkspace(cwd, opts.engine)
	if err != nil {
		return err
	}
	key, err := c.resolveKey(ws, cwd, args)
	if err != nil {
		return err
	}
	doc, err := c.loadDocument(ws, key)
	if err != nil {
		return err
	}

	compiler := build.NewEngineCompiler()
	compiler.Passes = opts.passes
	builder := build.NewBuilder(compiler, c.Logger)

	if opts.generate {
		_, err := builder.Build(ctx, doc, build.Options{GenerateOnly: true, Stdout: c.Out})
		return err
	}

	if !opts.watch {
		return c.compile(ctx, builder, doc)
	}
	return c.watch(ctx, builder, doc, opts)
}

// resolveKey picks the document to build: the argument, the document
// directory containing cwd, or an interactive choice.
func (c *CLI) resolveKey(ws *workspace.Workspace, cwd string, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if key, ok := ws.KeyFor(cwd); ok {
		c.Logger.Debug("inferred document from working directory", "key", key)
		return key, nil
	}

	keys, err := ws.Documents()
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", errs.NotFound(ws.DocsDir(), "no documents in workspace")
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stderr) {
		return "", errs.New(errs.ErrCodeInvalidInput,
			"no document given and not inside docs/<document>/ (available: %s)", strings.Join(keys, ", "))
	}

	key, err := pickDocument(keys)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeIO, err, "document picker")
	}
	if key == "" {
		return "", errs.New(errs.ErrCodeInvalidInput, "no document selected")
	}
	return key, nil
}

// loadDocument loads key and warns about metadata fields texman ignores.
func (c *CLI) loadDocument(ws *workspace.Workspace, key string) (*workspace.Document, error) {
	doc, err := ws.Document(key)
	if err != nil {
		return nil, err
	}
	if unknown := doc.UnknownFields(); len(unknown) > 0 {
		c.Logger.Warn("ignoring unknown metadata fields", "file", doc.MetadataPath(), "fields", strings.Join(unknown, ", "))
	}
	return doc, nil
}

// compile runs one build with a spinner and prints the result.
func (c *CLI) compile(ctx context.Context, builder *build.Builder, doc *workspace.Document) error {
	spinner := newSpinnerWithContext(ctx, "Compiling "+doc.Key()+"...")
	spinner.Start()

	res, err := builder.Build(ctx, doc, build.Options{})
	if err != nil {
		spinner.Stop()
		return err
	}

	spinner.StopWithSuccess("Built " + StyleHighlight.Render(res.Document))
	printFile(res.Output)
	printBuildStats(res.Pages, res.Duration)
	return nil
}

// watch builds once, then rebuilds on every change until interrupted.
// Each rebuild reloads the workspace and the document so edits to
// workspace.toml and metadata files take effect.
func (c *CLI) watch(ctx context.Context, builder *build.Builder, doc *workspace.Document, opts buildOpts) error {
	rebuild := func(ctx context.Context) error {
		ws, err := c.openWorkspace(doc.Workspace().Root(), opts.engine)
		if err == nil {
			var fresh *workspace.Document
			if fresh, err = c.loadDocument(ws, doc.Key()); err == nil {
				err = c.compile(ctx, builder, fresh)
			}
		}
		if err != nil && ctx.Err() == nil {
			PrintError(err)
		}
		return nil
	}

	w, err := build.WatchDocument(doc, opts.debounce, c.Logger)
	if err != nil {
		return err
	}
	defer w.Close()

	_ = rebuild(ctx)
	printInfo("Watching %s for changes (Ctrl+C to stop)", doc.Workspace().Root())

	if err := w.Run(ctx, rebuild); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// completeDocuments completes document keys for the workspace around cwd.
func (c *CLI) completeDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	templates, err := c.loadTemplates()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ws, err := workspace.Resolve(cwd, templates)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	keys, _ := ws.Documents()
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, toComplete) {
			out = append(out, k)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
