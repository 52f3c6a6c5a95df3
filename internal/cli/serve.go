package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickclare/texman/pkg/build"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/observability"
	"github.com/nickclare/texman/pkg/server"
)

// serveOpts holds options for the serve command.
type serveOpts struct {
	addr   string
	engine string
	passes int
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: "localhost:8080", passes: 1}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview workspace documents over HTTP",
		Long: `Serve the current workspace for previewing in a browser.

  GET  /documents                    list documents
  GET  /documents/<key>/source       generated LaTeX
  POST /documents/<key>/build        compile
  GET  /documents/<key>/output.pdf   last successful build
  GET  /documents/<key>/status       last build state`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "engine override: pdflatex, xelatex or lualatex")
	cmd.Flags().IntVar(&opts.passes, "passes", opts.passes, "number of engine runs per build")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cwd, err := os.Getwd()
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "get working directory")
	}
	ws, err := c.openWorkspace(cwd, opts.engine)
	if err != nil {
		return err
	}

	compiler := build.NewEngineCompiler()
	compiler.Passes = opts.passes
	status := server.NewStatusRecorder()
	observability.SetBuildHooks(status)
	srv := server.New(opts.addr, ws, build.NewBuilder(compiler, logger), logger).WithStatus(status)

	printInfo("Serving %s on %s", StyleHighlight.Render(ws.Root()), StyleHighlight.Render("http://"+opts.addr))
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
