package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/workspace"
)

// initOpts holds options for the init command.
type initOpts struct {
	engine   string
	document string
}

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var opts initOpts

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a new workspace",
		Long: `Create a workspace in the current directory, or in a new directory called name.

The target must be empty or missing. The workspace gets a workspace.toml marker,
a prelude/ directory with main.tex and an empty docs/ directory.`,
		Example: `  # Scaffold a workspace with a first document
  texman init thesis --engine xelatex --document chapter1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return errs.Wrap(errs.ErrCodeIO, err, "get working directory")
			}
			return c.runInit(cwd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.engine, "engine", "", "engine to record in workspace.toml")
	cmd.Flags().StringVar(&opts.document, "document", "", "also scaffold docs/<document>/")

	return cmd
}

func (c *CLI) runInit(cwd string, args []string, opts initOpts) error {
	initOptions := workspace.InitOptions{Document: opts.document}
	if opts.engine != "" {
		e, err := workspace.ParseEngine(opts.engine)
		if err != nil {
			return err
		}
		initOptions.Engine = e
	}

	target := cwd
	if len(args) == 1 {
		if err := errs.ValidateWorkspaceName(args[0]); err != nil {
			return err
		}
		target = filepath.Join(cwd, args[0])
	} else {
		initOptions.InPlace = true
	}

	if err := workspace.Init(target, initOptions); err != nil {
		return err
	}
	c.Logger.Debug("initialised workspace", "root", target, "engine", initOptions.Engine, "document", opts.document)

	printSuccess("Created workspace %s", StyleHighlight.Render(target))
	printFile(filepath.Join(target, workspace.MarkerName+".toml"))
	printFile(filepath.Join(target, workspace.PreludeDir, "main.tex"))
	if opts.document != "" {
		printFile(filepath.Join(target, workspace.DocsDir, opts.document, workspace.MetadataName+".toml"))
		printNextStep("Build it", "texman build "+opts.document)
	}
	return nil
}
