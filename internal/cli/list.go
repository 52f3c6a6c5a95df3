package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/workspace"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var engine string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the documents in the current workspace",
		Long: `List every directory under docs/ that has a metadata file.

Document keys are printed to stdout, one per line; the workspace summary goes
to stderr so the output can be piped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return errs.Wrap(errs.ErrCodeIO, err, "get working directory")
			}
			ws, err := c.openWorkspace(cwd, engine)
			if err != nil {
				return err
			}
			return c.list(ws)
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "engine override: pdflatex, xelatex or lualatex")
	return cmd
}

func (c *CLI) list(ws *workspace.Workspace) error {
	keys, err := ws.Documents()
	if err != nil {
		return err
	}

	printKeyValue("Workspace", ws.Root())
	printKeyValue("Engine", engineLabel(ws.Metadata().EngineName()))
	if len(keys) == 0 {
		printWarning("No documents under %s", ws.DocsDir())
		printNextStep("Create one", "mkdir -p docs/<name> && touch docs/<name>/metadata.toml")
		return nil
	}

	for _, key := range keys {
		fmt.Fprintln(c.Out, key)
		if _, err := os.Stat(filepath.Join(ws.DocsDir(), key, workspace.OutputName)); err == nil {
			printDetail("%s: built", key)
		}
	}
	return nil
}
