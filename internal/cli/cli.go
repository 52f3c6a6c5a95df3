package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickclare/texman/pkg/buildinfo"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display and env variables.
	appName = "texman"

	// envEngine overrides the engine configured in workspace.toml.
	envEngine = "TEXMAN_ENGINE"

	// envFile is read from the workspace root for environment defaults.
	envFile = ".env"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Process exit statuses.
const (
	ExitError    = 1
	ExitInternal = 70  // EX_SOFTWARE: a packaging defect such as a broken template
	ExitCanceled = 130 // shell convention for SIGINT
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output (generated source, listings).
	Out io.Writer

	templatesOnce sync.Once
	templates     *render.Templates
	templatesErr  error
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "texman builds LaTeX documents from a shared workspace",
		Long:         `texman manages a workspace of LaTeX documents that share a common prelude. Each document declares its class, options and sections in a metadata file; texman generates the main source from it and compiles it with the configured engine.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		// main prints errors through the styled error line.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadTemplates parses the embedded templates once per process.
func (c *CLI) loadTemplates() (*render.Templates, error) {
	c.templatesOnce.Do(func() {
		c.templates, c.templatesErr = render.New()
	})
	return c.templates, c.templatesErr
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errs.Is(err, errs.ErrCodeInternal):
		return ExitInternal
	default:
		return ExitError
	}
}

// PrintError writes err as a styled error line.
func PrintError(err error) {
	printError("%s", errs.UserMessage(err))
}
