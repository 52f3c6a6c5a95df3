// Package build orchestrates turning a workspace document into its output.
//
// A [Builder] either emits the generated LaTeX unchanged (generate-only
// mode) or compiles it:
//
//  1. create a private temporary directory, removed on every exit path
//  2. write the generated source to main.tex inside it
//  3. run the [Compiler] against main.tex in that directory
//  4. check the artifact is a readable PDF (pdfcpu)
//  5. install it at docs/<key>/output.pdf via an atomic rename
//
// Nothing is written to the output path unless every earlier step succeeded,
// so a failed build leaves any previous output.pdf untouched.
//
// Builds run one at a time; a Builder shared by the watcher and the preview
// server serialises them. Compile builds report to the registered
// observability build hooks.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/observability"
	"github.com/nickclare/texman/pkg/workspace"
)

// SourceName is the fixed name of the generated source inside the build directory.
const SourceName = "main.tex"

// Options configures a single build.
type Options struct {
	// GenerateOnly writes the generated source to Stdout and stops.
	GenerateOnly bool

	// Stdout receives the generated source in generate-only mode.
	Stdout io.Writer
}

// Result describes a finished build.
type Result struct {
	BuildID   string
	Document  string
	Generated bool   // true in generate-only mode
	Output    string // installed artifact path (compile mode)
	Pages     int
	Duration  time.Duration
}

// Builder runs document builds.
type Builder struct {
	compiler Compiler
	logger   *log.Logger
	inspect  func(path string) (int, error)
	tempRoot string

	mu sync.Mutex
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(compiler Compiler, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		compiler: compiler,
		logger:   logger,
		inspect:  PageCount,
	}
}

// Build generates doc and, unless opts.GenerateOnly is set, compiles it to
// doc.OutputPath().
func (b *Builder) Build(ctx context.Context, doc *workspace.Document, opts Options) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	res := &Result{BuildID: uuid.NewString(), Document: doc.Key()}
	logger := b.logger.With("doc", doc.Key(), "build", res.BuildID[:8])

	src, err := doc.Generate()
	if err != nil {
		return nil, err
	}
	logger.Debug("generated source", "bytes", len(src))

	if opts.GenerateOnly {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := io.WriteString(w, src); err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "write generated source")
		}
		res.Generated = true
		res.Duration = time.Since(start)
		return res, nil
	}

	if b.compiler == nil {
		return nil, errs.New(errs.ErrCodeInternal, "builder has no compiler")
	}

	hooks := observability.Build()
	hooks.OnBuildStart(ctx, doc.Key(), res.BuildID)
	err = b.compile(ctx, doc, src, res, logger)
	res.Duration = time.Since(start)
	hooks.OnBuildComplete(ctx, doc.Key(), res.BuildID, res.Pages, res.Duration, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// compile runs steps 1 to 5 for src and fills in res.
func (b *Builder) compile(ctx context.Context, doc *workspace.Document, src string, res *Result, logger *log.Logger) error {
	output, err := doc.OutputPath()
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp(b.tempRoot, fmt.Sprintf("texman-%s-", res.BuildID[:8]))
	if err != nil {
		return errs.FromFS(err, os.TempDir(), "create build directory")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("failed to remove build directory", "dir", dir, "err", err)
		}
	}()
	logger.Debug("build directory", "dir", dir)

	srcPath := filepath.Join(dir, SourceName)
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		return errs.FromFS(err, srcPath, "write generated source")
	}

	job := Job{Dir: dir, Source: SourceName, Engine: doc.Workspace().Metadata().EngineName()}
	logger.Info("compiling", "engine", engineLabel(job.Engine))
	compileStart := time.Now()
	artifact, err := b.compiler.Compile(ctx, job)
	observability.Build().OnCompileComplete(ctx, doc.Key(), engineLabel(job.Engine), time.Since(compileStart), err)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errs.Is(err, errs.ErrCodeCompile) {
			err = errs.Wrap(errs.ErrCodeCompile, err, "compile %s", doc.Key())
		}
		return err
	}

	pages, err := b.inspect(artifact)
	if err != nil {
		return err
	}
	if err := install(artifact, output); err != nil {
		return err
	}

	res.Output = output
	res.Pages = pages
	logger.Debug("installed artifact", "path", output, "pages", pages)
	return nil
}

func engineLabel(engine string) string {
	if engine == "" {
		return "default"
	}
	return engine
}
