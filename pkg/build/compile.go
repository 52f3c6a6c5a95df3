package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	errs "github.com/nickclare/texman/pkg/errors"
)

// Job describes one compile request.
type Job struct {
	Dir    string // working directory containing Source
	Source string // source file name, relative to Dir
	Engine string // engine binary name; empty selects the compiler default
}

// Compiler turns a LaTeX source file into a PDF artifact. On success it
// returns the artifact path inside job.Dir. Any failure is reported as a
// COMPILE_FAILED error with no partial-output contract.
type Compiler interface {
	Compile(ctx context.Context, job Job) (string, error)
}

// DefaultEngine is used when neither the job nor the compiler names one.
const DefaultEngine = "pdflatex"

// EngineCompiler runs a TeX engine binary (pdflatex, xelatex, lualatex) as
// a subprocess. Requires a TeX distribution on PATH:
// brew install --cask mactex (macOS), apt install texlive (Linux).
type EngineCompiler struct {
	// Default is the engine used when a job does not name one.
	Default string

	// Passes is the number of engine runs; cross-references and tables of
	// contents need two. Values below 1 mean 1.
	Passes int
}

// NewEngineCompiler returns a compiler running one pass of DefaultEngine.
func NewEngineCompiler() *EngineCompiler {
	return &EngineCompiler{Default: DefaultEngine, Passes: 1}
}

// Compile implements Compiler.
func (c *EngineCompiler) Compile(ctx context.Context, job Job) (string, error) {
	engine := job.Engine
	if engine == "" {
		engine = c.Default
	}
	if engine == "" {
		engine = DefaultEngine
	}

	bin, err := exec.LookPath(engine)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeCompile, err,
			"%s not found. Install a TeX distribution:\n  macOS:  brew install --cask mactex\n  Linux:  apt install texlive", engine)
	}

	passes := c.Passes
	if passes < 1 {
		passes = 1
	}
	for pass := 1; pass <= passes; pass++ {
		cmd := exec.CommandContext(ctx, bin, "-interaction=nonstopmode", "-halt-on-error", "-file-line-error", job.Source)
		cmd.Dir = job.Dir

		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", errs.Wrap(errs.ErrCodeCompile, fmt.Errorf("%v\n%s", err, summarize(out.String())),
				"%s failed (pass %d of %d)", engine, pass, passes)
		}
	}

	artifact := filepath.Join(job.Dir, strings.TrimSuffix(job.Source, filepath.Ext(job.Source))+".pdf")
	if _, err := os.Stat(artifact); err != nil {
		return "", errs.Wrap(errs.ErrCodeCompile, errs.FromFS(err, artifact, "artifact missing"), "%s produced no PDF", engine)
	}
	return artifact, nil
}

// fileLineError matches diagnostics printed under -file-line-error.
var fileLineError = regexp.MustCompile(`^[^\s:]+:\d+: `)

// summaryLines caps how much engine output is carried on an error.
const summaryLines = 12

// summarize extracts the error lines from engine output, falling back to
// its tail when no diagnostic line is recognised.
func summarize(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var picked []string
	for _, line := range lines {
		if strings.HasPrefix(line, "!") || fileLineError.MatchString(line) {
			picked = append(picked, line)
		}
	}
	if len(picked) == 0 {
		picked = lines
		if len(picked) > summaryLines {
			picked = picked[len(picked)-summaryLines:]
		}
	}
	if len(picked) > summaryLines {
		picked = picked[:summaryLines]
	}
	return strings.Join(picked, "\n")
}
