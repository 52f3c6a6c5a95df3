package build

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	errs "github.com/nickclare/texman/pkg/errors"
)

var disablePDFConfigDir sync.Once

// PageCount opens the PDF at path with pdfcpu and returns its page count.
// An unreadable file is a COMPILE_FAILED error: the engine claimed success
// but produced no usable artifact.
func PageCount(path string) (int, error) {
	// pdfcpu otherwise creates a config directory under the user's home.
	disablePDFConfigDir.Do(func() { model.ConfigPath = "disable" })

	f, err := os.Open(path)
	if err != nil {
		return 0, errs.FromFS(err, path, "open artifact")
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeCompile, err, "engine produced an unreadable PDF")
	}
	return n, nil
}

// install copies artifact to dest through a temporary sibling file and an
// atomic rename, so dest either keeps its previous content or holds the
// complete new artifact.
func install(artifact, dest string) error {
	src, err := os.Open(artifact)
	if err != nil {
		return errs.FromFS(err, artifact, "open artifact")
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".texman-*.pdf")
	if err != nil {
		return errs.FromFS(err, filepath.Dir(dest), "create temporary output")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return errs.FromFS(err, tmpName, "copy artifact")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errs.FromFS(err, tmpName, "sync artifact")
	}
	if err := tmp.Close(); err != nil {
		return errs.FromFS(err, tmpName, "close artifact")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errs.FromFS(err, tmpName, "chmod artifact")
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return errs.FromFS(err, dest, "install artifact")
	}
	committed = true
	return nil
}
