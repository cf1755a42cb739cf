package pagewriter

import (
	"embed"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

//go:embed defaults/*.tmpl
var embeddedDefaults embed.FS

// DefaultTemplate returns the embedded page template for kind, if any.
func DefaultTemplate(kind string) ([]byte, bool) {
	b, err := embeddedDefaults.ReadFile("defaults/" + kind + ".tmpl")
	if err != nil {
		return nil, false
	}
	return b, true
}

// WriteDefaults writes the embedded page templates into dir using ext.
// Existing files are left alone unless force is set. It returns the paths
// written.
func WriteDefaults(fs afero.Fs, dir, ext string, force bool) ([]string, error) {
	if ext == "" {
		ext = ".tmpl"
	}
	entries, err := embeddedDefaults.ReadDir("defaults")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "embedded page templates missing").Build()
	}
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.FileSystemError("failed to create builder directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	var written []string
	for _, e := range entries {
		kind := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		target := filepath.Join(dir, kind+ext)
		if !force {
			if exists, _ := afero.Exists(fs, target); exists {
				continue
			}
		}
		body, _ := DefaultTemplate(kind)
		if err := afero.WriteFile(fs, target, body, 0o644); err != nil {
			return written, errors.FileSystemError("failed to write page template").
				WithCause(err).
				WithContext("path", target).
				Build()
		}
		written = append(written, target)
	}
	return written, nil
}
