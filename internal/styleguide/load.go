package styleguide

import (
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

// document is the on-disk form of a style guide. JSON documents parse too,
// since JSON is a subset of YAML.
type document struct {
	Title    string    `yaml:"title"`
	Files    []string  `yaml:"files"`
	Sections []Section `yaml:"sections"`
}

// Load reads a style guide document from fs.
func Load(fs afero.Fs, path string) (*StyleGuide, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.FileSystemError("failed to read style guide").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return Parse(data, path)
}

// Parse decodes a style guide document. source is recorded as the file list
// when the document does not name its own sources.
func Parse(data []byte, source string) (*StyleGuide, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse style guide").
			Fatal().
			WithContext("path", source).
			Build()
	}
	files := doc.Files
	if len(files) == 0 && source != "" {
		files = []string{source}
	}
	return New(doc.Title, files, doc.Sections), nil
}
