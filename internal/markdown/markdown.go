// Package markdown converts homepage prose to HTML.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

// Converter turns Markdown into HTML.
type Converter interface {
	Convert(source []byte) (string, error)
}

// Goldmark is a Converter backed by goldmark with GitHub Flavored Markdown
// enabled. Raw HTML in the source is passed through.
type Goldmark struct {
	md goldmark.Markdown
}

// New returns a goldmark-backed Converter.
func New() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert renders source as HTML.
func (g *Goldmark) Convert(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(source, &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to convert markdown").Build()
	}
	return buf.String(), nil
}
