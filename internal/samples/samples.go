// Package samples loads the sample data rendered into file-based templates.
//
// For a template at /tpl/button.tmpl the loader looks for /tpl/button.json,
// then /tpl/button.yaml, then /tpl/button.yml. The first file that exists
// wins. Absence or a parse failure yields an empty context; sample data is
// never fatal to a build.
package samples

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mohae/deepcopy"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
	"git.home.luguber.info/inful/stylebuilder/internal/observability"
)

// Extensions are tried in order next to a template.
var Extensions = []string{".json", ".yaml", ".yml"}

// Top-level context keys must be plain identifiers for the template engine.
var identifier = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Loader reads sample data files.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader over fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// PathsFor returns the candidate sample files for a template, in lookup order.
func PathsFor(templatePath string) []string {
	base := strings.TrimSuffix(templatePath, filepath.Ext(templatePath))
	out := make([]string, 0, len(Extensions))
	for _, ext := range Extensions {
		out = append(out, base+ext)
	}
	return out
}

// Load returns the sample context for templatePath. The returned map is
// owned by the caller.
func (l *Loader) Load(ctx context.Context, templatePath string) map[string]any {
	for _, candidate := range PathsFor(templatePath) {
		data, err := afero.ReadFile(l.fs, candidate)
		if err != nil {
			continue
		}
		parsed, err := decode(candidate, data)
		if err != nil {
			observability.WarnContext(ctx, "Ignoring unreadable sample data",
				logfields.Path(candidate),
				logfields.Error(err))
			return map[string]any{}
		}
		observability.DebugContext(ctx, "Loaded sample data", logfields.Path(candidate))
		return Sanitize(ctx, parsed, logfields.Path(candidate))
	}
	observability.DebugContext(ctx, "No sample data for template", logfields.Template(templatePath))
	return map[string]any{}
}

func decode(path string, data []byte) (map[string]any, error) {
	out := map[string]any{}
	var err error
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &out)
	} else {
		err = yaml.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Clone returns a deep copy of a sample context so a render can set keys
// without touching the original.
func Clone(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out, ok := deepcopy.Copy(in).(map[string]any)
	if !ok || out == nil {
		return map[string]any{}
	}
	return out
}

// Sanitize removes top-level keys that templates cannot address, such as
// "aria-label", logging a warning for each. Nested keys are kept. data is
// modified in place and returned.
func Sanitize(ctx context.Context, data map[string]any, attrs ...slog.Attr) map[string]any {
	var dropped []string
	for k := range data {
		if !identifier.MatchString(k) {
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)
	for _, k := range dropped {
		delete(data, k)
		observability.WarnContext(ctx, "Dropping sample data key that is not a valid identifier",
			append([]slog.Attr{slog.String("key", k)}, attrs...)...)
	}
	return data
}
