package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySection    = "section"
	KeyTemplate   = "template"
	KeyExample    = "example"
	KeyPage       = "page"
	KeyPageKind   = "page_kind"
	KeyRoot       = "root"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyError      = "error"
)

// Granular helpers so callers can compose attributes.
func BuildID(id string) slog.Attr { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Section(ref string) slog.Attr { return slog.String(KeySection, ref) }
func Template(name string) slog.Attr { return slog.String(KeyTemplate, name) }
func Example(name string) slog.Attr { return slog.String(KeyExample, name) }
func Page(file string) slog.Attr { return slog.String(KeyPage, file) }
func PageKind(kind string) slog.Attr { return slog.String(KeyPageKind, kind) }
func Root(ref string) slog.Attr { return slog.String(KeyRoot, ref) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
