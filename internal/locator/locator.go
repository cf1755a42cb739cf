// Package locator finds section template files across ordered source roots.
package locator

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/stylebuilder/internal/logfields"
	"git.home.luguber.info/inful/stylebuilder/internal/observability"
)

// DefaultExamplePrefix is prepended to a template name to derive its example
// override file name.
const DefaultExamplePrefix = "kss-example-"

// Outcome classifies a lookup of a main template and its example override.
type Outcome int

const (
	FoundNeither Outcome = iota
	FoundMainOnly
	FoundExampleOnly
	FoundBoth
)

func (o Outcome) String() string {
	switch o {
	case FoundBoth:
		return "both"
	case FoundMainOnly:
		return "main_only"
	case FoundExampleOnly:
		return "example_only"
	default:
		return "neither"
	}
}

// Result holds the winning path for each name; empty means not found.
type Result struct {
	Main    string
	Example string
	Outcome Outcome
}

// ExampleName derives the example file name for a template file name.
func ExampleName(prefix, name string) string {
	if prefix == "" {
		prefix = DefaultExamplePrefix
	}
	return prefix + name
}

// Locator searches a fixed, ordered list of roots. Each root is walked at
// most once; the index is built lazily the first time any name is looked up.
type Locator struct {
	fs    afero.Fs
	roots []*rootIndex
}

type rootIndex struct {
	path  string
	once  sync.Once
	files map[string]string
}

// New returns a Locator over roots, in priority order.
func New(fs afero.Fs, roots []string) *Locator {
	l := &Locator{fs: fs, roots: make([]*rootIndex, 0, len(roots))}
	for _, r := range roots {
		l.roots = append(l.roots, &rootIndex{path: r})
	}
	return l
}

// Roots returns the configured roots in priority order.
func (l *Locator) Roots() []string {
	out := make([]string, 0, len(l.roots))
	for _, r := range l.roots {
		out = append(out, r.path)
	}
	return out
}

// Locate finds name and exampleName independently. For each name the winner
// is the first match under the highest-priority root that has one, no matter
// which root finished indexing first.
func (l *Locator) Locate(ctx context.Context, name, exampleName string) Result {
	l.index(ctx)

	res := Result{
		Main:    l.first(name),
		Example: l.first(exampleName),
	}
	switch {
	case res.Main != "" && res.Example != "":
		res.Outcome = FoundBoth
	case res.Main != "":
		res.Outcome = FoundMainOnly
	case res.Example != "":
		res.Outcome = FoundExampleOnly
	default:
		res.Outcome = FoundNeither
	}
	return res
}

// Find returns the highest-priority match for a single file name.
func (l *Locator) Find(ctx context.Context, name string) (string, bool) {
	l.index(ctx)
	p := l.first(name)
	return p, p != ""
}

func (l *Locator) first(name string) string {
	if name == "" {
		return ""
	}
	for _, r := range l.roots {
		if p, ok := r.files[name]; ok {
			return p
		}
	}
	return ""
}

// index walks every root concurrently and waits for all of them.
func (l *Locator) index(ctx context.Context) {
	var wg sync.WaitGroup
	for _, r := range l.roots {
		wg.Add(1)
		go func(r *rootIndex) {
			defer wg.Done()
			r.once.Do(func() {
				r.files = walkRoot(ctx, l.fs, r.path)
			})
		}(r)
	}
	wg.Wait()
}

// walkRoot maps each base name under root to its first match in lexical walk
// order.
func walkRoot(ctx context.Context, fs afero.Fs, root string) map[string]string {
	files := make(map[string]string)
	if _, err := fs.Stat(root); err != nil {
		observability.DebugContext(ctx, "Skipping missing source root",
			logfields.Root(root),
			logfields.Error(err))
		return files
	}
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped; the rest of the tree is still indexed.
			return nil
		}
		if info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if _, seen := files[base]; !seen {
			files[base] = path
		}
		return nil
	})
	if err != nil {
		observability.WarnContext(ctx, "Source root walk incomplete",
			logfields.Root(root),
			logfields.Error(err))
	}
	observability.DebugContext(ctx, "Indexed source root",
		logfields.Root(root),
		logfields.Count(len(files)))
	return files
}
