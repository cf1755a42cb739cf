package pages

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stylebuilder/internal/styleguide"
)

func refs(sections []*styleguide.Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Reference)
	}
	return out
}

func TestAssembleGroupsByRoot(t *testing.T) {
	guide := styleguide.New("Demo", nil, []styleguide.Section{
		{Reference: "1"},
		{Reference: "1.1"},
		{Reference: "1.2"},
		{Reference: "2"},
	})

	got := Assemble(guide, false)
	require.Len(t, got, 3)

	assert.Equal(t, KindIndex, got[0].Kind)
	assert.True(t, got[0].IsHomepage())
	assert.Empty(t, got[0].Sections)
	assert.Equal(t, "index.html", got[0].FileName)

	assert.Equal(t, "1", got[1].Root)
	assert.Equal(t, []string{"1", "1.1", "1.2"}, refs(got[1].Sections))
	assert.Equal(t, "section-1.html", got[1].FileName)

	assert.Equal(t, []string{"2"}, refs(got[2].Sections))
}

func TestAssembleWithItems(t *testing.T) {
	guide := styleguide.New("Demo", nil, []styleguide.Section{
		{Reference: "Forms"},
		{Reference: "Forms - Buttons"},
	})

	var names []string
	for _, p := range Assemble(guide, true) {
		names = append(names, p.FileName)
	}
	want := []string{"index.html", "section-forms.html", "item-forms.html", "item-forms-buttons.html"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("page file names mismatch (-want +got):\n%s", diff)
	}
}

func TestRootPrefixIsNotAPartialMatch(t *testing.T) {
	guide := styleguide.New("Demo", nil, []styleguide.Section{
		{Reference: "1"},
		{Reference: "10.1"},
	})

	got := Assemble(guide, false)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"1"}, refs(got[1].Sections))
	assert.Equal(t, []string{"10.1"}, refs(got[2].Sections))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "index.html", FileName(KindIndex, "1"))
	assert.Equal(t, "section-1.html", FileName(KindSection, "1"))
	assert.Equal(t, "item-1-2.html", FileName(KindItem, "1.2"))
}
