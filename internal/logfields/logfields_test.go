package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Stage", KeyStage, "resolve", Stage("resolve")},
		{"Section", KeySection, "1.2", Section("1.2")},
		{"Template", KeyTemplate, "card.tmpl", Template("card.tmpl")},
		{"Example", KeyExample, "kss-example-card.tmpl", Example("kss-example-card.tmpl")},
		{"Page", KeyPage, "index.html", Page("index.html")},
		{"PageKind", KeyPageKind, "section", PageKind("section")},
		{"Root", KeyRoot, "1", Root("1")},
		{"Path", KeyPath, "/src/card.tmpl", Path("/src/card.tmpl")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
	if v := Count(3); v.Key != KeyCount || v.Value.Int64() != 3 {
		t.Fatalf("Count mismatch: %v", v)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	if attr := Error(nil); attr.Value.String() != "" {
		t.Fatalf("expected empty error string, got %s", attr.Value.String())
	}
	if attr := Error(errors.New("boom")); attr.Value.String() != "boom" {
		t.Fatalf("expected 'boom', got %s", attr.Value.String())
	}
}
