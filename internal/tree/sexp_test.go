package tree

import (
	"testing"

	"github.com/syntria/sheen/internal/types"
)

func TestParseDump(t *testing.T) {
	source := []byte("# Heading 1\n\ntext\n")
	dump := `(document [0, 0] - [3, 0]
  (atx_heading [0, 0] - [0, 11]
    (atx_h1_marker [0, 0] - [0, 1])
    heading_content: (inline [0, 2] - [0, 11]))
  (paragraph [2, 0] - [2, 4]
    (inline [2, 0] - [2, 4])))`

	root, err := ParseDump(dump, source)
	if err != nil {
		t.Fatalf("ParseDump() failed: %v", err)
	}

	if root.Kind != "document" {
		t.Errorf("root kind = %q", root.Kind)
	}
	if root.Range != (types.Range{Start: 0, End: 18}) {
		t.Errorf("root range = %v, want [0,18)", root.Range)
	}

	h := root.Child(0)
	if h.Kind != "atx_heading" || h.Range != (types.Range{Start: 0, End: 11}) {
		t.Errorf("heading = %s", h)
	}

	inline := h.ChildByField("heading_content")
	if inline == nil {
		t.Fatal("heading_content field not attached")
	}
	if got := inline.Text(source); got != "Heading 1" {
		t.Errorf("inline text = %q", got)
	}

	p := root.Child(1)
	if got := p.Text(source); got != "text" {
		t.Errorf("paragraph text = %q", got)
	}
}

func TestParseDump_AnonymousTokens(t *testing.T) {
	source := []byte("# x")
	dump := `(atx_heading [0, 0] - [0, 3]
  ("#" [0, 0] - [0, 1])
  (inline [0, 2] - [0, 3]))`

	root, err := ParseDump(dump, source)
	if err != nil {
		t.Fatalf("ParseDump() failed: %v", err)
	}
	tok := root.Child(0)
	if tok.Named {
		t.Error("quoted kind should be anonymous")
	}
	if tok.Kind != "#" {
		t.Errorf("token kind = %q, want %q", tok.Kind, "#")
	}
}

func TestParseDump_MultibyteColumns(t *testing.T) {
	// columns are byte counts, not rune counts
	source := []byte("\xc3\xa9 = 1\n") // "é = 1"
	dump := `(assignment [0, 0] - [0, 6]
  (identifier [0, 0] - [0, 2])
  ("=" [0, 3] - [0, 4])
  (number [0, 5] - [0, 6]))`

	root, err := ParseDump(dump, source)
	if err != nil {
		t.Fatalf("ParseDump() failed: %v", err)
	}
	if got := root.Child(0).Text(source); got != "é" {
		t.Errorf("identifier text = %q", got)
	}
}

func TestParseDump_Errors(t *testing.T) {
	tests := []struct {
		name string
		dump string
	}{
		{name: "empty", dump: ""},
		{name: "missing range", dump: "(document)"},
		{name: "unbalanced", dump: "(document [0, 0] - [0, 1]"},
		{name: "trailing content", dump: "(a [0, 0] - [0, 1]) junk"},
		{name: "reversed range", dump: "(a [0, 5] - [0, 1])"},
		{name: "field without node", dump: "(a [0, 0] - [0, 5] name:)"},
		{name: "child escapes parent", dump: "(a [0, 0] - [0, 2] (b [0, 1] - [0, 4]))"},
	}
	source := []byte("0123456789")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDump(tt.dump, source); err == nil {
				t.Errorf("ParseDump(%q) succeeded, want error", tt.dump)
			}
		})
	}
}
