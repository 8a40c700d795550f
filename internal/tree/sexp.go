package tree

import (
	"fmt"
	"strings"

	"github.com/syntria/sheen/internal/types"
)

// ParseDump reads a syntax tree serialized in the `tree-sitter parse` output
// format and rebuilds it against the given source text:
//
//	(document [0, 0] - [3, 0]
//	  (atx_heading [0, 0] - [0, 10]
//	    ("#" [0, 0] - [0, 1])
//	    heading_content: (inline [0, 2] - [0, 10])))
//
// Positions are (row, column) pairs with byte columns; they are converted to
// absolute byte offsets using the source. Quoted kinds denote anonymous
// literal tokens.
func ParseDump(dump string, source []byte) (*Node, error) {
	d := &dumpReader{input: dump, lines: lineOffsets(source), srcLen: uint32(len(source))}
	d.skipSpace()
	root, err := d.readNode()
	if err != nil {
		return nil, err
	}
	d.skipSpace()
	if d.pos < len(d.input) {
		return nil, fmt.Errorf("tree: trailing content at offset %d", d.pos)
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

// lineOffsets returns the byte offset of the start of each line.
func lineOffsets(source []byte) []uint32 {
	offsets := []uint32{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return offsets
}

type dumpReader struct {
	input  string
	pos    int
	lines  []uint32
	srcLen uint32
}

func (d *dumpReader) readNode() (*Node, error) {
	if err := d.expect('('); err != nil {
		return nil, err
	}
	d.skipSpace()

	var node *Node
	if d.pos < len(d.input) && d.input[d.pos] == '"' {
		text, err := d.readString()
		if err != nil {
			return nil, err
		}
		node = &Node{Kind: text, Named: false}
	} else {
		kind, err := d.readIdent()
		if err != nil {
			return nil, err
		}
		node = &Node{Kind: kind, Named: true}
	}

	start, end, err := d.readRange()
	if err != nil {
		return nil, fmt.Errorf("tree: node %q: %w", node.Kind, err)
	}
	node.Range = types.Range{Start: start, End: end}

	for {
		d.skipSpace()
		if d.pos >= len(d.input) {
			return nil, fmt.Errorf("tree: unexpected end of dump, expected ')'")
		}
		if d.input[d.pos] == ')' {
			d.pos++
			return node, nil
		}

		field := ""
		if isIdentByte(d.input[d.pos]) {
			name, err := d.readIdent()
			if err != nil {
				return nil, err
			}
			d.skipSpace()
			if err := d.expect(':'); err != nil {
				return nil, fmt.Errorf("tree: expected ':' after field %q", name)
			}
			field = name
			d.skipSpace()
		}

		child, err := d.readNode()
		if err != nil {
			return nil, err
		}
		if field != "" {
			node.AddField(field, child)
		} else {
			node.AddChild(child)
		}
	}
}

// readRange reads `[row, col] - [row, col]` and converts to byte offsets.
func (d *dumpReader) readRange() (uint32, uint32, error) {
	d.skipSpace()
	start, err := d.readPoint()
	if err != nil {
		return 0, 0, err
	}
	d.skipSpace()
	if err := d.expect('-'); err != nil {
		return 0, 0, err
	}
	d.skipSpace()
	end, err := d.readPoint()
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("range ends before it starts")
	}
	return start, end, nil
}

func (d *dumpReader) readPoint() (uint32, error) {
	if err := d.expect('['); err != nil {
		return 0, err
	}
	d.skipSpace()
	row, err := d.readInt()
	if err != nil {
		return 0, err
	}
	d.skipSpace()
	if err := d.expect(','); err != nil {
		return 0, err
	}
	d.skipSpace()
	col, err := d.readInt()
	if err != nil {
		return 0, err
	}
	d.skipSpace()
	if err := d.expect(']'); err != nil {
		return 0, err
	}

	if row >= len(d.lines) {
		// Rows past the last line clamp to the document end; tree-sitter
		// reports the root's end position this way for trailing newlines.
		return d.srcLen, nil
	}
	off := d.lines[row] + uint32(col)
	if off > d.srcLen {
		off = d.srcLen
	}
	return off, nil
}

func (d *dumpReader) readInt() (int, error) {
	start := d.pos
	for d.pos < len(d.input) && d.input[d.pos] >= '0' && d.input[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == start {
		return 0, fmt.Errorf("tree: expected number at offset %d", d.pos)
	}
	n := 0
	for _, c := range d.input[start:d.pos] {
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func (d *dumpReader) readIdent() (string, error) {
	start := d.pos
	for d.pos < len(d.input) && isIdentByte(d.input[d.pos]) {
		d.pos++
	}
	if d.pos == start {
		return "", fmt.Errorf("tree: expected identifier at offset %d", d.pos)
	}
	return d.input[start:d.pos], nil
}

func (d *dumpReader) readString() (string, error) {
	if err := d.expect('"'); err != nil {
		return "", err
	}
	var sb strings.Builder
	for d.pos < len(d.input) {
		c := d.input[d.pos]
		if c == '\\' && d.pos+1 < len(d.input) {
			d.pos++
			sb.WriteByte(d.input[d.pos])
			d.pos++
			continue
		}
		if c == '"' {
			d.pos++
			return sb.String(), nil
		}
		sb.WriteByte(c)
		d.pos++
	}
	return "", fmt.Errorf("tree: unterminated string at offset %d", d.pos)
}

func (d *dumpReader) expect(c byte) error {
	if d.pos >= len(d.input) || d.input[d.pos] != c {
		return fmt.Errorf("tree: expected %q at offset %d", string(c), d.pos)
	}
	d.pos++
	return nil
}

func (d *dumpReader) skipSpace() {
	for d.pos < len(d.input) {
		switch d.input[d.pos] {
		case ' ', '\t', '\n', '\r':
			d.pos++
		default:
			return
		}
	}
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
