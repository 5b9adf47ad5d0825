package sql

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// TreePrinter pretty-prints a node and its children with box-drawing
// connectors, the way plan trees are rendered by String.
type TreePrinter struct {
	buf          bytes.Buffer
	nodeWritten  bool
	childWritten bool
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return new(TreePrinter)
}

var (
	errNodeAlreadyWritten     = errors.New("treeprinter: node already written")
	errNodeNotWritten         = errors.New("treeprinter: children cannot be written before the node")
	errChildrenAlreadyWritten = errors.New("treeprinter: children already written")
)

// WriteNode writes the top line of the tree.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) error {
	if p.nodeWritten {
		return errNodeAlreadyWritten
	}

	if _, err := fmt.Fprintf(&p.buf, format, args...); err != nil {
		return err
	}
	p.buf.WriteRune('\n')
	p.nodeWritten = true
	return nil
}

// WriteChildren writes the children of the node. Children can be
// multiline, as is the case of nested printed trees.
func (p *TreePrinter) WriteChildren(children ...string) error {
	if !p.nodeWritten {
		return errNodeNotWritten
	}
	if p.childWritten {
		return errChildrenAlreadyWritten
	}

	p.childWritten = true
	for i, child := range children {
		last := i+1 == len(children)
		lines := strings.Split(strings.TrimRight(child, "\n"), "\n")
		for j, line := range lines {
			switch {
			case j == 0 && last:
				p.buf.WriteString(" └─ ")
			case j == 0:
				p.buf.WriteString(" ├─ ")
			case last:
				p.buf.WriteString("    ")
			default:
				p.buf.WriteString(" │  ")
			}
			p.buf.WriteString(line)
			p.buf.WriteRune('\n')
		}
	}
	return nil
}

// String returns the rendered tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
