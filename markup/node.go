package markup

import (
	"errors"
	"fmt"
)

var errNodeClosed = errors.New("node capture already complete")

// Node is an element captured without a bound type, or a text run when Name is
// zero. Wildcard fields store Nodes and the emitter re-emits them verbatim.
type Node struct {
	Name     QName
	Attrs    []Attr
	Children []*Node
	Text     string
}

// TextNode returns a text run node.
func TextNode(s string) *Node {
	return &Node{Text: s}
}

// IsText reports whether n is a text run.
func (n *Node) IsText() bool {
	return n.Name.IsZero()
}

// Emit writes n and its subtree to w.
func (n *Node) Emit(w Writer) error {
	if n.IsText() {
		return w.WriteText(n.Text)
	}

	if err := w.OpenElement(n.Name); err != nil {
		return err
	}

	for _, a := range n.Attrs {
		if err := w.WriteAttribute(a.Name, a.Value); err != nil {
			return err
		}
	}

	for _, c := range n.Children {
		if err := c.Emit(w); err != nil {
			return err
		}
	}

	return w.CloseElement()
}

// Equal reports whether n and o have the same name, attributes (in order),
// text and children.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}

	if n.Name != o.Name || n.Text != o.Text || len(n.Attrs) != len(o.Attrs) || len(n.Children) != len(o.Children) {
		return false
	}

	for i := range n.Attrs {
		if n.Attrs[i] != o.Attrs[i] {
			return false
		}
	}

	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}

	return true
}

// NodeBuilder captures a subtree from events. It is started with the subtree's
// StartTag and fed every following event until Feed reports completion.
type NodeBuilder struct {
	root  *Node
	stack []*Node
}

// NewNodeBuilder starts capturing the element opened by start.
func NewNodeBuilder(start Event) *NodeBuilder {
	root := &Node{Name: start.Name, Attrs: append([]Attr(nil), start.Attrs...)}

	return &NodeBuilder{root: root, stack: []*Node{root}}
}

// Feed consumes one event and reports whether the captured element is closed.
func (b *NodeBuilder) Feed(ev Event) (bool, error) {
	if len(b.stack) == 0 {
		return true, errNodeClosed
	}

	top := b.stack[len(b.stack)-1]

	switch ev.Kind {
	case EventStartTag:
		child := &Node{Name: ev.Name, Attrs: append([]Attr(nil), ev.Attrs...)}
		top.Children = append(top.Children, child)
		b.stack = append(b.stack, child)
	case EventText:
		if n := len(top.Children); n > 0 && top.Children[n-1].IsText() {
			top.Children[n-1].Text += ev.Text
			break
		}

		top.Children = append(top.Children, TextNode(ev.Text))
	case EventEndTag:
		b.stack = b.stack[:len(b.stack)-1]
	default:
		return false, fmt.Errorf("unexpected %s event inside captured element %s", ev.Kind, b.root.Name)
	}

	return len(b.stack) == 0, nil
}

// Node returns the captured element.
func (b *NodeBuilder) Node() *Node {
	return b.root
}
