package binder

import (
	"reflect"
	"strings"

	"markup-binder/markup"
	"markup-binder/model"
)

type frameKind uint8

const (
	// frameRecord decodes a bound struct.
	frameRecord frameKind = iota
	// frameLeaf accumulates the text of a scalar element.
	frameLeaf
	// frameCapture builds a generic node.
	frameCapture
	// frameSkip discards a subtree.
	frameSkip
)

// frame is the decode state of one open element.
type frame struct {
	kind   frameKind
	name   markup.QName
	line   int
	column int
	// field is the parent's field receiving the finished value; nil for the
	// document root and for skipped subtrees.
	field *model.Field

	// record state
	model  *model.ClassModel
	value  reflect.Value // pointer to the struct
	counts []int
	text   strings.Builder
	mixed  markup.Mixed
	order  cursor

	// capture state
	builder *markup.NodeBuilder
	// skip state
	depth int
}

func newRecordFrame(m *model.ClassModel, name markup.QName, f *model.Field) *frame {
	return &frame{
		kind:   frameRecord,
		name:   name,
		field:  f,
		model:  m,
		value:  m.New(),
		counts: make([]int, len(m.Fields)),
	}
}

func (fr *frame) record() reflect.Value {
	return fr.value.Elem()
}

func (fr *frame) typeName() string {
	if fr.model == nil {
		return ""
	}

	return fr.model.TypeName()
}

// appendText adds a text run to mixed content, merging adjacent runs.
func (fr *frame) appendText(s string) {
	if n := len(fr.mixed); n > 0 && fr.mixed[n-1].IsText() {
		fr.mixed[n-1].Text += s
		return
	}

	fr.mixed = append(fr.mixed, markup.Item{Text: s})
}

// dropMixed removes the mixed content items of field f, merging the text runs
// that become adjacent.
func (fr *frame) dropMixed(f *model.Field) {
	items := fr.mixed
	fr.mixed = nil

	for _, it := range items {
		if it.IsText() {
			fr.appendText(it.Text)
			continue
		}

		if g, ok := fr.model.Element(it.Name); ok && g == f {
			continue
		}

		fr.mixed = append(fr.mixed, it)
	}
}

// cursor tracks sequence groups for order and contiguity checks.
type cursor struct {
	group  int
	pos    int
	closed map[int]bool
}

// advance records an occurrence of f and reports whether it respects the
// group order: members of a sequence group in declaration order, every group
// contiguous.
func (c *cursor) advance(f *model.Field) (ok bool, reason string) {
	if f.Group == c.group {
		if f.Group != 0 && !f.Choice && f.Position < c.pos {
			return false, "out of order in its sequence"
		}

		c.pos = f.Position

		return true, ""
	}

	if f.Group != 0 && c.closed[f.Group] {
		return false, "separated from the rest of its group"
	}

	if c.group != 0 {
		if c.closed == nil {
			c.closed = make(map[int]bool)
		}

		c.closed[c.group] = true
	}

	c.group, c.pos = f.Group, f.Position

	return true, ""
}
