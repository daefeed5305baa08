package store

import "markup-binder/markup"

// Shape is the variant interface of drawing content.
type Shape interface {
	Area() float64
}

// Alpha is a square.
type Alpha struct {
	Side float64 `bind:"attribute,name=side,required"`
}

func (a *Alpha) Area() float64 { return a.Side * a.Side }

// Bravo is a labelled rectangle.
type Bravo struct {
	Width  float64 `bind:"attribute,name=width,required"`
	Height float64 `bind:"attribute,name=height,required"`
	Label  string  `bind:"element,name=label"`
}

func (b *Bravo) Area() float64 { return b.Width * b.Height }

// Charlie extends Bravo with a depth. It is not a declared candidate of
// Drawing, so it travels with an explicit type marker.
type Charlie struct {
	Bravo

	Depth float64 `bind:"attribute,name=depth"`
}

// Drawing holds shapes of any candidate type in document order.
type Drawing struct {
	Title  string
	Shapes []Shape
	Note   *markup.Node
}
