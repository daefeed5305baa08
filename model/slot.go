package model

//go:generate go tool stringer -type=SlotEnum -trimprefix=Slot -output=slot_string.go

// SlotEnum classifies the unit a field stores for one markup occurrence.
type SlotEnum uint8

const (
	_ SlotEnum = iota
	SlotScalar     // text converted by the codec
	SlotTokens     // slice of scalars carried as one whitespace-delimited unit
	SlotRecord     // bound struct, decoded in its own frame
	SlotVariant    // interface holding one of the field's candidate types
	SlotNode       // *markup.Node captured generically
	SlotAttributes // map[markup.QName]string of unmatched attributes
	SlotMixed      // markup.Mixed interleaved content

	// SlotTotal is a constant that represents the total number of slots defined
	SlotTotal = int(iota)
)

// IsComplex reports whether the unit is decoded from child markup rather than text.
func (s SlotEnum) IsComplex() bool {
	return s == SlotRecord || s == SlotVariant || s == SlotNode
}

//go:generate go tool stringer -type=WrapEnum -trimprefix=Wrap -output=wrap_string.go

// WrapEnum is how one unit is held inside the field (or inside each slice item).
type WrapEnum uint8

const (
	WrapNone     WrapEnum = iota // the unit value itself
	WrapPointer                  // *Unit; nil means absent (or nil for sequence items)
	WrapNillable                 // descriptor.Nillable[Unit]
)
