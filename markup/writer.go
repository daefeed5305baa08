package markup

// Writer receives the emitter's output. Attributes belong to the most recently
// opened element and must be written before any text or child element.
type Writer interface {
	OpenElement(name QName) error
	WriteAttribute(name QName, value string) error
	WriteText(text string) error
	CloseElement() error
	// WriteNil writes a complete element carrying the nil marker.
	WriteNil(name QName) error
}
