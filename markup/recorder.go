package markup

import (
	"errors"
	"fmt"
)

var (
	errAttrOutsideStart = errors.New("attribute written outside of a start tag")
	errUnbalancedClose  = errors.New("close without open element")
)

// Recorder is a Writer that records the calls as tokenizer events, so encoder
// output can be fed straight back into a binder.
type Recorder struct {
	events  []Event
	pending *Event
	depth   int
}

var _ Writer = (*Recorder)(nil)

// OpenElement starts a pending StartTag.
func (r *Recorder) OpenElement(name QName) error {
	r.flush()
	r.pending = &Event{Kind: EventStartTag, Name: name}
	r.depth++

	return nil
}

// WriteAttribute adds an attribute to the pending StartTag.
func (r *Recorder) WriteAttribute(name QName, value string) error {
	if r.pending == nil {
		return fmt.Errorf("%w: %s", errAttrOutsideStart, name)
	}

	r.pending.Attrs = append(r.pending.Attrs, Attr{Name: name, Value: value})

	return nil
}

// WriteText records a Text event. Empty text is dropped.
func (r *Recorder) WriteText(text string) error {
	r.flush()
	if text == "" {
		return nil
	}

	r.events = append(r.events, Text(text))

	return nil
}

// CloseElement records an EndTag event.
func (r *Recorder) CloseElement() error {
	if r.depth == 0 {
		return errUnbalancedClose
	}

	r.flush()
	r.depth--
	r.events = append(r.events, EndTag())

	return nil
}

// WriteNil records an element carrying xsi:nil="true".
func (r *Recorder) WriteNil(name QName) error {
	r.flush()
	r.events = append(r.events,
		StartTag(name, Attr{Name: XSINil, Value: "true"}),
		EndTag(),
	)

	return nil
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	r.flush()

	return r.events
}

// Source replays the recorded events followed by EndDocument.
func (r *Recorder) Source() *EventSource {
	return NewEventSource(append([]Event(nil), r.Events()...)...)
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
	r.pending = nil
	r.depth = 0
}

func (r *Recorder) flush() {
	if r.pending != nil {
		r.events = append(r.events, *r.pending)
		r.pending = nil
	}
}
