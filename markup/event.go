package markup

import "io"

//go:generate go tool stringer -type=EventKind -trimprefix=Event -output=eventkind_string.go

// EventKind identifies a tokenizer event.
type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventStartTag
	EventText
	EventEndTag
	EventEndDocument
)

// Event is one tokenizer event. Name and Attrs are set for StartTag, Text for
// Text. Line and Column are zero when the tokenizer does not track positions.
type Event struct {
	Kind   EventKind
	Name   QName
	Attrs  []Attr
	Text   string
	Line   int
	Column int
}

// StartTag builds a StartTag event.
func StartTag(name QName, attrs ...Attr) Event {
	return Event{Kind: EventStartTag, Name: name, Attrs: attrs}
}

// Text builds a Text event.
func Text(s string) Event {
	return Event{Kind: EventText, Text: s}
}

// EndTag builds an EndTag event.
func EndTag() Event {
	return Event{Kind: EventEndTag}
}

// EndDocument builds an EndDocument event.
func EndDocument() Event {
	return Event{Kind: EventEndDocument}
}

// Attr returns the value of the named attribute.
func (e *Event) Attr(name QName) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// Source yields tokenizer events in document order. After the last element it
// returns an EndDocument event; further calls return io.EOF.
type Source interface {
	Next() (Event, error)
}

// EventSource replays a fixed slice of events.
type EventSource struct {
	events []Event
	pos    int
}

// NewEventSource returns a Source over events. An EndDocument event is
// appended if the slice does not end with one.
func NewEventSource(events ...Event) *EventSource {
	if len(events) == 0 || events[len(events)-1].Kind != EventEndDocument {
		events = append(events, EndDocument())
	}

	return &EventSource{events: events}
}

// Next returns the next recorded event.
func (s *EventSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}

	ev := s.events[s.pos]
	s.pos++

	return ev, nil
}
