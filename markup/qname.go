package markup

import "strings"

const (
	// XSINamespace is the XML Schema instance namespace carrying nil and type markers.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"
	// XMLNamespace is the namespace bound to the reserved "xml" prefix.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
)

var (
	// XSINil is the attribute marking an element as explicitly nil.
	XSINil = QName{Space: XSINamespace, Local: "nil"}
	// XSIType is the attribute carrying an explicit concrete type.
	XSIType = QName{Space: XSINamespace, Local: "type"}
)

// QName is a namespace-qualified name. Space holds the namespace identifier,
// never a prefix.
type QName struct {
	Space string
	Local string
}

// Name returns an unqualified QName.
func Name(local string) QName {
	return QName{Local: local}
}

// NS returns a QName in the given namespace.
func NS(space, local string) QName {
	return QName{Space: space, Local: local}
}

// IsZero reports whether q has no local name.
func (q QName) IsZero() bool {
	return q.Local == ""
}

// String returns the Clark notation of q: "{space}local" or "local".
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}

	return "{" + q.Space + "}" + q.Local
}

// ParseQName parses Clark notation produced by String.
func ParseQName(s string) QName {
	if strings.HasPrefix(s, "{") {
		if end := strings.IndexByte(s, '}'); end > 0 {
			return QName{Space: s[1:end], Local: s[end+1:]}
		}
	}

	return QName{Local: s}
}

// Less orders names by namespace, then by local name.
func (q QName) Less(o QName) bool {
	if q.Space != o.Space {
		return q.Space < o.Space
	}

	return q.Local < o.Local
}

// Attr is a single attribute with a resolved name.
type Attr struct {
	Name  QName
	Value string
}
