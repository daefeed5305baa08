package descriptor

//go:generate go tool stringer -type=Role -trimprefix=Role -output=role_string.go

// Role is the part a field plays in its element's markup.
type Role uint8

const (
	RoleInvalid Role = iota
	RoleElement
	RoleAttribute
	RoleWildcard           // unmatched child elements
	RoleAttributesWildcard // unmatched attributes
	RoleText               // simple content: the element's character data

	// RoleTotal is a constant that represents the total number of roles defined
	RoleTotal = int(iota)
)

// IsNamed reports whether fields of this role carry a qualified name.
func (r Role) IsNamed() bool {
	return r == RoleElement || r == RoleAttribute
}

// ParseRole maps a tag keyword to a Role.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "element", "elem":
		return RoleElement, true
	case "attribute", "attr":
		return RoleAttribute, true
	case "wildcard", "any":
		return RoleWildcard, true
	case "anyattr", "attributes":
		return RoleAttributesWildcard, true
	case "text", "chardata":
		return RoleText, true
	default:
		return RoleInvalid, false
	}
}
