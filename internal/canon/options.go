package canon

import "encoding/xml"

// Well-known namespaces consulted by the default policies.
const (
	XLinkNamespace = "http://www.w3.org/1999/xlink"
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
)

// Options configure which attributes are bookkeeping, which are indirect
// references, and how auxiliary elements are recognized. The zero value
// is not usable; start from DefaultOptions.
type Options struct {
	// ExcludeAttr reports whether an attribute carries link-topology
	// plumbing rather than content. Excluded attributes contribute
	// nothing to a node's identity.
	ExcludeAttr func(name xml.Name) bool

	// ReferenceAttr reports whether an attribute's value is an indirect
	// reference to a declared auxiliary element. The raw reference value
	// is never hashed; the referenced element's canonical form stands in
	// for it.
	ReferenceAttr func(name xml.Name) bool

	// AuxiliaryID recognizes declared auxiliary elements among the
	// document root's children and returns the identifier under which
	// they may be referenced. Auxiliary elements contribute to the
	// canonical form only when referenced.
	AuxiliaryID func(n Node) (string, bool)
}

// DefaultOptions returns the policy for XBRL-shaped instance documents:
// XLink labels, arc endpoints, ordering hints and language markers are
// bookkeeping; contextRef/unitRef and XLink role URIs are indirect
// references; top-level elements carrying an id attribute are auxiliary
// declarations.
func DefaultOptions() Options {
	return Options{
		ExcludeAttr: func(name xml.Name) bool {
			if name.Space == XLinkNamespace {
				switch name.Local {
				case "label", "from", "to", "order", "title", "type":
					return true
				}
			}
			if name.Space == XMLNamespace && name.Local == "lang" {
				return true
			}
			// Bare id attributes are the declaration side of indirect
			// references; their literal value is arbitrary.
			return name.Space == "" && name.Local == "id"
		},
		ReferenceAttr: func(name xml.Name) bool {
			if name.Space == "" {
				switch name.Local {
				case "contextRef", "unitRef":
					return true
				}
			}
			if name.Space == XLinkNamespace {
				switch name.Local {
				case "role", "arcrole":
					return true
				}
			}
			return false
		},
		AuxiliaryID: func(n Node) (string, bool) {
			for _, a := range n.Attributes() {
				if a.Name.Space == "" && a.Name.Local == "id" {
					return a.Value, a.Value != ""
				}
			}
			return "", false
		},
	}
}
