package canon

import "encoding/xml"

// Node is a minimal read-only view of a document element, independent of
// any concrete document model. Namespace declarations are not reported
// as attributes.
type Node interface {
	// Name returns the element's expanded name (namespace URI + local).
	Name() xml.Name
	// Attributes returns the element's attributes with expanded names.
	Attributes() []xml.Attr
	// Children returns the element children in document order.
	Children() []Node
	// Text returns the element's directly contained character data.
	Text() string
}
