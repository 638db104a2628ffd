package canon

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
)

// xmlNode adapts *xmlquery.Node to the Node interface.
type xmlNode struct {
	n *xmlquery.Node
}

// FromXML wraps a parsed element as a canonicalizable Node.
func FromXML(n *xmlquery.Node) Node {
	return xmlNode{n: n}
}

// ParseDocument parses an XML document and returns its root element.
func ParseDocument(r io.Reader) (Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return xmlNode{n: c}, nil
		}
	}
	return nil, fmt.Errorf("parse document: no root element")
}

// ParseFile parses the XML document stored at path.
func ParseFile(path string) (Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}
	defer f.Close()
	return ParseDocument(f)
}

func (x xmlNode) Name() xml.Name {
	return xml.Name{Space: x.n.NamespaceURI, Local: x.n.Data}
}

func (x xmlNode) Attributes() []xml.Attr {
	attrs := make([]xml.Attr, 0, len(x.n.Attr))
	for _, a := range x.n.Attr {
		// Namespace declarations are document syntax, not content.
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		space := a.NamespaceURI
		if space == "" && a.Name.Space == "xml" {
			space = XMLNamespace
		}
		attrs = append(attrs, xml.Attr{
			Name:  xml.Name{Space: space, Local: a.Name.Local},
			Value: a.Value,
		})
	}
	return attrs
}

func (x xmlNode) Children() []Node {
	var children []Node
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			children = append(children, xmlNode{n: c})
		}
	}
	return children
}

func (x xmlNode) Text() string {
	var sb strings.Builder
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
