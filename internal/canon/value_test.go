package canon

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"
)

func TestBagOrderIndependent(t *testing.T) {
	a := Bag{Text("x"), Number(1), Text("y")}
	b := Bag{Text("y"), Text("x"), Number(1)}

	assert.True(t, Equal(a, b))
}

func TestBagDuplicatesDistinct(t *testing.T) {
	assert.False(t, Equal(Bag{Text("x"), Text("x")}, Bag{Text("x")}))
}

func TestScalarKindsDisjoint(t *testing.T) {
	// "1" the string and 1 the number are different values; folding to
	// Number happens at parse time, not inside the encoding.
	assert.False(t, Equal(Text("1"), Number(1)))
	assert.False(t, Equal(Bag{}, Elem{}))
}

func TestElemAttributeOrderIndependent(t *testing.T) {
	a := Elem{Tag: xml.Name{Local: "e"}, Attrs: []Attr{
		{Name: xml.Name{Local: "x"}, Value: Text("1")},
		{Name: xml.Name{Local: "y"}, Value: Text("2")},
	}}
	b := Elem{Tag: xml.Name{Local: "e"}, Attrs: []Attr{
		{Name: xml.Name{Local: "y"}, Value: Text("2")},
		{Name: xml.Name{Local: "x"}, Value: Text("1")},
	}}

	assert.True(t, Equal(a, b))
}

func TestElemTagNamespaceMatters(t *testing.T) {
	a := NewElem(xml.Name{Space: "ns1", Local: "e"}, nil, nil)
	b := NewElem(xml.Name{Space: "ns2", Local: "e"}, nil, nil)

	assert.False(t, Equal(a, b))
}

func TestNestedBagEncodingUnambiguous(t *testing.T) {
	// Flattening must not collide: {{x},{y}} != {{x,y}}.
	a := Bag{Bag{Text("x")}, Bag{Text("y")}}
	b := Bag{Bag{Text("x"), Text("y")}}

	assert.False(t, Equal(a, b))
}

func TestUnicodeNormalizationAtBoundary(t *testing.T) {
	composed := Text(norm.NFC.String("caf\u00e9"))
	decomposed := Text(norm.NFC.String("cafe\u0301"))

	assert.True(t, Equal(composed, decomposed))
}

func TestDigestDomainSeparated(t *testing.T) {
	d := Digest(Text("hello"))
	assert.Len(t, d, 64)
	assert.Equal(t, d, Digest(Text("hello")))
	assert.NotEqual(t, d, Digest(Text("hellp")))
}
