// Package canon computes order-independent canonical forms of
// graph-structured XML documents.
//
// Two documents compare equal iff they are semantically equivalent:
// sibling order, link-bookkeeping attribute values (XLink labels, arc
// endpoints, ordering hints) and the physical layout of indirectly
// referenced auxiliary elements never affect the result. The canonical
// form of a node is its tag, its surviving attributes and the unordered
// multiset of its children's canonical forms.
package canon

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"sort"
	"strconv"
)

// hashDomain provides domain separation for canonical digests. The
// version suffix enables future encoding migration.
const hashDomain = "edgar/canon/v1"

// Value is a sealed sum type over canonical forms: Text, Number, Bag and
// Elem. Structural equality is defined once, over the deterministic byte
// encoding, and reused everywhere.
type Value interface {
	canonValue()
	encodeTo(buf *bytes.Buffer)
}

// Text is a string scalar, NFC-normalized at construction.
type Text string

func (Text) canonValue() {}

// Number is a numeric scalar. Values that parse as numbers are folded to
// Number so "1" and "1.0" compare equal.
type Number float64

func (Number) canonValue() {}

// Bag is an unordered multiset of canonical values. Duplicate members
// are distinct: Bag{x, x} != Bag{x}.
type Bag []Value

func (Bag) canonValue() {}

// Attr is a surviving attribute contributing to a node's identity.
// The value is a resolved canonical form for reference attributes and a
// scalar otherwise.
type Attr struct {
	Name  xml.Name
	Value Value
}

// Elem is the canonical form of one element: tag, attributes after
// exclusion, and the unordered multiset of child forms.
type Elem struct {
	Tag     xml.Name
	Attrs   []Attr
	Content Bag
}

func (Elem) canonValue() {}

// NewElem builds an Elem.
func NewElem(tag xml.Name, attrs []Attr, content Bag) Elem {
	return Elem{Tag: tag, Attrs: attrs, Content: content}
}

// Encode returns the deterministic byte encoding of a value. Equal
// values have equal encodings and vice versa.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	v.encodeTo(&buf)
	return buf.Bytes()
}

// Equal reports whether two canonical values are structurally equal.
func Equal(a, b Value) bool {
	return bytes.Equal(Encode(a), Encode(b))
}

// Digest returns the domain-separated SHA-256 digest of a value's
// encoding, hex encoded.
func Digest(v Value) string {
	h := sha256.New()
	h.Write([]byte(hashDomain))
	h.Write([]byte{0x00}) // domain/data boundary
	h.Write(Encode(v))
	return hex.EncodeToString(h.Sum(nil))
}

// Type tags keep encodings of different value kinds disjoint.
const (
	tagText   = 's'
	tagNumber = 'n'
	tagBag    = 'b'
	tagElem   = 'e'
)

func writeBytes(buf *bytes.Buffer, b []byte) {
	var n [binary.MaxVarintLen64]byte
	buf.Write(n[:binary.PutUvarint(n[:], uint64(len(b)))])
	buf.Write(b)
}

func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}

func writeName(buf *bytes.Buffer, name xml.Name) {
	writeString(buf, name.Space)
	writeString(buf, name.Local)
}

func (t Text) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte(tagText)
	writeString(buf, string(t))
}

func (n Number) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte(tagNumber)
	writeString(buf, strconv.FormatFloat(float64(n), 'g', -1, 64))
}

// encodeTo writes the multiset encoding: member encodings sorted
// lexicographically, so sibling order never leaks into the result while
// duplicates remain distinct members.
func (b Bag) encodeTo(buf *bytes.Buffer) {
	members := make([][]byte, len(b))
	for i, v := range b {
		members[i] = Encode(v)
	}
	sort.Slice(members, func(i, j int) bool {
		return bytes.Compare(members[i], members[j]) < 0
	})
	buf.WriteByte(tagBag)
	var n [binary.MaxVarintLen64]byte
	buf.Write(n[:binary.PutUvarint(n[:], uint64(len(members)))])
	for _, m := range members {
		writeBytes(buf, m)
	}
}

// encodeTo writes attributes in name order, so the physical attribute
// order in the source document never affects equality.
func (e Elem) encodeTo(buf *bytes.Buffer) {
	attrs := make([]Attr, len(e.Attrs))
	copy(attrs, e.Attrs)
	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].Name.Space != attrs[j].Name.Space {
			return attrs[i].Name.Space < attrs[j].Name.Space
		}
		return attrs[i].Name.Local < attrs[j].Name.Local
	})

	buf.WriteByte(tagElem)
	writeName(buf, e.Tag)
	var n [binary.MaxVarintLen64]byte
	buf.Write(n[:binary.PutUvarint(n[:], uint64(len(attrs)))])
	for _, a := range attrs {
		writeName(buf, a.Name)
		writeBytes(buf, Encode(a.Value))
	}
	e.Content.encodeTo(buf)
}
