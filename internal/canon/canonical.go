package canon

import (
	"encoding/xml"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Hasher canonicalizes documents under a fixed Options policy. It holds
// no per-document state and is safe for concurrent use.
type Hasher struct {
	opts Options
}

// NewHasher returns a Hasher for the given options. Nil policy functions
// fall back to the DefaultOptions behavior.
func NewHasher(opts Options) *Hasher {
	def := DefaultOptions()
	if opts.ExcludeAttr == nil {
		opts.ExcludeAttr = def.ExcludeAttr
	}
	if opts.ReferenceAttr == nil {
		opts.ReferenceAttr = def.ReferenceAttr
	}
	if opts.AuxiliaryID == nil {
		opts.AuxiliaryID = def.AuxiliaryID
	}
	return &Hasher{opts: opts}
}

// Equal reports whether two documents are semantically equivalent.
func (h *Hasher) Equal(a, b Node) bool {
	return Equal(h.Canonicalize(a), h.Canonicalize(b))
}

// Hash returns the hex digest of a document's canonical form.
func (h *Hasher) Hash(root Node) string {
	return Digest(h.Canonicalize(root))
}

// traversal carries the reference bookkeeping for one document.
type traversal struct {
	aux       map[string]Node
	refs      map[string]bool
	resolving map[string]bool
}

// Canonicalize computes the canonical form of a document rooted at root.
//
// Auxiliary elements declared under the root are lifted out of the main
// content; after the main traversal, the canonical form of every
// *referenced* auxiliary element is folded back into the root's multiset.
// Declared-but-unreferenced auxiliary elements leave the result
// unchanged.
func (h *Hasher) Canonicalize(root Node) Value {
	t := &traversal{
		aux:       make(map[string]Node),
		refs:      make(map[string]bool),
		resolving: make(map[string]bool),
	}

	var main []Node
	for _, c := range root.Children() {
		if id, ok := h.opts.AuxiliaryID(c); ok {
			t.aux[id] = c
			continue
		}
		main = append(main, c)
	}

	attrs := h.attrs(root, t)
	bag := make(Bag, 0, len(main))
	for _, c := range main {
		bag = append(bag, h.element(c, t))
	}

	// Canonicalizing a referenced auxiliary element may itself reference
	// further auxiliary elements, so fold until the used set is closed.
	folded := make(map[string]bool)
	for {
		var pending []string
		for id := range t.refs {
			if !folded[id] {
				pending = append(pending, id)
			}
		}
		if len(pending) == 0 {
			break
		}
		sort.Strings(pending)
		for _, id := range pending {
			folded[id] = true
			if target, ok := t.aux[id]; ok {
				bag = append(bag, h.element(target, t))
			}
		}
	}

	return NewElem(root.Name(), attrs, bag)
}

func (h *Hasher) element(n Node, t *traversal) Value {
	attrs := h.attrs(n, t)
	children := n.Children()
	if len(children) == 0 {
		return NewElem(n.Name(), attrs, h.leafContent(n, t))
	}
	if isExtendedLink(children) {
		return h.link(n, attrs, children, t)
	}
	bag := make(Bag, 0, len(children))
	for _, c := range children {
		bag = append(bag, h.element(c, t))
	}
	return NewElem(n.Name(), attrs, bag)
}

// attrs collects a node's surviving attributes. Reference attributes
// contribute the canonical form of their target instead of the raw
// identifier, so label renaming never affects equality.
func (h *Hasher) attrs(n Node, t *traversal) []Attr {
	var out []Attr
	for _, a := range n.Attributes() {
		switch {
		case h.opts.ExcludeAttr(a.Name):
		case h.opts.ReferenceAttr(a.Name):
			out = append(out, Attr{Name: a.Name, Value: h.resolveRef(a.Value, t)})
		default:
			out = append(out, Attr{Name: a.Name, Value: scalarOf(a.Value)})
		}
	}
	return out
}

func (h *Hasher) resolveRef(id string, t *traversal) Value {
	t.refs[id] = true
	target, ok := t.aux[id]
	if !ok || t.resolving[id] {
		// Unresolvable or cyclic reference: the identifier itself is all
		// the identity there is.
		return Text(norm.NFC.String(id))
	}
	t.resolving[id] = true
	v := h.element(target, t)
	delete(t.resolving, id)
	return v
}

// markupRe spots text content that embeds an XML fragment.
var markupRe = regexp.MustCompile(`</?[A-Za-z]`)

func (h *Hasher) leafContent(n Node, t *traversal) Bag {
	text := strings.TrimSpace(n.Text())
	if text == "" {
		return nil
	}
	if markupRe.MatchString(text) {
		if frag, err := ParseDocument(strings.NewReader(text)); err == nil {
			return Bag{h.element(frag, t)}
		}
		// Unparseable fragments degrade to plain text comparison.
		return Bag{Text(norm.NFC.String(text))}
	}
	return Bag{scalarOf(text)}
}

// scalarOf folds numeric-looking text to Number so representations like
// "1" and "1.0" compare equal; everything else is NFC-normalized text.
func scalarOf(s string) Value {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Text(norm.NFC.String(s))
}

func xlinkAttr(n Node, local string) string {
	for _, a := range n.Attributes() {
		if a.Name.Space == XLinkNamespace && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func isArc(n Node) bool {
	if xlinkAttr(n, "type") == "arc" {
		return true
	}
	return xlinkAttr(n, "from") != "" && xlinkAttr(n, "to") != ""
}

func isExtendedLink(children []Node) bool {
	for _, c := range children {
		if isArc(c) {
			return true
		}
	}
	return false
}

// link hashes an extended-link block as connectivity: one triple per arc,
// pairing the arc's own canonical form with the canonical forms of the
// locator/resource elements its from- and to-labels resolve to. Raw
// labels are block-local plumbing and never reach the encoding; elements
// no arc connects to do not contribute.
func (h *Hasher) link(n Node, attrs []Attr, children []Node, t *traversal) Value {
	labeled := make(map[string][]Node)
	var arcs, other []Node
	for _, c := range children {
		switch {
		case isArc(c):
			arcs = append(arcs, c)
		case xlinkAttr(c, "label") != "":
			labeled[xlinkAttr(c, "label")] = append(labeled[xlinkAttr(c, "label")], c)
		default:
			other = append(other, c)
		}
	}

	bag := make(Bag, 0, len(arcs)+len(other))
	for _, arc := range arcs {
		var from, to Bag
		for _, e := range labeled[xlinkAttr(arc, "from")] {
			from = append(from, h.element(e, t))
		}
		for _, e := range labeled[xlinkAttr(arc, "to")] {
			to = append(to, h.element(e, t))
		}
		bag = append(bag, Bag{
			h.element(arc, t),
			NewElem(xml.Name{Local: "from"}, nil, from),
			NewElem(xml.Name{Local: "to"}, nil, to),
		})
	}
	for _, c := range other {
		bag = append(bag, h.element(c, t))
	}
	return NewElem(n.Name(), attrs, bag)
}
