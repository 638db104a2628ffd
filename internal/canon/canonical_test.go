package canon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, doc string) Node {
	t.Helper()
	n, err := ParseDocument(strings.NewReader(doc))
	require.NoError(t, err)
	return n
}

func TestSiblingOrderIrrelevant(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<xbrl>
		<Assets>100</Assets>
		<Liabilities>50</Liabilities>
	</xbrl>`)
	b := parse(t, `<xbrl>
		<Liabilities>50</Liabilities>
		<Assets>100</Assets>
	</xbrl>`)

	assert.True(t, h.Equal(a, b))
	assert.Equal(t, h.Hash(a), h.Hash(b))
}

func TestAttributeOrderIrrelevant(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<doc><item decimals="0" precision="2">5</item></doc>`)
	b := parse(t, `<doc><item precision="2" decimals="0">5</item></doc>`)

	assert.True(t, h.Equal(a, b))
}

func TestDuplicateSiblingsDistinct(t *testing.T) {
	h := NewHasher(DefaultOptions())

	one := parse(t, `<doc><item>1</item></doc>`)
	two := parse(t, `<doc><item>1</item><item>1</item></doc>`)

	assert.False(t, h.Equal(one, two))
}

func TestNumericTextFolds(t *testing.T) {
	h := NewHasher(DefaultOptions())

	assert.True(t, h.Equal(
		parse(t, `<doc><v>1</v></doc>`),
		parse(t, `<doc><v>1.0</v></doc>`)))
	assert.True(t, h.Equal(
		parse(t, `<doc><v>0.5</v></doc>`),
		parse(t, `<doc><v>5e-1</v></doc>`)))
	assert.False(t, h.Equal(
		parse(t, `<doc><v>1</v></doc>`),
		parse(t, `<doc><v>2</v></doc>`)))
	// Leading zeros survive only in non-numeric text.
	assert.False(t, h.Equal(
		parse(t, `<doc><v>abc</v></doc>`),
		parse(t, `<doc><v>abd</v></doc>`)))
}

const instanceTemplate = `<xbrl>
	<context id="%CTX1%"><period><instant>2023-12-31</instant></period></context>
	<context id="%CTX2%"><period><instant>2024-12-31</instant></period></context>
	<unit id="%UNIT%"><measure>iso4217:USD</measure></unit>
	<Assets contextRef="%REF1%" unitRef="%UNIT%">100</Assets>
	<Liabilities contextRef="%REF2%" unitRef="%UNIT%">50</Liabilities>
</xbrl>`

func instance(t *testing.T, ctx1, ctx2, unit, ref1, ref2 string) Node {
	t.Helper()
	r := strings.NewReplacer(
		"%CTX1%", ctx1, "%CTX2%", ctx2, "%UNIT%", unit,
		"%REF1%", ref1, "%REF2%", ref2)
	return parse(t, r.Replace(instanceTemplate))
}

func TestContextRenamingPreservesEquality(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := instance(t, "c1", "c2", "u1", "c1", "c2")
	b := instance(t, "ctxA", "ctxB", "usd", "ctxA", "ctxB")

	assert.True(t, h.Equal(a, b))
}

func TestSwappedReferencesDiffer(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := instance(t, "c1", "c2", "u1", "c1", "c2")
	b := instance(t, "c1", "c2", "u1", "c2", "c1")

	assert.False(t, h.Equal(a, b))
}

func TestUnreferencedAuxiliaryIgnored(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<xbrl>
		<context id="c1"><period><instant>2023-12-31</instant></period></context>
		<Assets contextRef="c1">100</Assets>
	</xbrl>`)
	b := parse(t, `<xbrl>
		<context id="c1"><period><instant>2023-12-31</instant></period></context>
		<context id="unused"><period><instant>1999-01-01</instant></period></context>
		<Assets contextRef="c1">100</Assets>
	</xbrl>`)

	assert.True(t, h.Equal(a, b))
}

func TestUnresolvableReferenceComparesByIdentifier(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<xbrl><Assets contextRef="missing">100</Assets></xbrl>`)
	b := parse(t, `<xbrl><Assets contextRef="missing">100</Assets></xbrl>`)
	c := parse(t, `<xbrl><Assets contextRef="other">100</Assets></xbrl>`)

	assert.True(t, h.Equal(a, b))
	assert.False(t, h.Equal(a, c))
}

func TestEmbeddedFragmentComparedStructurally(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<doc><note>&lt;p&gt;&lt;b/&gt;&lt;c/&gt;&lt;/p&gt;</note></doc>`)
	b := parse(t, `<doc><note>&lt;p&gt;&lt;c/&gt;&lt;b/&gt;&lt;/p&gt;</note></doc>`)

	assert.True(t, h.Equal(a, b))
}

func TestUnparseableFragmentFallsBackToText(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<doc><note>&lt;broken</note></doc>`)
	b := parse(t, `<doc><note>&lt;broken</note></doc>`)
	c := parse(t, `<doc><note>&lt;other</note></doc>`)

	assert.True(t, h.Equal(a, b))
	assert.False(t, h.Equal(a, c))
}

const linkbaseTemplate = `<linkbase xmlns:xlink="http://www.w3.org/1999/xlink">
	<link xlink:type="extended" xlink:role="http://example.com/role">
		<loc xlink:type="locator" xlink:label="%A%" xlink:href="s.xsd#Assets"/>
		<loc xlink:type="locator" xlink:label="%B%" xlink:href="s.xsd#Liabilities"/>
		<arc xlink:type="arc" xlink:from="%FROM%" xlink:to="%TO%" xlink:order="%ORDER%"/>
	</link>
</linkbase>`

func linkbase(t *testing.T, a, b, from, to, order string) Node {
	t.Helper()
	r := strings.NewReplacer("%A%", a, "%B%", b, "%FROM%", from, "%TO%", to, "%ORDER%", order)
	return parse(t, r.Replace(linkbaseTemplate))
}

func TestLinkLabelRenamingPreservesEquality(t *testing.T) {
	h := NewHasher(DefaultOptions())

	assert.True(t, h.Equal(
		linkbase(t, "a", "b", "a", "b", "1.0"),
		linkbase(t, "x", "y", "x", "y", "1.0")))
}

func TestLinkConnectivityMatters(t *testing.T) {
	h := NewHasher(DefaultOptions())

	assert.False(t, h.Equal(
		linkbase(t, "a", "b", "a", "b", "1.0"),
		linkbase(t, "a", "b", "b", "a", "1.0")))
}

func TestLinkOrderHintIgnored(t *testing.T) {
	h := NewHasher(DefaultOptions())

	assert.True(t, h.Equal(
		linkbase(t, "a", "b", "a", "b", "1.0"),
		linkbase(t, "a", "b", "a", "b", "7.0")))
}

func TestLinkUnconnectedElementsDropped(t *testing.T) {
	h := NewHasher(DefaultOptions())

	plain := parse(t, `<linkbase xmlns:xlink="http://www.w3.org/1999/xlink">
		<link xlink:type="extended">
			<loc xlink:type="locator" xlink:label="a" xlink:href="s.xsd#Assets"/>
			<loc xlink:type="locator" xlink:label="b" xlink:href="s.xsd#Liabilities"/>
			<arc xlink:type="arc" xlink:from="a" xlink:to="b"/>
		</link>
	</linkbase>`)
	withStray := parse(t, `<linkbase xmlns:xlink="http://www.w3.org/1999/xlink">
		<link xlink:type="extended">
			<loc xlink:type="locator" xlink:label="a" xlink:href="s.xsd#Assets"/>
			<loc xlink:type="locator" xlink:label="b" xlink:href="s.xsd#Liabilities"/>
			<loc xlink:type="locator" xlink:label="stray" xlink:href="s.xsd#Equity"/>
			<arc xlink:type="arc" xlink:from="a" xlink:to="b"/>
		</link>
	</linkbase>`)

	assert.True(t, h.Equal(plain, withStray))
}

func TestHashStableAndDistinct(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<doc><v>1</v></doc>`)
	b := parse(t, `<doc><v>2</v></doc>`)

	ha := h.Hash(a)
	assert.Len(t, ha, 64)
	assert.Equal(t, ha, h.Hash(a))
	assert.NotEqual(t, ha, h.Hash(b))
}

func TestNamespacedElementsDiffer(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<doc xmlns="http://example.com/a"><v>1</v></doc>`)
	b := parse(t, `<doc xmlns="http://example.com/b"><v>1</v></doc>`)

	assert.False(t, h.Equal(a, b))
}

func TestNamespacePrefixIrrelevant(t *testing.T) {
	h := NewHasher(DefaultOptions())

	a := parse(t, `<p:doc xmlns:p="http://example.com/ns"><p:v>1</p:v></p:doc>`)
	b := parse(t, `<q:doc xmlns:q="http://example.com/ns"><q:v>1</q:v></q:doc>`)

	assert.True(t, h.Equal(a, b))
}
