package suite

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altova/sec-edgar-tools/internal/diag"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testcaseDoc = `<testcase>
	<number>605-12</number>
	<name>Context checks</name>
	<creator>conformance wg</creator>
	<variation id="v-01">
		<name>segment present</name>
		<data>
			<instance readMeFirst="true">v01/instance.xml</instance>
			<linkbase>v01/labels.xml</linkbase>
			<parameter name="formType" value="10-K"/>
		</data>
		<results>
			<error count="2">EFM.6.05.12</error>
			<error>EFM.6.03.03</error>
		</results>
	</variation>
	<variation id="v-02">
		<data>
			<instance readMeFirst="true">v02/instance.xml</instance>
		</data>
		<results/>
	</variation>
	<variation id="v-03">
		<data>
			<instance readMeFirst="true">v03/a.xml</instance>
			<instance>v03/b.xml</instance>
		</data>
		<results>
			<error>EFM.6.05.12</error>
		</results>
	</variation>
	<variation id="v-04">
		<data>
			<instance readMeFirst="true">v04/instance.xml</instance>
		</data>
		<results>
			<output>v04/expected.xml</output>
		</results>
	</variation>
	<variation id="v-05">
		<data>
			<instance readMeFirst="true">v05/instance.xml</instance>
		</data>
	</variation>
</testcase>`

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "605/testcase.xml", testcaseDoc)
	index := writeFile(t, dir, "index.xml", `<testcases name="EFM Conformance Suite" date="2026-03-31">
		<testcase uri="605/testcase.xml"/>
	</testcases>`)

	s, err := Load(index, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, index, s.URI)
	assert.Equal(t, "EFM Conformance Suite", s.Name)
	assert.Equal(t, "2026-03-31", s.Date)
	require.Len(t, s.Testcases, 1)

	tc := s.Testcases[0]
	assert.Equal(t, "605-12", tc.Number)
	assert.Equal(t, "Context checks", tc.Name)
	assert.Equal(t, filepath.Join(dir, "605/testcase.xml"), tc.URI)

	// v-05 has no expectation at all and is dropped at load time.
	require.Len(t, tc.Variations, 4)

	v1 := tc.Variations[0]
	assert.Equal(t, "v-01", v1.Key.Variation)
	assert.Equal(t, "segment present", v1.Name)
	assert.Equal(t, filepath.Join(dir, "605/v01/instance.xml"), v1.EntryPoint)
	require.Len(t, v1.Inputs, 2)
	assert.Equal(t, "linkbase", v1.Inputs[1].Kind)
	assert.Equal(t, map[string]string{"formType": "10-K"}, v1.Parameters)
	assert.True(t, v1.Expectation.HasCodes)
	assert.Equal(t, diag.Fingerprint{"EFM.6.05.12": 2, "EFM.6.03.03": 1}, v1.Expectation.Codes)
	assert.Empty(t, v1.SkipReason)

	// Empty <results/> is an explicit clean-validation expectation.
	v2 := tc.Variations[1]
	assert.True(t, v2.Expectation.HasCodes)
	assert.Empty(t, v2.Expectation.Codes)

	// Two instance documents are out of scope and marked for skipping.
	v3 := tc.Variations[2]
	assert.Equal(t, "multiple instance documents", v3.SkipReason)

	v4 := tc.Variations[3]
	assert.False(t, v4.Expectation.HasCodes)
	assert.Equal(t, filepath.Join(dir, "605/v04/expected.xml"), v4.Expectation.ReferenceDocument)
}

func TestLoadNestedIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "conf/605/testcase.xml", testcaseDoc)
	index := writeFile(t, dir, "index.xml", `<index name="wrapped">
		<testcases root="conf">
			<testcase uri="605/testcase.xml"/>
		</testcases>
	</index>`)

	s, err := Load(index, quietLogger())
	require.NoError(t, err)
	require.Len(t, s.Testcases, 1)
	assert.Equal(t, filepath.Join(dir, "conf/605/testcase.xml"), s.Testcases[0].URI)
}

func TestLoadSkipsUnreadableTestcase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good/testcase.xml", testcaseDoc)
	index := writeFile(t, dir, "index.xml", `<testcases>
		<testcase uri="missing/testcase.xml"/>
		<testcase uri="good/testcase.xml"/>
	</testcases>`)

	s, err := Load(index, quietLogger())
	require.NoError(t, err)
	require.Len(t, s.Testcases, 1)
	assert.Equal(t, filepath.Join(dir, "good/testcase.xml"), s.Testcases[0].URI)
}

func TestLoadMissingIndexFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xml"), quietLogger())
	assert.Error(t, err)
}

func TestVariationWithoutIDDropped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tc.xml", `<testcase>
		<number>1</number>
		<variation>
			<data><instance readMeFirst="true">a.xml</instance></data>
			<results><error>X.1</error></results>
		</variation>
	</testcase>`)
	index := writeFile(t, dir, "index.xml", `<testcases><testcase uri="tc.xml"/></testcases>`)

	s, err := Load(index, quietLogger())
	require.NoError(t, err)
	require.Len(t, s.Testcases, 1)
	assert.Empty(t, s.Testcases[0].Variations)
}

func TestFilterSelectsVariations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "605/testcase.xml", testcaseDoc)
	index := writeFile(t, dir, "index.xml", `<testcases><testcase uri="605/testcase.xml"/></testcases>`)

	s, err := Load(index, quietLogger())
	require.NoError(t, err)

	all := s.Variations(Filter{})
	assert.Len(t, all, 4)

	byID := s.Variations(Filter{Variations: []string{"v-01", "v-04"}})
	require.Len(t, byID, 2)
	assert.Equal(t, "v-01", byID[0].Key.Variation)
	assert.Equal(t, "v-04", byID[1].Key.Variation)

	none := s.Variations(Filter{Testcases: []string{"999-99"}})
	assert.Empty(t, none)
}

func TestResolveRef(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"relative path", "/conf/tc.xml", "v01/instance.xml", filepath.FromSlash("/conf/v01/instance.xml")},
		{"absolute path", "/conf/tc.xml", "/other/doc.xml", "/other/doc.xml"},
		{"url ref", "/conf/tc.xml", "http://example.com/doc.xml", "http://example.com/doc.xml"},
		{"url base", "http://example.com/conf/tc.xml", "v01/instance.xml", "http://example.com/conf/v01/instance.xml"},
		{"empty", "/conf/tc.xml", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRef(tt.base, tt.ref))
		})
	}
}
