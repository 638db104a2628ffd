package suite

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/altova/sec-edgar-tools/internal/diag"
)

// Load reads a test-suite index file and every testcase file it points
// to. A testcase file that fails to load is reported and skipped; only
// an unreadable index aborts the load.
func Load(indexPath string, logger *slog.Logger) (*Suite, error) {
	logger.Info("loading testsuite index", "uri", indexPath)

	root, err := parseFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("load testsuite %s: %w", indexPath, err)
	}

	s := &Suite{
		URI:  indexPath,
		Name: attrVal(root, "name"),
		Date: attrVal(root, "date"),
	}

	indexDir := filepath.Dir(indexPath)
	for _, elem := range elementChildren(root) {
		switch elem.Data {
		case "testcase":
			s.loadTestcaseRef(indexDir, elem, logger)
		case "testcases":
			dir := indexDir
			if r := attrVal(elem, "root"); r != "" {
				dir = filepath.Join(indexDir, filepath.FromSlash(r))
			}
			for _, tcElem := range elementChildren(elem) {
				if tcElem.Data == "testcase" {
					s.loadTestcaseRef(dir, tcElem, logger)
				}
			}
		}
	}
	return s, nil
}

func (s *Suite) loadTestcaseRef(dir string, elem *xmlquery.Node, logger *slog.Logger) {
	uri := attrVal(elem, "uri")
	if !filepath.IsAbs(uri) && !strings.Contains(uri, "://") {
		uri = filepath.Join(dir, filepath.FromSlash(uri))
	}
	tc, err := loadTestcase(uri, logger)
	if err != nil {
		// The rest of the suite still runs; this file's variations are
		// simply absent from the results.
		logger.Error("skipping unreadable testcase", "uri", uri, "err", err)
		return
	}
	s.Testcases = append(s.Testcases, tc)
}

func loadTestcase(path string, logger *slog.Logger) (Testcase, error) {
	logger.Info("loading testcase", "uri", path)

	root, err := parseFile(path)
	if err != nil {
		return Testcase{}, err
	}

	tc := Testcase{URI: path}
	seen := make(map[string]bool)
	for _, elem := range elementChildren(root) {
		switch elem.Data {
		case "number":
			tc.Number = elemText(elem)
		case "name":
			tc.Name = elemText(elem)
		case "creator", "description", "reference", "ruleIdentifier", "ruleMessage":
			// testcase metadata with no bearing on execution
		case "variation":
			v, err := parseVariation(path, elem, logger)
			if err != nil {
				logger.Error("skipping malformed variation", "uri", path, "id", attrVal(elem, "id"), "err", err)
				continue
			}
			if seen[v.Key.Variation] {
				logger.Warn("duplicate variation id", "uri", path, "id", v.Key.Variation)
			}
			seen[v.Key.Variation] = true
			tc.Variations = append(tc.Variations, v)
		default:
			logger.Warn("unknown testcase child element", "uri", path, "element", elem.Data)
		}
	}
	return tc, nil
}

func parseVariation(tcURI string, varElem *xmlquery.Node, logger *slog.Logger) (Variation, error) {
	v := Variation{
		Key:        VariationKey{Testcase: tcURI, Variation: attrVal(varElem, "id")},
		Parameters: make(map[string]string),
	}
	if v.Key.Variation == "" {
		return Variation{}, fmt.Errorf("variation without id")
	}

	for _, elem := range elementChildren(varElem) {
		switch elem.Data {
		case "name":
			v.Name = elemText(elem)
		case "description":
			v.Description = elemText(elem)
		case "reference":
			// specification citation, informational only
		case "data":
			parseData(tcURI, elem, &v, logger)
		case "results", "result":
			exp, err := parseExpectation(tcURI, elem, logger)
			if err != nil {
				return Variation{}, err
			}
			v.Expectation = exp
		default:
			logger.Warn("unknown variation child element", "uri", tcURI, "element", elem.Data)
		}
	}

	if !v.Expectation.Valid() {
		return Variation{}, fmt.Errorf("variation %s has neither expected codes nor a reference document", v.Key.Variation)
	}
	if instances := countInstances(v.Inputs); instances > 1 {
		// Multi-instance entry points are out of scope for this harness.
		v.SkipReason = "multiple instance documents"
	}
	return v, nil
}

func parseData(tcURI string, dataElem *xmlquery.Node, v *Variation, logger *slog.Logger) {
	for _, elem := range elementChildren(dataElem) {
		switch elem.Data {
		case "instance", "linkbase", "schema":
			in := Input{
				Kind:        elem.Data,
				URI:         resolveRef(tcURI, elemText(elem)),
				ReadMeFirst: boolAttr(elem, "readMeFirst"),
			}
			v.Inputs = append(v.Inputs, in)
			if in.ReadMeFirst {
				v.EntryPoint = in.URI
			}
		case "parameter":
			v.Parameters[attrVal(elem, "name")] = attrVal(elem, "value")
		default:
			logger.Warn("unknown data child element", "uri", tcURI, "element", elem.Data)
		}
	}
	if v.EntryPoint == "" && len(v.Inputs) > 0 {
		v.EntryPoint = v.Inputs[0].URI
	}
}

func parseExpectation(tcURI string, resultsElem *xmlquery.Node, logger *slog.Logger) (Expectation, error) {
	exp := Expectation{}
	for _, elem := range elementChildren(resultsElem) {
		switch elem.Data {
		case "error":
			if !exp.HasCodes {
				exp.HasCodes = true
				exp.Codes = make(diag.Fingerprint)
			}
			count := 1
			if c := attrVal(elem, "count"); c != "" {
				n, err := strconv.Atoi(c)
				if err != nil {
					return Expectation{}, fmt.Errorf("error element with bad count %q: %w", c, err)
				}
				count = n
			}
			exp.Codes[elemText(elem)] += count
		case "output":
			exp.ReferenceDocument = resolveRef(tcURI, elemText(elem))
		default:
			logger.Warn("unknown results child element", "uri", tcURI, "element", elem.Data)
		}
	}
	// <results/> with no error children is an explicit expectation of a
	// clean validation.
	if !exp.HasCodes && exp.ReferenceDocument == "" {
		exp.HasCodes = true
		exp.Codes = make(diag.Fingerprint)
	}
	return exp, nil
}

func countInstances(inputs []Input) int {
	n := 0
	for _, in := range inputs {
		if in.Kind == "instance" {
			n++
		}
	}
	return n
}

// resolveRef resolves ref against the document that mentioned it,
// handling both URLs and local paths.
func resolveRef(base, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.Contains(ref, "://") {
		return ref
	}
	if strings.Contains(base, "://") {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
}

func parseFile(path string) (*xmlquery.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := xmlquery.Parse(f)
	if err != nil {
		return nil, err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no document element")
}

func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func elemText(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

func attrVal(n *xmlquery.Node, name string) string {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func boolAttr(n *xmlquery.Node, name string) bool {
	switch strings.TrimSpace(attrVal(n, name)) {
	case "1", "true":
		return true
	}
	return false
}
