package validator

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/altova/sec-edgar-tools/internal/canon"
	"github.com/altova/sec-edgar-tools/internal/diag"
)

// diagLine matches one severity-prefixed diagnostic emitted by the
// engine, e.g. "error: [EFM.6.05.12] Context must not contain segment".
var diagLine = regexp.MustCompile(`^(error|warning|info):\s*(.*)$`)

// Command drives an external validation-engine binary. Each Validate
// call spawns one process, so concurrent use is safe by construction.
type Command struct {
	// Path is the engine binary; Args are prepended before the entry
	// point on every invocation.
	Path string
	Args []string

	// OutputFlag, when non-empty, is the engine flag used to request the
	// transformed output document into a temp file (e.g. "--output").
	// Leave empty for engines without an output document.
	OutputFlag string
}

// Validate runs the engine against entryPoint and parses its
// severity-prefixed diagnostic lines. A non-zero exit with diagnostics
// is a normal validation failure, not an error; an error is returned
// only when the engine could not be run at all.
func (c *Command) Validate(ctx context.Context, entryPoint string, params map[string]string) (*Result, error) {
	args := append([]string{}, c.Args...)

	var outputPath string
	if c.OutputFlag != "" {
		dir, err := os.MkdirTemp("", "testsuite-output-")
		if err != nil {
			return nil, fmt.Errorf("validate %s: %w", entryPoint, err)
		}
		defer os.RemoveAll(dir)
		outputPath = filepath.Join(dir, "output.xml")
		args = append(args, c.OutputFlag, outputPath)
	}
	for name, value := range params {
		args = append(args, "--param", name+"="+value)
	}
	args = append(args, entryPoint)

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	records := parseDiagnostics(out.Bytes())
	if err != nil {
		// Engines exit non-zero when validation fails; that is the
		// behavior under test, not a harness fault.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || len(records) == 0 {
			return nil, fmt.Errorf("validate %s: %w", entryPoint, err)
		}
	}

	res := &Result{Diagnostics: records}
	if outputPath != "" {
		if doc, err := canon.ParseFile(outputPath); err == nil {
			res.Output = doc
		}
	}
	return res, nil
}

// parseDiagnostics extracts diagnostic records from engine output.
// Lines without a severity prefix are engine chatter and ignored.
func parseDiagnostics(output []byte) []diag.Record {
	var records []diag.Record
	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := diagLine.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		severity, err := diag.ParseSeverity(m[1])
		if err != nil {
			continue
		}
		records = append(records, diag.Record{Severity: severity, Message: m[2]})
	}
	return records
}
