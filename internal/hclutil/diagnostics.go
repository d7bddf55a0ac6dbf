package hclutil

import (
	"bytes"
	"errors"

	"github.com/hashicorp/hcl/v2"
)

// Error renders diags with source snippets from files and returns them as an
// error. The diagnostics stay reachable through errors.As.
func Error(diags hcl.Diagnostics, files map[string]*hcl.File) error {
	if !diags.HasErrors() {
		return nil
	}
	var buf bytes.Buffer
	wr := hcl.NewDiagnosticTextWriter(&buf, files, 100, false)
	if err := wr.WriteDiagnostics(diags); err != nil {
		return diags
	}
	return &diagError{text: bytes.TrimSpace(buf.Bytes()), diags: diags}
}

type diagError struct {
	text  []byte
	diags hcl.Diagnostics
}

func (e *diagError) Error() string { return string(e.text) }

func (e *diagError) Unwrap() error { return e.diags }

// Diagnostics extracts the hcl.Diagnostics carried by err, if any.
func Diagnostics(err error) (hcl.Diagnostics, bool) {
	var diags hcl.Diagnostics
	if errors.As(err, &diags) {
		return diags, true
	}
	return nil, false
}
