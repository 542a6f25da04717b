// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// PageSize is the width and height of a page's media box in points
type PageSize struct {
	Width  float64
	Height float64
}

// Common page sizes
var (
	Letter = PageSize{Width: 612, Height: 792}
	A4     = PageSize{Width: 595, Height: 842}
)

// Options tweak the generated document
type Options struct {
	// MediaBoxOrigin shifts every media box's lower-left corner
	OriginX, OriginY float64
	// WithAcroForm adds an empty AcroForm dictionary to the catalog
	WithAcroForm bool
}

// MinimalPDF returns a document with one empty page per size and a classic xref table
func MinimalPDF(sizes ...PageSize) []byte {
	return Build(Options{}, sizes...)
}

// Build returns a document with one page per size
func Build(opts Options, sizes ...PageSize) []byte {
	if len(sizes) == 0 {
		sizes = []PageSize{Letter}
	}

	var objects []string

	// 1: catalog, 2: page tree, 3..: pages, then content stream, then optional AcroForm
	pageStart := 3
	contentObj := pageStart + len(sizes)
	acroObj := contentObj + 1

	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if opts.WithAcroForm {
		catalog += fmt.Sprintf(" /AcroForm %d 0 R", acroObj)
	}
	catalog += " >>"
	objects = append(objects, catalog)

	kids := ""
	for i := range sizes {
		kids += fmt.Sprintf("%d 0 R ", pageStart+i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(sizes)))

	for _, s := range sizes {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [%g %g %g %g] /Contents %d 0 R /Resources << >> >>",
			opts.OriginX, opts.OriginY, opts.OriginX+s.Width, opts.OriginY+s.Height, contentObj))
	}

	content := "0 0 m 0 0 l S"
	objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	if opts.WithAcroForm {
		objects = append(objects, "<< /Fields [] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// WriteFile writes data to name inside dir and returns the full path
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
