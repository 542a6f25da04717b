package pdf

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/extraction"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/pdftest"
)

func newTestService(t *testing.T, outDir string) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewService(1<<20, dir, outDir, "", zaptest.NewLogger(t))
	require.NoError(t, err)
	return s, dir
}

func sampleFields() []fillable.FieldSchema {
	return []fillable.FieldSchema{
		{UUID: "n", Name: "Name", Type: fillable.FieldTypeText,
			Areas: []fillable.Area{{Page: 0, X: 0.1, Y: 0.1, W: 0.3, H: 0.04}}},
		{UUID: "c", Name: "Consent", Type: fillable.FieldTypeCheckbox,
			Areas: []fillable.Area{{Page: 1, X: 0.1, Y: 0.5, W: 0.03, H: 0.03}}},
		{UUID: "s", Name: "Signature", Type: fillable.FieldTypeSignature,
			Areas: []fillable.Area{{Page: 1, X: 0.1, Y: 0.8, W: 0.3, H: 0.1}}},
		{UUID: "l", Name: "Late", Type: fillable.FieldTypeText,
			Areas: []fillable.Area{{Page: 5, X: 0.1, Y: 0.8, W: 0.3, H: 0.1}}},
		{UUID: "e", Name: "Empty", Type: fillable.FieldTypeText},
	}
}

func TestNewService(t *testing.T) {
	dir := t.TempDir()

	_, err := NewService(0, dir, "", "", nil)
	assert.Error(t, err)

	_, err = NewService(100, "", "", "", nil)
	assert.Error(t, err)

	s, err := NewService(100, dir, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), s.GetMaxFileSize())
	assert.Equal(t, "-fillable", s.outputSuffix)
	assert.Equal(t, dir, s.outputValidator.GetConfiguredDirectory())
}

func TestPDFMakeFillable(t *testing.T) {
	s, dir := newTestService(t, "")
	src := pdftest.WriteFile(t, dir, "lease.pdf", pdftest.MinimalPDF(pdftest.Letter, pdftest.Letter))

	res, err := s.PDFMakeFillable(PDFMakeFillableRequest{Path: src, Fields: sampleFields()})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, filepath.Join(dir, "lease-fillable.pdf"), res.OutputPath)
	assert.Equal(t, 2, res.PageCount)
	assert.Equal(t, 2, res.FieldsCreated)
	assert.Equal(t, 2, res.WidgetsPlaced)

	reasons := make([]string, 0, len(res.Skipped))
	for _, sk := range res.Skipped {
		reasons = append(reasons, sk.Field+":"+sk.Reason)
	}
	sort.Strings(reasons)
	assert.Equal(t, []string{
		"Empty:EMPTY_AREAS",
		"Late:PAGE_OUT_OF_RANGE",
		"Signature:UNSUPPORTED_FIELD_TYPE",
	}, reasons)

	info, err := os.Stat(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, res.Size, info.Size())
	assert.True(t, s.IsValidPDF(res.OutputPath))

	forms, err := s.PDFExtractForms(PDFExtractFormsRequest{Path: res.OutputPath})
	require.NoError(t, err)
	assert.Equal(t, 2, forms.Summary.Fields)
	assert.Equal(t, 2, forms.Summary.Widgets)
	assert.Equal(t, 1, forms.Summary.ByType[extraction.FormFieldTypeCheckbox])
}

func TestPDFMakeFillableOutputDirectory(t *testing.T) {
	outDir := t.TempDir()
	s, dir := newTestService(t, outDir)
	src := pdftest.WriteFile(t, dir, "a.pdf", pdftest.MinimalPDF())

	res, err := s.PDFMakeFillable(PDFMakeFillableRequest{Path: src, Fields: sampleFields(), Output: "custom.pdf"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "custom.pdf"), res.OutputPath)
	assert.FileExists(t, res.OutputPath)
	assert.NoFileExists(t, filepath.Join(dir, "a-fillable.pdf"))
}

func TestPDFMakeFillableErrors(t *testing.T) {
	s, dir := newTestService(t, "")
	src := pdftest.WriteFile(t, dir, "src.pdf", pdftest.MinimalPDF())
	corrupt := pdftest.WriteFile(t, dir, "corrupt.pdf", []byte("%PDF-1.4 this is broken"))

	outside := t.TempDir()
	foreign := pdftest.WriteFile(t, outside, "foreign.pdf", pdftest.MinimalPDF())

	tests := []struct {
		name     string
		req      PDFMakeFillableRequest
		wantType pdferrors.ErrorType
	}{
		{name: "missing source", req: PDFMakeFillableRequest{Path: filepath.Join(dir, "nope.pdf")},
			wantType: pdferrors.ErrorTypeNotFound},
		{name: "outside directory", req: PDFMakeFillableRequest{Path: foreign},
			wantType: pdferrors.ErrorTypeSecurityRestriction},
		{name: "corrupt source", req: PDFMakeFillableRequest{Path: corrupt},
			wantType: pdferrors.ErrorTypeDocumentOpen},
		{name: "overwrite source", req: PDFMakeFillableRequest{Path: src, Output: "src.pdf"},
			wantType: pdferrors.ErrorTypeSecurityRestriction},
		{name: "output escapes directory", req: PDFMakeFillableRequest{Path: src, Output: "../escape.pdf"},
			wantType: pdferrors.ErrorTypeSecurityRestriction},
		{name: "output not a pdf", req: PDFMakeFillableRequest{Path: src, Output: "out.txt"},
			wantType: pdferrors.ErrorTypeSecurityRestriction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.PDFMakeFillable(tt.req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, pdferrors.IsType(err, tt.wantType), "got %v", err)
		})
	}

	assert.NoFileExists(t, filepath.Join(dir, "corrupt-fillable.pdf"))
}

func TestPDFValidateFileOutsideDirectory(t *testing.T) {
	s, _ := newTestService(t, "")
	foreign := pdftest.WriteFile(t, t.TempDir(), "x.pdf", pdftest.MinimalPDF())

	_, err := s.PDFValidateFile(PDFValidateFileRequest{Path: foreign})
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeSecurityRestriction))
}

func TestPDFPageInfo(t *testing.T) {
	s, dir := newTestService(t, "")
	src := pdftest.WriteFile(t, dir, "pages.pdf",
		pdftest.Build(pdftest.Options{OriginX: 5, OriginY: 5}, pdftest.A4, pdftest.Letter))

	res, err := s.PDFPageInfo(PDFPageInfoRequest{Path: src})
	require.NoError(t, err)
	assert.Equal(t, src, res.Path)
	assert.Equal(t, 2, res.PageCount)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, 595.0, res.Pages[0].Width)
	assert.Equal(t, 5.0, res.Pages[0].Box.LLX)
	assert.Equal(t, 792.0, res.Pages[1].Height)

	corrupt := pdftest.WriteFile(t, dir, "corrupt.pdf", []byte("junk"))
	_, err = s.PDFPageInfo(PDFPageInfoRequest{Path: corrupt})
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeDocumentOpen))
}

func TestSkippedAreas(t *testing.T) {
	assert.Empty(t, skippedAreas(nil))

	c := pdferrors.NewErrorCollection("")
	c.Add(pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeUnsupportedFieldType, "no widget", "image").
		WithField("Photo", -1))
	c.Add(pdferrors.WrapError(pdferrors.ErrorTypePageOutOfRange, "page 3", os.ErrNotExist).
		WithField("Late", 1).WithPage(3))

	got := skippedAreas(c)
	require.Len(t, got, 2)
	assert.Equal(t, SkippedArea{Field: "Photo", Area: -1, Reason: "UNSUPPORTED_FIELD_TYPE", Detail: "no widget: image"}, got[0])
	assert.Equal(t, SkippedArea{Field: "Late", Area: 1, Page: 3, Reason: "PAGE_OUT_OF_RANGE",
		Detail: "page 3: file does not exist"}, got[1])
}
