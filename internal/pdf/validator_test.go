package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/pdftest"
)

func TestValidatorCheckFile(t *testing.T) {
	dir := t.TempDir()
	v := NewValidator(1024)

	valid := pdftest.WriteFile(t, dir, "ok.pdf", pdftest.MinimalPDF())
	upper := pdftest.WriteFile(t, dir, "UPPER.PDF", pdftest.MinimalPDF())
	empty := pdftest.WriteFile(t, dir, "empty.pdf", nil)
	text := pdftest.WriteFile(t, dir, "notes.txt", []byte("hello"))
	big := pdftest.WriteFile(t, dir, "big.pdf", make([]byte, 2048))
	sub := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name     string
		path     string
		wantType pdferrors.ErrorType
		wantErr  bool
	}{
		{name: "valid", path: valid},
		{name: "upper case extension", path: upper},
		{name: "empty path", path: "", wantErr: true, wantType: pdferrors.ErrorTypeNotFound},
		{name: "missing", path: filepath.Join(dir, "missing.pdf"), wantErr: true, wantType: pdferrors.ErrorTypeNotFound},
		{name: "directory", path: sub, wantErr: true, wantType: pdferrors.ErrorTypeDocumentOpen},
		{name: "wrong extension", path: text, wantErr: true, wantType: pdferrors.ErrorTypeDocumentOpen},
		{name: "empty file", path: empty, wantErr: true, wantType: pdferrors.ErrorTypeDocumentOpen},
		{name: "too large", path: big, wantErr: true, wantType: pdferrors.ErrorTypeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.CheckFile(tt.path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, pdferrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestValidatorValidateFile(t *testing.T) {
	dir := t.TempDir()
	v := NewValidator(1 << 20)

	good := pdftest.WriteFile(t, dir, "good.pdf", pdftest.MinimalPDF(pdftest.Letter, pdftest.A4, pdftest.Letter))
	bad := pdftest.WriteFile(t, dir, "bad.pdf", []byte("this is not a PDF document"))

	res, err := v.ValidateFile(PDFValidateFileRequest{Path: good})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 3, res.Pages)
	assert.Empty(t, res.Message)
	assert.True(t, v.IsValidPDF(good))

	res, err = v.ValidateFile(PDFValidateFileRequest{Path: bad})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Message)
	assert.False(t, v.IsValidPDF(bad))
}
