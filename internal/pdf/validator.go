package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile reports whether the file is a readable PDF. Validation failures are
// reported in the result, not as an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	pages, err := v.validatePDFFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation outcome, not a processing error
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

// CheckFile runs the cheap checks that need no parsing: existence, type, extension and size
func (v *Validator) CheckFile(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNotFound, "path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeNotFound, "file does not exist", err).WithFile(filePath)
	}
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeNotFound, "cannot access file", err).WithFile(filePath)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}
	return fileInfo, nil
}

// validatePDFFile checks the file and parses it, returning its page count
func (v *Validator) validatePDFFile(filePath string) (int, error) {
	if _, err := v.CheckFile(filePath); err != nil {
		return 0, err
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, pdferrors.WrapError(pdferrors.ErrorTypeDocumentOpen, "invalid PDF file", err).WithFile(filePath)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.validatePDFFile(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentOpen, "path is a directory, not a file").
			WithFile(filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentOpen, "file is not a PDF").WithFile(filePath)
	}

	if fileInfo.Size() == 0 {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentOpen, "file is empty").WithFile(filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeFileTooLarge, "file too large",
			fmt.Sprintf("%d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)).WithFile(filePath)
	}

	return nil
}
