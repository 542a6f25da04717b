package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/engine"
	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/extraction"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/security"
)

// generated documents are readable by the owner's group only
const outputFilePerm = 0o640

// Service handles PDF file operations by orchestrating the engine, the synthesizer and
// the form extractor
type Service struct {
	maxFileSize     int64
	outputSuffix    string
	validator       *Validator
	engine          *engine.Engine
	synthesizer     *fillable.Synthesizer
	extractor       *extraction.PDFCPUFormExtractor
	pathValidator   *security.PathValidator
	outputValidator *security.PathValidator
	serverInfo      *PDFServerInfo
	logger          *zap.Logger
}

// NewService creates a new PDF service. Source documents must live under
// configuredDirectory and generated ones are written under outputDirectory, which
// defaults to configuredDirectory.
func NewService(maxFileSize int64, configuredDirectory, outputDirectory, outputSuffix string,
	logger *zap.Logger,
) (*Service, error) {
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("maxFileSize must be greater than 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if outputDirectory == "" {
		outputDirectory = configuredDirectory
	}
	if outputSuffix == "" {
		outputSuffix = "-fillable"
	}

	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	outputValidator, err := security.NewPathValidator(outputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create output path validator: %w", err)
	}

	eng := engine.NewEngine()
	s := &Service{
		maxFileSize:     maxFileSize,
		outputSuffix:    outputSuffix,
		validator:       NewValidator(maxFileSize),
		engine:          eng,
		synthesizer:     fillable.NewSynthesizer(eng, logger.Named("synthesizer")),
		extractor:       extraction.NewPDFCPUFormExtractor(logger.Named("extraction")),
		pathValidator:   pathValidator,
		outputValidator: outputValidator,
		logger:          logger,
	}
	s.serverInfo = NewPDFServerInfo(s)
	return s, nil
}

// PDFMakeFillable places a widget for every supported field area of the source
// document and writes the result to the output directory
func (s *Service) PDFMakeFillable(req PDFMakeFillableRequest) (*PDFMakeFillableResult, error) {
	requestID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", requestID), zap.String("path", req.Path))

	data, err := s.readSource(req.Path)
	if err != nil {
		return nil, err
	}

	outputPath, err := s.outputPath(req)
	if err != nil {
		return nil, err
	}

	if err := s.checkPermissions(req.Path, data); err != nil {
		return nil, err
	}

	res, err := s.synthesizer.Synthesize(data, req.Fields)
	if err != nil {
		log.Warn("synthesis failed", zap.Error(err))
		var pdfErr *pdferrors.PDFError
		if errors.As(err, &pdfErr) && pdfErr.FilePath == "" {
			pdfErr.WithFile(req.Path)
		}
		return nil, err
	}

	if err := os.WriteFile(outputPath, res.PDF, outputFilePerm); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeSerialization, "write output file", err).
			WithFile(outputPath)
	}

	s.serverInfo.InvalidateDirectory(s.pathValidator.GetConfiguredDirectory())

	result := &PDFMakeFillableResult{
		RequestID:     requestID,
		Path:          req.Path,
		OutputPath:    outputPath,
		Size:          int64(len(res.PDF)),
		PageCount:     res.PageCount,
		FieldsCreated: res.FieldsCreated,
		WidgetsPlaced: res.WidgetsPlaced,
		Skipped:       skippedAreas(res.Skipped),
	}

	log.Info("wrote fillable document",
		zap.String("output", outputPath),
		zap.Int("fields", result.FieldsCreated),
		zap.Int("widgets", result.WidgetsPlaced),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	if err := s.validatePath(req.Path); err != nil {
		return nil, err
	}
	return s.validator.ValidateFile(req)
}

// PDFExtractForms lists the AcroForm fields of a document with their widgets
func (s *Service) PDFExtractForms(req PDFExtractFormsRequest) (*PDFExtractFormsResult, error) {
	data, err := s.readSource(req.Path)
	if err != nil {
		return nil, err
	}

	fields, err := s.extractor.ExtractFormsFromBytes(data)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeDocumentOpen, "extract form fields", err).
			WithFile(req.Path)
	}

	return &PDFExtractFormsResult{
		Path:    req.Path,
		Fields:  fields,
		Summary: extraction.Summarize(fields),
	}, nil
}

// PDFPageInfo reports page count, page boxes and permissions
func (s *Service) PDFPageInfo(req PDFPageInfoRequest) (*PDFPageInfoResult, error) {
	data, err := s.readSource(req.Path)
	if err != nil {
		return nil, err
	}

	info, err := s.engine.Inspect(data)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeDocumentOpen, "inspect document", err).
			WithFile(req.Path)
	}

	return &PDFPageInfoResult{Path: req.Path, Info: info}, nil
}

// PDFServerInfo returns server information and usage guidance
func (s *Service) PDFServerInfo(req PDFServerInfoRequest, serverName, version string) (*PDFServerInfoResult, error) {
	return s.serverInfo.GetServerInfo(serverName, version)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}

func (s *Service) validatePath(path string) error {
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeSecurityRestriction, "security validation failed", err).
			WithFile(path)
	}
	return nil
}

// readSource validates and reads a source document
func (s *Service) readSource(path string) ([]byte, error) {
	if err := s.validatePath(path); err != nil {
		return nil, err
	}
	if _, err := s.validator.CheckFile(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeNotFound, "read source document", err).WithFile(path)
	}
	return data, nil
}

// outputPath returns req.Output resolved in the output directory, or the input name
// with the configured suffix
func (s *Service) outputPath(req PDFMakeFillableRequest) (string, error) {
	var (
		out string
		err error
	)
	if req.Output != "" {
		out, err = s.outputValidator.NormalizePath(req.Output)
		if err == nil && !strings.EqualFold(filepath.Ext(out), ".pdf") {
			err = fmt.Errorf("output must have a .pdf extension: %s", req.Output)
		}
	} else {
		out, err = s.outputValidator.OutputPath(req.Path, s.outputSuffix)
	}
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeSecurityRestriction, "invalid output path", err).
			WithFile(req.Output)
	}

	if same, _ := samePath(out, req.Path); same {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeSecurityRestriction,
			"output would overwrite the source document").WithFile(out)
	}
	return out, nil
}

// checkPermissions refuses encrypted documents that forbid adding form fields
func (s *Service) checkPermissions(path string, data []byte) error {
	doc, err := s.engine.OpenDocument(data)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeDocumentOpen, "open document", err).WithFile(path)
	}
	defer doc.Close()

	if doc.IsEncrypted() && !doc.Permissions().CanAddFormFields() {
		return pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeSecurityRestriction,
			"document permissions forbid adding form fields", doc.Permissions().String()).WithFile(path)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return filepath.Clean(absA) == filepath.Clean(absB), nil
}

func skippedAreas(c *pdferrors.ErrorCollection) []SkippedArea {
	out := make([]SkippedArea, 0)
	if c == nil {
		return out
	}
	for _, e := range c.All() {
		detail := e.Message
		if e.Context != "" {
			detail += ": " + e.Context
		}
		if e.Err != nil {
			detail += ": " + e.Err.Error()
		}
		out = append(out, SkippedArea{
			Field:  e.FieldName,
			Area:   e.AreaIndex,
			Page:   e.PageNumber,
			Reason: e.Type.String(),
			Detail: detail,
		})
	}
	return out
}
