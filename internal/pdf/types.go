package pdf

import (
	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/engine"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/extraction"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// PDFMakeFillableRequest asks for widgets to be placed on the document at Path
type PDFMakeFillableRequest struct {
	Path   string                 `json:"path"`
	Fields []fillable.FieldSchema `json:"fields"`
	// Output overrides the derived output file name; it must resolve inside the output directory
	Output string `json:"output,omitempty"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFExtractFormsRequest asks for the AcroForm fields of a document
type PDFExtractFormsRequest struct {
	Path string `json:"path"`
}

// PDFPageInfoRequest asks for page geometry
type PDFPageInfoRequest struct {
	Path string `json:"path"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct{}

// Response Types

// SkippedArea reports one field area that produced no widget
type SkippedArea struct {
	Field  string `json:"field"`
	Area   int    `json:"area"` // -1 when the whole field was skipped
	Page   int    `json:"page"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

// PDFMakeFillableResult reports where the fillable document was written and what it holds
type PDFMakeFillableResult struct {
	RequestID     string        `json:"request_id"`
	Path          string        `json:"path"`
	OutputPath    string        `json:"output_path"`
	Size          int64         `json:"size"`
	PageCount     int           `json:"page_count"`
	FieldsCreated int           `json:"fields_created"`
	WidgetsPlaced int           `json:"widgets_placed"`
	Skipped       []SkippedArea `json:"skipped"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// PDFExtractFormsResult lists the document's form fields
type PDFExtractFormsResult struct {
	Path    string                 `json:"path"`
	Fields  []extraction.FormField `json:"fields"`
	Summary extraction.Summary     `json:"summary"`
}

// PDFPageInfoResult describes the pages a schema can target
type PDFPageInfoResult struct {
	Path string `json:"path"`
	*engine.Info
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string            `json:"server_name"`
	Version           string            `json:"version"`
	DefaultDirectory  string            `json:"default_directory"`
	OutputDirectory   string            `json:"output_directory"`
	OutputSuffix      string            `json:"output_suffix"`
	MaxFileSize       int64             `json:"max_file_size"`
	AvailableTools    []ToolInfo        `json:"available_tools"`
	DirectoryContents []FileInfo        `json:"directory_contents"`
	FieldTypes        map[string]string `json:"field_types"`
	UsageGuidance     string            `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
