package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/cookiescgov/docuseal-to-pdf/internal/config"
	"github.com/cookiescgov/docuseal-to-pdf/internal/descriptions"
	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pathArg := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Full path to the PDF file inside the configured directory"),
	)

	pdfMakeFillableTool := mcp.NewTool(
		"pdf_make_fillable",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_make_fillable")),
		pathArg,
		mcp.WithString("fields",
			mcp.Required(),
			mcp.Description("Field schema: a JSON (or YAML, see format) array of fields with uuid, name, type, areas"),
		),
		mcp.WithString("format",
			mcp.Description("Schema encoding of 'fields'"),
			mcp.Enum(string(fillable.FormatJSON), string(fillable.FormatYAML)),
		),
		mcp.WithString("output",
			mcp.Description("Output file name inside the output directory (defaults to <name>"+
				s.config.OutputSuffix+".pdf)"),
		),
	)
	s.mcpServer.AddTool(pdfMakeFillableTool, s.handlePDFMakeFillable)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		pathArg,
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfExtractFormsTool := mcp.NewTool(
		"pdf_extract_forms",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_forms")),
		pathArg,
	)
	s.mcpServer.AddTool(pdfExtractFormsTool, s.handlePDFExtractForms)

	pdfPageInfoTool := mcp.NewTool(
		"pdf_page_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_page_info")),
		pathArg,
	)
	s.mcpServer.AddTool(pdfPageInfoTool, s.handlePDFPageInfo)

	pdfServerInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	)
	s.mcpServer.AddTool(pdfServerInfoTool, s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFMakeFillable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawFields, err := request.RequireString("fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := fillable.SchemaFormat(strings.ToLower(request.GetString("format", string(fillable.FormatJSON))))
	fields, err := fillable.ParseFields([]byte(rawFields), format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFMakeFillableRequest{
		Path:   path,
		Fields: fields,
		Output: request.GetString("output", ""),
	}
	result, err := s.pdfService.PDFMakeFillable(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFMakeFillableResult(result)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFExtractForms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFExtractForms(pdf.PDFExtractFormsRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFExtractFormsResult(result)), nil
}

func (s *Server) handlePDFPageInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFPageInfo(pdf.PDFPageInfoRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFPageInfoResult(result)), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.PDFServerInfo(pdf.PDFServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFServerInfoResult(result)), nil
}

// Helper functions for formatting results

func (s *Server) formatPDFMakeFillableResult(result *pdf.PDFMakeFillableResult) string {
	text := fmt.Sprintf("Fillable PDF written: %s\n", result.OutputPath)
	text += fmt.Sprintf("Source: %s\n", result.Path)
	text += fmt.Sprintf("Request ID: %s\n", result.RequestID)
	text += fmt.Sprintf("Pages: %d\n", result.PageCount)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Fields created: %d\n", result.FieldsCreated)
	text += fmt.Sprintf("Widgets placed: %d\n", result.WidgetsPlaced)

	if len(result.Skipped) > 0 {
		text += fmt.Sprintf("\nSkipped (%d):\n", len(result.Skipped))
		for _, sk := range result.Skipped {
			if sk.Area < 0 {
				text += fmt.Sprintf("- %s: %s (%s)\n", sk.Field, sk.Reason, sk.Detail)
			} else {
				text += fmt.Sprintf("- %s area %d: %s (%s)\n", sk.Field, sk.Area, sk.Reason, sk.Detail)
			}
		}
	}

	return text
}

func (s *Server) formatPDFExtractFormsResult(result *pdf.PDFExtractFormsResult) string {
	text := fmt.Sprintf("Form fields in: %s\n", result.Path)
	text += fmt.Sprintf("Fields: %d, widgets: %d\n", result.Summary.Fields, result.Summary.Widgets)

	for i, f := range result.Fields {
		text += fmt.Sprintf("\n%d. %s (%s)", i+1, f.Name, f.Type)
		if f.Required {
			text += " required"
		}
		if f.ReadOnly {
			text += " read-only"
		}
		text += "\n"
		if len(f.Options) > 0 {
			text += fmt.Sprintf("   Options: %s\n", strings.Join(f.Options, ", "))
		}
		for _, w := range f.Widgets {
			text += fmt.Sprintf("   - page %d %s", w.Page, w.Bounds)
			if w.OnState != "" {
				text += fmt.Sprintf(" on=%s", w.OnState)
			}
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatPDFPageInfoResult(result *pdf.PDFPageInfoResult) string {
	text := fmt.Sprintf("Page info for: %s\n", result.Path)
	text += fmt.Sprintf("PDF version: %s\n", result.Version)
	text += fmt.Sprintf("Pages: %d\n", result.PageCount)
	text += fmt.Sprintf("Existing AcroForm: %t\n", result.HasAcroForm)
	text += fmt.Sprintf("Encrypted: %t\n", result.Encrypted)
	if result.Encrypted {
		text += fmt.Sprintf("Permissions: %s\n", result.Permissions)
	}

	for _, p := range result.Pages {
		text += fmt.Sprintf("  %d: %.2f x %.2f pt, box %s", p.Index, p.Width, p.Height, p.Box)
		if p.Rotation != 0 {
			text += fmt.Sprintf(", rotated %d", p.Rotation)
		}
		text += "\n"
	}

	return text
}

func (s *Server) formatPDFServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Source Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("Output Directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("Output Suffix: %s\n", result.OutputSuffix)
	text += fmt.Sprintf("Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "Directory Contents: No PDF files found in source directory\n\n"
	}

	text += "Field types:\n"
	for _, t := range []string{"text", "date", "number", "checkbox", "radio", "*"} {
		text += fmt.Sprintf("  %s -> %s\n", t, result.FieldTypes[t])
	}

	text += "\nAvailable Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n- %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode",
		zap.String("dir", s.config.PDFDirectory),
		zap.String("outdir", s.config.OutputDir()))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server in SSE mode", zap.String("address", addr))
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
