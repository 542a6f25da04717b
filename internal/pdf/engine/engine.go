// Package engine implements the document, page and form capabilities used by the
// fillable package on top of pdfcpu.
package engine

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/security"
)

// EngineError describes a failed engine operation
type EngineError struct {
	Op  string `json:"operation"`
	Err error  `json:"error"`
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("pdfcpu engine error in %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = &EngineError{Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage    = &EngineError{Op: "page", Err: fmt.Errorf("invalid page number")}
	ErrForeignObject  = &EngineError{Op: "form", Err: fmt.Errorf("object belongs to another document")}
)

// Engine opens documents with pdfcpu. It keeps no per-document state, so one Engine
// can serve concurrent callers.
type Engine struct {
	conf func() *model.Configuration
}

// NewEngine creates an engine using pdfcpu's relaxed validation mode
func NewEngine() *Engine {
	return &Engine{
		conf: func() *model.Configuration {
			conf := model.NewDefaultConfiguration()
			conf.ValidationMode = model.ValidationRelaxed
			return conf
		},
	}
}

// Open implements fillable.Opener
func (e *Engine) Open(data []byte) (fillable.Document, error) {
	doc, err := e.OpenDocument(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// OpenDocument opens a PDF from bytes and returns the concrete document handle
func (e *Engine) OpenDocument(data []byte) (*Document, error) {
	return e.OpenReader(bytes.NewReader(data))
}

// OpenReader opens a PDF from a seekable reader
func (e *Engine) OpenReader(rs io.ReadSeeker) (*Document, error) {
	ctx, err := api.ReadContext(rs, e.conf())
	if err != nil {
		return nil, &EngineError{Op: "open", Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &EngineError{Op: "open", Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	return &Document{ctx: ctx}, nil
}

// PageInfo describes one page's geometry
type PageInfo struct {
	Index    int           `json:"index"`
	Box      fillable.Rect `json:"box"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Rotation int           `json:"rotation"`
}

// Info summarizes a document before widgets are placed on it
type Info struct {
	PageCount   int                  `json:"page_count"`
	Version     string               `json:"version"`
	Encrypted   bool                 `json:"encrypted"`
	HasAcroForm bool                 `json:"has_acroform"`
	Permissions security.Permissions `json:"permissions"`
	Pages       []PageInfo           `json:"pages"`
}

// Inspect opens data and reports its pages, boxes and permissions
func (e *Engine) Inspect(data []byte) (*Info, error) {
	doc, err := e.OpenDocument(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	info := &Info{
		PageCount:   doc.PageCount(),
		Version:     doc.Version(),
		Encrypted:   doc.IsEncrypted(),
		HasAcroForm: doc.HasAcroForm(),
		Permissions: doc.Permissions(),
		Pages:       make([]PageInfo, 0, doc.PageCount()),
	}

	for i := 0; i < info.PageCount; i++ {
		p, err := doc.PageAt(i)
		if err != nil {
			return nil, err
		}
		box := p.Box()
		info.Pages = append(info.Pages, PageInfo{
			Index:    i,
			Box:      box,
			Width:    box.Width(),
			Height:   box.Height(),
			Rotation: p.Rotation(),
		})
	}
	return info, nil
}

// rectArray converts a rectangle to a PDF array
func rectArray(r fillable.Rect) types.Array {
	return types.Array{
		types.Float(r.LLX),
		types.Float(r.LLY),
		types.Float(r.URX),
		types.Float(r.URY),
	}
}

func fromRectangle(r *types.Rectangle) fillable.Rect {
	return fillable.Rect{LLX: r.LL.X, LLY: r.LL.Y, URX: r.UR.X, URY: r.UR.Y}
}
