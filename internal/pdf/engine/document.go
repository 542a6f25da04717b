package engine

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
	"github.com/cookiescgov/docuseal-to-pdf/internal/pdf/security"
)

// US Letter, used when a page carries no usable media box
var defaultPageBox = fillable.Rect{LLX: 0, LLY: 0, URX: 612, URY: 792}

// Document is a pdfcpu context opened for widget placement
type Document struct {
	ctx    *model.Context
	form   *Form
	pages  map[int]*Page
	closed bool
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	if d.closed {
		return 0
	}
	return d.ctx.PageCount
}

// Version returns the PDF header version
func (d *Document) Version() string {
	if d.closed || d.ctx.HeaderVersion == nil {
		return ""
	}
	return d.ctx.HeaderVersion.String()
}

// IsEncrypted checks if the document is encrypted
func (d *Document) IsEncrypted() bool {
	return !d.closed && d.ctx.Encrypt != nil
}

// Permissions decodes the encryption dictionary's P value. Unencrypted documents grant everything.
func (d *Document) Permissions() security.Permissions {
	if d.closed || d.ctx.E == nil {
		return security.NewFullPermissions()
	}
	return security.NewPermissions(int32(d.ctx.E.P))
}

// HasAcroForm reports whether the catalog already carries an AcroForm entry
func (d *Document) HasAcroForm() bool {
	if d.closed {
		return false
	}
	root, err := d.ctx.Catalog()
	if err != nil {
		return false
	}
	_, found := root.Find("AcroForm")
	return found
}

// Page implements fillable.Document. index is zero-based.
func (d *Document) Page(index int) (fillable.Page, error) {
	p, err := d.PageAt(index)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PageAt returns the concrete zero-based page
func (d *Document) PageAt(index int) (*Page, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}

	if index < 0 || index >= d.ctx.PageCount {
		return nil, &EngineError{
			Op:  "get_page",
			Err: fmt.Errorf("%w %d (document has %d pages)", ErrInvalidPage.Err, index, d.ctx.PageCount),
		}
	}

	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	// pdfcpu numbers pages from 1
	pageDict, pageRef, inhPAttrs, err := d.ctx.PageDict(index+1, false)
	if err != nil {
		return nil, &EngineError{Op: "get_page", Err: fmt.Errorf("page dict for page %d: %w", index, err)}
	}
	if pageDict == nil {
		return nil, &EngineError{Op: "get_page", Err: fmt.Errorf("page %d has no page dict", index)}
	}

	p := &Page{
		doc:   d,
		index: index,
		dict:  pageDict,
		ref:   pageRef,
		box:   pageBox(pageDict, inhPAttrs),
	}
	if inhPAttrs != nil {
		p.rotate = inhPAttrs.Rotate
	}

	if d.pages == nil {
		d.pages = make(map[int]*Page)
	}
	d.pages[index] = p
	return p, nil
}

// AcroForm implements fillable.Document
func (d *Document) AcroForm() (fillable.Form, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if d.form != nil {
		return d.form, nil
	}

	form, err := newForm(d.ctx)
	if err != nil {
		return nil, &EngineError{Op: "acroform", Err: err}
	}
	d.form = form
	return form, nil
}

// Write serializes the document
func (d *Document) Write(w io.Writer) error {
	if d.closed {
		return ErrDocumentClosed
	}
	if err := api.WriteContext(d.ctx, w); err != nil {
		return &EngineError{Op: "write", Err: err}
	}
	return nil
}

// Close releases the pdfcpu context. Further calls fail with ErrDocumentClosed.
func (d *Document) Close() error {
	d.closed = true
	d.ctx = nil
	d.form = nil
	d.pages = nil
	return nil
}

// pageBox picks the crop box, then the media box, inherited or direct
func pageBox(pageDict types.Dict, inh *model.InheritedPageAttrs) fillable.Rect {
	if inh != nil {
		if inh.CropBox != nil {
			return fromRectangle(inh.CropBox)
		}
		if inh.MediaBox != nil {
			return fromRectangle(inh.MediaBox)
		}
	}

	for _, key := range []string{"CropBox", "MediaBox"} {
		if r, ok := directRect(pageDict, key); ok {
			return r
		}
	}
	return defaultPageBox
}

func directRect(d types.Dict, key string) (fillable.Rect, bool) {
	obj, found := d.Find(key)
	if !found {
		return fillable.Rect{}, false
	}
	arr, ok := obj.(types.Array)
	if !ok || len(arr) != 4 {
		return fillable.Rect{}, false
	}

	coords := make([]float64, 4)
	for i, o := range arr {
		switch v := o.(type) {
		case types.Integer:
			coords[i] = float64(v)
		case types.Float:
			coords[i] = float64(v)
		default:
			return fillable.Rect{}, false
		}
	}
	return fillable.Rect{LLX: coords[0], LLY: coords[1], URX: coords[2], URY: coords[3]}, true
}

// Page is one page of a Document
type Page struct {
	doc    *Document
	index  int
	dict   types.Dict
	ref    *types.IndirectRef
	box    fillable.Rect
	rotate int
}

// Index returns the zero-based page index
func (p *Page) Index() int { return p.index }

// Box returns the visible page area
func (p *Page) Box() fillable.Rect { return p.box }

// Rotation returns the inherited /Rotate value in degrees
func (p *Page) Rotation() int { return p.rotate }

// AddAnnotation appends the widget to the page's /Annots array and its field's /Kids
func (p *Page) AddAnnotation(w fillable.Widget) error {
	if p.doc.closed {
		return ErrDocumentClosed
	}

	widget, ok := w.(*Widget)
	if !ok || widget.form.ctx != p.doc.ctx {
		return ErrForeignObject
	}

	var annots types.Array
	if obj, found := p.dict.Find("Annots"); found {
		arr, err := p.doc.ctx.DereferenceArray(obj)
		if err != nil {
			return &EngineError{Op: "add_annotation", Err: fmt.Errorf("page %d annots: %w", p.index, err)}
		}
		annots = append(types.Array{}, arr...)
	}

	if err := widget.field.attach(widget.ref); err != nil {
		return &EngineError{Op: "add_annotation", Err: err}
	}
	p.dict["Annots"] = append(annots, widget.ref)
	return nil
}
