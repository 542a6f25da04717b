package fillable

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
)

// Result is the outcome of one synthesis call
type Result struct {
	PDF           []byte
	PageCount     int
	FieldsCreated int
	WidgetsPlaced int
	// Skipped holds the recoverable anomalies: unsupported types, empty area lists,
	// missing pages, name clashes and widget creation failures
	Skipped *pdferrors.ErrorCollection
}

// Synthesizer places widgets for a field schema onto a document. It holds no
// per-document state and is safe for concurrent use.
type Synthesizer struct {
	opener Opener
	logger *zap.Logger
}

// NewSynthesizer creates a synthesizer that opens documents through opener
func NewSynthesizer(opener Opener, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		opener: opener,
		logger: logger,
	}
}

// SynthesizeFillablePDF returns a copy of documentBytes with a widget for every
// supported field area. Only an unopenable document or a failed write is an error.
func SynthesizeFillablePDF(opener Opener, documentBytes []byte, fields []FieldSchema) ([]byte, error) {
	res, err := NewSynthesizer(opener, nil).Synthesize(documentBytes, fields)
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

// Synthesize opens documentBytes, places widgets for fields and serializes the result.
// The document handle is released before returning on every path.
func (s *Synthesizer) Synthesize(documentBytes []byte, fields []FieldSchema) (*Result, error) {
	doc, err := s.opener.Open(documentBytes)
	if err != nil {
		return nil, asDocumentOpen(err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			s.logger.Warn("close document", zap.Error(cerr))
		}
	}()

	form, err := doc.AcroForm()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeDocumentOpen, "resolve AcroForm", err)
	}

	res := &Result{
		PageCount: doc.PageCount(),
		Skipped:   pdferrors.NewErrorCollection(""),
	}
	registry, err := newFieldRegistry(form)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeDocumentOpen, "read existing form fields", err)
	}

	for _, field := range fields {
		res.WidgetsPlaced += s.placeField(doc, registry, field, res.Skipped)
	}
	res.FieldsCreated = registry.Created()

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeSerialization, "write document", err)
	}
	res.PDF = buf.Bytes()

	s.logger.Debug("synthesized fillable document",
		zap.Int("pages", res.PageCount),
		zap.Int("fields", res.FieldsCreated),
		zap.Int("widgets", res.WidgetsPlaced),
		zap.Int("skipped", len(res.Skipped.All())))

	return res, nil
}

// placeField places every area of one field and returns how many widgets it added
func (s *Synthesizer) placeField(doc Document, registry *fieldRegistry, field FieldSchema,
	skipped *pdferrors.ErrorCollection,
) int {
	name := field.FieldName()

	if len(field.Areas) == 0 {
		s.skip(skipped, pdferrors.NewPDFError(pdferrors.ErrorTypeEmptyAreas, "field has no areas").
			WithField(name, -1))
		return 0
	}

	if ResolveKind(field.Type) == KindUnsupported {
		s.skip(skipped, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeUnsupportedFieldType,
			"field type produces no widget", string(field.Type)).WithField(name, -1))
		return 0
	}

	placed := 0
	flags := FieldFlags{Required: field.Required, ReadOnly: field.ReadOnly}

	for i, area := range field.Areas {
		placement, ok := Resolve(field, area)
		if !ok {
			continue
		}
		if placement.Kind == KindRadio && placement.OptionID == "" {
			placement.OptionID = fallbackOptionID(field, i)
		}

		if !area.finite() {
			s.skip(skipped, pdferrors.NewPDFError(pdferrors.ErrorTypeWidgetCreation,
				"area coordinates are not finite").WithField(name, i).WithPage(area.Page))
			continue
		}

		page, err := doc.Page(area.Page)
		if err != nil {
			s.skip(skipped, pdferrors.WrapError(pdferrors.ErrorTypePageOutOfRange,
				fmt.Sprintf("page %d not in document of %d pages", area.Page, doc.PageCount()), err).
				WithField(name, i).WithPage(area.Page))
			continue
		}

		box := page.Box()
		rect := Transform(area, box.Width(), box.Height()).Translate(box.LLX, box.LLY)

		if err := s.placeWidget(registry, placement, flags, page, rect); err != nil {
			s.skip(skipped, asRecoverable(err).WithField(name, i).WithPage(area.Page))
			continue
		}
		placed++
	}

	return placed
}

func (s *Synthesizer) placeWidget(registry *fieldRegistry, p Placement, flags FieldFlags, page Page, rect Rect) error {
	field, created, err := registry.lookupOrCreate(p, flags)
	if err != nil {
		return err
	}

	if err := attachWidget(field, p, page, rect); err != nil {
		if created {
			registry.release(p.FieldName)
		}
		return err
	}
	if created {
		registry.commit()
	}
	return nil
}

func attachWidget(field Field, p Placement, page Page, rect Rect) error {
	widget, err := field.NewWidget(page, rect, p.OptionID)
	if err != nil {
		return fmt.Errorf("create widget for %q: %w", p.FieldName, err)
	}

	if err := page.AddAnnotation(widget); err != nil {
		return fmt.Errorf("attach widget for %q to page %d: %w", p.FieldName, page.Index(), err)
	}
	return nil
}

func (s *Synthesizer) skip(skipped *pdferrors.ErrorCollection, e *pdferrors.PDFError) {
	skipped.Add(e)
	s.logger.Debug("skipped field area",
		zap.String("field", e.FieldName),
		zap.Int("area", e.AreaIndex),
		zap.String("reason", e.Type.String()),
		zap.String("detail", e.Error()))
}

func asDocumentOpen(err error) error {
	if pdferrors.IsType(err, pdferrors.ErrorTypeDocumentOpen) {
		return err
	}
	return pdferrors.WrapError(pdferrors.ErrorTypeDocumentOpen, "open document", err)
}

// asRecoverable keeps a classified error as is and files anything else under widget creation
func asRecoverable(err error) *pdferrors.PDFError {
	var pdfErr *pdferrors.PDFError
	if errors.As(err, &pdfErr) && pdfErr.Type.IsRecoverable() {
		return pdfErr
	}
	return pdferrors.WrapError(pdferrors.ErrorTypeWidgetCreation, "place widget", err)
}
