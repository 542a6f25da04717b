package extraction

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

// Field flag bits read from /Ff
const (
	flagReadOnly   = 1 << 0
	flagRequired   = 1 << 1
	flagRadio      = 1 << 15
	flagPushButton = 1 << 16
)

// nested field trees deeper than this are ignored
const maxFieldDepth = 32

// PDFCPUFormExtractor implements form extraction using the pdfcpu library
type PDFCPUFormExtractor struct {
	logger *zap.Logger
}

// NewPDFCPUFormExtractor creates a new form extractor using pdfcpu
func NewPDFCPUFormExtractor(logger *zap.Logger) *PDFCPUFormExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFCPUFormExtractor{logger: logger}
}

// ExtractFormsFromFile extracts all form fields from a PDF file
func (fe *PDFCPUFormExtractor) ExtractFormsFromFile(filePath string) ([]FormField, error) {
	fe.logger.Debug("extracting forms", zap.String("path", filePath))

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	return fe.ExtractFormsFromReader(file)
}

// ExtractFormsFromBytes extracts all form fields from an in-memory PDF
func (fe *PDFCPUFormExtractor) ExtractFormsFromBytes(data []byte) ([]FormField, error) {
	return fe.ExtractFormsFromReader(bytes.NewReader(data))
}

// ExtractFormsFromReader extracts forms from an io.ReadSeeker
func (fe *PDFCPUFormExtractor) ExtractFormsFromReader(reader io.ReadSeeker) ([]FormField, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(reader, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return fe.extractFormsFromContext(ctx)
}

// walker carries per-document lookups while the field tree is traversed
type walker struct {
	ctx *model.Context
	// page index by page object number
	pageByRef map[int]int
	// page index by annotation object number, from each page's /Annots
	pageByAnnot map[int]int
}

// extractFormsFromContext extracts form fields from a pdfcpu context
func (fe *PDFCPUFormExtractor) extractFormsFromContext(ctx *model.Context) ([]FormField, error) {
	forms := make([]FormField, 0)

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		fe.logger.Debug("no AcroForm dictionary found in document")
		return forms, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return forms, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		fe.logger.Debug("no Fields array found in AcroForm")
		return forms, nil
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	w := newWalker(ctx)
	for i, fieldRef := range fieldsArray {
		fields, err := w.processField(fieldRef, "", i, 0)
		if err != nil {
			fe.logger.Debug("skipping field", zap.Int("index", i), zap.Error(err))
			continue
		}
		forms = append(forms, fields...)
	}

	fe.logger.Debug("extracted form fields", zap.Int("count", len(forms)))
	return forms, nil
}

func newWalker(ctx *model.Context) *walker {
	w := &walker{
		ctx:         ctx,
		pageByRef:   make(map[int]int),
		pageByAnnot: make(map[int]int),
	}

	for i := 0; i < ctx.PageCount; i++ {
		pageDict, pageRef, _, err := ctx.PageDict(i+1, false)
		if err != nil || pageDict == nil {
			continue
		}
		if pageRef != nil {
			w.pageByRef[pageRef.ObjectNumber.Value()] = i
		}
		annotsObj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		annots, err := ctx.DereferenceArray(annotsObj)
		if err != nil {
			continue
		}
		for _, a := range annots {
			if ref, ok := a.(types.IndirectRef); ok {
				w.pageByAnnot[ref.ObjectNumber.Value()] = i
			}
		}
	}
	return w
}

// processField returns the terminal fields below fieldObj. Nested field names are
// joined with a period.
func (w *walker) processField(fieldObj types.Object, parentName string, index, depth int) ([]FormField, error) {
	if depth > maxFieldDepth {
		return nil, fmt.Errorf("field tree deeper than %d", maxFieldDepth)
	}

	fieldDict, err := w.ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	name := w.stringEntry(fieldDict, "T")
	if name == "" {
		name = fmt.Sprintf("field_%d", index)
	}
	if parentName != "" {
		name = parentName + "." + name
	}

	var kids types.Array
	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kids, err = w.ctx.DereferenceArray(kidsObj); err != nil {
			return nil, fmt.Errorf("failed to dereference Kids of %s: %w", name, err)
		}
	}

	// kids carrying their own /T are child fields, the rest are widgets
	var children []types.Object
	var widgets []types.Object
	for _, kid := range kids {
		kidDict, err := w.ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		if _, hasT := kidDict.Find("T"); hasT {
			children = append(children, kid)
		} else {
			widgets = append(widgets, kid)
		}
	}

	if len(children) > 0 {
		var out []FormField
		for i, child := range children {
			fields, err := w.processField(child, name, i, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, fields...)
		}
		return out, nil
	}

	field := FormField{Name: name}
	field.Flags = w.inheritedFlags(fieldDict)
	field.Type = w.extractFieldType(fieldDict, field.Flags)
	field.ReadOnly = field.Flags&flagReadOnly != 0
	field.Required = field.Flags&flagRequired != 0

	if valueObj, found := fieldDict.Find("V"); found {
		field.Value = w.extractFieldValue(valueObj, field.Type)
	}
	if defaultObj, found := fieldDict.Find("DV"); found {
		field.DefaultValue = w.extractFieldValue(defaultObj, field.Type)
	}

	if _, found := fieldDict.Find("Rect"); found {
		// field and widget merged into one dictionary
		if info, ok := w.widgetInfo(fieldObj, fieldDict); ok {
			field.Widgets = append(field.Widgets, info)
		}
	}
	for _, kid := range widgets {
		kidDict, err := w.ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		if info, ok := w.widgetInfo(kid, kidDict); ok {
			field.Widgets = append(field.Widgets, info)
		}
	}

	switch field.Type {
	case FormFieldTypeRadio:
		field.Options = onStates(field.Widgets)
	case FormFieldTypeSelect:
		field.Options = w.extractFieldOptions(fieldDict)
	}

	return []FormField{field}, nil
}

func (w *walker) stringEntry(d types.Dict, key string) string {
	obj, found := d.Find(key)
	if !found {
		return ""
	}
	s, err := w.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return s
}

// inheritedFlags reads /Ff from the field or its nearest ancestor
func (w *walker) inheritedFlags(d types.Dict) int {
	for i := 0; d != nil && i <= maxFieldDepth; i++ {
		if flagsObj, found := d.Find("Ff"); found {
			if flags, err := w.ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				return int(*flags)
			}
		}
		parentObj, found := d.Find("Parent")
		if !found {
			break
		}
		parent, err := w.ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		d = parent
	}
	return 0
}

// extractFieldType determines the field type from the FT entry, walking up /Parent when absent
func (w *walker) extractFieldType(fieldDict types.Dict, flags int) FormFieldType {
	d := fieldDict
	for i := 0; d != nil && i <= maxFieldDepth; i++ {
		ftObj, found := d.Find("FT")
		if found {
			ftName, err := w.ctx.DereferenceName(ftObj, model.V10, nil)
			if err != nil {
				return FormFieldTypeUnknown
			}
			return fieldTypeFor(string(ftName), flags)
		}
		parentObj, found := d.Find("Parent")
		if !found {
			break
		}
		parent, err := w.ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		d = parent
	}
	return FormFieldTypeUnknown
}

func fieldTypeFor(ft string, flags int) FormFieldType {
	switch ft {
	case "Btn":
		switch {
		case flags&flagRadio != 0:
			return FormFieldTypeRadio
		case flags&flagPushButton != 0:
			return FormFieldTypeButton
		}
		return FormFieldTypeCheckbox
	case "Tx":
		return FormFieldTypeText
	case "Ch":
		return FormFieldTypeSelect
	case "Sig":
		return FormFieldTypeSignature
	default:
		return FormFieldTypeUnknown
	}
}

// extractFieldValue extracts the value based on field type
func (w *walker) extractFieldValue(valueObj types.Object, fieldType FormFieldType) interface{} {
	switch fieldType {
	case FormFieldTypeText:
		if val, err := w.ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
	case FormFieldTypeCheckbox:
		if name, err := w.ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			return name != "Off" && name != ""
		}
	case FormFieldTypeRadio:
		if name, err := w.ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			return string(name)
		}
	case FormFieldTypeSelect:
		if val, err := w.ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
		if arr, err := w.ctx.DereferenceArray(valueObj); err == nil {
			var values []string
			for _, item := range arr {
				if str, err := w.ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil {
					values = append(values, str)
				}
			}
			return values
		}
	}
	return nil
}

// extractFieldOptions extracts options for choice fields
func (w *walker) extractFieldOptions(fieldDict types.Dict) []string {
	var options []string

	optObj, found := fieldDict.Find("Opt")
	if !found {
		return options
	}

	optArray, err := w.ctx.DereferenceArray(optObj)
	if err != nil {
		return options
	}

	for _, opt := range optArray {
		// Options can be strings or arrays of [export_value, display_value]
		if str, err := w.ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, str)
		} else if arr, err := w.ctx.DereferenceArray(opt); err == nil && len(arr) >= 2 {
			if displayVal, err := w.ctx.DereferenceStringOrHexLiteral(arr[1], model.V10, nil); err == nil {
				options = append(options, displayVal)
			}
		}
	}

	return options
}

// widgetInfo reads a widget's rectangle, page and on state
func (w *walker) widgetInfo(obj types.Object, d types.Dict) (WidgetInfo, bool) {
	rectObj, found := d.Find("Rect")
	if !found {
		return WidgetInfo{}, false
	}
	bounds, ok := w.parseRect(rectObj)
	if !ok {
		return WidgetInfo{}, false
	}

	return WidgetInfo{
		Page:    w.widgetPage(obj, d),
		Bounds:  bounds,
		OnState: w.onState(d),
	}, true
}

// widgetPage resolves the widget's page from /P, then from the pages' /Annots arrays
func (w *walker) widgetPage(obj types.Object, d types.Dict) int {
	if pObj, found := d.Find("P"); found {
		if ref, ok := pObj.(types.IndirectRef); ok {
			if idx, ok := w.pageByRef[ref.ObjectNumber.Value()]; ok {
				return idx
			}
		}
	}
	if ref, ok := obj.(types.IndirectRef); ok {
		if idx, ok := w.pageByAnnot[ref.ObjectNumber.Value()]; ok {
			return idx
		}
	}
	return -1
}

func (w *walker) parseRect(rectObj types.Object) (BoundingBox, bool) {
	rectArray, err := w.ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return BoundingBox{}, false
	}

	coords := make([]float64, 4)
	for i, coord := range rectArray {
		f, err := w.ctx.DereferenceNumber(coord)
		if err != nil {
			return BoundingBox{}, false
		}
		coords[i] = f
	}

	return BoundingBox{
		LowerLeft:  Coordinate{X: coords[0], Y: coords[1]},
		UpperRight: Coordinate{X: coords[2], Y: coords[3]},
		Width:      coords[2] - coords[0],
		Height:     coords[3] - coords[1],
	}, true
}

// onState returns the first normal appearance state other than Off
func (w *walker) onState(d types.Dict) string {
	apObj, found := d.Find("AP")
	if !found {
		return ""
	}
	ap, err := w.ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return ""
	}
	nObj, found := ap.Find("N")
	if !found {
		return ""
	}
	// a stream here means a single appearance with no states
	n, err := w.ctx.DereferenceDict(nObj)
	if err != nil || n == nil {
		return ""
	}

	states := make([]string, 0, len(n))
	for k := range n {
		if k != "Off" {
			states = append(states, k)
		}
	}
	if len(states) == 0 {
		return ""
	}
	sort.Strings(states)
	return states[0]
}

func onStates(widgets []WidgetInfo) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range widgets {
		if w.OnState != "" && !seen[w.OnState] {
			seen[w.OnState] = true
			out = append(out, w.OnState)
		}
	}
	return out
}
