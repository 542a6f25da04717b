package engine

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
)

// Field flag bits (PDF 32000-1, 12.7.3.1 and 12.7.4.2.1)
const (
	flagReadOnly      = 1 << 0
	flagRequired      = 1 << 1
	flagNoToggleToOff = 1 << 14
	flagRadio         = 1 << 15

	// annotation flag: print
	annotFlagPrint = 1 << 2

	checkboxOnState = "Yes"
	offState        = "Off"

	textFontName   = "Helv"
	symbolFontName = "ZaDb"
	defaultTextDA  = "/Helv 0 Tf 0 g"
)

// Form is the document's AcroForm dictionary
type Form struct {
	ctx  *model.Context
	dict types.Dict

	// font resources used by appearance streams
	symbolFont types.Object
}

func newForm(ctx *model.Context) (*Form, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	var acroForm types.Dict
	if obj, found := root.Find("AcroForm"); found {
		acroForm, err = ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
		}
	}

	if acroForm == nil {
		acroForm = types.Dict{"Fields": types.Array{}}
		ref, err := ctx.IndRefForNewObject(acroForm)
		if err != nil {
			return nil, fmt.Errorf("failed to add AcroForm: %w", err)
		}
		root["AcroForm"] = *ref
	}

	f := &Form{ctx: ctx, dict: acroForm}
	if err := f.ensureDefaults(); err != nil {
		return nil, err
	}
	return f, nil
}

// ensureDefaults makes viewers build text appearances and provides the fonts
// referenced by /DA strings and appearance streams
func (f *Form) ensureDefaults() error {
	f.dict["NeedAppearances"] = types.Boolean(true)
	if _, found := f.dict.Find("DA"); !found {
		f.dict["DA"] = types.StringLiteral(defaultTextDA)
	}

	dr, err := f.subDict(f.dict, "DR")
	if err != nil {
		return err
	}
	fonts, err := f.subDict(dr, "Font")
	if err != nil {
		return err
	}

	if _, found := fonts.Find(textFontName); !found {
		ref, err := f.ctx.IndRefForNewObject(standardFont("Helvetica", true))
		if err != nil {
			return fmt.Errorf("failed to add Helvetica: %w", err)
		}
		fonts[textFontName] = *ref
	}

	if _, found := fonts.Find(symbolFontName); !found {
		ref, err := f.ctx.IndRefForNewObject(standardFont("ZapfDingbats", false))
		if err != nil {
			return fmt.Errorf("failed to add ZapfDingbats: %w", err)
		}
		fonts[symbolFontName] = *ref
	}
	f.symbolFont = fonts[symbolFontName]

	return nil
}

// subDict resolves parent[key] as a dictionary, creating an empty one if absent
func (f *Form) subDict(parent types.Dict, key string) (types.Dict, error) {
	if obj, found := parent.Find(key); found {
		d, err := f.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference %s: %w", key, err)
		}
		if d != nil {
			return d, nil
		}
	}
	d := types.Dict{}
	parent[key] = d
	return d, nil
}

func standardFont(baseFont string, winAnsi bool) types.Dict {
	d := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(baseFont),
	}
	if winAnsi {
		d["Encoding"] = types.Name("WinAnsiEncoding")
	}
	return d
}

// CreateTextField implements fillable.Form
func (f *Form) CreateTextField(name string, flags fillable.FieldFlags) (fillable.Field, error) {
	return f.createField(name, fillable.KindText, flags)
}

// CreateCheckbox implements fillable.Form
func (f *Form) CreateCheckbox(name string, flags fillable.FieldFlags) (fillable.Field, error) {
	return f.createField(name, fillable.KindCheckbox, flags)
}

// CreateRadioGroup implements fillable.Form
func (f *Form) CreateRadioGroup(name string, flags fillable.FieldFlags) (fillable.Field, error) {
	return f.createField(name, fillable.KindRadio, flags)
}

func (f *Form) createField(name string, kind fillable.WidgetKind, flags fillable.FieldFlags) (*Field, error) {
	if name == "" {
		return nil, &EngineError{Op: "create_field", Err: fmt.Errorf("field name cannot be empty")}
	}

	d := types.Dict{
		"Kids": types.Array{},
	}

	ff := 0
	if flags.ReadOnly {
		ff |= flagReadOnly
	}
	if flags.Required {
		ff |= flagRequired
	}

	switch kind {
	case fillable.KindText:
		d["FT"] = types.Name("Tx")
		d["DA"] = types.StringLiteral(defaultTextDA)
	case fillable.KindCheckbox:
		d["FT"] = types.Name("Btn")
		d["V"] = types.Name(offState)
	case fillable.KindRadio:
		d["FT"] = types.Name("Btn")
		d["V"] = types.Name(offState)
		ff |= flagRadio | flagNoToggleToOff
	default:
		return nil, &EngineError{Op: "create_field", Err: fmt.Errorf("unsupported widget kind %s", kind)}
	}

	if ff != 0 {
		d["Ff"] = types.Integer(ff)
	}

	t, err := textString(name)
	if err != nil {
		return nil, &EngineError{Op: "create_field", Err: err}
	}
	d["T"] = t

	ref, err := f.ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, &EngineError{Op: "create_field", Err: err}
	}

	// the field joins /Fields with its first attached widget
	return &Field{form: f, dict: d, ref: *ref, name: name, kind: kind}, nil
}

// register appends the field to the AcroForm's /Fields array
func (f *Form) register(ref types.IndirectRef) error {
	var fields types.Array
	if obj, found := f.dict.Find("Fields"); found {
		arr, err := f.ctx.DereferenceArray(obj)
		if err != nil {
			return fmt.Errorf("failed to dereference Fields: %w", err)
		}
		fields = arr
	}
	f.dict["Fields"] = append(append(types.Array{}, fields...), ref)
	return nil
}

// Field is one terminal form field; its widgets are stored as /Kids
type Field struct {
	form *Form
	dict types.Dict
	ref  types.IndirectRef
	name string
	kind fillable.WidgetKind

	// registered is set once the field is reachable from /Fields
	registered bool
	// sealed explains why no widget can be added to an existing field
	sealed string
}

// Name returns the field's fully qualified name
func (fd *Field) Name() string { return fd.name }

// Kind returns the widget kind of the field's widgets
func (fd *Field) Kind() fillable.WidgetKind { return fd.kind }

// NewWidget implements fillable.Field
func (fd *Field) NewWidget(page fillable.Page, rect fillable.Rect, optionID string) (fillable.Widget, error) {
	p, ok := page.(*Page)
	if !ok || p.doc.ctx != fd.form.ctx {
		return nil, ErrForeignObject
	}
	if fd.sealed != "" {
		return nil, &EngineError{Op: "create_widget", Err: fmt.Errorf("field %q %s", fd.name, fd.sealed)}
	}

	w := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Widget"),
		"Rect":    rectArray(rect),
		"F":       types.Integer(annotFlagPrint),
		"Parent":  fd.ref,
		"BS":      types.Dict{"W": types.Integer(1), "S": types.Name("S")},
	}
	if p.ref != nil {
		w["P"] = *p.ref
	}

	onState := ""
	switch fd.kind {
	case fillable.KindCheckbox:
		onState = checkboxOnState
	case fillable.KindRadio:
		var err error
		if onState, err = stateName(optionID); err != nil {
			return nil, &EngineError{Op: "create_widget", Err: err}
		}
	}

	if onState != "" {
		glyph := checkGlyph
		if fd.kind == fillable.KindRadio {
			glyph = radioGlyph
		}
		ap, err := fd.form.buttonAppearance(onState, glyph, rect.Width(), rect.Height())
		if err != nil {
			return nil, &EngineError{Op: "create_widget", Err: err}
		}
		w["AP"] = ap
		w["AS"] = types.Name(offState)
		w["MK"] = types.Dict{"CA": types.StringLiteral(glyph)}
	}

	ref, err := fd.form.ctx.IndRefForNewObject(w)
	if err != nil {
		return nil, &EngineError{Op: "create_widget", Err: err}
	}

	return &Widget{
		form:   fd.form,
		field:  fd,
		ref:    *ref,
		rect:   rect,
		option: onState,
	}, nil
}

// attach links a widget placed on a page into the field's /Kids and, for the
// field's first widget, the field into /Fields
func (fd *Field) attach(widget types.IndirectRef) error {
	var kids types.Array
	if obj, found := fd.dict.Find("Kids"); found {
		arr, err := fd.form.ctx.DereferenceArray(obj)
		if err != nil {
			return fmt.Errorf("failed to dereference Kids of %q: %w", fd.name, err)
		}
		kids = arr
	}

	if !fd.registered {
		if err := fd.form.register(fd.ref); err != nil {
			return err
		}
		fd.registered = true
	}

	fd.dict["Kids"] = append(append(types.Array{}, kids...), widget)
	return nil
}

// Widget is a widget annotation bound to a Field
type Widget struct {
	form   *Form
	field  *Field
	ref    types.IndirectRef
	rect   fillable.Rect
	option string
}

// FieldName returns the owning field's name
func (w *Widget) FieldName() string { return w.field.name }

// Rect returns the widget rectangle in page space
func (w *Widget) Rect() fillable.Rect { return w.rect }

// OptionID returns the widget's on-state name, empty for text widgets
func (w *Widget) OptionID() string { return w.option }

// ObjectNumber returns the widget's object number in the output document
func (w *Widget) ObjectNumber() int { return w.ref.ObjectNumber.Value() }

// stateName returns the on-state name for a radio option. Names are kept
// decoded in memory; pdfcpu applies #xx escaping when the document is written.
func stateName(id string) (string, error) {
	name := strings.TrimSpace(id)
	if name == "" {
		return "", fmt.Errorf("radio option id cannot be empty")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return "", fmt.Errorf("radio option id %q contains a NUL byte", id)
	}
	return name, nil
}

// textString encodes s as a PDF text string: an escaped literal for ASCII,
// UTF-16BE with byte order mark otherwise
func textString(s string) (types.Object, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return types.NewHexLiteral([]byte(types.EncodeUTF16String(s))), nil
		}
	}
	escaped, err := types.Escape(s)
	if err != nil {
		return nil, err
	}
	return types.StringLiteral(*escaped), nil
}
