package fillable

import "io"

// Opener opens a PDF document handle from raw bytes. Each call returns an
// independent handle owned by the caller.
type Opener interface {
	Open(data []byte) (Document, error)
}

// Document is an opened PDF. A handle is not safe for concurrent use.
type Document interface {
	PageCount() int
	// Page returns the zero-based page, or an error when index is out of range
	Page(index int) (Page, error)
	// AcroForm returns the document's form container, creating it if absent
	AcroForm() (Form, error)
	Write(w io.Writer) error
	Close() error
}

// Page is one page of an opened document
type Page interface {
	Index() int
	// Box is the visible page area (crop box, falling back to the media box)
	Box() Rect
	AddAnnotation(w Widget) error
}

// FieldFlags are the optional behaviours set on a created form field
type FieldFlags struct {
	Required bool
	ReadOnly bool
}

// Form creates named form fields. Creating the same name twice yields two distinct
// fields, so callers deduplicate through a registry.
type Form interface {
	// ExistingFields returns the terminal fields already in the form, named by
	// their fully qualified names
	ExistingFields() ([]Field, error)
	CreateTextField(name string, flags FieldFlags) (Field, error)
	CreateCheckbox(name string, flags FieldFlags) (Field, error)
	CreateRadioGroup(name string, flags FieldFlags) (Field, error)
}

// Field is one named form field that can own several widgets
type Field interface {
	Name() string
	Kind() WidgetKind
	// NewWidget creates a widget annotation bound to this field. optionID is the
	// on-state name for radio options and ignored otherwise.
	NewWidget(page Page, rect Rect, optionID string) (Widget, error)
}

// Widget is the page-anchored appearance of a field
type Widget interface {
	FieldName() string
	Rect() Rect
	OptionID() string
}
