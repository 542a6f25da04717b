package fillable

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// fakeOpener hands out independent in-memory documents
type fakeOpener struct {
	pages    []Rect
	openErr  error
	writeErr error
	// setup prepares each opened document's form
	setup func(*fakeForm)

	opened atomic.Int32
	closed atomic.Int32

	mu   sync.Mutex
	docs []*fakeDoc
}

func newFakeOpener(pages ...Rect) *fakeOpener {
	return &fakeOpener{pages: pages}
}

func (o *fakeOpener) Open(data []byte) (Document, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	o.opened.Add(1)

	doc := &fakeDoc{opener: o, form: &fakeForm{}, writeErr: o.writeErr}
	if o.setup != nil {
		o.setup(doc.form)
	}
	for i, box := range o.pages {
		doc.pages = append(doc.pages, &fakePage{index: i, box: box})
	}

	o.mu.Lock()
	o.docs = append(o.docs, doc)
	o.mu.Unlock()
	return doc, nil
}

func (o *fakeOpener) lastDoc() *fakeDoc {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.docs[len(o.docs)-1]
}

type fakeDoc struct {
	opener   *fakeOpener
	pages    []*fakePage
	form     *fakeForm
	writeErr error
	closed   bool
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) Page(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	return d.pages[index], nil
}

func (d *fakeDoc) AcroForm() (Form, error) { return d.form, nil }

func (d *fakeDoc) Write(w io.Writer) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	_, err := fmt.Fprintf(w, "%%PDF-fake pages=%d fields=%d", len(d.pages), len(d.form.fields))
	return err
}

func (d *fakeDoc) Close() error {
	d.closed = true
	d.opener.closed.Add(1)
	return nil
}

type fakePage struct {
	index  int
	box    Rect
	annots []Widget
}

func (p *fakePage) Index() int { return p.index }
func (p *fakePage) Box() Rect  { return p.box }

func (p *fakePage) AddAnnotation(w Widget) error {
	p.annots = append(p.annots, w)
	return nil
}

type fakeForm struct {
	fields []*fakeField
	// existing are the fields the document already carries
	existing []*fakeField
	// failNames makes field creation fail for these names
	failNames map[string]bool
	// failWidgets makes widget creation fail on fields with these names
	failWidgets map[string]bool
}

func (f *fakeForm) ExistingFields() ([]Field, error) {
	out := make([]Field, 0, len(f.existing))
	for _, fd := range f.existing {
		out = append(out, fd)
	}
	return out, nil
}

func (f *fakeForm) create(name string, kind WidgetKind, flags FieldFlags) (Field, error) {
	if f.failNames[name] {
		return nil, fmt.Errorf("cannot create %q", name)
	}
	fd := &fakeField{name: name, kind: kind, flags: flags, failWidget: f.failWidgets[name]}
	f.fields = append(f.fields, fd)
	return fd, nil
}

func (f *fakeForm) CreateTextField(name string, flags FieldFlags) (Field, error) {
	return f.create(name, KindText, flags)
}

func (f *fakeForm) CreateCheckbox(name string, flags FieldFlags) (Field, error) {
	return f.create(name, KindCheckbox, flags)
}

func (f *fakeForm) CreateRadioGroup(name string, flags FieldFlags) (Field, error) {
	return f.create(name, KindRadio, flags)
}

func (f *fakeForm) field(name string) *fakeField {
	for _, fd := range f.fields {
		if fd.name == name {
			return fd
		}
	}
	return nil
}

type fakeField struct {
	name       string
	kind       WidgetKind
	flags      FieldFlags
	widgets    []*fakeWidget
	failWidget bool
}

func (f *fakeField) Name() string     { return f.name }
func (f *fakeField) Kind() WidgetKind { return f.kind }

func (f *fakeField) NewWidget(page Page, rect Rect, optionID string) (Widget, error) {
	if f.failWidget {
		return nil, fmt.Errorf("cannot create widget for %q", f.name)
	}
	w := &fakeWidget{field: f.name, rect: rect, page: page.Index()}
	if f.kind == KindRadio {
		w.option = optionID
	}
	f.widgets = append(f.widgets, w)
	return w, nil
}

type fakeWidget struct {
	field  string
	rect   Rect
	option string
	page   int
}

func (w *fakeWidget) FieldName() string { return w.field }
func (w *fakeWidget) Rect() Rect        { return w.rect }
func (w *fakeWidget) OptionID() string  { return w.option }
