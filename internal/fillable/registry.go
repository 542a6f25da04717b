package fillable

import (
	"fmt"

	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
)

// fieldRegistry maps field names to their form field for one synthesis call, so
// every area of a name lands on the same field. It starts with the fields the
// document already has.
type fieldRegistry struct {
	form    Form
	fields  map[string]Field
	created int
}

func newFieldRegistry(form Form) (*fieldRegistry, error) {
	existing, err := form.ExistingFields()
	if err != nil {
		return nil, err
	}

	r := &fieldRegistry{
		form:   form,
		fields: make(map[string]Field, len(existing)),
	}
	for _, f := range existing {
		if _, dup := r.fields[f.Name()]; !dup {
			r.fields[f.Name()] = f
		}
	}
	return r, nil
}

// lookupOrCreate returns the field registered under p.FieldName, creating it on first
// use. created reports whether a new field was made; the caller either commits it
// once a widget is attached or releases it.
func (r *fieldRegistry) lookupOrCreate(p Placement, flags FieldFlags) (field Field, created bool, err error) {
	if existing, ok := r.fields[p.FieldName]; ok {
		if existing.Kind() != p.Kind {
			return nil, false, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeFieldKindConflict,
				"field name already used by another widget kind",
				fmt.Sprintf("%q is %s, requested %s", p.FieldName, existing.Kind(), p.Kind))
		}
		return existing, false, nil
	}

	switch p.Kind {
	case KindText:
		field, err = r.form.CreateTextField(p.FieldName, flags)
	case KindCheckbox:
		field, err = r.form.CreateCheckbox(p.FieldName, flags)
	case KindRadio:
		field, err = r.form.CreateRadioGroup(p.FieldName, flags)
	default:
		return nil, false, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeUnsupportedFieldType,
			"no form field for widget kind", p.Kind.String())
	}
	if err != nil {
		return nil, false, pdferrors.WrapError(pdferrors.ErrorTypeWidgetCreation,
			fmt.Sprintf("create %s field %q", p.Kind, p.FieldName), err)
	}

	r.fields[p.FieldName] = field
	return field, true, nil
}

// commit counts a newly created field once its first widget is attached
func (r *fieldRegistry) commit() {
	r.created++
}

// release forgets a newly created field whose first widget failed, so a later
// area of the same name creates it afresh
func (r *fieldRegistry) release(name string) {
	delete(r.fields, name)
}

// Created returns the number of fields added to the form
func (r *fieldRegistry) Created() int {
	return r.created
}
