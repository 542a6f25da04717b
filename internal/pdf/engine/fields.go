package engine

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
)

const (
	flagPushButton = 1 << 16

	// nested field trees deeper than this are ignored
	maxFieldDepth = 32
)

// ExistingFields implements fillable.Form. It walks /Fields and returns every
// terminal field under its fully qualified name, parent names joined with a period.
// Unreadable entries are skipped.
func (f *Form) ExistingFields() ([]fillable.Field, error) {
	obj, found := f.dict.Find("Fields")
	if !found {
		return nil, nil
	}
	roots, err := f.ctx.DereferenceArray(obj)
	if err != nil {
		return nil, &EngineError{Op: "existing_fields", Err: err}
	}

	var out []fillable.Field
	for _, root := range roots {
		out = f.collectFields(out, root, "", "", 0, 0)
	}
	return out, nil
}

// collectFields appends the terminal fields below obj. ft and ff carry the
// inheritable /FT and /Ff values of the ancestors.
func (f *Form) collectFields(out []fillable.Field, obj types.Object, parent, ft string, ff, depth int) []fillable.Field {
	if depth > maxFieldDepth {
		return out
	}
	d, err := f.ctx.DereferenceDict(obj)
	if err != nil || d == nil {
		return out
	}

	tObj, found := d.Find("T")
	if !found {
		return out
	}
	partial, err := f.ctx.DereferenceStringOrHexLiteral(tObj, model.V10, nil)
	if err != nil {
		return out
	}
	name := partial
	if parent != "" {
		name = parent + "." + partial
	}

	if ftObj, found := d.Find("FT"); found {
		if n, err := f.ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			ft = string(n)
		}
	}
	if ffObj, found := d.Find("Ff"); found {
		if i, err := f.ctx.DereferenceInteger(ffObj); err == nil && i != nil {
			ff = int(*i)
		}
	}

	var children []types.Object
	if kidsObj, found := d.Find("Kids"); found {
		kids, err := f.ctx.DereferenceArray(kidsObj)
		if err != nil {
			return out
		}
		for _, kid := range kids {
			kd, err := f.ctx.DereferenceDict(kid)
			if err != nil || kd == nil {
				continue
			}
			if _, hasT := kd.Find("T"); hasT {
				children = append(children, kid)
			}
		}
	}

	if len(children) > 0 {
		for _, child := range children {
			out = f.collectFields(out, child, name, ft, ff, depth+1)
		}
		return out
	}

	field := &Field{
		form:       f,
		dict:       d,
		name:       name,
		kind:       existingKind(ft, ff),
		registered: true,
	}
	if ref, ok := obj.(types.IndirectRef); ok {
		field.ref = ref
	} else {
		field.sealed = "is a direct object and cannot parent new widgets"
	}
	if _, merged := d.Find("Rect"); merged {
		field.sealed = "shares its dictionary with a widget annotation"
	}

	return append(out, field)
}

// existingKind maps a field's /FT and /Ff to the widget kind new areas must match.
// Choice, signature and push button fields accept no widgets.
func existingKind(ft string, ff int) fillable.WidgetKind {
	switch ft {
	case "Tx":
		return fillable.KindText
	case "Btn":
		switch {
		case ff&flagPushButton != 0:
			return fillable.KindUnsupported
		case ff&flagRadio != 0:
			return fillable.KindRadio
		}
		return fillable.KindCheckbox
	}
	return fillable.KindUnsupported
}
