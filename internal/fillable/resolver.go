package fillable

import (
	"strconv"

	"github.com/google/uuid"
)

// WidgetKind is the kind of interactive widget a schema field turns into
type WidgetKind int

const (
	// KindUnsupported marks field types that produce no widget
	KindUnsupported WidgetKind = iota
	KindText
	KindCheckbox
	KindRadio
)

func (k WidgetKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	default:
		return "unsupported"
	}
}

// ResolveKind maps a declared field type to its widget kind
func ResolveKind(t FieldType) WidgetKind {
	switch t {
	case FieldTypeText, FieldTypeDate, FieldTypeNumber:
		return KindText
	case FieldTypeCheckbox:
		return KindCheckbox
	case FieldTypeRadio:
		return KindRadio
	default:
		return KindUnsupported
	}
}

// Placement is the resolved creation call for one area of a field
type Placement struct {
	Kind      WidgetKind
	FieldName string
	// OptionID is only set for KindRadio
	OptionID string
}

// Resolve picks the creation operation for one area. ok is false for unsupported types.
func Resolve(field FieldSchema, area Area) (Placement, bool) {
	kind := ResolveKind(field.Type)
	if kind == KindUnsupported {
		return Placement{}, false
	}

	p := Placement{Kind: kind, FieldName: field.FieldName()}
	if kind == KindRadio {
		p.OptionID = area.OptionUUID
	}
	return p, true
}

// fallbackOptionID derives a stable option id for a radio area that carries no
// option_uuid, so repeated runs over the same schema produce the same option names.
func fallbackOptionID(field FieldSchema, areaIndex int) string {
	seed := field.UUID + "/" + field.FieldName() + "/" + strconv.Itoa(areaIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
}
