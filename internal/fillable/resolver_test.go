package fillable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		want      WidgetKind
	}{
		{FieldTypeText, KindText},
		{FieldTypeDate, KindText},
		{FieldTypeNumber, KindText},
		{FieldTypeCheckbox, KindCheckbox},
		{FieldTypeRadio, KindRadio},
		{FieldTypeSignature, KindUnsupported},
		{FieldTypeInitials, KindUnsupported},
		{FieldTypeImage, KindUnsupported},
		{FieldTypeFile, KindUnsupported},
		{FieldTypeSelect, KindUnsupported},
		{FieldTypeMultiple, KindUnsupported},
		{FieldTypeCells, KindUnsupported},
		{FieldTypeStamp, KindUnsupported},
		{FieldTypePhone, KindUnsupported},
		{FieldTypePayment, KindUnsupported},
		{"", KindUnsupported},
		{"TEXT", KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveKind(tt.fieldType))
		})
	}
}

func TestWidgetKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "checkbox", KindCheckbox.String())
	assert.Equal(t, "radio", KindRadio.String())
	assert.Equal(t, "unsupported", KindUnsupported.String())
	assert.Equal(t, "unsupported", WidgetKind(42).String())
}

func TestResolve(t *testing.T) {
	area := Area{Page: 0, OptionUUID: "opt-1"}

	p, ok := Resolve(FieldSchema{UUID: "u1", Name: "Email", Type: FieldTypeText}, area)
	assert.True(t, ok)
	assert.Equal(t, Placement{Kind: KindText, FieldName: "Email"}, p)

	p, ok = Resolve(FieldSchema{UUID: "u2", Type: FieldTypeRadio}, area)
	assert.True(t, ok)
	assert.Equal(t, Placement{Kind: KindRadio, FieldName: "u2", OptionID: "opt-1"}, p)

	p, ok = Resolve(FieldSchema{UUID: "u3", Name: "Agree", Type: FieldTypeCheckbox}, area)
	assert.True(t, ok)
	assert.Empty(t, p.OptionID)

	_, ok = Resolve(FieldSchema{UUID: "u4", Type: FieldTypeSignature}, area)
	assert.False(t, ok)
}

func TestFallbackOptionID(t *testing.T) {
	field := FieldSchema{UUID: "u1", Name: "Choice", Type: FieldTypeRadio}

	first := fallbackOptionID(field, 0)
	assert.Equal(t, first, fallbackOptionID(field, 0))
	assert.NotEqual(t, first, fallbackOptionID(field, 1))
	assert.Len(t, first, 36)
}
