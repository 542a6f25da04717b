// Package extraction reads AcroForm fields and their widget annotations back out of a PDF.
package extraction

import "fmt"

// FormFieldType represents the type of a form field
type FormFieldType string

const (
	FormFieldTypeText      FormFieldType = "text"
	FormFieldTypeCheckbox  FormFieldType = "checkbox"
	FormFieldTypeRadio     FormFieldType = "radio"
	FormFieldTypeSelect    FormFieldType = "select"
	FormFieldTypeButton    FormFieldType = "button"
	FormFieldTypeSignature FormFieldType = "signature"
	FormFieldTypeUnknown   FormFieldType = "unknown"
)

// Coordinate is a point in PDF user space
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is a widget rectangle in PDF user space
type BoundingBox struct {
	LowerLeft  Coordinate `json:"lower_left"`
	UpperRight Coordinate `json:"upper_right"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", b.LowerLeft.X, b.LowerLeft.Y, b.UpperRight.X, b.UpperRight.Y)
}

// WidgetInfo describes one widget annotation of a field
type WidgetInfo struct {
	// Page is zero-based, -1 when the widget has no resolvable /P entry
	Page   int         `json:"page"`
	Bounds BoundingBox `json:"bounds"`
	// OnState is the non-Off appearance state of a checkbox or radio button
	OnState string `json:"on_state,omitempty"`
}

// FormField represents an interactive form field in a PDF
type FormField struct {
	Name         string        `json:"name"`
	Type         FormFieldType `json:"type"`
	Value        interface{}   `json:"value,omitempty"`
	DefaultValue interface{}   `json:"default_value,omitempty"`
	Options      []string      `json:"options,omitempty"`
	Required     bool          `json:"required"`
	ReadOnly     bool          `json:"read_only"`
	Flags        int           `json:"flags"`
	Widgets      []WidgetInfo  `json:"widgets,omitempty"`
}

// Pages returns the distinct zero-based pages the field's widgets sit on, in widget order
func (f FormField) Pages() []int {
	seen := make(map[int]bool)
	var pages []int
	for _, w := range f.Widgets {
		if !seen[w.Page] {
			seen[w.Page] = true
			pages = append(pages, w.Page)
		}
	}
	return pages
}

// Summary counts fields and widgets by type
type Summary struct {
	Fields  int                   `json:"fields"`
	Widgets int                   `json:"widgets"`
	ByType  map[FormFieldType]int `json:"by_type"`
}

// Summarize builds a Summary over fields
func Summarize(fields []FormField) Summary {
	s := Summary{ByType: make(map[FormFieldType]int)}
	for _, f := range fields {
		s.Fields++
		s.Widgets += len(f.Widgets)
		s.ByType[f.Type]++
	}
	return s
}
