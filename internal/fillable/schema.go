// Package fillable places interactive AcroForm widgets onto an existing static PDF,
// driven by a normalized field-placement schema.
//
// Area coordinates are fractions of the page box with a top-left origin. They are
// converted to PDF user space (bottom-left origin) per page, and every area of a field
// becomes one widget of a single named form field. Radio fields turn each area into a
// distinct option of one group.
package fillable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
)

// FieldType is the declared type of a schema field
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeDate      FieldType = "date"
	FieldTypeNumber    FieldType = "number"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeSignature FieldType = "signature"
	FieldTypeInitials  FieldType = "initials"
	FieldTypeImage     FieldType = "image"
	FieldTypeFile      FieldType = "file"
	FieldTypeSelect    FieldType = "select"
	FieldTypeMultiple  FieldType = "multiple"
	FieldTypeCells     FieldType = "cells"
	FieldTypeStamp     FieldType = "stamp"
	FieldTypePhone     FieldType = "phone"
	FieldTypePayment   FieldType = "payment"
)

// FieldSchema describes one form field and every place it appears in the document
type FieldSchema struct {
	UUID     string    `json:"uuid" yaml:"uuid"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type     FieldType `json:"type" yaml:"type"`
	Areas    []Area    `json:"areas" yaml:"areas"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly bool      `json:"readonly,omitempty" yaml:"readonly,omitempty"`
}

// Area is one physical placement of a field. X, Y, W and H are fractions of the page
// width (X, W) and height (Y, H), measured from the top-left corner.
type Area struct {
	Page       int     `json:"page" yaml:"page"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	W          float64 `json:"w" yaml:"w"`
	H          float64 `json:"h" yaml:"h"`
	OptionUUID string  `json:"option_uuid,omitempty" yaml:"option_uuid,omitempty"`
}

// FieldName returns the name the widget's form field is created under
func (f FieldSchema) FieldName() string {
	if strings.TrimSpace(f.Name) != "" {
		return f.Name
	}
	return f.UUID
}

// finite reports whether every coordinate of the area is a finite number
func (a Area) finite() bool {
	for _, v := range [...]float64{a.X, a.Y, a.W, a.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SchemaFormat selects the decoder used by ParseFields
type SchemaFormat string

const (
	FormatJSON SchemaFormat = "json"
	FormatYAML SchemaFormat = "yaml"
)

// schemaDocument is the object form of a schema file: {"fields": [...]}
type schemaDocument struct {
	Fields []FieldSchema `json:"fields" yaml:"fields"`
}

// ParseFields decodes a field schema. Both a bare list of fields and an object with a
// "fields" key are accepted.
func ParseFields(data []byte, format SchemaFormat) ([]FieldSchema, error) {
	var fields []FieldSchema
	var err error
	switch format {
	case FormatJSON, "":
		fields, err = parseJSONFields(data)
	case FormatYAML:
		fields, err = parseYAMLFields(data)
	default:
		return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidSchema,
			"unsupported schema format", string(format))
	}
	if err != nil {
		return nil, err
	}
	if err := validateAreas(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// validateAreas rejects area coordinates that cannot be written to a PDF, such as
// the .nan and .inf values YAML accepts
func validateAreas(fields []FieldSchema) error {
	for _, f := range fields {
		for i, a := range f.Areas {
			if !a.finite() {
				return pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidSchema,
					"area coordinates must be finite numbers",
					fmt.Sprintf("field %q area %d", f.FieldName(), i)).WithField(f.FieldName(), i)
			}
		}
	}
	return nil
}

// LoadFieldsFile reads a schema file, choosing the decoder from its extension
func LoadFieldsFile(path string) ([]FieldSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return ParseFields(data, FormatForPath(path))
}

// FormatForPath maps .yaml/.yml to YAML and everything else to JSON
func FormatForPath(path string) SchemaFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func parseJSONFields(data []byte) ([]FieldSchema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidSchema, "empty schema")
	}

	if trimmed[0] == '[' {
		var fields []FieldSchema
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidSchema, "decode JSON field list", err)
		}
		return fields, nil
	}

	var doc schemaDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidSchema, "decode JSON schema document", err)
	}
	return doc.Fields, nil
}

func parseYAMLFields(data []byte) ([]FieldSchema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidSchema, "decode YAML schema", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidSchema, "empty schema")
	}

	body := root.Content[0]
	if body.Kind == yaml.SequenceNode {
		var fields []FieldSchema
		if err := body.Decode(&fields); err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidSchema, "decode YAML field list", err)
		}
		return fields, nil
	}

	var doc schemaDocument
	if err := body.Decode(&doc); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidSchema, "decode YAML schema document", err)
	}
	return doc.Fields, nil
}
