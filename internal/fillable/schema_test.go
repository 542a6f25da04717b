package fillable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/cookiescgov/docuseal-to-pdf/internal/pdf/errors"
)

var wantSchema = []FieldSchema{
	{
		UUID: "f1", Name: "Full Name", Type: FieldTypeText, Required: true,
		Areas: []Area{{Page: 0, X: 0.1, Y: 0.2, W: 0.3, H: 0.05}},
	},
	{
		UUID: "f2", Type: FieldTypeRadio,
		Areas: []Area{
			{Page: 1, X: 0.1, Y: 0.5, W: 0.02, H: 0.02, OptionUUID: "o1"},
			{Page: 1, X: 0.2, Y: 0.5, W: 0.02, H: 0.02, OptionUUID: "o2"},
		},
	},
}

const schemaJSONList = `[
  {"uuid": "f1", "name": "Full Name", "type": "text", "required": true,
   "areas": [{"page": 0, "x": 0.1, "y": 0.2, "w": 0.3, "h": 0.05}]},
  {"uuid": "f2", "name": null, "type": "radio",
   "areas": [{"page": 1, "x": 0.1, "y": 0.5, "w": 0.02, "h": 0.02, "option_uuid": "o1"},
             {"page": 1, "x": 0.2, "y": 0.5, "w": 0.02, "h": 0.02, "option_uuid": "o2"}]}
]`

const schemaYAMLDoc = `
fields:
  - uuid: f1
    name: Full Name
    type: text
    required: true
    areas:
      - {page: 0, x: 0.1, y: 0.2, w: 0.3, h: 0.05}
  - uuid: f2
    type: radio
    areas:
      - {page: 1, x: 0.1, y: 0.5, w: 0.02, h: 0.02, option_uuid: o1}
      - {page: 1, x: 0.2, y: 0.5, w: 0.02, h: 0.02, option_uuid: o2}
`

func TestParseFields(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format SchemaFormat
	}{
		{name: "json list", data: schemaJSONList, format: FormatJSON},
		{name: "json document", data: `{"fields": ` + schemaJSONList + `}`, format: FormatJSON},
		{name: "default format", data: schemaJSONList, format: ""},
		{name: "yaml document", data: schemaYAMLDoc, format: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFields([]byte(tt.data), tt.format)
			require.NoError(t, err)
			if diff := cmp.Diff(wantSchema, got); diff != "" {
				t.Errorf("ParseFields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFieldsYAMLList(t *testing.T) {
	got, err := ParseFields([]byte("- uuid: a\n  type: checkbox\n  areas: []\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, FieldTypeCheckbox, got[0].Type)
	assert.Empty(t, got[0].Areas)
}

func TestParseFieldsErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format SchemaFormat
	}{
		{name: "empty json", data: "  ", format: FormatJSON},
		{name: "broken json", data: `[{"uuid": }]`, format: FormatJSON},
		{name: "wrong json shape", data: `{"fields": "nope"}`, format: FormatJSON},
		{name: "empty yaml", data: "", format: FormatYAML},
		{name: "broken yaml", data: "fields: [unclosed", format: FormatYAML},
		{name: "unknown format", data: schemaJSONList, format: "toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFields([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeInvalidSchema), "got %v", err)
		})
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "Email", FieldSchema{UUID: "u", Name: "Email"}.FieldName())
	assert.Equal(t, "u", FieldSchema{UUID: "u"}.FieldName())
	assert.Equal(t, "u", FieldSchema{UUID: "u", Name: "   "}.FieldName())
	assert.Equal(t, " Name ", FieldSchema{UUID: "u", Name: " Name "}.FieldName())
}

func TestParseFieldsNonFiniteArea(t *testing.T) {
	for _, value := range []string{".nan", ".inf", "-.inf", ".NaN"} {
		t.Run(value, func(t *testing.T) {
			data := "- uuid: a\n  name: Total\n  type: number\n  areas:\n" +
				"    - {page: 0, x: 0.1, y: 0.2, w: " + value + ", h: 0.05}\n"

			_, err := ParseFields([]byte(data), FormatYAML)
			require.Error(t, err)
			assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeInvalidSchema))
			assert.Contains(t, err.Error(), "finite")
		})
	}
}

func TestLoadFieldsFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "fields.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(schemaJSONList), 0o644))
	yamlPath := filepath.Join(dir, "fields.YML")
	require.NoError(t, os.WriteFile(yamlPath, []byte(schemaYAMLDoc), 0o644))

	fromJSON, err := LoadFieldsFile(jsonPath)
	require.NoError(t, err)
	fromYAML, err := LoadFieldsFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)

	_, err = LoadFieldsFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("a.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("a.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("a.json"))
	assert.Equal(t, FormatJSON, FormatForPath("schema"))
}
