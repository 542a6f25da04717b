// Package descriptions holds the long-form tool descriptions shown to MCP clients.
package descriptions

import "sort"

const (
	PDFMakeFillableDescription = `Turn a static PDF into a fillable form by adding AcroForm widgets at the positions of a field schema.

**When to use:** You have a flat PDF and a list of fields (from a template editor) with normalized areas, and need a PDF that any viewer can fill in.

**How fields map to widgets:**
• text, date, number → single-line text field
• checkbox → checkbox with on state "Yes"
• radio → radio group, one button per area, on state taken from option_uuid
• any other type (signature, image, select, ...) is reported as skipped

**Field schema (JSON array):**
[{"uuid":"f1","name":"Full name","type":"text","required":true,
  "areas":[{"page":0,"x":0.1,"y":0.2,"w":0.3,"h":0.05}]}]

Areas use fractions of the page (0..1) with the origin at the top-left corner; pages are zero-based.
Fields sharing a name share one AcroForm field, so the same value appears in every widget.

**Result:** output path, fields created, widgets placed and every skipped area with the reason
(page out of range, unsupported type, empty areas, name used by a different kind).

**Best practices:** Run pdf_page_info first to check page count, then pdf_extract_forms on the output to verify.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before adding widgets to a file, especially for user uploads.

**Why it's useful:** Catches missing, empty, oversized and corrupted files before any work is done.

**Examples:**
• "Check uploaded contract.pdf is valid before making it fillable"
• "Validate all generated forms before sending them out"`

	PDFExtractFormsDescription = `List the interactive form fields of a PDF, with every widget's page, rectangle and on state.

**When to use:** To inspect a document before adding fields (existing AcroForm) or to verify the output of pdf_make_fillable.

**Returns:** field name, type (text, checkbox, radio, select, button, signature), flags, value,
and per widget the zero-based page, rectangle in PDF points and the checkbox/radio on state.`

	PDFPageInfoDescription = `Report the page count and the visible box (crop box, else media box) of every page.

**When to use:** Before pdf_make_fillable, to make sure every area's page index exists and to see
page sizes, rotation, encryption and whether the document permits adding form fields.`

	PDFServerInfoDescription = `Get server configuration, available tools and the PDFs in the source directory.

**When to use:** At the start of a session to discover which documents can be made fillable and where output is written.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_make_fillable": PDFMakeFillableDescription,
	"pdf_validate_file": PDFValidateFileDescription,
	"pdf_extract_forms": PDFExtractFormsDescription,
	"pdf_page_info":     PDFPageInfoDescription,
	"pdf_server_info":   PDFServerInfoDescription,
}

// GetToolDescription returns the description for a specific tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
