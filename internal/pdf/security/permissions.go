package security

import (
	"fmt"
	"strings"
)

// Permissions represents PDF document permissions based on the P entry in the encryption dictionary
type Permissions struct {
	Print            bool // Bit 3 - Print the document
	Modify           bool // Bit 4 - Modify the contents of the document
	Copy             bool // Bit 5 - Copy or extract text and graphics
	Annotate         bool // Bit 6 - Add or modify annotations, fill in and create form fields
	FillForms        bool // Bit 9 - Fill in existing interactive form fields
	Extract          bool // Bit 10 - Extract text and graphics (in support of accessibility)
	Assemble         bool // Bit 11 - Assemble the document
	PrintHighQuality bool // Bit 12 - Print at full quality
}

// NewPermissions decodes a P value
func NewPermissions(perms int32) Permissions {
	return Permissions{
		Print:            perms&0x04 != 0,
		Modify:           perms&0x08 != 0,
		Copy:             perms&0x10 != 0,
		Annotate:         perms&0x20 != 0,
		FillForms:        perms&0x200 != 0,
		Extract:          perms&0x400 != 0,
		Assemble:         perms&0x800 != 0,
		PrintHighQuality: perms&0x1000 != 0,
	}
}

// NewFullPermissions is what an unencrypted document grants
func NewFullPermissions() Permissions {
	return Permissions{
		Print:            true,
		Modify:           true,
		Copy:             true,
		Annotate:         true,
		FillForms:        true,
		Extract:          true,
		Assemble:         true,
		PrintHighQuality: true,
	}
}

// CanAddFormFields reports whether new widget annotations and fields may be added.
// Adding interactive fields needs bit 6, or bit 4 on viewers that treat field
// creation as content modification.
func (p Permissions) CanAddFormFields() bool {
	return p.Annotate || p.Modify
}

// DeniedOperations lists the operations the document forbids
func (p Permissions) DeniedOperations() []string {
	var denied []string
	for _, op := range []struct {
		name    string
		allowed bool
	}{
		{"print", p.Print},
		{"modify", p.Modify},
		{"copy", p.Copy},
		{"annotate", p.Annotate},
		{"fill_forms", p.FillForms},
		{"extract", p.Extract},
		{"assemble", p.Assemble},
		{"print_high_quality", p.PrintHighQuality},
	} {
		if !op.allowed {
			denied = append(denied, op.name)
		}
	}
	return denied
}

// String returns a human-readable representation of the permissions
func (p Permissions) String() string {
	denied := p.DeniedOperations()
	if len(denied) == 0 {
		return "All permissions granted"
	}
	return fmt.Sprintf("Denied: %s", strings.Join(denied, ", "))
}
