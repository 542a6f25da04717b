package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPermissions(t *testing.T) {
	tests := []struct {
		name     string
		p        int32
		canAdd   bool
		denied   []string
		printing bool
	}{
		{
			name:     "all bits set",
			p:        -4, // 0xFFFFFFFC
			canAdd:   true,
			printing: true,
		},
		{
			name:     "print only",
			p:        0xC4,
			canAdd:   false,
			printing: true,
			denied:   []string{"modify", "copy", "annotate", "fill_forms", "extract", "assemble", "print_high_quality"},
		},
		{
			name:     "fill forms without annotate",
			p:        0x200 | 0x04,
			canAdd:   false,
			printing: true,
			denied:   []string{"modify", "copy", "annotate", "extract", "assemble", "print_high_quality"},
		},
		{
			name:     "modify allows adding fields",
			p:        0x08,
			canAdd:   true,
			printing: false,
			denied:   []string{"print", "copy", "annotate", "fill_forms", "extract", "assemble", "print_high_quality"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perms := NewPermissions(tt.p)
			assert.Equal(t, tt.canAdd, perms.CanAddFormFields())
			assert.Equal(t, tt.printing, perms.Print)
			assert.Equal(t, tt.denied, perms.DeniedOperations())
		})
	}
}

func TestFullPermissions(t *testing.T) {
	perms := NewFullPermissions()
	assert.True(t, perms.CanAddFormFields())
	assert.Empty(t, perms.DeniedOperations())
	assert.Equal(t, "All permissions granted", perms.String())
	assert.Equal(t, "Denied: annotate, fill_forms", Permissions{
		Print: true, Modify: true, Copy: true, Extract: true, Assemble: true, PrintHighQuality: true,
	}.String())
}
