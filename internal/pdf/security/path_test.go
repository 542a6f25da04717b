package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	v, err := NewPathValidator("/non/existent/path")
	require.NoError(t, err)
	assert.Equal(t, "/non/existent/path", v.GetConfiguredDirectory())

	_, err = NewPathValidator("")
	assert.Error(t, err)
}

func TestPathValidator_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "subdir")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	validFile := filepath.Join(tempDir, "valid.pdf")
	require.NoError(t, os.WriteFile(validFile, []byte("test"), 0o644))

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{"empty path", "", true},
		{"file in root", validFile, false},
		{"file in subdirectory", filepath.Join(subDir, "sub.pdf"), false},
		{"the directory itself", tempDir, false},
		{"file outside directory", "/etc/passwd", true},
		{"parent directory traversal", filepath.Join(tempDir, "..", "outside.pdf"), true},
		{"sibling with shared prefix", tempDir + "-other/x.pdf", true},
		{"dot segment", filepath.Join(tempDir, ".", "valid.pdf"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePath(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathValidator_Symlinks(t *testing.T) {
	tempDir := t.TempDir()
	outside := t.TempDir()

	target := filepath.Join(tempDir, "target.pdf")
	require.NoError(t, os.WriteFile(target, []byte("test"), 0o644))
	escapeTarget := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(escapeTarget, []byte("test"), 0o644))

	inside := filepath.Join(tempDir, "link.pdf")
	escape := filepath.Join(tempDir, "escape.pdf")
	if err := os.Symlink(target, inside); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(escapeTarget, escape))

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	ok, err := validator.IsPathWithinDirectory(inside)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = validator.IsPathWithinDirectory(escape)
	require.NoError(t, err)
	assert.False(t, ok, "symlink pointing outside must be rejected")
}

func TestPathValidator_NormalizePath(t *testing.T) {
	tempDir := t.TempDir()
	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	got, err := validator.NormalizePath("form.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "form.pdf"), got)

	got, err = validator.NormalizePath("form\x00.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "form.pdf"), got)

	_, err = validator.NormalizePath("../escape.pdf")
	assert.Error(t, err)

	_, err = validator.NormalizePath("\x00")
	assert.Error(t, err)
}

func TestPathValidator_OutputPath(t *testing.T) {
	outDir := t.TempDir()
	validator, err := NewPathValidator(outDir)
	require.NoError(t, err)

	tests := []struct {
		input  string
		suffix string
		want   string
	}{
		{"/src/contract.pdf", "-fillable", "contract-fillable.pdf"},
		{"/src/contract.PDF", "-fillable", "contract-fillable.pdf"},
		{"relative/form.v2.pdf", "_filled", "form.v2_filled.pdf"},
		{"noext", "-x", "noext-x.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validator.OutputPath(tt.input, tt.suffix)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(outDir, tt.want), got)
		})
	}

	_, err = validator.OutputPath("/", "-x")
	assert.Error(t, err)
}
