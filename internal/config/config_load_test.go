package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags gives each test a fresh flag set and viper instance
func resetFlags(t *testing.T, args ...string) {
	t.Helper()

	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		pflag.CommandLine = pflag.NewFlagSet(originalArgs[0], pflag.ExitOnError)
		viper.Reset()
	})

	os.Args = append([]string{"docuseal-to-pdf"}, args...)
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	viper.Reset()
}

func TestLoadFromFlags_Defaults(t *testing.T) {
	dir := t.TempDir()
	resetFlags(t, "--dir="+dir)

	cfg, err := LoadFromFlags()
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultOutputSuffix, cfg.OutputSuffix)
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, dir, cfg.OutputDirectory, "output directory falls back to the PDF directory")
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	resetFlags(t,
		"--mode=server",
		"--host=0.0.0.0",
		"--port=9090",
		"--dir="+in,
		"--outdir="+out,
		"--suffix=-form",
		"--loglevel=debug",
		"--maxfilesize=2048",
	)

	cfg, err := LoadFromFlags()
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, in, cfg.PDFDirectory)
	assert.Equal(t, out, cfg.OutputDirectory)
	assert.Equal(t, "-form", cfg.OutputSuffix)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCUSEAL_PDF_MODE", "server")
	t.Setenv("DOCUSEAL_PDF_HOST", "192.168.1.1")
	t.Setenv("DOCUSEAL_PDF_PORT", "3000")
	t.Setenv("DOCUSEAL_PDF_DIR", dir)
	t.Setenv("DOCUSEAL_PDF_SUFFIX", "_filled")
	t.Setenv("DOCUSEAL_PDF_LOGLEVEL", "warn")
	t.Setenv("DOCUSEAL_PDF_MAXFILESIZE", "200000000")
	resetFlags(t)

	cfg, err := LoadFromFlags()
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, "192.168.1.1", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, "_filled", cfg.OutputSuffix)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, int64(200000000), cfg.MaxFileSize)
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCUSEAL_PDF_MODE", "server")
	t.Setenv("DOCUSEAL_PDF_PORT", "3000")
	resetFlags(t, "--mode=stdio", "--port=8888", "--dir="+dir)

	cfg, err := LoadFromFlags()
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, 8888, cfg.Port)
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"mode", []string{"--mode=invalid"}, "mode must be"},
		{"port", []string{"--mode=server", "--port=0"}, "port must be"},
		{"log level", []string{"--loglevel=loud"}, "invalid log level"},
		{"suffix", []string{"--suffix=a/b"}, "path separators"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t, append(tt.args, "--dir="+t.TempDir())...)

			_, err := LoadFromFlags()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	resetFlags(t, "--version")

	_, err := LoadFromFlags()
	assert.ErrorIs(t, err, ErrVersionRequested)
}
