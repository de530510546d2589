package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	f := pflag.NewFlagSet("pdparse", pflag.ContinueOnError)
	f.String("format", "summary", "")
	f.Bool("validate", false, "")
	f.Int("port", 8080, "")
	f.Int("jobs", 0, "")
	f.CountP("verbose", "v", "")
	return f
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "summary", cfg.Format)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce)
	assert.False(t, cfg.Validate)
	assert.Empty(t, cfg.File)
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("pd-parser.toml", []byte("format = \"yaml\"\nport = 9000\nvalidate = true\njobs = 2\n"), 0o644))

	t.Setenv("PD_PARSER_PORT", "9100")
	t.Setenv("PD_PARSER_LOG_JSON", "true")

	f := testFlags()
	require.NoError(t, f.Parse([]string{"--jobs", "4", "-vv"}))

	cfg, err := Load(f, "")
	require.NoError(t, err)

	assert.Equal(t, "pd-parser.toml", cfg.File)
	assert.Equal(t, "yaml", cfg.Format, "from file, flag not set")
	assert.True(t, cfg.Validate, "from file")
	assert.Equal(t, 9100, cfg.Port, "env beats file")
	assert.True(t, cfg.LogJSON, "env with dashed key")
	assert.Equal(t, 4, cfg.Jobs, "flag beats file")
	assert.Equal(t, 2, cfg.VerboseCnt)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: true\ndebounce: 1s\nformat: json\n"), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.True(t, cfg.Strict)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		body string
	}{
		{"missing explicit file", filepath.Join(dir, "nope.toml"), ""},
		{"unsupported extension", filepath.Join(dir, "conf.ini"), "port=1"},
		{"bad format value", filepath.Join(dir, "format.toml"), "format = \"xml\"\n"},
		{"bad port", filepath.Join(dir, "port.toml"), "port = 70000\n"},
		{"negative jobs", filepath.Join(dir, "jobs.yaml"), "jobs: -1\n"},
		{"broken toml", filepath.Join(dir, "broken.toml"), "port = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.body != "" {
				require.NoError(t, os.WriteFile(tt.file, []byte(tt.body), 0o644))
			}
			_, err := Load(nil, tt.file)
			assert.Error(t, err)
		})
	}
}
