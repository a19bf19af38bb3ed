package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load from picking up an inflector.yaml outside the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, rest, err := Load([]string{"plural", "cat"})
	require.NoError(t, err)

	assert.Equal(t, []string{"plural", "cat"}, rest)
	assert.True(t, cfg.Inflection.CacheEnabled)
	assert.False(t, cfg.Inflection.PreserveYStem)
	assert.Empty(t, cfg.Inflection.ExtraUncountable)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 1000, cfg.Server.MaxBatchSize)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "inflector", cfg.Observability.ServiceName)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
	assert.Equal(t, 1.0, cfg.Observability.TraceSampleRatio)

	assert.False(t, cfg.Validate().HasErrors())
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)

	path := writeFile(t, "inflector.yaml", `
inflection:
  extra_uncountable: [moose, bison]
  extra_irregular:
    cactus: cacti
  preserve_y_stem: true
server:
  port: 9090
  shutdown_timeout: 5s
`)

	cfg, _, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, []string{"moose", "bison"}, cfg.Inflection.ExtraUncountable)
	assert.Equal(t, map[string]string{"cactus": "cacti"}, cfg.Inflection.ExtraIrregular)
	assert.True(t, cfg.Inflection.PreserveYStem)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_ConfigFileUnknownKeyRejected(t *testing.T) {
	isolate(t)

	path := writeFile(t, "inflector.yaml", "inflection:\n  plural_rules: []\n")

	_, _, err := Load([]string{"--config", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	isolate(t)

	_, _, err := Load([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)

	path := writeFile(t, "inflector.yaml", "server:\n  port: 7000\n  max_batch_size: 10\n")

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("INFLECTOR_SERVER_PORT", "7100")

		cfg, _, err := Load([]string{"--config", path})
		require.NoError(t, err)
		assert.Equal(t, 7100, cfg.Server.Port)
		assert.Equal(t, 10, cfg.Server.MaxBatchSize)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("INFLECTOR_SERVER_PORT", "7100")

		cfg, _, err := Load([]string{"--config", path, "--server.port", "7200"})
		require.NoError(t, err)
		assert.Equal(t, 7200, cfg.Server.Port)
	})

	t.Run("unset flag does not mask env", func(t *testing.T) {
		t.Setenv("INFLECTOR_INFLECTION_PRESERVE_Y_STEM", "true")

		cfg, _, err := Load([]string{"--config", path})
		require.NoError(t, err)
		assert.True(t, cfg.Inflection.PreserveYStem)
	})
}

func TestLoad_EnvCollections(t *testing.T) {
	isolate(t)
	t.Setenv("INFLECTOR_INFLECTION_EXTRA_UNCOUNTABLE", "moose, bison")
	t.Setenv("INFLECTOR_INFLECTION_EXTRA_IRREGULAR", "cactus=cacti,focus=foci")

	cfg, _, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"moose", "bison"}, cfg.Inflection.ExtraUncountable)
	assert.Equal(t, map[string]string{"cactus": "cacti", "focus": "foci"}, cfg.Inflection.ExtraIrregular)
}

func TestLoad_FlagCollections(t *testing.T) {
	isolate(t)

	cfg, _, err := Load([]string{
		"--inflection.extra_uncountable", "moose",
		"--inflection.extra_uncountable", "bison",
		"--inflection.extra_irregular", "cactus=cacti",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"moose", "bison"}, cfg.Inflection.ExtraUncountable)
	assert.Equal(t, map[string]string{"cactus": "cacti"}, cfg.Inflection.ExtraIrregular)
}

func TestLoadFlags_CallerFlagsStayOutOfConfig(t *testing.T) {
	isolate(t)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	count := fs.Float64("count", 0, "")
	cfg, err := LoadFlags(fs, []string{"plural", "--count", "2", "ox"})
	require.NoError(t, err)

	assert.Equal(t, 2.0, *count)
	assert.Equal(t, []string{"plural", "ox"}, fs.Args())
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_IrregularFile(t *testing.T) {
	isolate(t)

	pairs := writeFile(t, "irregular.txt", `
# extra pairs
cactus = cacti
Focus=foci
`)
	t.Setenv("INFLECTOR_INFLECTION_EXTRA_IRREGULAR", "cactus=cactuses")

	cfg, _, err := Load([]string{"--inflection.extra_irregular_file", pairs})
	require.NoError(t, err)

	// Explicit entries win over the file.
	assert.Equal(t, "cactuses", cfg.Inflection.ExtraIrregular["cactus"])
	assert.Equal(t, "foci", cfg.Inflection.ExtraIrregular["focus"])
}

func TestLoad_IrregularFileErrors(t *testing.T) {
	isolate(t)

	t.Run("missing file", func(t *testing.T) {
		_, _, err := Load([]string{"--inflection.extra_irregular_file", filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read irregular file")
	})

	t.Run("malformed line", func(t *testing.T) {
		path := writeFile(t, "bad.txt", "cactus cacti\n")
		_, _, err := Load([]string{"--inflection.extra_irregular_file", path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("stdin from terminal", func(t *testing.T) {
		orig := stdinIsTerminal
		stdinIsTerminal = func() bool { return true }
		t.Cleanup(func() { stdinIsTerminal = orig })

		_, _, err := Load([]string{"--inflection.extra_irregular_file", "@-"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interactive terminal")
	})
}

func TestParseIrregularPairs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", input: "", want: map[string]string{}},
		{name: "comments and blanks", input: "# c\n\n  \nox=oxen\n", want: map[string]string{"ox": "oxen"}},
		{name: "later line wins", input: "ox=oxes\nox=oxen\n", want: map[string]string{"ox": "oxen"}},
		{name: "missing plural", input: "ox=\n", wantErr: true},
		{name: "missing separator", input: "ox\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIrregularPairs(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
