package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigtable2/internal/schema"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvSchema, EnvDebug, EnvChunkSize, EnvFile} {
		t.Setenv(env, "") // registers restore on cleanup
		require.NoError(t, os.Unsetenv(env))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(content), 0o600))
	return fname
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	opts, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "product", opts.Schema)
	assert.Equal(t, schema.Product, opts.Revision())
	assert.Equal(t, 2048, opts.ChunkSize)
	assert.False(t, opts.Debug)
	assert.Empty(t, opts.File)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSchema, "greeting")
	t.Setenv(EnvChunkSize, "16")
	t.Setenv(EnvDebug, "true")

	opts, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, schema.Greeting, opts.Revision())
	assert.Equal(t, 16, opts.ChunkSize)
	assert.True(t, opts.Debug)
}

func TestLoadArgs(t *testing.T) {
	clearEnv(t)
	opts, err := Load([]string{"--schema=catalog", "--chunk-size", "100"})
	require.NoError(t, err)
	assert.Equal(t, schema.Catalog, opts.Revision())
	assert.Equal(t, 100, opts.ChunkSize)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		fname   string
		content string
	}{
		{name: "yaml", fname: "bigtable2.yml", content: "schema: catalog\nchunk_size: 8\ndebug: true\n"},
		{name: "yaml long ext", fname: "bigtable2.yaml", content: "schema: catalog\nchunk_size: 8\ndebug: true\n"},
		{name: "no ext is yaml", fname: "bigtable2", content: "schema: catalog\nchunk_size: 8\ndebug: true\n"},
		{name: "toml", fname: "bigtable2.toml", content: "schema = \"catalog\"\nchunk_size = 8\ndebug = true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvFile, writeFile(t, tt.fname, tt.content))

			opts, err := Load(nil)
			require.NoError(t, err)
			assert.Equal(t, schema.Catalog, opts.Revision())
			assert.Equal(t, 8, opts.ChunkSize)
			assert.True(t, opts.Debug)
		})
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFile, writeFile(t, "c.yml", "schema: catalog\nchunk_size: 8\n"))
	t.Setenv(EnvSchema, "greeting")

	opts, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, schema.Greeting, opts.Revision(), "env wins over file")
	assert.Equal(t, 8, opts.ChunkSize, "file wins over default")

	opts, err = Load([]string{"--chunk-size=4"})
	require.NoError(t, err)
	assert.Equal(t, 4, opts.ChunkSize, "args win over file")
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name   string
		fname  string
		errMsg string
	}{
		{name: "missing file", fname: "", errMsg: "can't read config"},
		{name: "unknown yaml field", fname: writeFile(t, "c.yml", "rows: 5\n"), errMsg: "can't unmarshal yaml config"},
		{name: "bad toml", fname: writeFile(t, "c.toml", "schema = \n"), errMsg: "can't unmarshal toml config"},
		{name: "unknown format", fname: writeFile(t, "c.json", "{}"), errMsg: "unknown config format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			fname := tt.fname
			if fname == "" {
				fname = filepath.Join(t.TempDir(), "missing.yml")
			}
			t.Setenv(EnvFile, fname)
			_, err := Load(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSchema, "bigtable")
	t.Setenv(EnvChunkSize, "0")

	_, err := Load(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnknownRevision)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "chunk size 0 out of range")

	o := Options{Schema: "product", ChunkSize: 2048}
	assert.NoError(t, o.Validate())
	o = Options{Schema: "nope"}
	assert.Equal(t, schema.Product, o.Revision(), "invalid schema falls back to default")
}

func TestSettings(t *testing.T) {
	defer SetRevision(Revision())

	assert.Equal(t, schema.Default, Revision())
	SetRevision(schema.Greeting)
	assert.Equal(t, schema.Greeting, Revision())
	SetRevision(schema.Catalog)
	assert.Equal(t, schema.Catalog, Revision())
}
