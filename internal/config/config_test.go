package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("ASYNCDAO_TEST_TARGET", "gen/vertx")
	path := filepath.Join(t.TempDir(), "asyncdao.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema: schema.yaml
package: github.com/acme/app/vertx
target: ${ASYNCDAO_TEST_TARGET}
flavor: rx
json: false
features: [providers]
converters:
  something.someJsonObject: json_object
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "schema.yaml", c.Schema)
	assert.Equal(t, "gen/vertx", c.Target)
	assert.Equal(t, "rx", c.FlavorName())
	assert.False(t, c.JSONEnabled())
	assert.Equal(t, []string{"providers"}, c.Features)
	assert.Equal(t, map[string]string{"something.someJsonObject": "json_object"}, c.Converters)
	require.NoError(t, c.Validate())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadBytes([]byte("schema: ["))
	require.Error(t, err)
}

func TestLoadDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, c)
	assert.True(t, c.JSONEnabled())
	assert.Equal(t, "classic", c.FlavorName())

	require.NoError(t, os.WriteFile(DefaultFile, []byte("package: example.com/x/db\n"), 0o644))
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "example.com/x/db", c.Package)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ASYNCDAO_DSN":      "root@tcp(localhost)/vertx",
		"ASYNCDAO_DIALECT":  "mariadb",
		"ASYNCDAO_TABLES":   "something, somethingComposite,",
		"ASYNCDAO_JSON":     "true",
		"ASYNCDAO_WORKERS":  "4",
		"ASYNCDAO_FLAVOR":   "",
		"ASYNCDAO_PACKAGE":  "github.com/acme/app/vertx",
		"ASYNCDAO_FEATURES": "providers,tables",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	c := &Config{Flavor: "future"}
	require.NoError(t, c.ApplyEnv(lookup))
	assert.Equal(t, "root@tcp(localhost)/vertx", c.DSN)
	assert.Equal(t, []string{"something", "somethingComposite"}, c.Tables)
	assert.Equal(t, []string{"providers", "tables"}, c.Features)
	assert.True(t, c.JSONEnabled())
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "future", c.Flavor, "empty variables are ignored")

	driver, err := c.DriverName()
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	require.NoError(t, c.Validate())

	env["ASYNCDAO_WORKERS"] = "many"
	require.Error(t, c.ApplyEnv(lookup))
	env["ASYNCDAO_WORKERS"] = "1"
	env["ASYNCDAO_JSON"] = "maybe"
	require.Error(t, c.ApplyEnv(lookup))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ASYNCDAO_TEST_PACKAGE=example.com/from/env\n"), 0o644))
	t.Setenv("ASYNCDAO_TEST_PACKAGE", "")
	require.NoError(t, os.Unsetenv("ASYNCDAO_TEST_PACKAGE"))

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "example.com/from/env", os.Getenv("ASYNCDAO_TEST_PACKAGE"))
}

func TestDriverName(t *testing.T) {
	tests := map[string]string{
		"mysql":      "mysql",
		"postgresql": "postgres",
		"pgx":        "postgres",
		"sqlite3":    "sqlite",
	}
	for in, want := range tests {
		got, err := (&Config{Dialect: in}).DriverName()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := (&Config{}).DriverName()
	require.Error(t, err)
	_, err = (&Config{Dialect: "oracle"}).DriverName()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of schema or dsn")
	assert.Contains(t, err.Error(), "package is required")

	err = (&Config{Schema: "s.yaml", DSN: "x", Package: "p"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	err = (&Config{DSN: "x", Dialect: "oracle", Package: "p", Workers: -1}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
	assert.Contains(t, err.Error(), "negative")
}
