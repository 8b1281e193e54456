package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/asyncdao/internal/config"
	"github.com/syssam/asyncdao/internal/daotest"
)

const schema = `
name: vertx
dialect: sqlite
tables:
  - name: something
    primary_key: [someId]
    columns:
      - name: someId
        type: integer
        auto_increment: true
      - name: someString
        type: text
        nullable: true
`

func execute(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(fs, log.New(io.Discard))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), ".env")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(b)
}

// sqliteDB creates a database file holding the fixture tables.
func sqliteDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vertx.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(daotest.Schema)
	require.NoError(t, err)
	return path
}

func TestGenerateSchema(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeFile(t, "schema.yaml", schema)

	_, err := execute(t, fs, "generate",
		"--schema", path,
		"--package", "github.com/acme/app/vertx",
		"--target", "/out",
		"--flavor", "rx",
		"--feature", "tables",
	)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, fs, "/out/something_dao.go"), "*rx.DAO[*Something, int32]")
	assert.Contains(t, readFile(t, fs, "/out/something.go"), "FromJSON")
	assert.Contains(t, readFile(t, fs, "/out/tables.go"), "something.Table")
}

func TestGenerateConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeFile(t, "schema.yaml", schema)
	cfg := writeFile(t, "asyncdao.yaml", `
schema: `+path+`
package: github.com/acme/app/vertx
target: /from-file
flavor: future
json: true
`)

	_, err := execute(t, fs, "generate", "--config", cfg, "--target", "/from-flag", "--no-json")
	require.NoError(t, err)
	dao := readFile(t, fs, "/from-flag/something_dao.go")
	assert.Contains(t, dao, "*future.DAO[*Something, int32]")
	assert.NotContains(t, readFile(t, fs, "/from-flag/something.go"), "FromJSON")
	exists, _ := afero.DirExists(fs, "/from-file")
	assert.False(t, exists)
}

func TestGenerateEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	t.Setenv("ASYNCDAO_SCHEMA", writeFile(t, "schema.yaml", schema))
	t.Setenv("ASYNCDAO_PACKAGE", "github.com/acme/app/vertx")
	t.Setenv("ASYNCDAO_TARGET", "/env")
	t.Setenv("ASYNCDAO_FLAVOR", "future")

	_, err := execute(t, fs, "generate", "--flavor", "classic")
	require.NoError(t, err)
	assert.Contains(t, readFile(t, fs, "/env/something_dao.go"), "*classic.DAO[*Something, int32]")
}

func TestGenerateDSN(t *testing.T) {
	fs := afero.NewMemMapFs()
	db := sqliteDB(t)

	_, err := execute(t, fs, "generate",
		"--dsn", db,
		"--dialect", "sqlite",
		"--tables", "something",
		"--converter", "something.someJsonObject=json_object",
		"--package", "github.com/acme/app/vertx",
		"--target", "/out",
	)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, fs, "/out/something.go"), "jsonx.ObjectConverter{}")
	assert.Contains(t, readFile(t, fs, "/out/something_dao.go"), "*classic.DAO[*Something, int32]")
	exists, _ := afero.Exists(fs, "/out/somethingcomposite.go")
	assert.False(t, exists, "only the selected tables are generated")
}

func TestGenerateErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeFile(t, "schema.yaml", schema)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing package", []string{"--schema", path}, "package is required"},
		{"missing source", []string{"--package", "a/b"}, "one of schema or dsn"},
		{"unknown flavor", []string{"--schema", path, "--package", "a/b", "--flavor", "promise"}, "promise"},
		{"unknown feature", []string{"--schema", path, "--package", "a/b", "--feature", "privacy"}, "privacy"},
		{"watch without schema", []string{"--dsn", "x.db", "--dialect", "sqlite", "--package", "a/b", "--watch"}, "--watch"},
		{"missing schema", []string{"--schema", path + ".missing", "--package", "a/b", "--target", "/out"}, "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, fs, append([]string{"generate"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInspect(t *testing.T) {
	fs := afero.NewMemMapFs()
	db := sqliteDB(t)

	out, err := execute(t, fs, "inspect", "--dsn", db, "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "name: something\n")
	assert.Contains(t, out, "name: somethingComposite")

	_, err = execute(t, fs, "inspect", "--dsn", db, "--dialect", "sqlite", "--tables", "somethingComposite", "-o", "/schema.yaml")
	require.NoError(t, err)
	written := readFile(t, fs, "/schema.yaml")
	assert.Contains(t, written, "somethingComposite")
	assert.NotContains(t, written, "name: something\n")

	_, err = execute(t, fs, "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvPrefix+"DSN")

	_, err = execute(t, fs, "inspect", "--dsn", db, "--dialect", "oracle")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, afero.NewMemMapFs(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "asyncdao ")
	assert.Contains(t, out, "go1.")
}

func TestTargetDir(t *testing.T) {
	assert.Equal(t, "vertx", targetDir(&config.Config{Package: "github.com/acme/app/vertx"}))
	assert.Equal(t, "gen", targetDir(&config.Config{Package: "github.com/acme/app/vertx", Target: "gen"}))
}
