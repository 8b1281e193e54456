package compiler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/asyncdao/compiler/gen"
	"github.com/syssam/asyncdao/compiler/gen/async"
	"github.com/syssam/asyncdao/compiler/load"
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

func options(fs afero.Fs) []gen.Option {
	return []gen.Option{
		gen.WithPackage("github.com/acme/app/vertx"),
		gen.WithTarget("/out"),
		gen.WithFlavor(async.Future),
		gen.WithFs(fs),
		gen.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func writeSchema(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestGenerate(t *testing.T) {
	s, err := load.Parse([]byte(schema))
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, Generate(context.Background(), s, options(fs)...))

	for _, name := range []string{"something.go", "something_dao.go", "something/something.go"} {
		exists, err := afero.Exists(fs, filepath.Join("/out", name))
		require.NoError(t, err)
		assert.True(t, exists, name)
	}
	b, err := afero.ReadFile(fs, "/out/something_dao.go")
	require.NoError(t, err)
	assert.Contains(t, string(b), "*future.DAO[*Something, int32]")
}

func TestGenerateErrors(t *testing.T) {
	s, err := load.Parse([]byte(schema))
	require.NoError(t, err)

	err = Generate(context.Background(), s, gen.WithTarget("/out"))
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))

	_, err = LoadGraph(s, nil)
	assert.True(t, gen.IsConfigError(err))

	err = GenerateFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), options(afero.NewMemMapFs())...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	writeSchema(t, path, schema)

	fs := afero.NewMemMapFs()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, options(fs)...) }()

	assert.Eventually(t, func() bool {
		ok, _ := afero.Exists(fs, "/out/something.go")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	writeSchema(t, path, schema+`
  - name: other
    primary_key: [id]
    columns:
      - name: id
        type: integer
`)
	assert.Eventually(t, func() bool {
		ok, _ := afero.Exists(fs, "/out/other_dao.go")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
