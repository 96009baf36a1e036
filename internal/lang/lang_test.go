package lang_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclash/judge/internal/lang"
)

func TestDefaultRegistry(t *testing.T) {
	r := lang.DefaultRegistry()
	assert.Equal(t, []string{"cpp17", "java21", "python3"}, r.IDs())

	cpp, ok := r.Get("cpp17")
	require.True(t, ok)
	require.NotNil(t, cpp.CompileCmd)
	assert.Equal(t, "main.cpp", cpp.CodeFilename)

	py, ok := r.Get("python3")
	require.True(t, ok)
	assert.Nil(t, py.CompileCmd, "interpreted language has no compile step")

	_, ok = r.Get("cobol")
	assert.False(t, ok)
}

func TestLoadTOMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "langs.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[languages]]
id = "python3"
lang_name = "PyPy 3"
code_fname = "main.py"
exec_cmd = "pypy3 main.py"

[[languages]]
id = "rust"
lang_name = "Rust"
code_fname = "main.rs"
compile_cmd = "rustc -O -o main main.rs"
compiled_fname = "main"
exec_cmd = "./main"
`), 0644))

	r := lang.DefaultRegistry()
	require.NoError(t, r.LoadTOML(path))

	// existing id replaced
	py, ok := r.Get("python3")
	require.True(t, ok)
	assert.Equal(t, "PyPy 3", py.Name)
	assert.Equal(t, "pypy3 main.py", py.ExecCmd)

	// new id added
	rust, ok := r.Get("rust")
	require.True(t, ok)
	require.NotNil(t, rust.CompileCmd)
	assert.Equal(t, "rustc -O -o main main.rs", *rust.CompileCmd)
	require.NotNil(t, rust.CompiledFilename)
	assert.Equal(t, "main", *rust.CompiledFilename)
}

func TestLoadTOMLIncompleteEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "langs.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[languages]]
id = "broken"
lang_name = "Broken"
`), 0644))

	r := lang.DefaultRegistry()
	assert.Error(t, r.LoadTOML(path))
}

func TestLoadTOMLMissingFile(t *testing.T) {
	r := lang.DefaultRegistry()
	assert.Error(t, r.LoadTOML(filepath.Join(t.TempDir(), "nope.toml")))
}
