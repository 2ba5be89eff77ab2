package annotate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("exact method lookup", func(t *testing.T) {
		path := filepath.Join(dir, "notes.yaml")
		content := "methods:\n  \"System.Number:FormatFloat(double):this\": \"Expected after the inliner change.\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		a, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 1, a.Len())

		note, err := a.Annotate(context.Background(), "System.Number:FormatFloat(double):this")
		require.NoError(t, err)
		assert.Equal(t, "Expected after the inliner change.", note)

		note, err = a.Annotate(context.Background(), "System.Number:FormatFloat")
		require.NoError(t, err)
		assert.Empty(t, note)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		a, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("methods: [1, 2"), 0644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestNewFileAnnotator_CopiesInput(t *testing.T) {
	notes := map[string]string{"A:B()": "note"}
	a := NewFileAnnotator(notes)
	notes["A:B()"] = "changed"

	note, err := a.Annotate(context.Background(), "A:B()")
	require.NoError(t, err)
	assert.Equal(t, "note", note)
}
