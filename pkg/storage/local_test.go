package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSavesUnderBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, zerolog.Nop())
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "request_7/abc_note.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, "request_7/abc_note.txt", path)

	content, err := os.ReadFile(filepath.Join(dir, "request_7", "abc_note.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape.txt", strings.NewReader("nope"))
	require.Error(t, err)

	_, err = store.Save(context.Background(), "/etc/passwd", strings.NewReader("nope"))
	require.Error(t, err)

	_, err = store.Save(context.Background(), " ", strings.NewReader("nope"))
	require.Error(t, err)
}

func TestNewLocalRequiresBaseDir(t *testing.T) {
	_, err := NewLocal("", zerolog.Nop())
	require.Error(t, err)
}
