package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	key, err := s.Save(context.Background(), strings.NewReader("png-bytes"), "logos/c1/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "logos/c1/logo.png", key)
	assert.Equal(t, "/uploads/logos/c1/logo.png", s.URL(key))

	content, err := os.ReadFile(filepath.Join(dir, "logos", "c1", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, s.Remove(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, "logos", "c1", "logo.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(context.Background(), key), "removing twice is fine")
}

func TestLocalStorage_TraversalStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	key, err := s.Save(context.Background(), strings.NewReader("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)
	_, err = os.Stat(filepath.Join(dir, "etc", "passwd"))
	assert.NoError(t, err)
}

func TestLocalStorage_EmptyKey(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = s.Save(context.Background(), strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
