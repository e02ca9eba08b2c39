package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoStore(t *testing.T) {
	memFs := afero.NewMemMapFs()
	store := NewAferoStore(memFs)
	ctx := context.Background()

	filePath := "avatars/u1/portrait.png"
	fileContent := "not actually a png"

	t.Run("Save", func(t *testing.T) {
		bytesWritten, err := store.Save(ctx, filePath, bytes.NewReader([]byte(fileContent)))
		require.NoError(t, err)
		assert.Equal(t, int64(len(fileContent)), bytesWritten)

		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.True(t, exists, "file should exist after saving")
	})

	t.Run("Open", func(t *testing.T) {
		file, err := store.Open(ctx, filePath)
		require.NoError(t, err)
		defer file.Close()

		readBytes, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Delete(ctx, filePath)
		require.NoError(t, err)

		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.False(t, exists, "file should not exist after deleting")
	})

	t.Run("Open non-existent file", func(t *testing.T) {
		_, err := store.Open(ctx, "nope/missing.png")
		assert.Error(t, err)
	})
}
