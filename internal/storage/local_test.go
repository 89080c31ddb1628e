package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocal(dir)
	require.NoError(t, err)

	const key = "inventory_images/abc.png"
	content := "png bytes"

	t.Run("put creates nested directories", func(t *testing.T) {
		info, err := store.Put(ctx, key, strings.NewReader(content), PutObjectOptions{
			ContentType: "image/png",
		})

		require.NoError(t, err)
		assert.Equal(t, key, info.Key)
		assert.Equal(t, int64(len(content)), info.Size)

		_, err = os.Stat(filepath.Join(dir, "inventory_images", "abc.png"))
		assert.NoError(t, err)
	})

	t.Run("get streams the stored bytes", func(t *testing.T) {
		rc, info, err := store.Get(ctx, key)
		require.NoError(t, err)
		defer rc.Close()

		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
		assert.Equal(t, int64(len(content)), info.Size)
	})

	t.Run("url is the on-disk path", func(t *testing.T) {
		assert.Equal(t, filepath.Join(dir, "inventory_images", "abc.png"), store.URL(key))
	})

	t.Run("presign is not supported", func(t *testing.T) {
		_, err := store.PresignGet(ctx, key, time.Minute)
		assert.ErrorIs(t, err, ErrPresignNotSupported)
	})

	t.Run("delete removes the file", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))

		_, _, err := store.Get(ctx, key)
		assert.Error(t, err)
	})

	t.Run("empty base directory is rejected", func(t *testing.T) {
		_, err := NewLocal("")
		assert.Error(t, err)
	})
}
