package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestValidateImage(t *testing.T) {
	ext, contentType, err := ValidateImage("Photo.PNG", 1024, pngHeader)
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)
	assert.Equal(t, "image/png", contentType)

	_, _, err = ValidateImage("notes.txt", 10, []byte("hello"))
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, _, err = ValidateImage("fake.jpg", 10, []byte("hello"))
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, _, err = ValidateImage("big.png", MaxImageSize+1, pngHeader)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestImageKey(t *testing.T) {
	at := time.UnixMilli(1740823200000)
	assert.Equal(t, "42_1740823200000.png", ImageKey(42, at, ".png"))
}

func TestLocalStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStore(dir, "/public/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := st.Put(ctx, "7_1.png", "image/png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "/public/uploads/7_1.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "7_1.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, st.Delete(ctx, "7_1.png"))
	require.NoError(t, st.Delete(ctx, "7_1.png"))

	_, err = st.Put(ctx, "../escape.png", "image/png", bytes.NewReader(pngHeader), 1)
	require.Error(t, err)
	require.Error(t, st.Delete(ctx, "nested/dir.png"))
}
