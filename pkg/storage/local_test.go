package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLocalUploadWritesBelowPublicBase(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewLocal(fs, "uploads/", zerolog.Nop())

	url, err := store.Upload(context.Background(), "receipts/slip.png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/receipts/"))
	require.True(t, strings.HasSuffix(url, "-slip.png"))

	stored := strings.TrimPrefix(url, "/uploads/")
	content, err := afero.ReadFile(fs, stored)
	require.NoError(t, err)
	require.Equal(t, "png", string(content))

	file, err := store.FileSystem().Open("/" + stored)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}

func TestLocalUploadRejectsTraversal(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewLocal(fs, "/uploads", zerolog.Nop())

	url, err := store.Upload(context.Background(), "../../etc/passwd", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/etc/"))

	_, err = store.Upload(context.Background(), "media/", bytes.NewReader(nil))
	require.Error(t, err)
}
