package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ FileStore = (*LocalStore)(nil)
	_ FileStore = (*S3Store)(nil)
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"fattura.pdf":             "fattura.pdf",
		"../../etc/passwd":        "passwd",
		`C:\Users\mario\doc.pdf`:  "doc.pdf",
		"bolletta luce marzo.pdf": "bolletta_luce_marzo.pdf",
		"...":                     "file",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey("scontrino.jpg", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "2025/03/"))
	assert.True(t, strings.HasSuffix(key, "_scontrino.jpg"))
}

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	p, n, err := store.Store(ctx, strings.NewReader("ricevuta"), "ricevuta.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	rc, err := store.Read(ctx, p)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "ricevuta", string(data))

	require.NoError(t, store.Delete(ctx, p))
	_, err = store.Read(ctx, p)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, p), "deleting twice is not an error")
}

func TestLocalStore_SizeLimit(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	exact := bytes.NewReader(make([]byte, MaxFileSize))
	_, n, err := store.Store(ctx, exact, "exact.bin", "")
	require.NoError(t, err)
	assert.Equal(t, MaxFileSize, n)

	tooBig := bytes.NewReader(make([]byte, MaxFileSize+1))
	_, _, err = store.Store(ctx, tooBig, "big.bin", "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read(context.Background(), "../../secret")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
