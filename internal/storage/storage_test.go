package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << >>\n%%EOF\n")

func newUploader(t *testing.T, max int64) (*Uploader, *LocalStore) {
	t.Helper()
	store := NewLocalStore(t.TempDir(), "/uploads")
	return NewUploader(store, max), store
}

func TestUploader_SaveDocument(t *testing.T) {
	ctx := context.Background()
	up, store := newUploader(t, 1<<20)

	url, err := up.SaveDocument(ctx, "prescriptions", FromBytes("rx.PDF", samplePDF))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/prescriptions/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	full := filepath.Join(store.root, strings.TrimPrefix(url, "/uploads/"))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, data)

	require.NoError(t, up.Remove(ctx, url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, up.Remove(ctx, url), "removing twice is not an error")
}

func TestUploader_AcceptsPlainText(t *testing.T) {
	up, _ := newUploader(t, 1<<20)
	_, err := up.SaveDocument(context.Background(), "reports", FromBytes("notes.txt", []byte("BP 120/80, pulse 72")))
	assert.NoError(t, err)
}

func TestUploader_Rejects(t *testing.T) {
	ctx := context.Background()
	up, _ := newUploader(t, 64)
	exe := append([]byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff"), bytes.Repeat([]byte{0}, 40)...)

	_, err := up.SaveDocument(ctx, "bills", FromBytes("setup.exe", exe))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = up.SaveDocument(ctx, "bills", FromBytes("bill.pdf", exe))
	assert.ErrorIs(t, err, ErrUnsupportedType, "content must match an allowed type")

	_, err = up.SaveDocument(ctx, "bills", FromBytes("big.pdf", bytes.Repeat([]byte("a"), 65)))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = up.SaveDocument(ctx, "bills", FromBytes("empty.pdf", nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = up.SaveImage(ctx, "profiles", FromBytes("rx.pdf", samplePDF))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = up.SaveDocument(ctx, "bills", Upload{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUploader_SaveImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	up, _ := newUploader(t, 1<<20)
	url, err := up.SaveImage(context.Background(), "profiles", FromBytes("me.png", png))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/profiles/"))
}

func TestLocalStore_DeleteOutsidePrefix(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "uploads")
	err := store.Delete(context.Background(), "/etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "/uploads", store.urlPrefix)
}

func TestCleanCategory(t *testing.T) {
	assert.Equal(t, "medical-reports", cleanCategory("Medical-Reports"))
	assert.Equal(t, "misc", cleanCategory("../../"))
}
