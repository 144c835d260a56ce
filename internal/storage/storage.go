// Package storage keeps uploaded prescriptions, reports, bills and profile
// pictures on local disk or in MongoDB GridFS.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrTooLarge        = errors.New("file is too large")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNotFound        = errors.New("file not found")
)

// FileStore persists bytes and returns the URL they are served from.
type FileStore interface {
	Put(ctx context.Context, category, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// FileInfo describes a stored file for streaming back to clients.
type FileInfo struct {
	Name        string
	ContentType string
	Size        int64
}

// Streamer is implemented by stores that serve files themselves instead of
// through a static directory.
type Streamer interface {
	Stat(ctx context.Context, id string) (FileInfo, error)
	Stream(ctx context.Context, id string, w io.Writer) error
}

// Upload is a file received from a client.
type Upload struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

func FromFileHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Name: fh.Filename,
		Size: fh.Size,
		open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func FromBytes(name string, data []byte) Upload {
	return Upload{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func (u Upload) IsZero() bool { return u.open == nil }

var (
	documentExtensions = set(".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt")
	imageExtensions    = set(".jpg", ".jpeg", ".png", ".gif", ".webp")
)

// Office formats that mimetype may only resolve to their container type.
var officeContainers = map[string][]string{
	"application/zip":           {".docx", ".xlsx", ".pptx"},
	"application/x-ole-storage": {".doc", ".xls", ".ppt"},
}

func set(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// Uploader checks extension, size and sniffed content before storing.
type Uploader struct {
	store    FileStore
	maxBytes int64
}

func NewUploader(store FileStore, maxBytes int64) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes}
}

// SaveDocument stores a clinical attachment (pdf, office, txt).
func (u *Uploader) SaveDocument(ctx context.Context, category string, up Upload) (string, error) {
	return u.save(ctx, category, up, documentExtensions)
}

// SaveImage stores a profile picture.
func (u *Uploader) SaveImage(ctx context.Context, category string, up Upload) (string, error) {
	return u.save(ctx, category, up, imageExtensions)
}

func (u *Uploader) Remove(ctx context.Context, url string) error {
	return u.store.Delete(ctx, url)
}

func (u *Uploader) save(ctx context.Context, category string, up Upload, allowed map[string]bool) (string, error) {
	if up.IsZero() {
		return "", ErrEmptyFile
	}
	ext := strings.ToLower(filepath.Ext(up.Name))
	if !allowed[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, up.Name)
	}
	if up.Size > u.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, up.Name, u.maxBytes)
	}

	rc, err := up.open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	head := make([]byte, 3072)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyFile, up.Name)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !sniffAllowed(detected, ext, allowed) {
		return "", fmt.Errorf("%w: %s looks like %s", ErrUnsupportedType, up.Name, detected.String())
	}

	body := &limitedReader{r: io.MultiReader(bytes.NewReader(head), rc), remaining: u.maxBytes}
	return u.store.Put(ctx, category, up.Name, detected.String(), body)
}

func sniffAllowed(detected *mimetype.MIME, ext string, allowed map[string]bool) bool {
	for m := detected; m != nil; m = m.Parent() {
		if allowed[m.Extension()] {
			return true
		}
		for container, exts := range officeContainers {
			if !m.Is(container) {
				continue
			}
			for _, e := range exts {
				if e == ext {
					return true
				}
			}
		}
	}
	return false
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
