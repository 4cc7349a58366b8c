// Package media turns uploaded image files into the image references stored
// on catalog records: either inline data URIs or Cloudinary URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// DefaultMaxFileBytes caps a single uploaded image.
const DefaultMaxFileBytes = 5 << 20

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
	ErrEmpty           = errors.New("image is empty")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Upload is one buffered image.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Store persists uploads and returns the reference to keep on the record.
type Store interface {
	Save(ctx context.Context, folder string, u Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Sniff detects the content type from the leading bytes and rejects anything
// that is not a supported image.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mime := http.DetectContentType(head)
	if !allowedTypes[mime] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	return mime, nil
}

// Read buffers and validates one multipart file.
func Read(fh *multipart.FileHeader, maxBytes int64) (Upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if fh.Size > maxBytes {
		return Upload{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, fh.Filename, fh.Size, maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > maxBytes {
		return Upload{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, fh.Filename, maxBytes)
	}

	mime, err := Sniff(data)
	if err != nil {
		return Upload{}, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return Upload{Filename: fh.Filename, ContentType: mime, Data: data}, nil
}

// ReadAll buffers every file, failing on the first invalid one.
func ReadAll(files []*multipart.FileHeader, maxBytes int64) ([]Upload, error) {
	out := make([]Upload, 0, len(files))
	for _, fh := range files {
		u, err := Read(fh, maxBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// SaveAll stores uploads in order. On failure the references already saved
// are deleted before the error is returned.
func SaveAll(ctx context.Context, s Store, folder string, uploads []Upload) ([]string, error) {
	refs := make([]string, 0, len(uploads))
	for _, u := range uploads {
		ref, err := s.Save(ctx, folder, u)
		if err != nil {
			Discard(ctx, s, refs...)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Discard deletes refs, ignoring errors. Used to clean up after a failed write.
func Discard(ctx context.Context, s Store, refs ...string) {
	for _, ref := range refs {
		_ = s.Delete(ctx, ref)
	}
}

// IsInvalid reports whether err came from validating an upload.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrUnsupportedType) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrEmpty)
}

func readerOf(u Upload) io.Reader { return bytes.NewReader(u.Data) }
