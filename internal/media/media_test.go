package media

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeaders(t *testing.T, field string, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		w, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field]
}

func TestSniff(t *testing.T) {
	mime, err := Sniff(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = Sniff([]byte("GIF89a....."))
	assert.NoError(t, err)

	_, err = Sniff([]byte("hello, plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Sniff(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRead(t *testing.T) {
	fhs := fileHeaders(t, "images", map[string][]byte{"a.png": pngHeader})
	require.Len(t, fhs, 1)

	u, err := Read(fhs[0], 0)
	require.NoError(t, err)
	assert.Equal(t, "a.png", u.Filename)
	assert.Equal(t, "image/png", u.ContentType)
	assert.Equal(t, pngHeader, u.Data)

	_, err = Read(fhs[0], 4)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.True(t, IsInvalid(err))
}

func TestReadAllRejectsText(t *testing.T) {
	fhs := fileHeaders(t, "images", map[string][]byte{"notes.txt": []byte("not an image")})
	_, err := ReadAll(fhs, 0)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestInlineSave(t *testing.T) {
	ref, err := Inline{}.Save(context.Background(), "products", Upload{ContentType: "image/png", Data: []byte("abc")})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,YWJj", ref)
	assert.NoError(t, Inline{}.Delete(context.Background(), ref))
}

func TestMaxRefBytesFitsInlineRef(t *testing.T) {
	data := make([]byte, 1000)
	ref, err := Inline{}.Save(context.Background(), "products", Upload{ContentType: "image/webp", Data: data})
	require.NoError(t, err)
	assert.LessOrEqual(t, int64(len(ref)), MaxRefBytes(int64(len(data))))
	assert.Greater(t, MaxRefBytes(1000), int64(1000))
}

func TestPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1700000000/zaafa/products/abc.jpg": "zaafa/products/abc",
		"https://res.cloudinary.com/demo/image/upload/brands/logo.png":                    "brands/logo",
	}
	for in, want := range cases {
		got, err := PublicID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := PublicID("https://example.com/images/a.png")
	assert.Error(t, err)
}

type flakyStore struct {
	failAt  int
	saved   []string
	deleted []string
}

func (f *flakyStore) Save(_ context.Context, folder string, u Upload) (string, error) {
	if len(f.saved) == f.failAt {
		return "", errors.New("upstream down")
	}
	ref := folder + "/" + u.Filename
	f.saved = append(f.saved, ref)
	return ref, nil
}

func (f *flakyStore) Delete(_ context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func TestSaveAllRollsBack(t *testing.T) {
	s := &flakyStore{failAt: 2}
	uploads := []Upload{{Filename: "1"}, {Filename: "2"}, {Filename: "3"}}

	_, err := SaveAll(context.Background(), s, "products", uploads)
	require.Error(t, err)
	assert.Equal(t, []string{"products/1", "products/2"}, s.deleted)

	s = &flakyStore{failAt: -1}
	refs, err := SaveAll(context.Background(), s, "products", uploads)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
	assert.True(t, strings.HasPrefix(refs[0], "products/"))
}
