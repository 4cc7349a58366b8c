package media

import (
	"context"
	"encoding/base64"
)

// dataURIPrefixBytes covers "data:<content type>;base64," for any sniffed type.
const dataURIPrefixBytes = 64

// Inline embeds images in the record as base64 data URIs.
type Inline struct{}

func (Inline) Save(_ context.Context, _ string, u Upload) (string, error) {
	return "data:" + u.ContentType + ";base64," + base64.StdEncoding.EncodeToString(u.Data), nil
}

// Delete is a no-op; the data lives in the record itself.
func (Inline) Delete(context.Context, string) error { return nil }

// MaxRefBytes is the longest reference any driver returns for an image of at
// most maxFileBytes. Inline data URIs are the largest.
func MaxRefBytes(maxFileBytes int64) int64 {
	return int64(base64.StdEncoding.EncodedLen(int(maxFileBytes))) + dataURIPrefixBytes
}
