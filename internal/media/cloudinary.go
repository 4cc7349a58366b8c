package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	prefix string
}

// NewCloudinary builds a driver from a CLOUDINARY_URL. Folders are nested under prefix.
func NewCloudinary(cloudinaryURL, prefix string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, prefix: strings.Trim(prefix, "/")}, nil
}

func (c *Cloudinary) Save(ctx context.Context, folder string, u Upload) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, readerOf(u), uploader.UploadParams{
		Folder:    path.Join(c.prefix, folder),
		PublicID:  uuid.NewString(),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Delete destroys the asset behind a Cloudinary URL. References that are not
// Cloudinary URLs (for example inline data URIs from an earlier driver) are skipped.
func (c *Cloudinary) Delete(ctx context.Context, ref string) error {
	if !strings.HasPrefix(ref, "http") {
		return nil
	}
	publicID, err := PublicID(ref)
	if err != nil {
		return err
	}
	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicID extracts the asset id from a delivery URL: the path after
// "upload/", without the version segment and file extension.
func PublicID(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if versionSegment.MatchString(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), nil
	}
	return "", errors.New("failed to extract public ID from URL")
}
