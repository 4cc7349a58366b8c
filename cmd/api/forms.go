package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
)

// multipart overhead on top of the image payload
const formOverheadBytes = 1 << 20

// parseMultipart caps the body at files images, kept image references and
// overhead, then parses it. Callers must defer r.MultipartForm.RemoveAll().
func (app *application) parseMultipart(w http.ResponseWriter, r *http.Request, files, keptRefs int) error {
	maxFile := app.config.media.maxFileBytes
	maxBytes := maxFile*int64(files) + media.MaxRefBytes(maxFile)*int64(keptRefs) + formOverheadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return fmt.Errorf("%w: unable to parse form, request limit is %d bytes", catalog.ErrInvalidInput, maxBytes)
	}
	return nil
}

// optionalForm returns a pointer to the field's value, or nil when the field
// was not sent at all. An empty value is kept so updates can clear it.
func optionalForm(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := strings.TrimSpace(vals[0])
	return &v
}

// formFloat parses an optional numeric field.
func formFloat(r *http.Request, key string) (*float64, error) {
	raw := optionalForm(r, key)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", catalog.ErrInvalidInput, key)
	}
	return &v, nil
}

// uploadFiles buffers and stores the images sent under field.
func (app *application) uploadFiles(r *http.Request, field, folder string) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	uploads, err := media.ReadAll(files, app.config.media.maxFileBytes)
	if err != nil {
		return nil, err
	}
	return media.SaveAll(r.Context(), app.media, folder, uploads)
}

// uploadOne stores the single image under field. It returns "" when none was sent.
func (app *application) uploadOne(r *http.Request, field, folder string) (string, error) {
	refs, err := app.uploadFiles(r, field, folder)
	if err != nil || len(refs) == 0 {
		return "", err
	}
	if len(refs) > 1 {
		media.Discard(r.Context(), app.media, refs...)
		return "", fmt.Errorf("%w: only one %s file is allowed", catalog.ErrInvalidInput, field)
	}
	return refs[0], nil
}

type statusPayload struct {
	Status string `json:"status" validate:"required,catalogstatus"`
}

// readStatus decodes and validates a {"status": ...} body.
func readStatus(w http.ResponseWriter, r *http.Request) (catalog.Status, error) {
	var payload statusPayload
	if err := readJSON(w, r, &payload); err != nil {
		return "", err
	}
	if err := Validate.Struct(payload); err != nil {
		return "", errors.New("status must be one of active, blocked")
	}
	return catalog.ParseStatus(payload.Status)
}

// audienceFromQuery treats ?activeOnly=true as the storefront view.
func audienceFromQuery(r *http.Request) catalog.Audience {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("activeOnly")); ok {
		return catalog.AudiencePublic
	}
	return catalog.AudienceAdmin
}
