package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zaafa/internal/auth"
	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
	"zaafa/internal/metrics"
	"zaafa/internal/ratelimiter"
	"zaafa/internal/sharelink"
	"zaafa/internal/store"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestApplication(t *testing.T, mutate ...func(*config)) *application {
	t.Helper()

	cfg := config{
		env:           "test",
		apiURL:        "http://api.test",
		storefrontURL: "http://shop.test",
		media:         mediaConfig{driver: "inline", maxFileBytes: media.DefaultMaxFileBytes},
		auth: authConfig{
			basic: basicConfig{user: "ops", pass: "secret"},
			token: tokenConfig{secret: "test-secret", exp: time.Hour, iss: "zaafa"},
		},
		share:       shareConfig{ownerNumber: "+91 97453 70909", salt: "test"},
		rateLimiter: ratelimiter.Config{RequestsPerTimeFrame: 100, TimeFrame: time.Minute},
	}
	for _, m := range mutate {
		m(&cfg)
	}

	container := store.NewMemoryContainer()
	logger := zap.NewNop().Sugar()

	codec, err := sharelink.NewCodec(cfg.share.salt, 6)
	require.NoError(t, err)

	limiter := ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame)
	t.Cleanup(limiter.Stop)

	return &application{
		config:        cfg,
		store:         container,
		catalog:       catalog.NewService(container.Catalog, logger),
		media:         media.Inline{},
		logger:        logger,
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.iss, cfg.auth.token.iss, cfg.auth.token.exp),
		rateLimiter:   limiter,
		metrics:       metrics.New(),
		shortLinks:    codec,
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected the response code to be %d and we got %d", expected, actual)
	}
}

// decodeData unwraps the {"data": ...} envelope into v.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.False(t, env.Success)
	return env.Message
}

// multipartRequest builds a form with the given fields and n PNG files per file field.
func multipartRequest(t *testing.T, method, target string, fields map[string][]string, files map[string]int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vals := range fields {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for field, n := range files {
		for i := 0; i < n; i++ {
			fw, err := mw.CreateFormFile(field, fmt.Sprintf("%s-%d.png", field, i))
			require.NoError(t, err)
			_, err = fw.Write(append(append([]byte{}, pngHeader...), byte(i)))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// seed creates an active category, brand and product through the service.
func seed(t *testing.T, app *application, product string, price float64) (*catalog.Category, *catalog.Brand, *catalog.ProductView) {
	t.Helper()
	ctx := context.Background()

	c, err := app.catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Cat " + product})
	require.NoError(t, err)
	b, err := app.catalog.CreateBrand(ctx, catalog.BrandInput{Name: "Brand " + product, Image: "https://img.test/brand.png"})
	require.NoError(t, err)
	p, err := app.catalog.CreateProduct(ctx, catalog.ProductInput{
		Name:       product,
		Price:      price,
		Images:     []string{"https://img.test/1.png", "https://img.test/2.png", "https://img.test/3.png", "https://img.test/4.png"},
		CategoryID: c.ID,
		BrandID:    b.ID,
	})
	require.NoError(t, err)
	return c, b, p
}

// textFilesRequest posts n plain-text files as product images.
func textFilesRequest(t *testing.T, fields map[string][]string, n int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vals := range fields {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for i := 0; i < n; i++ {
		fw, err := mw.CreateFormFile("images", fmt.Sprintf("notes-%d.txt", i))
		require.NoError(t, err)
		_, err = fw.Write([]byte("just some text"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
