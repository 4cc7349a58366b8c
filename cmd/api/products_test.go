package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaafa/internal/domain/catalog"
)

func TestBlockedCategoryHidesProducts(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/categories",
		map[string][]string{"name": {"Shoes"}, "description": {"Footwear"}}, map[string]int{"image": 1}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var cat catalog.Category
	decodeData(t, rr, &cat)
	require.NotNil(t, cat.Image)
	assert.True(t, strings.HasPrefix(*cat.Image, "data:image/png;base64,"))

	rr = executeRequest(multipartRequest(t, http.MethodPost, "/api/brands",
		map[string][]string{"name": {"Acme"}}, map[string]int{"image": 1}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var brand catalog.Brand
	decodeData(t, rr, &brand)

	rr = executeRequest(multipartRequest(t, http.MethodPost, "/api/products",
		map[string][]string{
			"name":       {"Runner"},
			"price":      {"1200"},
			"categoryId": {cat.ID},
			"brandId":    {brand.ID},
		}, map[string]int{"images": 4}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var created catalog.ProductView
	decodeData(t, rr, &created)
	assert.Len(t, created.Images, 4)
	assert.Equal(t, catalog.StatusActive, created.Status)

	var page catalog.ProductPage
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/user", nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &page)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Shoes", page.Products[0].Category.Name)

	rr = executeRequest(jsonRequest(t, http.MethodPatch, "/api/categories/"+cat.ID+"/status", map[string]string{"status": "blocked"}), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)

	page = catalog.ProductPage{}
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/user", nil), mux)
	decodeData(t, rr, &page)
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.TotalPages)

	page = catalog.ProductPage{}
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products", nil), mux)
	decodeData(t, rr, &page)
	assert.Len(t, page.Products, 1)
}

func TestCreateProductValidation(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	c, b, _ := seed(t, app, "Existing", 10)

	fields := func(price string) map[string][]string {
		return map[string][]string{
			"name": {"Boot"}, "price": {price}, "categoryId": {c.ID}, "brandId": {b.ID},
		}
	}

	t.Run("three images", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/products", fields("10"), map[string]int{"images": 3}), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr), "exactly 4 images")
	})

	t.Run("price not a number", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/products", fields("cheap"), map[string]int{"images": 4}), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := fields("10")
		f["categoryId"] = []string{"missing"}
		rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/products", f, map[string]int{"images": 4}), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		rr := executeRequest(textFilesRequest(t, fields("10"), 4), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateProductImages(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	_, _, p := seed(t, app, "Sandal", 50)

	t.Run("total must be four", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPut, "/api/products/"+p.ID,
			map[string][]string{"existingImages": p.Images[:2]}, map[string]int{"newFiles": 1}), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("keeps two and adds two", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPut, "/api/products/"+p.ID,
			map[string][]string{"existingImages": p.Images[:2], "price": {"45.5"}}, map[string]int{"newFiles": 2}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		var v catalog.ProductView
		decodeData(t, rr, &v)
		require.Len(t, v.Images, 4)
		assert.Equal(t, p.Images[:2], v.Images[:2])
		assert.True(t, strings.HasPrefix(v.Images[2], "data:image/png"))
		assert.Equal(t, 45.5, v.Price)
		assert.Equal(t, "Sandal", v.Name)
	})

	t.Run("unknown product", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPut, "/api/products/nope",
			map[string][]string{"name": {"x"}}, nil), mux)
		checkResponseCode(t, http.StatusNotFound, rr.Code)
	})
}

func TestUpdateKeepsFullSizeInlineImages(t *testing.T) {
	const maxFile = 1 << 20
	app := newTestApplication(t, func(c *config) { c.media.maxFileBytes = maxFile })
	mux := app.mount()
	c, b, _ := seed(t, app, "Boot", 80)

	images := make([]string, catalog.ProductImageCount)
	for i := range images {
		raw := append(append([]byte{}, pngHeader...), make([]byte, maxFile-len(pngHeader))...)
		raw[len(raw)-1] = byte(i)
		images[i] = "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	}
	p, err := app.catalog.CreateProduct(context.Background(), catalog.ProductInput{
		Name: "Heavy", Price: 10, Images: images, CategoryID: c.ID, BrandID: b.ID,
	})
	require.NoError(t, err)

	rr := executeRequest(multipartRequest(t, http.MethodPut, "/api/products/"+p.ID,
		map[string][]string{"existingImages": images, "name": {"Heavier"}}, nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)

	var v catalog.ProductView
	decodeData(t, rr, &v)
	assert.Equal(t, "Heavier", v.Name)
	assert.Equal(t, images, v.Images)
}

func TestProductPagination(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	c, b, _ := seed(t, app, "P00", 1)
	for i := 1; i < 25; i++ {
		_, err := app.catalog.CreateProduct(context.Background(), catalog.ProductInput{
			Name: fmt.Sprintf("P%02d", i), Price: 1, Images: []string{"a", "b", "c", "d"},
			CategoryID: c.ID, BrandID: b.ID,
		})
		require.NoError(t, err)
	}

	var page catalog.ProductPage
	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/user?limit=10&page=3", nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"totalPages":3`)
	decodeData(t, rr, &page)
	assert.Len(t, page.Products, 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.Pagination.Total)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	page = catalog.ProductPage{}
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/user?limit=1000&page=0", nil), mux)
	decodeData(t, rr, &page)
	assert.Equal(t, 100, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Len(t, page.Products, 25)

	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products?status=archived", nil), mux)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
}

func TestProductStatusAndLookup(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	_, _, p := seed(t, app, "Loafer", 80)

	rr := executeRequest(jsonRequest(t, http.MethodPatch, "/api/products/"+p.ID+"/status", map[string]string{"status": "paused"}), mux)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(jsonRequest(t, http.MethodPatch, "/api/products/"+p.ID+"/status", map[string]string{"status": "Blocked"}), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)

	// the detail route ignores status
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/"+p.ID, nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var v catalog.ProductView
	decodeData(t, rr, &v)
	assert.Equal(t, catalog.StatusBlocked, v.Status)

	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/does-not-exist", nil), mux)
	checkResponseCode(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not found", decodeError(t, rr))
}

func TestRelatedProducts(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	c, b, p := seed(t, app, "Main", 10)
	_, err := app.catalog.CreateProduct(context.Background(), catalog.ProductInput{
		Name: "Sibling", Price: 5, Images: []string{"a", "b", "c", "d"}, CategoryID: c.ID, BrandID: b.ID,
	})
	require.NoError(t, err)

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/"+p.ID+"/related", nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var out struct {
		Products []catalog.ProductView `json:"products"`
	}
	decodeData(t, rr, &out)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "Sibling", out.Products[0].Name)
}
