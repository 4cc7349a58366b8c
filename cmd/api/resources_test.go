package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaafa/internal/domain/catalog"
)

func TestCategoryHandlers(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/categories",
		map[string][]string{"name": {"Bags"}}, nil), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var c catalog.Category
	decodeData(t, rr, &c)
	assert.Nil(t, c.Image)

	t.Run("duplicate name in another case", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/categories",
			map[string][]string{"name": {"BAGS"}}, nil), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr), "already exists")
	})

	t.Run("name required", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/categories",
			map[string][]string{"description": {"no name"}}, nil), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("update replaces image", func(t *testing.T) {
		rr := executeRequest(multipartRequest(t, http.MethodPut, "/api/categories/"+c.ID,
			map[string][]string{"description": {"Totes and more"}}, map[string]int{"image": 1}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
		var got catalog.Category
		decodeData(t, rr, &got)
		assert.Equal(t, "Bags", got.Name)
		require.NotNil(t, got.Description)
		assert.Equal(t, "Totes and more", *got.Description)
		assert.NotNil(t, got.Image)
	})

	t.Run("blocked hidden from storefront", func(t *testing.T) {
		rr := executeRequest(jsonRequest(t, http.MethodPatch, "/api/categories/"+c.ID+"/status", map[string]string{"status": "blocked"}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		var public []catalog.Category
		rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/categories/user", nil), mux)
		decodeData(t, rr, &public)
		assert.Empty(t, public)

		var all []catalog.Category
		rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/categories", nil), mux)
		decodeData(t, rr, &all)
		assert.Len(t, all, 1)

		rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/categories/"+c.ID+"?activeOnly=true", nil), mux)
		checkResponseCode(t, http.StatusNotFound, rr.Code)

		rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/categories/"+c.ID, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown status body field", func(t *testing.T) {
		rr := executeRequest(jsonRequest(t, http.MethodPatch, "/api/categories/"+c.ID+"/status", map[string]string{"state": "active"}), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBrandRequiresImage(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/brands",
		map[string][]string{"name": {"Acme"}}, nil), mux)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "brand image is required", decodeError(t, rr))

	rr = executeRequest(multipartRequest(t, http.MethodPost, "/api/brands",
		map[string][]string{"name": {"Acme"}}, map[string]int{"image": 2}), mux)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(multipartRequest(t, http.MethodPost, "/api/brands",
		map[string][]string{"name": {"Acme"}}, map[string]int{"image": 1}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var b catalog.Brand
	decodeData(t, rr, &b)

	rr = executeRequest(multipartRequest(t, http.MethodPut, "/api/brands/"+b.ID,
		map[string][]string{"name": {"Acme Co"}}, nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var updated catalog.Brand
	decodeData(t, rr, &updated)
	assert.Equal(t, "Acme Co", updated.Name)
	assert.Equal(t, b.Image, updated.Image)
}

func TestOfferHandlers(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(jsonRequest(t, http.MethodPost, "/api/offers", map[string]any{
		"title":         "Summer Sale",
		"discountType":  "percentage",
		"discountValue": 20,
		"startDate":     "2020-01-01",
		"endDate":       "2999-12-31T23:59:59Z",
	}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var o catalog.Offer
	decodeData(t, rr, &o)
	assert.True(t, o.IsActive)
	assert.Equal(t, catalog.DiscountPercentage, o.DiscountType)

	t.Run("validation", func(t *testing.T) {
		cases := map[string]map[string]any{
			"bad type":       {"title": "A", "discountType": "bogo", "discountValue": 1, "startDate": "2020-01-01", "endDate": "2020-02-01"},
			"over 100":       {"title": "B", "discountType": "percentage", "discountValue": 150, "startDate": "2020-01-01", "endDate": "2020-02-01"},
			"end before":     {"title": "C", "discountType": "flat", "discountValue": 5, "startDate": "2020-02-01", "endDate": "2020-01-01"},
			"bad date":       {"title": "D", "discountType": "flat", "discountValue": 5, "startDate": "01/02/2020", "endDate": "2020-03-01"},
			"duplicate":      {"title": "summer sale", "discountType": "flat", "discountValue": 5, "startDate": "2020-01-01", "endDate": "2020-02-01"},
			"unknown fields": {"title": "E", "discount": 5},
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				rr := executeRequest(jsonRequest(t, http.MethodPost, "/api/offers", body), mux)
				checkResponseCode(t, http.StatusBadRequest, rr.Code)
			})
		}
	})

	t.Run("fixed is an alias for flat", func(t *testing.T) {
		rr := executeRequest(jsonRequest(t, http.MethodPut, "/api/offers/"+o.ID, map[string]any{
			"discountType": "fixed", "discountValue": 100,
		}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
		var got catalog.Offer
		decodeData(t, rr, &got)
		assert.Equal(t, catalog.DiscountFlat, got.DiscountType)
		assert.Equal(t, "Summer Sale", got.Title)
	})

	t.Run("toggle twice", func(t *testing.T) {
		var got catalog.Offer
		rr := executeRequest(httptest.NewRequest(http.MethodPatch, "/api/offers/"+o.ID+"/toggle", nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
		decodeData(t, rr, &got)
		assert.False(t, got.IsActive)

		rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/offers/"+o.ID+"?activeOnly=true", nil), mux)
		checkResponseCode(t, http.StatusNotFound, rr.Code)

		rr = executeRequest(httptest.NewRequest(http.MethodPatch, "/api/offers/"+o.ID+"/toggle", nil), mux)
		decodeData(t, rr, &got)
		assert.True(t, got.IsActive)

		var public []catalog.Offer
		rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/offers/user", nil), mux)
		decodeData(t, rr, &public)
		assert.Len(t, public, 1)
	})

	rr = executeRequest(httptest.NewRequest(http.MethodPatch, "/api/offers/missing/toggle", nil), mux)
	checkResponseCode(t, http.StatusNotFound, rr.Code)
}

func TestOfferPricesProducts(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	_, _, p := seed(t, app, "Jacket", 1000)

	rr := executeRequest(jsonRequest(t, http.MethodPost, "/api/offers", map[string]any{
		"title": "Ten Off", "discountType": "percentage", "discountValue": 10,
		"startDate": "2020-01-01", "endDate": "2999-01-01",
	}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var o catalog.Offer
	decodeData(t, rr, &o)

	rr = executeRequest(multipartRequest(t, http.MethodPut, "/api/products/"+p.ID,
		map[string][]string{"offerId": {o.ID}}, nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var v catalog.ProductView
	decodeData(t, rr, &v)
	require.NotNil(t, v.Offer)
	assert.Equal(t, 900.0, v.EffectivePrice)

	// empty offerId detaches the offer
	rr = executeRequest(multipartRequest(t, http.MethodPut, "/api/products/"+p.ID,
		map[string][]string{"offerId": {""}}, nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	v = catalog.ProductView{}
	decodeData(t, rr, &v)
	assert.Nil(t, v.OfferID)
	assert.Equal(t, 1000.0, v.EffectivePrice)
}

func TestHeroImageHandlers(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(multipartRequest(t, http.MethodPost, "/api/hero-images", nil, nil), mux)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(multipartRequest(t, http.MethodPost, "/api/hero-images", nil, map[string]int{"image": 1}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var h catalog.HeroImage
	decodeData(t, rr, &h)
	assert.True(t, h.IsActive)

	rr = executeRequest(httptest.NewRequest(http.MethodPatch, "/api/hero-images/"+h.ID+"/toggle", nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)

	var public []catalog.HeroImage
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/hero-images/user", nil), mux)
	decodeData(t, rr, &public)
	assert.Empty(t, public)

	var all []catalog.HeroImage
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/hero-images", nil), mux)
	decodeData(t, rr, &all)
	assert.Len(t, all, 1)
}

func TestSearchHandler(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	seed(t, app, "Shoe Rack", 30)

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/search?query=sho", nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var res catalog.SearchResult
	decodeData(t, rr, &res)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Shoe Rack", res.Products[0].Name)
	assert.Equal(t, "product", res.Products[0].Type)
	require.NotNil(t, res.Products[0].Category)
	assert.Equal(t, "Cat Shoe Rack", *res.Products[0].Category)
	require.Len(t, res.Categories, 1)

	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/search", nil), mux)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "query is required", decodeError(t, rr))
}

func TestDateOnlyOfferCoversItsLastDay(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()
	_, _, p := seed(t, app, "Parka", 1000)

	today := time.Now().UTC().Format(time.DateOnly)
	rr := executeRequest(jsonRequest(t, http.MethodPost, "/api/offers", map[string]any{
		"title": "One Day", "discountType": "percentage", "discountValue": 10,
		"startDate": today, "endDate": today,
	}), mux)
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var o catalog.Offer
	decodeData(t, rr, &o)
	assert.Equal(t, today, o.EndDate.UTC().Format(time.DateOnly))
	assert.Equal(t, 23, o.EndDate.UTC().Hour())

	rr = executeRequest(multipartRequest(t, http.MethodPut, "/api/products/"+p.ID,
		map[string][]string{"offerId": {o.ID}}, nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)

	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/products/"+p.ID, nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var v catalog.ProductView
	decodeData(t, rr, &v)
	assert.Equal(t, 900.0, v.EffectivePrice)

	var public []catalog.Offer
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/api/offers/user", nil), mux)
	decodeData(t, rr, &public)
	assert.Len(t, public, 1)

	// an explicit timestamp is kept as sent
	rr = executeRequest(jsonRequest(t, http.MethodPut, "/api/offers/"+o.ID, map[string]any{
		"endDate": today + "T00:00:00Z",
	}), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &o)
	assert.Equal(t, 0, o.EndDate.UTC().Hour())
}
