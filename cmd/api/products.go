package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
	"zaafa/internal/params"
)

func productFilter(r *http.Request) (catalog.ProductFilter, error) {
	q := r.URL.Query()
	p := params.ParsePagination(q)
	f := catalog.ProductFilter{
		Page:       p.Page,
		Limit:      p.Limit,
		CategoryID: q.Get("category"),
		BrandID:    q.Get("brand"),
		Search:     q.Get("search"),
	}
	if raw := q.Get("status"); raw != "" {
		s, err := catalog.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}
	return f, nil
}

// ListProducts godoc
//
//	@Summary		List products (admin)
//	@Description	Paginated product list with category, brand and offer resolved. Includes blocked records.
//	@Tags			Products
//	@Produce		json
//	@Param			page		query		int		false	"Page (default 1)"
//	@Param			limit		query		int		false	"Page size (default 12, max 100)"
//	@Param			category	query		string	false	"Category id"
//	@Param			brand		query		string	false	"Brand id"
//	@Param			search		query		string	false	"Case-insensitive name substring"
//	@Param			status		query		string	false	"active or blocked"
//	@Success		200			{object}	catalog.ProductPage
//	@Failure		400			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	app.listProducts(w, r, catalog.AudienceAdmin)
}

// ListPublicProducts godoc
//
//	@Summary		List storefront products
//	@Description	Active products whose category and brand are active. Offers outside their window are omitted.
//	@Tags			Products
//	@Produce		json
//	@Param			page		query		int		false	"Page (default 1)"
//	@Param			limit		query		int		false	"Page size (default 12, max 100)"
//	@Param			category	query		string	false	"Category id"
//	@Param			brand		query		string	false	"Brand id"
//	@Param			search		query		string	false	"Case-insensitive name substring"
//	@Success		200			{object}	catalog.ProductPage
//	@Failure		500			{object}	error
//	@Router			/products/user [get]
func (app *application) listPublicProductsHandler(w http.ResponseWriter, r *http.Request) {
	app.listProducts(w, r, catalog.AudiencePublic)
}

func (app *application) listProducts(w http.ResponseWriter, r *http.Request, audience catalog.Audience) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	f, err := productFilter(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, err := app.catalog.ListProducts(ctx, f, audience)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, page)
}

// GetProduct godoc
//
//	@Summary		Get a product
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		string	true	"Product id"
//	@Success		200	{object}	catalog.ProductView
//	@Failure		404	{object}	error
//	@Router			/products/{id} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	v, err := app.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, v)
}

// RelatedProducts godoc
//
//	@Summary		Related products
//	@Description	Storefront products from the same category, excluding the product itself.
//	@Tags			Products
//	@Produce		json
//	@Param			id		path		string	true	"Product id"
//	@Param			limit	query		int		false	"Max results (default 12)"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		404		{object}	error
//	@Router			/products/{id}/related [get]
func (app *application) relatedProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := app.catalog.RelatedProducts(ctx, chi.URLParam(r, "id"), limit)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{"products": items})
}

type createProductPayload struct {
	Name        string  `validate:"required,max=200"`
	Price       float64 `validate:"gte=0"`
	Description *string `validate:"omitempty,max=5000"`
	CategoryID  string  `validate:"required"`
	BrandID     string  `validate:"required"`
	OfferID     *string
}

// CreateProduct godoc
//
//	@Summary		Create a product
//	@Description	Multipart form with exactly four image files.
//	@Tags			Products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string	true	"Name"
//	@Param			price		formData	number	true	"Price"
//	@Param			description	formData	string	false	"Description"
//	@Param			categoryId	formData	string	true	"Category id"
//	@Param			brandId		formData	string	true	"Brand id"
//	@Param			offerId		formData	string	false	"Offer id"
//	@Param			images		formData	file	true	"Four product images"
//	@Success		201			{object}	catalog.ProductView
//	@Failure		400			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := app.parseMultipart(w, r, catalog.ProductImageCount, 0); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	price, err := formFloat(r, "price")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if price == nil {
		app.badRequestResponse(w, r, fmt.Errorf("price is required"))
		return
	}

	payload := createProductPayload{
		Name:        r.FormValue("name"),
		Price:       *price,
		Description: optionalForm(r, "description"),
		CategoryID:  r.FormValue("categoryId"),
		BrandID:     r.FormValue("brandId"),
		OfferID:     optionalForm(r, "offerId"),
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if n := len(r.MultipartForm.File["images"]); n != catalog.ProductImageCount {
		app.badRequestResponse(w, r, fmt.Errorf("exactly %d images are required, got %d", catalog.ProductImageCount, n))
		return
	}
	images, err := app.uploadFiles(r, "images", "products")
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	v, err := app.catalog.CreateProduct(ctx, catalog.ProductInput{
		Name:        payload.Name,
		Price:       payload.Price,
		Description: payload.Description,
		Images:      images,
		CategoryID:  payload.CategoryID,
		BrandID:     payload.BrandID,
		OfferID:     payload.OfferID,
	})
	if err != nil {
		// clean up uploads the record never claimed
		media.Discard(context.Background(), app.media, images...)
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, v)
}

// UpdateProduct godoc
//
//	@Summary		Update a product
//	@Description	Partial multipart update. existingImages plus newFiles must total four when either is sent.
//	@Tags			Products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id				path		string	true	"Product id"
//	@Param			name			formData	string	false	"Name"
//	@Param			price			formData	number	false	"Price"
//	@Param			description		formData	string	false	"Description"
//	@Param			categoryId		formData	string	false	"Category id"
//	@Param			brandId			formData	string	false	"Brand id"
//	@Param			offerId			formData	string	false	"Offer id, empty to clear"
//	@Param			existingImages	formData	[]string	false	"Image references to keep"
//	@Param			newFiles		formData	file	false	"New images"
//	@Success		200				{object}	catalog.ProductView
//	@Failure		400				{object}	error
//	@Failure		404				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/{id} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	current, err := app.catalog.GetProduct(ctx, id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	if err := app.parseMultipart(w, r, catalog.ProductImageCount, catalog.ProductImageCount); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	price, err := formFloat(r, "price")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	in := catalog.ProductUpdate{
		Name:        optionalForm(r, "name"),
		Price:       price,
		Description: optionalForm(r, "description"),
		CategoryID:  optionalForm(r, "categoryId"),
		BrandID:     optionalForm(r, "brandId"),
		OfferID:     optionalForm(r, "offerId"),
	}

	existing := r.MultipartForm.Value["existingImages"]
	newFiles := r.MultipartForm.File["newFiles"]
	var uploaded []string
	if len(existing) > 0 || len(newFiles) > 0 {
		if total := len(existing) + len(newFiles); total != catalog.ProductImageCount {
			app.badRequestResponse(w, r, fmt.Errorf("exactly %d images are required, got %d", catalog.ProductImageCount, total))
			return
		}
		uploaded, err = app.uploadFiles(r, "newFiles", "products")
		if err != nil {
			app.catalogError(w, r, err)
			return
		}
		in.Images = append(append([]string{}, existing...), uploaded...)
	}

	v, err := app.catalog.UpdateProduct(ctx, id, in)
	if err != nil {
		media.Discard(context.Background(), app.media, uploaded...)
		app.catalogError(w, r, err)
		return
	}

	if in.Images != nil {
		app.discardLater(dropped(current.Images, in.Images)...)
	}

	app.jsonResponse(w, http.StatusOK, v)
}

// dropped lists the references in before that are absent from after.
func dropped(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, ref := range after {
		keep[ref] = true
	}
	var out []string
	for _, ref := range before {
		if !keep[ref] {
			out = append(out, ref)
		}
	}
	return out
}

// SetProductStatus godoc
//
//	@Summary		Block or unblock a product
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Product id"
//	@Param			payload	body		statusPayload	true	"New status"
//	@Success		200		{object}	catalog.Product
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/{id}/status [patch]
func (app *application) setProductStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, err := readStatus(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p, err := app.catalog.SetProductStatus(ctx, chi.URLParam(r, "id"), status)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, p)
}
