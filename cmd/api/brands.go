package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
)

type brandPayload struct {
	Name string `validate:"required,max=100"`
}

// ListBrands godoc
//
//	@Summary		List brands (admin)
//	@Tags			Brands
//	@Produce		json
//	@Success		200	{array}		catalog.Brand
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/brands [get]
func (app *application) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	app.listBrands(w, r, catalog.AudienceAdmin)
}

// ListPublicBrands godoc
//
//	@Summary		List active brands
//	@Tags			Brands
//	@Produce		json
//	@Success		200	{array}		catalog.Brand
//	@Failure		500	{object}	error
//	@Router			/brands/user [get]
func (app *application) listPublicBrandsHandler(w http.ResponseWriter, r *http.Request) {
	app.listBrands(w, r, catalog.AudiencePublic)
}

func (app *application) listBrands(w http.ResponseWriter, r *http.Request, audience catalog.Audience) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := app.catalog.ListBrands(ctx, audience)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, items)
}

// GetBrand godoc
//
//	@Summary		Get a brand
//	@Tags			Brands
//	@Produce		json
//	@Param			id			path		string	true	"Brand id"
//	@Param			activeOnly	query		bool	false	"Hide blocked brands"
//	@Success		200			{object}	catalog.Brand
//	@Failure		404			{object}	error
//	@Router			/brands/{id} [get]
func (app *application) getBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	b, err := app.catalog.GetBrand(ctx, chi.URLParam(r, "id"), audienceFromQuery(r))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, b)
}

// CreateBrand godoc
//
//	@Summary		Create a brand
//	@Tags			Brands
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name	formData	string	true	"Name"
//	@Param			image	formData	file	true	"Logo"
//	@Success		201		{object}	catalog.Brand
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/brands [post]
func (app *application) createBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	if err := app.parseMultipart(w, r, 1, 0); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	payload := brandPayload{Name: r.FormValue("name")}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if len(r.MultipartForm.File["image"]) == 0 {
		app.badRequestResponse(w, r, errors.New("brand image is required"))
		return
	}
	ref, err := app.uploadOne(r, "image", "brands")
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	b, err := app.catalog.CreateBrand(ctx, catalog.BrandInput{Name: payload.Name, Image: ref})
	if err != nil {
		media.Discard(context.Background(), app.media, ref)
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, b)
}

// UpdateBrand godoc
//
//	@Summary		Update a brand
//	@Tags			Brands
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Brand id"
//	@Param			name	formData	string	false	"Name"
//	@Param			image	formData	file	false	"Logo"
//	@Success		200		{object}	catalog.Brand
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/brands/{id} [put]
func (app *application) updateBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	current, err := app.catalog.GetBrand(ctx, id, catalog.AudienceAdmin)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	if err := app.parseMultipart(w, r, 1, 0); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := catalog.BrandUpdate{Name: optionalForm(r, "name")}

	ref, err := app.uploadOne(r, "image", "brands")
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	if ref != "" {
		in.Image = &ref
	}

	b, err := app.catalog.UpdateBrand(ctx, id, in)
	if err != nil {
		media.Discard(context.Background(), app.media, ref)
		app.catalogError(w, r, err)
		return
	}

	if ref != "" {
		app.discardLater(current.Image)
	}

	app.jsonResponse(w, http.StatusOK, b)
}

// SetBrandStatus godoc
//
//	@Summary		Block or unblock a brand
//	@Tags			Brands
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Brand id"
//	@Param			payload	body		statusPayload	true	"New status"
//	@Success		200		{object}	catalog.Brand
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/brands/{id}/status [patch]
func (app *application) setBrandStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, err := readStatus(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, err := app.catalog.SetBrandStatus(ctx, chi.URLParam(r, "id"), status)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, b)
}
