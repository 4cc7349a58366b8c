package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"zaafa/internal/domain/catalog"
	"zaafa/internal/media"
)

type categoryPayload struct {
	Name        string  `validate:"required,max=100"`
	Description *string `validate:"omitempty,max=1000"`
}

// ListCategories godoc
//
//	@Summary		List categories (admin)
//	@Tags			Categories
//	@Produce		json
//	@Success		200	{array}		catalog.Category
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	app.listCategories(w, r, catalog.AudienceAdmin)
}

// ListPublicCategories godoc
//
//	@Summary		List active categories
//	@Tags			Categories
//	@Produce		json
//	@Success		200	{array}		catalog.Category
//	@Failure		500	{object}	error
//	@Router			/categories/user [get]
func (app *application) listPublicCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	app.listCategories(w, r, catalog.AudiencePublic)
}

func (app *application) listCategories(w http.ResponseWriter, r *http.Request, audience catalog.Audience) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := app.catalog.ListCategories(ctx, audience)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, items)
}

// GetCategory godoc
//
//	@Summary		Get a category
//	@Tags			Categories
//	@Produce		json
//	@Param			id			path		string	true	"Category id"
//	@Param			activeOnly	query		bool	false	"Hide blocked categories"
//	@Success		200			{object}	catalog.Category
//	@Failure		404			{object}	error
//	@Router			/categories/{id} [get]
func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c, err := app.catalog.GetCategory(ctx, chi.URLParam(r, "id"), audienceFromQuery(r))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, c)
}

// CreateCategory godoc
//
//	@Summary		Create a category
//	@Tags			Categories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string	true	"Name"
//	@Param			description	formData	string	false	"Description"
//	@Param			image		formData	file	false	"Image"
//	@Success		201			{object}	catalog.Category
//	@Failure		400			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	if err := app.parseMultipart(w, r, 1, 0); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	payload := categoryPayload{
		Name:        r.FormValue("name"),
		Description: optionalForm(r, "description"),
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ref, err := app.uploadOne(r, "image", "categories")
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	in := catalog.CategoryInput{Name: payload.Name, Description: payload.Description}
	if ref != "" {
		in.Image = &ref
	}

	c, err := app.catalog.CreateCategory(ctx, in)
	if err != nil {
		media.Discard(context.Background(), app.media, ref)
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, c)
}

// UpdateCategory godoc
//
//	@Summary		Update a category
//	@Description	Partial update. A new image replaces the stored one.
//	@Tags			Categories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		string	true	"Category id"
//	@Param			name		formData	string	false	"Name"
//	@Param			description	formData	string	false	"Description"
//	@Param			image		formData	file	false	"Image"
//	@Success		200			{object}	catalog.Category
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/categories/{id} [put]
func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	current, err := app.catalog.GetCategory(ctx, id, catalog.AudienceAdmin)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	if err := app.parseMultipart(w, r, 1, 0); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := catalog.CategoryUpdate{
		Name:        optionalForm(r, "name"),
		Description: optionalForm(r, "description"),
	}

	ref, err := app.uploadOne(r, "image", "categories")
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	if ref != "" {
		in.Image = &ref
	}

	c, err := app.catalog.UpdateCategory(ctx, id, in)
	if err != nil {
		media.Discard(context.Background(), app.media, ref)
		app.catalogError(w, r, err)
		return
	}

	if ref != "" && current.Image != nil {
		app.discardLater(*current.Image)
	}

	app.jsonResponse(w, http.StatusOK, c)
}

// SetCategoryStatus godoc
//
//	@Summary		Block or unblock a category
//	@Description	Blocking hides the category and its products from the storefront.
//	@Tags			Categories
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Category id"
//	@Param			payload	body		statusPayload	true	"New status"
//	@Success		200		{object}	catalog.Category
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/categories/{id}/status [patch]
func (app *application) setCategoryStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, err := readStatus(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	c, err := app.catalog.SetCategoryStatus(ctx, chi.URLParam(r, "id"), status)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, c)
}
