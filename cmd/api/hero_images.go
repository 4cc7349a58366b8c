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

// ListHeroImages godoc
//
//	@Summary		List hero images (admin)
//	@Tags			HeroImages
//	@Produce		json
//	@Success		200	{array}		catalog.HeroImage
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/hero-images [get]
func (app *application) listHeroImagesHandler(w http.ResponseWriter, r *http.Request) {
	app.listHeroImages(w, r, catalog.AudienceAdmin)
}

// ListPublicHeroImages godoc
//
//	@Summary		List active hero images
//	@Tags			HeroImages
//	@Produce		json
//	@Success		200	{array}		catalog.HeroImage
//	@Failure		500	{object}	error
//	@Router			/hero-images/user [get]
func (app *application) listPublicHeroImagesHandler(w http.ResponseWriter, r *http.Request) {
	app.listHeroImages(w, r, catalog.AudiencePublic)
}

func (app *application) listHeroImages(w http.ResponseWriter, r *http.Request, audience catalog.Audience) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := app.catalog.ListHeroImages(ctx, audience)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, items)
}

// CreateHeroImage godoc
//
//	@Summary		Upload a hero image
//	@Tags			HeroImages
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Banner image"
//	@Success		201		{object}	catalog.HeroImage
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/hero-images [post]
func (app *application) createHeroImageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	if err := app.parseMultipart(w, r, 1, 0); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	ref, err := app.uploadOne(r, "image", "hero")
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	if ref == "" {
		app.badRequestResponse(w, r, errors.New("image is required"))
		return
	}

	h, err := app.catalog.CreateHeroImage(ctx, ref)
	if err != nil {
		media.Discard(context.Background(), app.media, ref)
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, h)
}

// ToggleHeroImage godoc
//
//	@Summary		Show or hide a hero image
//	@Tags			HeroImages
//	@Produce		json
//	@Param			id	path		string	true	"Hero image id"
//	@Success		200	{object}	catalog.HeroImage
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/hero-images/{id}/toggle [patch]
func (app *application) toggleHeroImageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	h, err := app.catalog.ToggleHeroImage(ctx, chi.URLParam(r, "id"))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, h)
}
