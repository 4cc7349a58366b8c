package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"zaafa/internal/domain/catalog"
)

// offerDate accepts both RFC3339 timestamps and the date-only values an
// <input type="date"> posts.
type offerDate struct {
	time.Time
	dateOnly bool
}

func (d *offerDate) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("dates must be strings: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		d.Time, d.dateOnly = t, false
		return nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		d.Time, d.dateOnly = t, true
		return nil
	}
	return fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC3339", raw)
}

func (d *offerDate) ptr() *time.Time {
	if d == nil {
		return nil
	}
	return &d.Time
}

// endOfDay makes a date-only end inclusive: the offer runs through the last
// millisecond of that day. Timestamps are kept as sent.
func (d *offerDate) endOfDay() *offerDate {
	if d == nil || !d.dateOnly || d.IsZero() {
		return d
	}
	return &offerDate{Time: d.AddDate(0, 0, 1).Add(-time.Millisecond)}
}

type createOfferPayload struct {
	Title         string    `json:"title" validate:"required,max=150"`
	Description   *string   `json:"description" validate:"omitempty,max=1000"`
	DiscountType  string    `json:"discountType" validate:"required"`
	DiscountValue float64   `json:"discountValue" validate:"gte=0"`
	StartDate     offerDate `json:"startDate"`
	EndDate       offerDate `json:"endDate"`
	IsActive      *bool     `json:"isActive"`
}

type updateOfferPayload struct {
	Title         *string    `json:"title" validate:"omitempty,max=150"`
	Description   *string    `json:"description" validate:"omitempty,max=1000"`
	DiscountType  *string    `json:"discountType"`
	DiscountValue *float64   `json:"discountValue" validate:"omitempty,gte=0"`
	StartDate     *offerDate `json:"startDate"`
	EndDate       *offerDate `json:"endDate"`
	IsActive      *bool      `json:"isActive"`
}

// ListOffers godoc
//
//	@Summary		List offers (admin)
//	@Tags			Offers
//	@Produce		json
//	@Success		200	{array}		catalog.Offer
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/offers [get]
func (app *application) listOffersHandler(w http.ResponseWriter, r *http.Request) {
	app.listOffers(w, r, catalog.AudienceAdmin)
}

// ListPublicOffers godoc
//
//	@Summary		List active offers
//	@Tags			Offers
//	@Produce		json
//	@Success		200	{array}		catalog.Offer
//	@Failure		500	{object}	error
//	@Router			/offers/user [get]
func (app *application) listPublicOffersHandler(w http.ResponseWriter, r *http.Request) {
	app.listOffers(w, r, catalog.AudiencePublic)
}

func (app *application) listOffers(w http.ResponseWriter, r *http.Request, audience catalog.Audience) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := app.catalog.ListOffers(ctx, audience)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, items)
}

// GetOffer godoc
//
//	@Summary		Get an offer
//	@Tags			Offers
//	@Produce		json
//	@Param			id			path		string	true	"Offer id"
//	@Param			activeOnly	query		bool	false	"Hide inactive offers"
//	@Success		200			{object}	catalog.Offer
//	@Failure		404			{object}	error
//	@Router			/offers/{id} [get]
func (app *application) getOfferHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := app.catalog.GetOffer(ctx, chi.URLParam(r, "id"), audienceFromQuery(r))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, o)
}

// CreateOffer godoc
//
//	@Summary		Create an offer
//	@Tags			Offers
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createOfferPayload	true	"Offer"
//	@Success		201		{object}	catalog.Offer
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/offers [post]
func (app *application) createOfferHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload createOfferPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	o, err := app.catalog.CreateOffer(ctx, catalog.OfferInput{
		Title:         payload.Title,
		Description:   payload.Description,
		DiscountType:  payload.DiscountType,
		DiscountValue: payload.DiscountValue,
		StartDate:     payload.StartDate.Time,
		EndDate:       payload.EndDate.endOfDay().Time,
		IsActive:      payload.IsActive,
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, o)
}

// UpdateOffer godoc
//
//	@Summary		Update an offer
//	@Tags			Offers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Offer id"
//	@Param			payload	body		updateOfferPayload	true	"Fields to change"
//	@Success		200		{object}	catalog.Offer
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/offers/{id} [put]
func (app *application) updateOfferHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload updateOfferPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	o, err := app.catalog.UpdateOffer(ctx, chi.URLParam(r, "id"), catalog.OfferUpdate{
		Title:         payload.Title,
		Description:   payload.Description,
		DiscountType:  payload.DiscountType,
		DiscountValue: payload.DiscountValue,
		StartDate:     payload.StartDate.ptr(),
		EndDate:       payload.EndDate.endOfDay().ptr(),
		IsActive:      payload.IsActive,
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, o)
}

// ToggleOffer godoc
//
//	@Summary		Switch an offer on or off
//	@Tags			Offers
//	@Produce		json
//	@Param			id	path		string	true	"Offer id"
//	@Success		200	{object}	catalog.Offer
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/offers/{id}/toggle [patch]
func (app *application) toggleOfferHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := app.catalog.ToggleOffer(ctx, chi.URLParam(r, "id"))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, o)
}
