package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"zaafa/internal/domain/catalog"
	"zaafa/internal/sharelink"
)

// shareProductHandler serves the Open Graph preview that chat apps scrape
// before the browser is redirected to the storefront.
func (app *application) shareProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	v, err := app.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.logger.Warnw("share page for missing product", "id", id)
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		app.logger.Errorw("share page failed", "id", id, "error", err.Error())
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	page := sharelink.NewPage(v.Name, v.EffectivePrice, v.Description, v.Images, sharelink.ProductURL(app.config.storefrontURL, v.ID))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		app.logger.Errorw("render share page", "id", id, "error", err.Error())
	}
}

// shortLinkHandler resolves /s/{code} to the share page.
func (app *application) shortLinkHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.shortLinks.Decode(chi.URLParam(r, "code"))
	if err != nil {
		app.logger.Warnw("bad short link", "code", chi.URLParam(r, "code"), "error", err.Error())
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	http.Redirect(w, r, "/share/"+url.PathEscape(id), http.StatusFound)
}

type whatsAppLink struct {
	URL      string `json:"url"`
	Message  string `json:"message"`
	ShareURL string `json:"shareUrl"`
}

// WhatsAppLink godoc
//
//	@Summary		WhatsApp purchase link
//	@Description	Deep link to the shop owner with a prefilled message naming the product and its effective price.
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		string	true	"Product id"
//	@Success		200	{object}	whatsAppLink
//	@Failure		404	{object}	error
//	@Router			/products/{id}/whatsapp [get]
func (app *application) whatsAppLinkHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	v, err := app.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	code, err := app.shortLinks.Encode(v.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	msg := sharelink.PurchaseMessage(v.Name, v.EffectivePrice, sharelink.ProductURL(app.config.storefrontURL, v.ID))
	app.jsonResponse(w, http.StatusOK, whatsAppLink{
		URL:      sharelink.WhatsAppURL(app.config.share.ownerNumber, msg),
		Message:  msg,
		ShareURL: app.config.apiURL + "/s/" + code,
	})
}
