package main

import (
	"context"
	"net/http"
	"time"
)

// Search godoc
//
//	@Summary		Autocomplete search
//	@Description	Categories and products whose name contains the query, case-insensitively.
//	@Tags			Search
//	@Produce		json
//	@Param			query	query		string	true	"Search text"
//	@Success		200		{object}	catalog.SearchResult
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/search [get]
func (app *application) searchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := app.catalog.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, res)
}
