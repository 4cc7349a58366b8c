package main

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck godoc
//
//	@Summary		Health check
//	@Description	Reports the build and whether the catalog store answers.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	error
//	@Security		BasicAuth
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := app.catalog.Ping(ctx); err != nil {
		app.serviceUnavailableResponse(w, r, err)
		return
	}

	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
		"store":   app.store.Driver,
	}

	app.jsonResponse(w, http.StatusOK, data)
}
