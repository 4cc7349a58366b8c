package main

import (
	"errors"
	"net/http"

	"zaafa/internal/auth"
)

type loginPayload struct {
	Username       string `json:"username" validate:"required,max=100"`
	Password       string `json:"password" validate:"required,max=72"`
	TurnstileToken string `json:"turnstileToken"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// AdminLogin godoc
//
//	@Summary		Admin login
//	@Description	Exchanges the configured admin credentials for a bearer token.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		loginPayload	true	"Credentials"
//	@Success		200		{object}	tokenResponse
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Router			/admin/login [post]
func (app *application) adminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.verifyTurnstile(r.Context(), payload.TurnstileToken, clientIP(r)); err != nil {
		if errors.Is(err, ErrTurnstileFailed) {
			app.forbiddenResponse(w, r)
			return
		}
		app.serviceUnavailableResponse(w, r, err)
		return
	}

	creds := auth.Credentials{
		User:         app.config.auth.admin.user,
		PasswordHash: app.config.auth.admin.passwordHash,
	}
	if err := creds.Check(payload.Username, payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if app.config.auth.token.secret == "" {
		app.internalServerError(w, r, errors.New("token signing secret is not configured"))
		return
	}

	token, err := app.authenticator.GenerateToken(payload.Username)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, tokenResponse{Token: token})
}
