package controllers

import (
	"net/http"

	"github.com/drobeapp/drobe-backend/api/responses"
	"github.com/drobeapp/drobe-backend/internal/recommend"
	"github.com/drobeapp/drobe-backend/internal/weather"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/drobeapp/drobe-backend/pkg/logger"
)

// Weather returns the current reading from the upstream weather process.
func Weather(client weather.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "weather client unavailable"))
			return
		}

		reading, err := client.Fetch(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reading)
	}
}

// Recommendations relays the upstream recommendation document to the caller.
func Recommendations(client recommend.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recommendation client unavailable"))
			return
		}

		doc, err := client.Fetch(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}
