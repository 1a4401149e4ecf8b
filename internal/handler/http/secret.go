// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func (h *Handler) storeSecret(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var body models.CreateSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.storeSecret").Msg("invalid JSON was passed")
		writeError(w, errInvalidJSON)
		return
	}

	id, err := h.services.SecretService.CreateTextSecret(r.Context(), body.Data)
	if err != nil {
		log.Err(err).Str("func", "*Handler.storeSecret").Msg("error creating text secret")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.CreateSecretResponse{ID: id}, http.StatusOK)
}

func (h *Handler) viewSecret(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var body models.SecretIDRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.viewSecret").Msg("invalid JSON was passed")
		writeError(w, errInvalidJSON)
		return
	}

	payload, err := h.services.SecretService.FetchTextSecret(r.Context(), body.ID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.viewSecret").Str("id", body.ID).Msg("error fetching text secret")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, payload, http.StatusOK)
}

func (h *Handler) burnSecret(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var body models.SecretIDRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.burnSecret").Msg("invalid JSON was passed")
		writeError(w, errInvalidJSON)
		return
	}

	if err := h.services.SecretService.DeleteTextSecret(r.Context(), body.ID); err != nil {
		log.Err(err).Str("func", "*Handler.burnSecret").Str("id", body.ID).Msg("error deleting text secret")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// stats answers with the created counter as a bare decimal string.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	created, err := h.services.SecretService.Stats(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.stats").Msg("error reading stats")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(created))
}

func (h *Handler) statsAll(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.SecretService.StatsAll(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.statsAll").Msg("error reading stats")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, stats, http.StatusOK)
}
