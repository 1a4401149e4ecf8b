package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/utils"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.UserService.List(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.listUsers").Msg("error listing users")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, users, http.StatusOK)
}

func (h *Handler) upsertUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Str("func", "*Handler.upsertUser").Msg("invalid JSON was passed")
		writeError(w, errInvalidJSON)
		return
	}

	if err := h.services.UserService.Upsert(r.Context(), user); err != nil {
		log.Err(err).Str("func", "*Handler.upsertUser").Str("user_id", user.ID).Msg("error upserting user")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) getUserByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.UserService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}

func (h *Handler) getUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.UserService.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}

func (h *Handler) getAddressByUserID(w http.ResponseWriter, r *http.Request) {
	address, err := h.services.UserService.GetAddressByUserID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, address, http.StatusOK)
}

func (h *Handler) updateUserAddress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	var address models.Address
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		log.Err(err).Str("func", "*Handler.updateUserAddress").Msg("invalid JSON was passed")
		writeError(w, errInvalidJSON)
		return
	}

	if err := h.services.UserService.UpdateAddress(r.Context(), id, address); err != nil {
		log.Err(err).Str("func", "*Handler.updateUserAddress").Str("user_id", id).Msg("error updating address")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) deleteUserByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.services.UserService.DeleteByID(r.Context(), id); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.deleteUserByID").Str("user_id", id).Msg("error deleting user")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
