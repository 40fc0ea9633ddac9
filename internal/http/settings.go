package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

// writableSettings lists the settings exposed over HTTP and their accepted values.
var writableSettings = map[string][]string{
	domain.SettingLocalRatingEnable: {domain.RatingsOff, domain.RatingsBasic, domain.RatingsAdvanced},
}

type settingRequest struct {
	Value string `json:"value" validate:"required"`
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(chi.URLParam(r, "*"), "/")
	allowed, ok := writableSettings[name]
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown setting")
		return
	}

	var req settingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	value := strings.TrimSpace(req.Value)
	if !contains(allowed, value) {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "value must be one of "+strings.Join(allowed, ", "))
		return
	}

	if err := s.settings.Set(r.Context(), name, value); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("setting", name).Msg("update setting failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
