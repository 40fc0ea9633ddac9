package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/samadammeek/core-geonetwork/internal/auth"
	"github.com/samadammeek/core-geonetwork/internal/catalog"
	"github.com/samadammeek/core-geonetwork/internal/domain"
	"github.com/samadammeek/core-geonetwork/internal/feedback"
)

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	size, err := parseSize(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	principal := auth.PrincipalFrom(r.Context())
	publishedOnly := principal == nil

	var items []domain.UserFeedback
	if metadataUUID := strings.TrimSpace(r.URL.Query().Get("metadataUuid")); metadataUUID != "" {
		items, err = s.feedback.ListForRecord(r.Context(), metadataUUID, size, publishedOnly)
	} else {
		items, err = s.feedback.List(r.Context(), size, publishedOnly)
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list feedback failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list user feedback")
		return
	}
	s.respondJSON(w, http.StatusOK, toDTOs(items, principal.IsReviewer()))
}

func (s *Server) handleListRecordFeedback(w http.ResponseWriter, r *http.Request) {
	metadataUUID, err := decodePathParam(r, "metadataUuid")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	size, err := parseSize(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	principal := auth.PrincipalFrom(r.Context())

	items, err := s.feedback.ListForRecord(r.Context(), metadataUUID, size, principal == nil)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("metadata", metadataUUID).Msg("list record feedback failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list user feedback")
		return
	}
	s.respondJSON(w, http.StatusOK, toDTOs(items, principal.IsReviewer()))
}

func (s *Server) handleGetRecordRating(w http.ResponseWriter, r *http.Request) {
	metadataUUID, err := decodePathParam(r, "metadataUuid")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	principal := auth.PrincipalFrom(r.Context())
	if _, ok := s.ensureViewable(w, r, metadataUUID, principal); !ok {
		return
	}

	items, err := s.feedback.ListForRecord(r.Context(), metadataUUID, -1, principal == nil)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("metadata", metadataUUID).Msg("record rating failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute rating")
		return
	}
	avg := feedback.Average(items)
	s.respondJSON(w, http.StatusOK, ratingAverageResponse{
		RatingAverages:    avg.Averages,
		RatingCount:       avg.RatingCount,
		UserfeedbackCount: avg.FeedbackCount,
	})
}

func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := decodePathParam(r, "uuid")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	principal := auth.PrincipalFrom(r.Context())

	fb, err := s.feedback.Get(r.Context(), id, principal == nil)
	if err != nil {
		if errors.Is(err, feedback.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User feedback not found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("uuid", id).Msg("get feedback failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user feedback")
		return
	}
	if _, ok := s.ensureViewable(w, r, fb.MetadataUUID, principal); !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, toDTO(fb, principal.IsReviewer()))
}

func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req userFeedbackDTO
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	principal := auth.PrincipalFrom(r.Context())

	record, ok := s.ensureViewable(w, r, strings.TrimSpace(req.MetadataUUID), principal)
	if !ok {
		return
	}

	fb := fromDTO(req, principal)
	fb.MetadataTitle = record.Title

	saved, err := s.feedback.Save(r.Context(), fb)
	if err != nil {
		if errors.Is(err, feedback.ErrInvalid) {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("metadata", fb.MetadataUUID).Msg("create feedback failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save user feedback")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/%s/userfeedback/%s", apiVersion, url.PathEscape(saved.UUID)))
	s.respondJSON(w, http.StatusCreated, toDTO(saved, true))
}

func (s *Server) handleDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := decodePathParam(r, "uuid")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := s.feedback.Remove(r.Context(), id); err != nil {
		if errors.Is(err, feedback.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User feedback not found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("uuid", id).Msg("delete feedback failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user feedback")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePublishFeedback only reports unknown feedback. Any other failure is
// logged and the request still answers 204.
func (s *Server) handlePublishFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := decodePathParam(r, "uuid")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := s.feedback.Publish(r.Context(), id, auth.PrincipalFrom(r.Context())); err != nil {
		if errors.Is(err, feedback.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User feedback not found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("uuid", id).Msg("publish feedback failed")
	}
	w.WriteHeader(http.StatusNoContent)
}

// ensureViewable asks the catalog whether principal may view the record and
// writes the refusal itself when it may not.
func (s *Server) ensureViewable(w http.ResponseWriter, r *http.Request, metadataUUID string, principal *domain.Principal) (domain.Record, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.cfg.CatalogTimeoutSecs)*time.Second)
	defer cancel()

	record, err := s.catalog.CanView(ctx, metadataUUID, principal)
	switch {
	case err == nil:
		return record, true
	case errors.Is(err, catalog.ErrForbidden):
		s.respondText(w, http.StatusForbidden, msgNotAllowedCanView)
	case errors.Is(err, catalog.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Metadata record not found")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("metadata", metadataUUID).Msg("catalog visibility check failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check record visibility")
	}
	return domain.Record{}, false
}

func decodePathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s", name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}
