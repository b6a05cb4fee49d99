// Package handlers provides HTTP handlers for the planner REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/infrastructure/http/middleware"
	"github.com/jenz26/Chef-Generator/internal/ports/inbound"
	"github.com/jenz26/Chef-Generator/pkg/errors"
)

const maxBodyBytes = 1 << 20

// APIHandlers handles planner API requests
type APIHandlers struct {
	service inbound.PlannerService
	logger  *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(service inbound.PlannerService, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		service: service,
		logger:  logger.Named("api-handlers"),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Routes mounts the v1 routes on r
func (h *APIHandlers) Routes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/segments", h.ListSegments)
		r.Get("/templates", h.ListTemplates)
		r.Get("/ingredients", h.ListIngredients)
		r.Get("/ingredients/{name}/partners", h.TopPartners)
		r.Get("/compatibility", h.CheckCompatibility)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/proposals", h.ProposeVariants)
			r.Post("/menu", h.AddToMenu)
			r.Delete("/menu/{itemID}", h.RemoveFromMenu)
			r.Get("/analysis", h.AnalyzeMenu)
			r.Post("/recommendations", h.RecommendUnlocks)
		})
	})
}

// ListSegments handles GET /api/v1/catalog/segments
func (h *APIHandlers) ListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.service.ListSegments(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: segments})
}

// ListTemplates handles GET /api/v1/catalog/templates
func (h *APIHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: templates})
}

// ListIngredients handles GET /api/v1/catalog/ingredients?tag=&q=
func (h *APIHandlers) ListIngredients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ingredients, err := h.service.ListIngredients(r.Context(), inbound.IngredientQuery{
		Tag:    q.Get("tag"),
		Search: q.Get("q"),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: ingredients})
}

// TopPartners handles GET /api/v1/catalog/ingredients/{name}/partners?limit=
func (h *APIHandlers) TopPartners(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.handleError(w, r, errors.NewValidationError("limit must be an integer").WithMetadata("limit", raw))
			return
		}
		limit = parsed
	}

	partners, err := h.service.TopPartners(r.Context(), name, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: partners})
}

// CheckCompatibility handles GET /api/v1/catalog/compatibility?template=&anchor=
func (h *APIHandlers) CheckCompatibility(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.CheckCompatibility(r.Context(), q.Get("template"), q.Get("anchor"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// CreateSession handles POST /api/v1/sessions
func (h *APIHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.CreateSessionCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	sess, err := h.service.CreateSession(r.Context(), cmd)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID.String())
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: sess, Message: "Session created"})
}

// GetSession handles GET /api/v1/sessions/{id}
func (h *APIHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: sess})
}

// DeleteSession handles DELETE /api/v1/sessions/{id}
func (h *APIHandlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSession(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProposeVariants handles POST /api/v1/sessions/{id}/proposals
func (h *APIHandlers) ProposeVariants(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var cmd inbound.ProposeCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = id

	batch, err := h.service.ProposeVariants(r.Context(), cmd)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: batch})
}

// AddToMenu handles POST /api/v1/sessions/{id}/menu
func (h *APIHandlers) AddToMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var cmd inbound.AddToMenuCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = id

	item, err := h.service.AddToMenu(r.Context(), cmd)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: item, Message: "Added to menu"})
}

// RemoveFromMenu handles DELETE /api/v1/sessions/{id}/menu/{itemID}
func (h *APIHandlers) RemoveFromMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(w, r, "itemID")
	if !ok {
		return
	}
	if err := h.service.RemoveFromMenu(r.Context(), id, itemID); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AnalyzeMenu handles GET /api/v1/sessions/{id}/analysis?all=
func (h *APIHandlers) AnalyzeMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	all := false
	if raw := r.URL.Query().Get("all"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.handleError(w, r, errors.NewValidationError("all must be a boolean").WithMetadata("all", raw))
			return
		}
		all = parsed
	}

	analysis, err := h.service.AnalyzeMenu(r.Context(), id, all)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: analysis})
}

// RecommendUnlocks handles POST /api/v1/sessions/{id}/recommendations
func (h *APIHandlers) RecommendUnlocks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var cmd inbound.RecommendCommand
	if r.ContentLength != 0 && !h.decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = id

	recs, err := h.service.RecommendUnlocks(r.Context(), cmd)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recs})
}

// decode reads a JSON body into dst; unknown fields are rejected.
func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			h.handleError(w, r, errors.NewBadRequestError("request body is required"))
			return false
		}
		h.handleError(w, r, errors.NewBadRequestError("invalid JSON body").WithCause(err).WithMetadata("reason", err.Error()))
		return false
	}
	return true
}

func (h *APIHandlers) pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.handleError(w, r, errors.NewValidationError(param+" must be a UUID").WithMetadata(param, raw))
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps any error onto the JSON error envelope
func (h *APIHandlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "An unexpected error occurred")
	requestID := chimiddleware.GetReqID(r.Context())

	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
			zap.String("stack", appErr.StackTrace),
		)
	} else {
		h.logger.Debug("Request rejected",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.String("details", appErr.Details),
		)
	}
	middleware.WriteError(w, appErr, requestID)
}

// writeJSON writes a JSON response
func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
