// Package handlers provides the REST API handlers
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthymeal/v2/internal/ports/inbound"
	"github.com/healthymeal/v2/pkg/errors"
)

// userIDHeader carries the authenticated user's identity, set by the
// upstream auth gateway. Authentication itself is out of scope here.
const userIDHeader = "X-User-ID"

// ModificationHandler handles AI recipe modification requests
type ModificationHandler struct {
	service inbound.ModificationService
	logger  *zap.Logger
}

// NewModificationHandler creates a new modification handler
func NewModificationHandler(service inbound.ModificationService, logger *zap.Logger) *ModificationHandler {
	return &ModificationHandler{
		service: service,
		logger:  logger.Named("modification-handler"),
	}
}

// ModifyRecipe handles POST /api/v1/recipes/{recipeID}/modify
func (h *ModificationHandler) ModifyRecipe(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.Header.Get(userIDHeader))
	if err != nil {
		h.writeError(w, r, errors.NewAppError(errors.CodeUnauthorized, "Missing or invalid user identity", ""))
		return
	}

	recipeID, err := uuid.Parse(chi.URLParam(r, "recipeID"))
	if err != nil {
		h.writeError(w, r, errors.NewBadRequestError("Invalid recipe ID"))
		return
	}

	modified, err := h.service.ModifyRecipe(r.Context(), userID, recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(modified); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps application errors onto HTTP responses
func (h *ModificationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "An unexpected error occurred")
	requestID := middleware.GetReqID(r.Context())

	if appErr.StatusCode() >= 500 {
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.Error(appErr),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	json.NewEncoder(w).Encode(errors.ToErrorResponse(appErr, requestID))
}
