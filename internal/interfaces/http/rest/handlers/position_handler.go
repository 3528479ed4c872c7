package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/http/rest/middleware"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/pkg/api"
	"github.com/g-s-k-zoro/gsk-man-page/pkg/validation"
)

// PositionHandler reads and writes a profile's saved node positions.
type PositionHandler struct {
	site   GraphService
	stores StoreProvider
	logger *zap.Logger
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(site GraphService, stores StoreProvider, logger *zap.Logger) *PositionHandler {
	return &PositionHandler{site: site, stores: stores, logger: logger}
}

// SavePositionRequest is the body of PUT /positions/{nodeID}.
type SavePositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// ListPositions handles GET /positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	store, err := h.stores.ForProfile(middleware.ProfileFrom(r.Context()))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, store.Load())
}

// SavePosition handles PUT /positions/{nodeID}
func (h *PositionHandler) SavePosition(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if _, err := h.site.Node(nodeID); err != nil {
		api.FromError(w, err)
		return
	}

	var req SavePositionRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		api.FromError(w, err)
		return
	}

	store, err := h.stores.ForProfile(middleware.ProfileFrom(r.Context()))
	if err != nil {
		api.FromError(w, err)
		return
	}
	p := positions.Point{X: *req.X, Y: *req.Y}
	if err := store.Save(nodeID, p); err != nil {
		h.logger.Warn("Failed to save position", zap.String("nodeID", nodeID), zap.Error(err))
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, p)
}
