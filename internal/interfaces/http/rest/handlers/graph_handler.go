// Package handlers implements the REST endpoints of the portfolio server.
package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/http/rest/middleware"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/site"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
	"github.com/g-s-k-zoro/gsk-man-page/pkg/api"
	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

// GraphService is the part of the site the graph endpoints use.
type GraphService interface {
	Graph() *graph.Graph
	Issues() []error
	Node(id string) (site.NodeDetail, error)
	Settle(ctx context.Context, size viewport.Size, saved map[string]positions.Point) (site.Layout, error)
	RenderSVG(ctx context.Context, w io.Writer, size viewport.Size, saved map[string]positions.Point, visual string) error
}

// StoreProvider resolves a profile's position store.
type StoreProvider interface {
	ForProfile(profile string) (positions.Store, error)
}

// Default headless viewport when the caller gives none.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
	maxDimension  = 8192
)

// GraphHandler serves the graph definition and headless layouts.
type GraphHandler struct {
	site   GraphService
	stores StoreProvider
	logger *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(site GraphService, stores StoreProvider, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{site: site, stores: stores, logger: logger}
}

type graphResponse struct {
	graph.Definition
	Issues []string `json:"issues"`
}

// GetGraph handles GET /graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	issues := h.site.Issues()
	resp := graphResponse{Definition: h.site.Graph().Definition(), Issues: make([]string, len(issues))}
	for i, err := range issues {
		resp.Issues[i] = err.Error()
	}
	api.Success(w, http.StatusOK, resp)
}

// GetNode handles GET /graph/nodes/{nodeID}
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	detail, err := h.site.Node(nodeID)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, detail)
}

// GetLayout handles GET /graph/layout?width=&height=
func (h *GraphHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	size, err := parseSize(r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	l, err := h.site.Settle(r.Context(), size, h.saved(r))
	if err != nil {
		h.logger.Error("Failed to settle layout", zap.Error(err))
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, l)
}

// GetSceneSVG handles GET /graph/scene.svg?width=&height=&visual=
func (h *GraphHandler) GetSceneSVG(w http.ResponseWriter, r *http.Request) {
	size, err := parseSize(r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	visual := r.URL.Query().Get("visual")
	if visual != "" && visual != "plain" && visual != "sketch" {
		api.Error(w, http.StatusBadRequest, "visual must be one of: plain sketch")
		return
	}

	var buf bytes.Buffer
	if err := h.site.RenderSVG(r.Context(), &buf, size, h.saved(r), visual); err != nil {
		h.logger.Error("Failed to render scene", zap.Error(err))
		api.FromError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// saved returns the caller's persisted positions, or none when the profile
// has no usable store.
func (h *GraphHandler) saved(r *http.Request) map[string]positions.Point {
	store, err := h.stores.ForProfile(middleware.ProfileFrom(r.Context()))
	if err != nil {
		return nil
	}
	return store.Load()
}

func parseSize(r *http.Request) (viewport.Size, error) {
	size := viewport.Size{Width: DefaultWidth, Height: DefaultHeight}
	q := r.URL.Query()
	for name, dst := range map[string]*float64{"width": &size.Width, "height": &size.Height} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > maxDimension {
			return viewport.Size{}, apperrors.NewValidation(name + " must be a number between 0 and 8192")
		}
		*dst = v
	}
	return size, nil
}
