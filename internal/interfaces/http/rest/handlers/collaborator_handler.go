package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/contact"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/http/rest/middleware"
	"github.com/g-s-k-zoro/gsk-man-page/internal/search"
	"github.com/g-s-k-zoro/gsk-man-page/internal/visitor"
	"github.com/g-s-k-zoro/gsk-man-page/pkg/api"
)

type Searcher interface {
	Search(query string) ([]search.Result, error)
}

type VisitorCounter interface {
	Hit(ctx context.Context, profile string) visitor.Count
}

type ContactSender interface {
	Submit(ctx context.Context, sub contact.Submission) (contact.Outcome, error)
}

// CollaboratorHandler serves the page furniture around the graph: search,
// the visitor counter and the contact form.
type CollaboratorHandler struct {
	search   Searcher
	visitors VisitorCounter
	contact  ContactSender
	logger   *zap.Logger
}

// NewCollaboratorHandler creates a new collaborator handler
func NewCollaboratorHandler(s Searcher, v VisitorCounter, c ContactSender, logger *zap.Logger) *CollaboratorHandler {
	return &CollaboratorHandler{search: s, visitors: v, contact: c, logger: logger}
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// Search handles GET /search?q=
func (h *CollaboratorHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := h.search.Search(q)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, searchResponse{Query: q, Results: results})
}

// Visitors handles GET /visitors
func (h *CollaboratorHandler) Visitors(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.visitors.Hit(r.Context(), middleware.ProfileFrom(r.Context())))
}

// Contact handles POST /contact
func (h *CollaboratorHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := api.Decode(r, &sub); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	outcome, err := h.contact.Submit(r.Context(), sub)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusAccepted, map[string]string{"status": string(outcome)})
}
