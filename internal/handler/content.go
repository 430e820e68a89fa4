package handler

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/domain"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Catalog interface {
	ListCourses(ctx context.Context) (cache.Result[[]*domain.Course], error)
	ListDecks(ctx context.Context) (cache.Result[[]*domain.Deck], error)
}

type ContentHandler struct {
	c Catalog
}

func NewContentHandler(c Catalog) *ContentHandler {
	return &ContentHandler{c: c}
}

func (h *ContentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Group(func(r chi.Router) {
		r.Get("/content/courses", h.ListCourses)
		r.Get("/content/decks", h.ListDecks)
	})
}

func (h *ContentHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	res, err := h.c.ListCourses(r.Context())
	if err != nil {
		writeReadError(w, r, err, "Failed to load courses")
		return
	}
	if res.Data == nil {
		res.Data = []*domain.Course{}
	}
	writeJSON(w, http.StatusOK, res.Data)
}

func (h *ContentHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	res, err := h.c.ListDecks(r.Context())
	if err != nil {
		writeReadError(w, r, err, "Failed to load decks")
		return
	}
	if res.Data == nil {
		res.Data = []*domain.Deck{}
	}
	writeJSON(w, http.StatusOK, res.Data)
}
