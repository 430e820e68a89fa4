package handler

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/service"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type StudentManager interface {
	ListStudents(ctx context.Context) (cache.Result[*domain.UserList], error)
	CreateStudent(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	UpdateStudent(ctx context.Context, id int64, req domain.UpdateUserRequest) (*domain.User, error)
	DeleteStudent(ctx context.Context, id int64) error
}

type studentListResponse struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total"`
	Stale bool           `json:"stale"`
	Error string         `json:"error,omitempty"`
}

type studentResponse struct {
	User         *domain.User          `json:"user"`
	Notification *service.Notification `json:"notification,omitempty"`
}

type StudentHandler struct {
	m StudentManager
}

func NewStudentHandler(m StudentManager) *StudentHandler {
	return &StudentHandler{m: m}
}

func (h *StudentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Group(func(r chi.Router) {
		r.Get("/students", h.ListStudents)
		r.Post("/students", h.CreateStudent)
		r.Patch("/students/{id}", h.UpdateStudent)
		r.Delete("/students/{id}", h.DeleteStudent)
	})
}

func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	res, err := h.m.ListStudents(r.Context())
	if err != nil && res.Data == nil {
		writeReadError(w, r, err, "Failed to load students")
		return
	}

	resp := studentListResponse{Users: res.Data.Users, Total: res.Data.Total, Stale: res.Stale}
	if err != nil {
		logFailure(r, mapErr(err), err)
		resp.Stale = true
		resp.Error = errdefs.UserMessage(err, "Failed to load students")
	}
	if resp.Users == nil {
		resp.Users = []*domain.User{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.m.CreateStudent(r.Context(), req)
	if err != nil {
		writeOpError(w, r, service.OpCreateStudent, err)
		return
	}
	notification := service.NotificationFor(service.OpCreateStudent, nil)
	writeJSON(w, http.StatusCreated, studentResponse{User: user, Notification: &notification})
}

func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request parameters")
		return
	}
	var req domain.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.m.UpdateStudent(r.Context(), id, req)
	if err != nil {
		writeOpError(w, r, service.OpUpdateStudent, err)
		return
	}
	notification := service.NotificationFor(service.OpUpdateStudent, nil)
	writeJSON(w, http.StatusOK, studentResponse{User: user, Notification: &notification})
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request parameters")
		return
	}

	if err := h.m.DeleteStudent(r.Context(), id); err != nil {
		writeOpError(w, r, service.OpDeleteStudent, err)
		return
	}
	notification := service.NotificationFor(service.OpDeleteStudent, nil)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "notification": notification})
}
