package handler

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type AssignmentManager interface {
	ListAssignments(ctx context.Context, filter domain.AssignmentFilter) (cache.Result[*domain.AssignmentList], error)
	GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error)
	CreateAssignment(ctx context.Context, instructorID int64, draft service.AssignmentDraft) (*domain.Assignment, error)
	UpdateAssignment(ctx context.Context, id int64, draft service.AssignmentPatchDraft) (*domain.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, id int64, status domain.Status) (*domain.Assignment, error)
	DeleteAssignment(ctx context.Context, id int64) error
	FormOptions(ctx context.Context) (*service.FormOptions, error)
}

type assignmentView struct {
	*domain.Assignment
	StatusTier      domain.Tier   `json:"status_tier"`
	EffectiveStatus domain.Status `json:"effective_status"`
}

type assignmentListResponse struct {
	Assignments []assignmentView `json:"assignments"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	Size        int              `json:"size"`
	TotalPages  int              `json:"total_pages"`
	Stale       bool             `json:"stale"`
	FetchedAt   time.Time        `json:"fetched_at"`
	Error       string           `json:"error,omitempty"`
}

type assignmentResponse struct {
	Assignment   assignmentView        `json:"assignment"`
	Notification *service.Notification `json:"notification,omitempty"`
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

type AssignmentHandler struct {
	m   AssignmentManager
	now func() time.Time
}

func NewAssignmentHandler(m AssignmentManager) *AssignmentHandler {
	return &AssignmentHandler{m: m, now: time.Now}
}

func (h *AssignmentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Group(func(r chi.Router) {
		r.Get("/assignments", h.ListAssignments)
		r.Get("/assignments/form-options", h.FormOptions)
		r.Get("/assignments/{id}", h.GetAssignment)
		r.Post("/assignments", h.CreateAssignment)
		r.Patch("/assignments/{id}", h.UpdateAssignment)
		r.Put("/assignments/{id}/status", h.UpdateAssignmentStatus)
		r.Delete("/assignments/{id}", h.DeleteAssignment)
	})
}

func (h *AssignmentHandler) view(a *domain.Assignment) assignmentView {
	return assignmentView{
		Assignment:      a,
		StatusTier:      domain.StatusTierOf(string(a.Status)),
		EffectiveStatus: domain.EffectiveStatus(a, h.now()),
	}
}

func parseFilter(r *http.Request) (domain.AssignmentFilter, error) {
	var filter domain.AssignmentFilter
	var err error
	if filter.StudentID, err = parseQueryInt64(r, "student_id"); err != nil {
		return filter, err
	}
	if filter.InstructorID, err = parseQueryInt64(r, "instructor_id"); err != nil {
		return filter, err
	}
	page, err := parseQueryInt64(r, "page")
	if err != nil {
		return filter, err
	}
	size, err := parseQueryInt64(r, "size")
	if err != nil {
		return filter, err
	}
	filter.Page, filter.Size = int(page), int(size)

	// Unscoped requests list the signed-in instructor's assignments.
	if filter.StudentID == 0 && filter.InstructorID == 0 {
		filter.InstructorID, _ = ctxdata.GetUserID(r.Context())
	}
	return filter.WithDefaults(), nil
}

func (h *AssignmentHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request parameters")
		return
	}

	res, err := h.m.ListAssignments(r.Context(), filter)
	if err != nil && res.Data == nil {
		writeReadError(w, r, err, "Failed to load assignments")
		return
	}

	resp := assignmentListResponse{
		Assignments: make([]assignmentView, 0, len(res.Data.Assignments)),
		Total:       res.Data.Total,
		Page:        res.Data.Page,
		Size:        res.Data.Size,
		TotalPages:  res.Data.TotalPages,
		Stale:       res.Stale,
		FetchedAt:   res.FetchedAt,
	}
	if err != nil {
		// Last known list, flagged stale.
		logFailure(r, mapErr(err), err)
		resp.Stale = true
		resp.Error = errdefs.UserMessage(err, "Failed to load assignments")
	}
	for _, a := range res.Data.Assignments {
		resp.Assignments = append(resp.Assignments, h.view(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AssignmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request parameters")
		return
	}

	a, err := h.m.GetAssignment(r.Context(), id)
	if err != nil {
		writeReadError(w, r, err, "Failed to load assignment")
		return
	}
	writeJSON(w, http.StatusOK, assignmentResponse{Assignment: h.view(a)})
}

func (h *AssignmentHandler) FormOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.m.FormOptions(r.Context())
	if err != nil {
		writeReadError(w, r, err, "Failed to load form options")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *AssignmentHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var draft service.AssignmentDraft
	if err := decodeBody(r, &draft); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	instructorID, _ := ctxdata.GetUserID(r.Context())
	a, err := h.m.CreateAssignment(r.Context(), instructorID, draft)
	if err != nil {
		writeOpError(w, r, service.OpCreateAssignment, err)
		return
	}
	notification := service.NotificationFor(service.OpCreateAssignment, nil)
	writeJSON(w, http.StatusCreated, assignmentResponse{Assignment: h.view(a), Notification: &notification})
}

func (h *AssignmentHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request parameters")
		return
	}
	var draft service.AssignmentPatchDraft
	if err := decodeBody(r, &draft); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.m.UpdateAssignment(r.Context(), id, draft)
	if err != nil {
		writeOpError(w, r, service.OpUpdateAssignment, err)
		return
	}
	notification := service.NotificationFor(service.OpUpdateAssignment, nil)
	writeJSON(w, http.StatusOK, assignmentResponse{Assignment: h.view(a), Notification: &notification})
}

func (h *AssignmentHandler) UpdateAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request parameters")
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.m.UpdateAssignmentStatus(r.Context(), id, req.Status)
	if err != nil {
		writeOpError(w, r, service.OpUpdateAssignmentStatus, err)
		return
	}
	notification := service.NotificationFor(service.OpUpdateAssignmentStatus, nil)
	writeJSON(w, http.StatusOK, assignmentResponse{Assignment: h.view(a), Notification: &notification})
}

func (h *AssignmentHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request parameters")
		return
	}

	if err := h.m.DeleteAssignment(r.Context(), id); err != nil {
		writeOpError(w, r, service.OpDeleteAssignment, err)
		return
	}
	notification := service.NotificationFor(service.OpDeleteAssignment, nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           id,
		"notification": notification,
	})
}
