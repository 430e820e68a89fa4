package client

import (
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AssignmentClient is the remote assignment store. Every call is
// single-shot: failures are returned as-is and the caller decides on retries.
type AssignmentClient struct {
	c *Client
}

func NewAssignmentClient(c *Client) *AssignmentClient {
	return &AssignmentClient{c: c}
}

func assignmentPath(id int64) string {
	return "/api/assignments/" + strconv.FormatInt(id, 10)
}

func (a *AssignmentClient) List(ctx context.Context, filter domain.AssignmentFilter) (*domain.AssignmentList, error) {
	filter = filter.WithDefaults()
	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("size", strconv.Itoa(filter.Size))
	if filter.StudentID != 0 {
		query.Set("student_id", strconv.FormatInt(filter.StudentID, 10))
	}
	if filter.InstructorID != 0 {
		query.Set("instructor_id", strconv.FormatInt(filter.InstructorID, 10))
	}

	var resp domain.AssignmentList
	if err := a.c.do(ctx, "list assignments", http.MethodGet, "/api/assignments/", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AssignmentClient) Get(ctx context.Context, id int64) (*domain.Assignment, error) {
	var resp domain.Assignment
	if err := a.c.do(ctx, "get assignment", http.MethodGet, assignmentPath(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AssignmentClient) Create(ctx context.Context, req *domain.CreateAssignmentRequest) (*domain.Assignment, error) {
	var resp domain.Assignment
	if err := a.c.do(ctx, "create assignment", http.MethodPost, "/api/assignments/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AssignmentClient) Update(ctx context.Context, id int64, patch *domain.AssignmentPatch) (*domain.Assignment, error) {
	var resp domain.Assignment
	if err := a.c.do(ctx, "update assignment", http.MethodPut, assignmentPath(id), nil, patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AssignmentClient) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Assignment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("update assignment status: %w", errdefs.NewValidationError(errdefs.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", status),
		}))
	}
	var resp domain.Assignment
	body := &domain.AssignmentPatch{Status: &status}
	if err := a.c.do(ctx, "update assignment status", http.MethodPut, assignmentPath(id), nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AssignmentClient) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, "delete assignment", http.MethodDelete, assignmentPath(id), nil, nil, nil)
}
