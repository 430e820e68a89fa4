package service

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/logging"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FormOptions is everything the assignment form offers for selection.
type FormOptions struct {
	Students []*domain.User   `json:"students"`
	Courses  []*domain.Course `json:"courses"`
	Decks    []*domain.Deck   `json:"decks"`
}

// AssignmentService is the assignment lifecycle: drafts are validated before
// they reach the store, and every successful write invalidates all cached
// assignment lists.
type AssignmentService struct {
	store     AssignmentStore
	validator *FormValidator
	catalog   *CatalogService
	students  *StudentService
	cache     *cache.QueryCache
}

func NewAssignmentService(
	store AssignmentStore,
	validator *FormValidator,
	catalog *CatalogService,
	students *StudentService,
	queryCache *cache.QueryCache,
) *AssignmentService {
	return &AssignmentService{
		store:     store,
		validator: validator,
		catalog:   catalog,
		students:  students,
		cache:     queryCache,
	}
}

// Lists are cached per signed-in user since the store filters by caller.
func assignmentsKey(ctx context.Context, filter domain.AssignmentFilter) cache.Key {
	viewer, _ := ctxdata.GetUserID(ctx)
	return cache.NewKey(cache.TagAssignments, viewer, filter.StudentID, filter.InstructorID, filter.Page, filter.Size)
}

// ListAssignments reads through the cache. On failure the last cached list,
// if any, is returned alongside the error.
func (s *AssignmentService) ListAssignments(ctx context.Context, filter domain.AssignmentFilter) (cache.Result[*domain.AssignmentList], error) {
	filter = filter.WithDefaults()
	res, err := cache.Fetch(ctx, s.cache, assignmentsKey(ctx, filter), func(ctx context.Context) (*domain.AssignmentList, error) {
		return s.store.List(ctx, filter)
	})
	if err != nil {
		logError(ctx, "failed to list assignments", err,
			zap.Int64("student_id", filter.StudentID),
			zap.Int64("instructor_id", filter.InstructorID),
		)
		return res, fmt.Errorf("failed to list assignments: %w", err)
	}
	return res, nil
}

func (s *AssignmentService) GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment %d: %w", id, err)
	}
	return a, nil
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, instructorID int64, draft AssignmentDraft) (*domain.Assignment, error) {
	req, err := s.validator.Validate(ctx, instructorID, draft)
	if err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Info(ctx, "assignment draft rejected", zap.Error(err))
		}
		return nil, err
	}

	a, err := s.store.Create(ctx, req)
	if err != nil {
		logError(ctx, "failed to create assignment", err)
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	s.cache.Invalidate(ctx, cache.TagAssignments)

	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Info(ctx, "assignment created", zap.Int64("assignment_id", a.ID), zap.String("content", a.Content().String()))
	}
	return a, nil
}

func (s *AssignmentService) UpdateAssignment(ctx context.Context, id int64, draft AssignmentPatchDraft) (*domain.Assignment, error) {
	if draft.IsEmpty() {
		return nil, errdefs.NewValidationError(errdefs.FieldError{Field: "body", Message: "nothing to update"})
	}

	var contentType domain.ContentType
	if draft.SupportingDecks != nil {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get assignment %d: %w", id, err)
		}
		contentType = current.ContentType
	}

	patch, err := s.validator.ValidatePatch(ctx, draft, contentType)
	if err != nil {
		return nil, err
	}

	a, err := s.store.Update(ctx, id, patch)
	if err != nil {
		logError(ctx, "failed to update assignment", err, zap.Int64("assignment_id", id))
		return nil, fmt.Errorf("failed to update assignment %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.TagAssignments)
	return a, nil
}

func (s *AssignmentService) UpdateAssignmentStatus(ctx context.Context, id int64, status domain.Status) (*domain.Assignment, error) {
	if !status.IsValid() {
		return nil, errdefs.NewValidationError(errdefs.FieldError{
			Field:   "status",
			Message: "must be one of pending, in_progress, completed, overdue",
		})
	}

	a, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		logError(ctx, "failed to update assignment status", err, zap.Int64("assignment_id", id))
		return nil, fmt.Errorf("failed to update assignment %d status: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.TagAssignments)
	return a, nil
}

// DeleteAssignment treats an already absent assignment as deleted.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	switch {
	case errors.Is(err, errdefs.ErrNotFound):
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Info(ctx, "assignment already deleted", zap.Int64("assignment_id", id))
		}
	case err != nil:
		logError(ctx, "failed to delete assignment", err, zap.Int64("assignment_id", id))
		return fmt.Errorf("failed to delete assignment %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, cache.TagAssignments)
	return nil
}

// FormOptions loads students, courses and decks concurrently.
func (s *AssignmentService) FormOptions(ctx context.Context) (*FormOptions, error) {
	var opts FormOptions
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.students.ListStudents(gctx)
		if err != nil {
			return err
		}
		if res.Data != nil {
			opts.Students = res.Data.Users
		}
		return nil
	})
	g.Go(func() error {
		res, err := s.catalog.ListCourses(gctx)
		if err != nil {
			return err
		}
		opts.Courses = res.Data
		return nil
	})
	g.Go(func() error {
		res, err := s.catalog.ListDecks(gctx)
		if err != nil {
			return err
		}
		opts.Decks = res.Data
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &opts, nil
}
