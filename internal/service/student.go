package service

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/logging"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// StudentService manages the signed-in instructor's roster.
type StudentService struct {
	roster    Roster
	validator *FormValidator
	cache     *cache.QueryCache
}

func NewStudentService(roster Roster, validator *FormValidator, queryCache *cache.QueryCache) *StudentService {
	return &StudentService{roster: roster, validator: validator, cache: queryCache}
}

func studentsKey(ctx context.Context) cache.Key {
	instructorID, _ := ctxdata.GetUserID(ctx)
	return cache.NewKey(cache.TagStudents, instructorID)
}

func (s *StudentService) ListStudents(ctx context.Context) (cache.Result[*domain.UserList], error) {
	res, err := cache.Fetch(ctx, s.cache, studentsKey(ctx), s.roster.ListMyStudents)
	if err != nil {
		return res, fmt.Errorf("failed to list students: %w", err)
	}
	return res, nil
}

func (s *StudentService) CreateStudent(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Role = domain.UserRoleStudent
	if err := s.validator.Struct(&req); err != nil {
		return nil, err
	}

	user, err := s.roster.CreateUser(ctx, &req)
	if err != nil {
		logError(ctx, "failed to create student", err)
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	s.cache.Invalidate(ctx, cache.TagStudents)
	return user, nil
}

func (s *StudentService) UpdateStudent(ctx context.Context, id int64, req domain.UpdateUserRequest) (*domain.User, error) {
	if err := s.validator.Struct(&req); err != nil {
		return nil, err
	}

	user, err := s.roster.UpdateUser(ctx, id, &req)
	if err != nil {
		logError(ctx, "failed to update student", err, zap.Int64("student_id", id))
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	s.cache.Invalidate(ctx, cache.TagStudents)
	return user, nil
}

// Deleting a student drops their assignments server-side as well.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.roster.DeleteUser(ctx, id); err != nil {
		logError(ctx, "failed to delete student", err, zap.Int64("student_id", id))
		return fmt.Errorf("failed to delete student: %w", err)
	}
	s.cache.Invalidate(ctx, cache.TagStudents, cache.TagAssignments)
	return nil
}

func logError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Error(ctx, msg, append(fields, zap.Error(err))...)
	}
}
