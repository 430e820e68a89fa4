//go:generate mockgen -source=interface.go -destination=mocks/service_mocks.go -package=mocks
package service

import (
	"assignmentgateway/internal/domain"
	"context"
)

// AssignmentStore is the authoritative remote assignment collection.
type AssignmentStore interface {
	List(ctx context.Context, filter domain.AssignmentFilter) (*domain.AssignmentList, error)
	Get(ctx context.Context, id int64) (*domain.Assignment, error)
	Create(ctx context.Context, req *domain.CreateAssignmentRequest) (*domain.Assignment, error)
	Update(ctx context.Context, id int64, patch *domain.AssignmentPatch) (*domain.Assignment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Assignment, error)
	Delete(ctx context.Context, id int64) error
}

// ContentCatalog is the read-only course and deck catalog.
type ContentCatalog interface {
	ListCourses(ctx context.Context) ([]*domain.Course, error)
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	ListDecks(ctx context.Context) ([]*domain.Deck, error)
	GetDeck(ctx context.Context, id string) (*domain.Deck, error)
}

type Roster interface {
	GetMe(ctx context.Context) (*domain.User, error)
	ListMyStudents(ctx context.Context) (*domain.UserList, error)
	CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
