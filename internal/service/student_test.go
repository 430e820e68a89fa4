package service_test

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/service"
	"assignmentgateway/internal/service/mocks"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateStudent(t *testing.T) {
	t.Run("RoleIsForcedToStudent", func(t *testing.T) {
		f := setup(t)
		ctx := instructorCtx()

		f.roster.EXPECT().ListMyStudents(gomock.Any()).Return(&domain.UserList{Users: []*domain.User{}}, nil).Times(2)
		f.roster.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
				assert.Equal(t, domain.UserRoleStudent, req.Role)
				assert.Equal(t, "ann", req.Username)
				return &domain.User{ID: 2, Username: req.Username, Role: req.Role}, nil
			})

		_, err := f.students.ListStudents(ctx)
		require.NoError(t, err)

		user, err := f.students.CreateStudent(ctx, domain.CreateUserRequest{
			Username: " ann ",
			Email:    "ann@example.com",
			Password: "secret-password",
			FullName: "Ann Lee",
			Role:     domain.UserRoleTeacher,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)

		_, err = f.students.ListStudents(ctx)
		require.NoError(t, err)
	})

	t.Run("InvalidNeverReachesRoster", func(t *testing.T) {
		f := setup(t)

		_, err := f.students.CreateStudent(instructorCtx(), domain.CreateUserRequest{
			Username: "ann",
			Email:    "not-an-email",
			Password: "short",
		})
		fields := fieldNames(t, err)
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
		assert.Equal(t, "this field is required", fields["full_name"])
	})

	t.Run("Conflict", func(t *testing.T) {
		f := setup(t)
		f.roster.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, &errdefs.RequestError{StatusCode: 409, Message: "Username already taken"})

		_, err := f.students.CreateStudent(instructorCtx(), domain.CreateUserRequest{
			Username: "ann",
			Email:    "ann@example.com",
			Password: "secret-password",
			FullName: "Ann Lee",
		})
		assert.ErrorIs(t, err, errdefs.ErrConflict)
		assert.Equal(t, "Username already taken", errdefs.UserMessage(err, "Failed to create student"))
	})
}

func TestUpdateStudent(t *testing.T) {
	f := setup(t)
	email := "bad"
	_, err := f.students.UpdateStudent(instructorCtx(), 2, domain.UpdateUserRequest{Email: &email})
	assert.Contains(t, fieldNames(t, err), "email")

	active := false
	f.roster.EXPECT().UpdateUser(gomock.Any(), int64(2), &domain.UpdateUserRequest{IsActive: &active}).
		Return(&domain.User{ID: 2}, nil)
	_, err = f.students.UpdateStudent(instructorCtx(), 2, domain.UpdateUserRequest{IsActive: &active})
	require.NoError(t, err)
}

func TestDeleteStudentInvalidatesAssignments(t *testing.T) {
	f := setup(t)
	ctx := instructorCtx()
	filter := domain.AssignmentFilter{StudentID: 2}

	f.store.EXPECT().List(gomock.Any(), filter.WithDefaults()).Return(listOf(1), nil).Times(2)
	f.roster.EXPECT().DeleteUser(gomock.Any(), int64(2)).Return(nil)

	_, err := f.svc.ListAssignments(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, f.students.DeleteStudent(ctx, 2))
	_, err = f.svc.ListAssignments(ctx, filter)
	require.NoError(t, err)
}

func TestDeleteStudent_NotFoundIsSurfaced(t *testing.T) {
	f := setup(t)
	f.roster.EXPECT().DeleteUser(gomock.Any(), int64(2)).Return(&errdefs.RequestError{StatusCode: 404, Message: "User not found"})

	err := f.students.DeleteStudent(instructorCtx(), 2)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestCurrentUser(t *testing.T) {
	t.Run("CachedPerHeader", func(t *testing.T) {
		f := setup(t)
		f.roster.EXPECT().GetMe(gomock.Any()).Return(&domain.User{ID: 1, Role: domain.UserRoleTeacher}, nil).Times(2)

		alice := ctxdata.WithAuthHeader(context.Background(), "Bearer a")
		bob := ctxdata.WithAuthHeader(context.Background(), "Bearer b")
		for _, ctx := range []context.Context{alice, alice, bob} {
			user, err := f.users.CurrentUser(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), user.ID)
		}
	})

	t.Run("ExpiresAfterTTL", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		roster := mocks.NewMockRoster(ctrl)
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		users := service.NewUserService(roster, cache.NewQueryCache(cache.NewRedisCache(rdb), time.Hour), 30*time.Second)

		gomock.InOrder(
			roster.EXPECT().GetMe(gomock.Any()).Return(&domain.User{ID: 1, Role: domain.UserRoleTeacher}, nil),
			roster.EXPECT().GetMe(gomock.Any()).Return(nil, &errdefs.RequestError{StatusCode: 401, Message: "Token revoked"}),
		)

		ctx := ctxdata.WithAuthHeader(context.Background(), "Bearer a")
		_, err := users.CurrentUser(ctx)
		require.NoError(t, err)

		mr.FastForward(20 * time.Second)
		_, err = users.CurrentUser(ctx)
		require.NoError(t, err)

		mr.FastForward(20 * time.Second)
		_, err = users.CurrentUser(ctx)
		assert.ErrorIs(t, err, errdefs.ErrPermissionDenied)
	})

	t.Run("NoHeader", func(t *testing.T) {
		f := setup(t)
		_, err := f.users.CurrentUser(context.Background())
		assert.ErrorIs(t, err, errdefs.ErrPermissionDenied)
	})
}
