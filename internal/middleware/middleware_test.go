package middleware

import (
	"assignmentgateway/internal/ctxdata"
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/errdefs"
	"assignmentgateway/internal/logging"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) CurrentUser(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func authHeaderIs(header string) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		got, ok := ctxdata.GetAuthHeader(ctx)
		return ok && got == header
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		user       *domain.User
		err        error
		wantStatus int
		wantNext   bool
	}{
		{name: "NoHeader", wantStatus: http.StatusUnauthorized},
		{
			name:       "Teacher",
			header:     "Bearer t",
			user:       &domain.User{ID: 7, Role: domain.UserRoleTeacher},
			wantStatus: http.StatusNoContent,
			wantNext:   true,
		},
		{
			name:       "Student",
			header:     "Bearer s",
			user:       &domain.User{ID: 8, Role: domain.UserRoleStudent},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "Rejected",
			header:     "Bearer x",
			err:        &errdefs.RequestError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "BoundaryDown",
			header:     "Bearer t",
			err:        &errdefs.TransportError{Op: "get current user", Err: errors.New("refused")},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &mockResolver{}
			if tc.header != "" {
				resolver.On("CurrentUser", authHeaderIs(tc.header)).Return(tc.user, tc.err).Once()
			}

			var called bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				id, ok := ctxdata.GetUserID(r.Context())
				require.True(t, ok)
				assert.Equal(t, tc.user.ID, id)
				header, _ := ctxdata.GetAuthHeader(r.Context())
				assert.Equal(t, tc.header, header)
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/assignments", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			NewAuthMiddleware(resolver)(next).ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantNext, called)
			resolver.AssertExpectations(t)
		})
	}
}

func TestLoggingMiddleware_SetsTraceID(t *testing.T) {
	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		traceID, ok = ctxdata.GetTraceID(r.Context())
		require.True(t, ok)
		_, ok = logging.GetFromContext(r.Context())
		assert.True(t, ok)
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	NewLoggingMiddleware(logging.Nop())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, w.Header().Get("X-Trace-Id"))
}
