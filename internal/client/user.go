package client

import (
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/utils"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

var errNullItem = errors.New("list contains null")

// UserClient talks to the user service: the current user and the
// instructor's student roster.
type UserClient struct {
	c  *Client
	cb *utils.CircuitBreaker
}

func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c, cb: utils.NewCircuitBreaker(5, 30*time.Second)}
}

func userPath(id int64) string {
	return "/api/users/" + strconv.FormatInt(id, 10)
}

func (u *UserClient) GetMe(ctx context.Context) (*domain.User, error) {
	return utils.RetryWithCircuitBreaker(ctx, u.cb, maxRetries, retryDelay, func() (*domain.User, error) {
		var resp domain.User
		if err := u.c.do(ctx, "get current user", http.MethodGet, "/api/users/me", nil, nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

func (u *UserClient) ListMyStudents(ctx context.Context) (*domain.UserList, error) {
	return utils.RetryWithCircuitBreaker(ctx, u.cb, maxRetries, retryDelay, func() (*domain.UserList, error) {
		var resp domain.UserList
		if err := u.c.do(ctx, "list students", http.MethodGet, "/api/users/my-students", nil, nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

// Writes below are single-shot.

func (u *UserClient) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	var resp domain.User
	if err := u.c.do(ctx, "create user", http.MethodPost, "/api/users/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (u *UserClient) UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	var resp domain.User
	if err := u.c.do(ctx, "update user", http.MethodPut, userPath(id), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (u *UserClient) DeleteUser(ctx context.Context, id int64) error {
	return u.c.do(ctx, "delete user", http.MethodDelete, userPath(id), nil, nil, nil)
}
