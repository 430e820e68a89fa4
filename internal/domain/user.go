package domain

import "errors"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt Timestamp `json:"created_at"`
}

func (u *User) Validate() error {
	if u.ID <= 0 {
		return errors.New("user id is missing")
	}
	return nil
}

type UserList struct {
	Users []*User `json:"users"`
	Total int     `json:"total"`
}

func (l *UserList) Validate() error {
	if l.Users == nil {
		return errors.New("users field is missing")
	}
	for _, u := range l.Users {
		if u == nil {
			return errors.New("users contains null")
		}
		if err := u.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type CreateUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	FullName string   `json:"full_name" validate:"required"`
	Role     UserRole `json:"role"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	IsActive *bool   `json:"is_active,omitempty"`
}
