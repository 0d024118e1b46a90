package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/policy"
)

type Users struct {
	users UserStore
	now   clock
}

func NewUsers(users UserStore) *Users {
	return &Users{users: users, now: utcNow}
}

type ListUsersQuery struct {
	Role  string
	Page  int
	Limit int
}

type UserList struct {
	Users []user.User
	Count int
	Total int
	Page  int
	Pages int
}

func (s *Users) List(ctx context.Context, p user.Principal, q ListUsersQuery) (UserList, error) {
	if d := policy.CanManageUsers(p); !d.Allowed {
		return UserList{}, apperr.Forbidden(d.Reason)
	}

	page, limit := NormalizePaging(q.Page, q.Limit)
	filter := user.ListUsersFilter{Limit: limit, Offset: (page - 1) * limit}

	if q.Role != "" {
		role := user.Role(q.Role)
		if !role.Valid() {
			return UserList{}, apperr.Validation("Invalid query parameters", []apperr.FieldError{
				{Field: "role", Rule: "oneof", Param: "user admin", Message: "Role must be either user or admin"},
			})
		}
		filter.Role = &role
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return UserList{}, apperr.Internal("Could not list users", err)
	}

	return UserList{
		Users: users,
		Count: len(users),
		Total: total,
		Page:  page,
		Pages: pageCount(total, limit),
	}, nil
}

func (s *Users) Get(ctx context.Context, p user.Principal, id string) (user.User, error) {
	if d := policy.CanManageUsers(p); !d.Allowed {
		return user.User{}, apperr.Forbidden(d.Reason)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.NotFound("User not found")
		}
		return user.User{}, apperr.Internal("Could not fetch user", err)
	}
	return u, nil
}

func (s *Users) Update(ctx context.Context, p user.Principal, id string, req user.UpdateRequest) (user.User, error) {
	if d := policy.CanManageUsers(p); !d.Allowed {
		return user.User{}, apperr.Forbidden(d.Reason)
	}

	patch := user.Patch{Role: req.Role}
	if req.Name != nil {
		v := strings.TrimSpace(*req.Name)
		patch.Name = &v
	}
	if req.Email != nil {
		v := normalizeEmail(*req.Email)
		patch.Email = &v
	}

	u, err := s.users.Update(ctx, id, patch, s.now())
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			return user.User{}, apperr.NotFound("User not found")
		case errors.Is(err, user.ErrEmailAlreadyUsed):
			return user.User{}, apperr.BadRequest("email_taken", "Email is already in use.")
		default:
			return user.User{}, apperr.Internal("Could not update user", err)
		}
	}
	return u, nil
}

func (s *Users) Delete(ctx context.Context, p user.Principal, id string) error {
	if d := policy.CanManageUsers(p); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}

	if id == p.ID {
		return apperr.BadRequest("cannot_delete_self", "You cannot delete your own account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Could not delete user", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
