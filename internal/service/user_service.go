package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-blog/internal/access"
	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/search"
	"go-gin-blog/pkg/pagination"
	"go-gin-blog/pkg/utils"
)

type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=64"`
	Email    *string `json:"email" validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,min=6"`
	Bio      *string `json:"bio" validate:"omitnil,max=1000"`
	Avatar   *string `json:"avatar" validate:"omitnil,max=500"`
	Role     *string `json:"role" validate:"omitnil,oneof=user author admin"`
}

func (in UpdateUserInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil && in.Bio == nil && in.Avatar == nil && in.Role == nil
}

func (in *UpdateUserInput) normalize() {
	trim := func(p **string, lower bool) {
		if *p == nil {
			return
		}
		v := strings.TrimSpace(**p)
		if lower {
			v = strings.ToLower(v)
		}
		*p = &v
	}
	trim(&in.Name, false)
	trim(&in.Email, true)
	trim(&in.Bio, false)
	trim(&in.Avatar, false)
	trim(&in.Role, true)
}

type UserService struct {
	users  domain.UserRepository
	limits pagination.Limits
	log    *zap.Logger
	now    Clock
}

func NewUserService(users domain.UserRepository, limits pagination.Limits, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, limits: limits, log: l, now: utcNow}
}

func (s *UserService) WithClock(c Clock) *UserService {
	s.now = c
	return s
}

func (s *UserService) load(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User")
	}
	return u, nil
}

func (s *UserService) Me(ctx context.Context, caller *domain.Caller) (*domain.User, error) {
	caller, err := access.Authorize(caller)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, caller.ID)
}

// Get returns an account to its owner or an admin.
func (s *UserService) Get(ctx context.Context, caller *domain.Caller, id string) (*domain.User, error) {
	if err := access.AuthorizeAccount(id, caller); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// List is admin-only. A non-empty q keeps users whose name, email or bio contains it.
func (s *UserService) List(ctx context.Context, caller *domain.Caller, page, limit *int, q string) (pagination.Page[domain.User], error) {
	if _, err := access.Authorize(caller, domain.RoleAdmin); err != nil {
		return pagination.Page[domain.User]{}, err
	}
	all, err := s.users.List(ctx)
	if err != nil {
		return pagination.Page[domain.User]{}, apperr.Internal("list users", err)
	}
	if strings.TrimSpace(q) != "" {
		matched := make([]domain.User, 0, len(all))
		for _, u := range all {
			if search.MatchUser(u, q) {
				matched = append(matched, u)
			}
		}
		all = matched
	}
	return pagination.Paginate(all, s.limits.Params(page, limit)), nil
}

func (s *UserService) Update(ctx context.Context, caller *domain.Caller, id string, in UpdateUserInput) (*domain.User, error) {
	if err := access.AuthorizeAccount(id, caller); err != nil {
		return nil, err
	}
	if in.Role != nil {
		if _, err := access.Authorize(caller, domain.RoleAdmin); err != nil {
			return nil, apperr.Forbidden("only an admin can change roles")
		}
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	err = validateStruct(in)
	if in.empty() {
		err = merge(err, apperr.FieldError{Field: "input", Message: "At least one field must be provided for update"})
	}
	if err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email != u.Email {
		taken, err := s.users.EmailTaken(ctx, *in.Email, u.ID)
		if err != nil {
			return nil, apperr.Internal("check email", err)
		}
		if taken {
			return nil, apperr.Invalid("email", "email already taken")
		}
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal("hash password", err)
		}
		u.PasswordHash = hash
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.Role != nil {
		u.Role, _ = domain.ParseRole(*in.Role)
	}
	u.UpdatedAt = s.now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperr.Internal("update user", err)
	}
	s.log.Info("user updated", zap.String("id", u.ID), zap.String("by", caller.ID))
	return u, nil
}

// SetRole is the admin role change used by the admin API.
func (s *UserService) SetRole(ctx context.Context, caller *domain.Caller, id, role string) (*domain.User, error) {
	return s.Update(ctx, caller, id, UpdateUserInput{Role: &role})
}

// Delete is admin-only. Posts by the account are kept.
func (s *UserService) Delete(ctx context.Context, caller *domain.Caller, id string) error {
	if _, err := access.Authorize(caller, domain.RoleAdmin); err != nil {
		return err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return apperr.Internal("delete user", err)
	}
	s.log.Info("user deleted", zap.String("id", u.ID), zap.String("by", caller.ID))
	return nil
}

// All returns every account, newest first. Search runs over it.
func (s *UserService) All(ctx context.Context) ([]domain.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return all, nil
}
