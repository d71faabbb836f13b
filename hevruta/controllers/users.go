package controllers

import (
	"context"
	"strings"

	"hevruta/hevruta/sources/psql/dao"
	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/types"
)

type UserController struct {
	dao *dao.UserDAO
}

func NewUserController(dao *dao.UserDAO) *UserController {
	return &UserController{dao: dao}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleUser
}

func (c *UserController) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return c.dao.GetAllUsers(ctx)
}

func (c *UserController) CreateUser(ctx context.Context, req types.CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("valid email required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !validRole(role) {
		return nil, apperrors.Validation("role must be admin or user")
	}

	existing, err := c.dao.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("user already exists")
	}
	return c.dao.CreateUser(ctx, email, role, nil)
}

func (c *UserController) UpdateRole(ctx context.Context, email string, req types.UpdateUserRequest) error {
	if !validRole(req.Role) {
		return apperrors.Validation("role must be admin or user")
	}
	ok, err := c.dao.UpdateRole(ctx, normalizeEmail(email), req.Role)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (c *UserController) DeleteUser(ctx context.Context, email string) error {
	ok, err := c.dao.DeleteUser(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// ValidateUser is the sign-in bootstrap check: unknown emails are not an
// error, they just aren't allowed in.
func (c *UserController) ValidateUser(ctx context.Context, email string) (*types.ValidateUserResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("email required")
	}
	user, err := c.dao.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &types.ValidateUserResponse{Allowed: false}, nil
	}
	return &types.ValidateUserResponse{Allowed: true, Role: user.Role}, nil
}
