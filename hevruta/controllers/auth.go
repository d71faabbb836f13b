package controllers

import (
	"context"
	"strings"
	"time"

	"hevruta/hevruta/config"
	"hevruta/hevruta/sources/psql/dao"
	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

type AuthController struct {
	userDAO *dao.UserDAO
	cfg     config.Config
}

func NewAuthController(userDAO *dao.UserDAO, cfg config.Config) *AuthController {
	return &AuthController{
		userDAO: userDAO,
		cfg:     cfg,
	}
}

// Login bootstraps the user record on first sign-in and issues the
// bearer token the rest of the API verifies.
func (c *AuthController) Login(ctx context.Context, email, displayName string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", nil, apperrors.Validation("valid email required")
	}

	user, err := c.userDAO.GetUser(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		var name *string
		if displayName != "" {
			name = &displayName
		}
		user, err = c.userDAO.CreateUser(ctx, email, models.RoleUser, name)
		if err != nil {
			return "", nil, err
		}
	}

	claims := jwt.MapClaims{
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}
