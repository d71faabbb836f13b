package routes

import (
	"encoding/json"
	"net/http"

	"hevruta/hevruta/controllers"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/types"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, 0, apperrors.Validation("invalid json body")
		}
		token, user, err := ctrl.Login(r.Context(), req.Email, req.DisplayName)
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{"token": token, "user": user}, http.StatusOK, nil
	}))
	return r
}
