package routes

import (
	"encoding/json"
	"net/http"

	"hevruta/hevruta/config"
	"hevruta/hevruta/controllers"
	"hevruta/hevruta/middlewares"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/types"

	"github.com/go-chi/chi/v5"
)

func UserRoutes(ctrl *controllers.UserController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /users/validate : sign-in bootstrap check
		gr.Post("/validate", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.ValidateUserRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, 0, apperrors.Validation("invalid json body")
			}
			resp, err := ctrl.ValidateUser(r.Context(), req.Email)
			if err != nil {
				return nil, 0, err
			}
			return resp, http.StatusOK, nil
		}))

		// Directory management is admin-only.
		gr.Group(func(ar chi.Router) {
			ar.Use(middlewares.RequireAdmin)

			ar.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
				users, err := ctrl.GetAllUsers(r.Context())
				if err != nil {
					return nil, 0, err
				}
				return users, http.StatusOK, nil
			}))

			ar.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
				var req types.CreateUserRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					return nil, 0, apperrors.Validation("invalid json body")
				}
				user, err := ctrl.CreateUser(r.Context(), req)
				if err != nil {
					return nil, 0, err
				}
				return user, http.StatusCreated, nil
			}))

			ar.Put("/{email}", handleJSON(func(r *http.Request) (any, int, error) {
				var req types.UpdateUserRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					return nil, 0, apperrors.Validation("invalid json body")
				}
				if err := ctrl.UpdateRole(r.Context(), chi.URLParam(r, "email"), req); err != nil {
					return nil, 0, err
				}
				return map[string]string{"status": "ok"}, http.StatusOK, nil
			}))

			ar.Delete("/{email}", handleJSON(func(r *http.Request) (any, int, error) {
				if err := ctrl.DeleteUser(r.Context(), chi.URLParam(r, "email")); err != nil {
					return nil, 0, err
				}
				return map[string]string{"status": "deleted"}, http.StatusOK, nil
			}))
		})
	})

	return r
}
