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

func FeedbackRoutes(ctrl *controllers.FeedbackController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /feedback : rate an assistant turn (upsert by run id)
		gr.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.FeedbackRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, 0, apperrors.Validation("invalid json body")
			}
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			fb, err := ctrl.Submit(r.Context(), userEmail, req)
			if err != nil {
				return nil, 0, err
			}
			return fb, http.StatusOK, nil
		}))

		// GET /feedback/{run_id}
		gr.Get("/{run_id}", handleJSON(func(r *http.Request) (any, int, error) {
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			userRole, _ := r.Context().Value(middlewares.UserRoleKey).(string)
			fb, err := ctrl.Get(r.Context(), userEmail, userRole, chi.URLParam(r, "run_id"))
			if err != nil {
				return nil, 0, err
			}
			return fb, http.StatusOK, nil
		}))
	})
	return r
}
