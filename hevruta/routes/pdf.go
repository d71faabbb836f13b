package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"hevruta/hevruta/config"
	"hevruta/hevruta/controllers"
	"hevruta/hevruta/middlewares"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/types"

	"github.com/go-chi/chi/v5"
)

func PDFRoutes(ctrl *controllers.PDFController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /pdf : export the editor pane as PDF
		gr.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req types.PDFRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, apperrors.Validation("invalid json body"))
				return
			}
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			data, filename, err := ctrl.Export(r.Context(), userEmail, req)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/pdf")
			// RFC 5987 encoding keeps Hebrew filenames intact
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
			w.WriteHeader(http.StatusOK)
			w.Write(data)
		})
	})
	return r
}
