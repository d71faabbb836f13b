package routes

import (
	"encoding/json"
	"net/http"

	"hevruta/hevruta/utils/apperrors"
)

// handleJSON wraps handlers into the uniform JSON envelope: payloads are
// encoded as-is, errors go through the apperrors status mapping.
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if res != nil {
			json.NewEncoder(w).Encode(res)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.Status(err))
	json.NewEncoder(w).Encode(apperrors.ToEnvelope(err))
}
