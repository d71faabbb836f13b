package routes

import (
	"encoding/json"
	"net/http"

	"hevruta/hevruta/config"
	"hevruta/hevruta/controllers"
	"hevruta/hevruta/middlewares"
	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// wsErrorFrame marshals the message so quotes in error text cannot
// break the frame.
func wsErrorFrame(message string) []byte {
	frame, _ := json.Marshal(map[string]string{"error": message})
	return frame
}

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /chat/send : one synchronous chat turn
		gr.Post("/send", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.ChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, 0, apperrors.Validation("invalid json body")
			}
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			resp, err := ctrl.Send(r.Context(), userEmail, req)
			if err != nil {
				return nil, 0, err
			}
			return resp, http.StatusOK, nil
		}))

		// POST /chat/threads : create a fresh thread
		gr.Post("/threads", handleJSON(func(r *http.Request) (any, int, error) {
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			thread, err := ctrl.CreateThread(r.Context(), userEmail)
			if err != nil {
				return nil, 0, err
			}
			return thread, http.StatusCreated, nil
		}))

		// GET /chat/threads : the caller's threads, newest activity first
		gr.Get("/threads", handleJSON(func(r *http.Request) (any, int, error) {
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			threads, err := ctrl.ListThreads(r.Context(), userEmail)
			if err != nil {
				return nil, 0, err
			}
			return threads, http.StatusOK, nil
		}))

		// GET /chat/threads/{thread_id}/messages
		gr.Get("/threads/{thread_id}/messages", handleJSON(func(r *http.Request) (any, int, error) {
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			msgs, err := ctrl.GetMessagesForThread(r.Context(), userEmail, chi.URLParam(r, "thread_id"))
			if err != nil {
				return nil, 0, err
			}
			return msgs, http.StatusOK, nil
		}))

		// DELETE /chat/threads/{thread_id}
		gr.Delete("/threads/{thread_id}", func(w http.ResponseWriter, r *http.Request) {
			userEmail := r.Context().Value(middlewares.UserEmailKey).(string)
			if err := ctrl.DeleteThread(r.Context(), userEmail, chi.URLParam(r, "thread_id")); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	// Streaming turns go over a websocket; the token rides in the first
	// frame because browsers cannot set headers on ws connections.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var input struct {
			Token       string            `json:"token"`
			ChatRequest types.ChatRequest `json:"chat_request"`
		}
		if err := json.Unmarshal(data, &input); err != nil {
			conn.Write(ctx, websocket.MessageText, wsErrorFrame("invalid json"))
			return
		}

		claims, err := middlewares.ParseToken(input.Token, cfg.JWTSecret)
		if err != nil {
			conn.Write(ctx, websocket.MessageText, wsErrorFrame("invalid token"))
			conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return
		}

		ch, errCh := ctrl.SendStream(ctx, claims.Email, input.ChatRequest)
		go func() {
			if err := <-errCh; err != nil {
				conn.Write(ctx, websocket.MessageText, wsErrorFrame(err.Error()))
				conn.Close(websocket.StatusInternalError, "stream error")
			}
		}()

		for chunk := range ch {
			if err := conn.Write(ctx, websocket.MessageText, []byte(chunk)); err != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})
	return r
}
