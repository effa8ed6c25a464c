package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/sessionauth"
	"github.com/MrEthical07/sessionauth/internal/logctx"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRejection writes rej as an error body. Internal rejections are logged with their cause.
func WriteRejection(w http.ResponseWriter, r *http.Request, rej *sessionauth.Rejection) {
	if rej == nil {
		rej = sessionauth.Internal(nil)
	}
	if rej.Kind == sessionauth.KindInternal {
		logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "internal_error",
			slog.String("path", r.URL.Path),
			slog.Any("err", rej.Cause),
		)
	}
	WriteJSON(w, rej.Status(), ErrorBody{Error: true, Message: rej.Message})
}

// WriteError converts err with sessionauth.AsRejection and writes it.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	WriteRejection(w, r, sessionauth.AsRejection(err))
}
