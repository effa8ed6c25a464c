package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/sessionauth"
	"github.com/MrEthical07/sessionauth/internal/logctx"
	"github.com/MrEthical07/sessionauth/internal/rate"
	"github.com/MrEthical07/sessionauth/middleware"
)

type handlers struct {
	sessions *sessionauth.SessionService
	users    sessionauth.UserRepository
	limiter  LoginLimiter
	now      func() time.Time
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	sessionauth.Overrides
}

type messageResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

const (
	msgRegistered  = "User successfully registered"
	msgInvalidated = "Token successfully invalidated"
)

// decodeCredentials decodes the login or register body. An empty body leaves in zero so the
// required-field checks answer with the usual 400. Any other decode failure is a 400 too:
// encoding/json may already have allocated an override pointer holding zero.
func decodeCredentials(r *http.Request, in *credentialsRequest) *sessionauth.Rejection {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(in)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && isOverrideField(typeErr.Field) {
		return &sessionauth.Rejection{Kind: sessionauth.KindBadRequest, Message: sessionauth.MsgInvalidOverrides, Cause: err}
	}
	return &sessionauth.Rejection{Kind: sessionauth.KindBadRequest, Message: sessionauth.MsgCredentialsRequired, Cause: err}
}

func isOverrideField(field string) bool {
	switch field[strings.LastIndexByte(field, '.')+1:] {
	case "longExpiry", "bearerExpiresInSeconds", "refreshExpiresInSeconds":
		return true
	}
	return false
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if rej := decodeCredentials(r, &in); rej != nil {
		middleware.WriteRejection(w, r, rej)
		return
	}

	if err := h.sessions.Register(r.Context(), sessionauth.NormalizeIdentity(in.Email), in.Password); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]string{"message": msgRegistered})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if rej := decodeCredentials(r, &in); rej != nil {
		middleware.WriteRejection(w, r, rej)
		return
	}
	ident := sessionauth.NormalizeIdentity(in.Email)

	if rej := h.checkLimit(r, ident); rej != nil {
		middleware.WriteRejection(w, r, rej)
		return
	}

	id, err := h.sessions.VerifyCredentials(r.Context(), ident, in.Password)
	if err != nil {
		if rej := sessionauth.AsRejection(err); rej.Kind == sessionauth.KindUnauthorized {
			h.recordFailure(r, ident)
		}
		middleware.WriteError(w, r, err)
		return
	}

	pair, err := h.sessions.Login(r.Context(), id, in.Overrides)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	h.resetLimit(r, id)
	middleware.WriteJSON(w, http.StatusOK, pair)
}

// The limiter fails open: a Redis outage is logged and the login proceeds.
func (h *handlers) checkLimit(r *http.Request, id sessionauth.Identity) *sessionauth.Rejection {
	if h.limiter == nil || id == "" {
		return nil
	}
	err := h.limiter.CheckLogin(r.Context(), string(id))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return &sessionauth.Rejection{Kind: sessionauth.KindTooManyRequests, Message: sessionauth.MsgTooManyAttempts, Cause: err}
	default:
		logctx.From(r.Context()).Warn("login_limiter_unavailable", slog.Any("err", err))
		return nil
	}
}

func (h *handlers) recordFailure(r *http.Request, id sessionauth.Identity) {
	if h.limiter == nil {
		return
	}
	if err := h.limiter.RecordFailure(r.Context(), string(id)); err != nil {
		logctx.From(r.Context()).Warn("login_limiter_unavailable", slog.Any("err", err))
	}
}

func (h *handlers) resetLimit(r *http.Request, id sessionauth.Identity) {
	if h.limiter == nil {
		return
	}
	if err := h.limiter.Reset(r.Context(), string(id)); err != nil {
		logctx.From(r.Context()).Warn("login_limiter_unavailable", slog.Any("err", err))
	}
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	handle, ok := middleware.SessionFrom(r.Context())
	if !ok {
		middleware.WriteRejection(w, r, sessionauth.Reject(sessionauth.KindBadRequest, sessionauth.MsgRefreshRequired))
		return
	}

	pair, err := h.sessions.Refresh(r.Context(), handle)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, pair)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	handle, ok := middleware.SessionFrom(r.Context())
	if !ok {
		middleware.WriteRejection(w, r, sessionauth.Reject(sessionauth.KindBadRequest, sessionauth.MsgRefreshRequired))
		return
	}

	if err := h.sessions.Logout(r.Context(), handle.Identity()); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, messageResponse{Error: false, Message: msgInvalidated})
}
