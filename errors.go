package sessionauth

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned by a UserRepository when no record exists for an identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by a UserRepository when creating an identity that already exists.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidOverrides reports an expiry override outside [0, MaxLifetimeSeconds].
	ErrInvalidOverrides = errors.New("invalid expiry overrides")
	// ErrEngineNotReady is returned when an Engine method is called on a nil or closed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Messages reproduced verbatim in rejection bodies.
const (
	MsgHeaderNotFound       = "Authorization header ('Bearer token') not found"
	MsgHeaderMalformed      = "Authorization header is malformed"
	MsgInvalidToken         = "Invalid JWT token"
	MsgTokenExpired         = "JWT token has expired"
	MsgRefreshRequired      = "Request body incomplete, refresh token required"
	MsgForbidden            = "Forbidden"
	MsgCredentialsRequired  = "Request body incomplete, both email and password are required"
	MsgIncorrectCredentials = "Incorrect email or password"
	MsgUserExists           = "User already exists"
	MsgUserNotFound         = "User not found"
	MsgInvalidOverrides     = "Request body invalid: expiry overrides must be between 0 and 315360000 seconds"
	MsgTooManyAttempts      = "Too many failed login attempts, try again later"
	internalMessagePrefix   = "Authentication Error: "
)

// ErrorKind classifies a Rejection.
type ErrorKind uint8

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindUnauthorized
	KindTokenExpired
	KindMalformed
	KindInvalidToken
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindTokenExpired:
		return "token_expired"
	case KindMalformed:
		return "malformed"
	case KindInvalidToken:
		return "invalid_token"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Status maps the kind onto an HTTP status code.
func (k ErrorKind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized, KindTokenExpired, KindMalformed, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Rejection is the typed failure produced by the gates and the session service.
// Message is safe to show to clients; Cause is kept for logs and errors.Is.
type Rejection struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Reject builds a Rejection with no underlying cause.
func Reject(kind ErrorKind, message string) *Rejection {
	return &Rejection{Kind: kind, Message: message}
}

// Internal wraps an unexpected failure. The cause text is included in the message;
// callers must not pass errors that embed secrets or raw tokens.
func Internal(cause error) *Rejection {
	msg := internalMessagePrefix + "unknown error"
	if cause != nil {
		msg = internalMessagePrefix + cause.Error()
	}
	return &Rejection{Kind: KindInternal, Message: msg, Cause: cause}
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	return r.Message
}

func (r *Rejection) Unwrap() error {
	if r == nil {
		return nil
	}
	return r.Cause
}

// Status returns the HTTP status code for the rejection.
func (r *Rejection) Status() int {
	if r == nil {
		return http.StatusOK
	}
	return r.Kind.Status()
}

// AsRejection converts err into a Rejection. Errors that are not already
// rejections become Internal.
func AsRejection(err error) *Rejection {
	if err == nil {
		return nil
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej
	}
	return Internal(err)
}
