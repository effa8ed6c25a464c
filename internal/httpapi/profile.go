package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/MrEthical07/sessionauth"
	"github.com/MrEthical07/sessionauth/middleware"
)

const dateLayout = "2006-01-02"

const (
	msgProfileStrings = "Request body invalid: firstName, lastName and address must be strings only."
	msgProfileDOB     = "Invalid input: dob must be a real date in format YYYY-MM-DD."
	msgProfileDOBPast = "Invalid input: dob must be a date in the past."
)

var dobPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// publicProfile is visible to everyone.
type publicProfile struct {
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// ownerProfile adds the private fields shown only to the profile owner.
type ownerProfile struct {
	publicProfile
	DOB     *string `json:"dob"`
	Address *string `json:"address"`
}

// profileRequest keeps raw values so non-string input can be told apart from missing input.
type profileRequest struct {
	FirstName any `json:"firstName"`
	LastName  any `json:"lastName"`
	DOB       any `json:"dob"`
	Address   any `json:"address"`
}

func (h *handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	rac, _ := sessionauth.AuthContextFrom(r.Context())
	if rac.Status() == sessionauth.AuthRejected {
		middleware.WriteRejection(w, r, rac.Rejection())
		return
	}

	target := sessionauth.NormalizeIdentity(emailParam(r))
	user, err := h.users.FindByIdentity(r.Context(), target)
	if err != nil {
		if errors.Is(err, sessionauth.ErrUserNotFound) {
			middleware.WriteRejection(w, r, sessionauth.Reject(sessionauth.KindNotFound, sessionauth.MsgUserNotFound))
			return
		}
		middleware.WriteError(w, r, err)
		return
	}

	pub := publicProfile{Email: string(user.Email), FirstName: user.FirstName, LastName: user.LastName}
	if id, ok := rac.Identity(); ok && id == user.Email {
		middleware.WriteJSON(w, http.StatusOK, ownerProfile{publicProfile: pub, DOB: formatDate(user.DOB), Address: user.Address})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, pub)
}

func (h *handlers) putProfile(w http.ResponseWriter, r *http.Request) {
	id, rej := sessionauth.RequireAuthorization(r.Context())
	if rej != nil {
		middleware.WriteRejection(w, r, rej)
		return
	}

	var in profileRequest
	decodeBody(r, &in)

	update, rej := validateProfile(in, h.now())
	if rej != nil {
		middleware.WriteRejection(w, r, rej)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, sessionauth.ErrUserNotFound) {
			middleware.WriteRejection(w, r, sessionauth.Reject(sessionauth.KindNotFound, sessionauth.MsgUserNotFound))
			return
		}
		middleware.WriteError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, ownerProfile{
		publicProfile: publicProfile{Email: string(user.Email), FirstName: user.FirstName, LastName: user.LastName},
		DOB:           formatDate(user.DOB),
		Address:       user.Address,
	})
}

// decodeBody decodes the JSON body into v, ignoring failures. Profile fields decode into any,
// so a broken body leaves them nil and validateProfile answers with a 400.
func decodeBody(r *http.Request, v any) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(v)
}

// validateProfile requires string names and address and a real calendar date before now.
func validateProfile(in profileRequest, now time.Time) (sessionauth.ProfileUpdate, *sessionauth.Rejection) {
	first, ok1 := in.FirstName.(string)
	last, ok2 := in.LastName.(string)
	addr, ok3 := in.Address.(string)
	if !ok1 || !ok2 || !ok3 {
		return sessionauth.ProfileUpdate{}, sessionauth.Reject(sessionauth.KindBadRequest, msgProfileStrings)
	}

	raw, ok := in.DOB.(string)
	if !ok || !dobPattern.MatchString(raw) {
		return sessionauth.ProfileUpdate{}, sessionauth.Reject(sessionauth.KindBadRequest, msgProfileDOB)
	}
	// time.Parse rejects out-of-range days such as 2023-02-30.
	dob, err := time.Parse(dateLayout, raw)
	if err != nil {
		return sessionauth.ProfileUpdate{}, sessionauth.Reject(sessionauth.KindBadRequest, msgProfileDOB)
	}
	if dob.After(now) {
		return sessionauth.ProfileUpdate{}, sessionauth.Reject(sessionauth.KindBadRequest, msgProfileDOBPast)
	}

	return sessionauth.ProfileUpdate{FirstName: first, LastName: last, Address: addr, DOB: dob}, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
