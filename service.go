package sessionauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/sessionauth/jwt"
	"github.com/MrEthical07/sessionauth/password"
	"github.com/MrEthical07/sessionauth/session"
	"github.com/google/uuid"
)

// TokenIssuer signs credentials. *jwt.Codec implements it.
type TokenIssuer interface {
	Issue(g jwt.Grant) (string, error)
}

// ServiceConfig wires the collaborators of a SessionService.
type ServiceConfig struct {
	Issuer  TokenIssuer
	Store   session.Store
	Users   UserRepository
	Hasher  password.Hasher
	Policy  CredentialPolicy
	Metrics *Metrics
	// NewID returns the token id embedded in each credential. Defaults to uuid.NewString.
	NewID func() string
	Now   func() time.Time
}

// SessionService orchestrates registration, login, refresh and logout.
// It is safe for concurrent use; the session store serializes per-identity writes.
type SessionService struct {
	issuer  TokenIssuer
	store   session.Store
	users   UserRepository
	hasher  password.Hasher
	policy  CredentialPolicy
	metrics *Metrics
	audit   *auditDispatcher
	newID   func() string
	now     func() time.Time
}

func NewSessionService(cfg ServiceConfig) (*SessionService, error) {
	if cfg.Issuer == nil {
		return nil, errors.New("token issuer required")
	}
	if cfg.Store == nil {
		return nil, errors.New("session store required")
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Policy == (CredentialPolicy{}) {
		cfg.Policy = NewCredentialPolicy(PolicyConfig{})
	}

	return &SessionService{
		issuer:  cfg.Issuer,
		store:   cfg.Store,
		users:   cfg.Users,
		hasher:  cfg.Hasher,
		policy:  cfg.Policy,
		metrics: cfg.Metrics,
		newID:   cfg.NewID,
		now:     cfg.Now,
	}, nil
}

// Policy returns the credential policy used by Login and Refresh.
func (s *SessionService) Policy() CredentialPolicy { return s.policy }

// Login issues a credential pair for id with lifetimes resolved from o and stores the
// refresh token, replacing whatever the identity held before.
func (s *SessionService) Login(ctx context.Context, id Identity, o Overrides) (TokenPair, error) {
	const op = "sessionauth.Login"

	if id == "" {
		return TokenPair{}, Reject(KindBadRequest, MsgCredentialsRequired)
	}
	if err := o.Validate(); err != nil {
		return TokenPair{}, &Rejection{Kind: KindBadRequest, Message: MsgInvalidOverrides, Cause: err}
	}

	pair, err := s.issuePair(id, s.policy.Resolve(o))
	if err != nil {
		return TokenPair{}, Internal(fmt.Errorf("%s: %w", op, err))
	}
	if err := s.store.SetRefreshToken(ctx, string(id), pair.Refresh.Token); err != nil {
		return TokenPair{}, Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Inc(MetricLoginSuccess)
	s.audit.record(ctx, AuditLoginSuccess, id, true, "")
	return pair, nil
}

// Refresh issues a new pair with default lifetimes and rotates the stored refresh token
// away from the one h was validated with. Only one of several concurrent refreshes with
// the same token succeeds; the others get TokenExpired.
func (s *SessionService) Refresh(ctx context.Context, h *SessionHandle) (TokenPair, error) {
	const op = "sessionauth.Refresh"

	if h == nil {
		return TokenPair{}, Internal(fmt.Errorf("%s: nil session handle", op))
	}

	pair, err := s.issuePair(h.Identity(), s.policy.Defaults())
	if err != nil {
		return TokenPair{}, Internal(fmt.Errorf("%s: %w", op, err))
	}

	if err := h.Rotate(ctx, pair.Refresh.Token); err != nil {
		if errors.Is(err, session.ErrMismatch) {
			s.metrics.Inc(MetricRefreshRaceLost)
			s.audit.record(ctx, AuditRefreshRejected, h.Identity(), false, KindTokenExpired.String())
			return TokenPair{}, &Rejection{Kind: KindTokenExpired, Message: MsgTokenExpired, Cause: err}
		}
		return TokenPair{}, Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Inc(MetricRefreshSuccess)
	s.audit.record(ctx, AuditRefreshSuccess, h.Identity(), true, "")
	return pair, nil
}

// Logout clears the identity's refresh slot. Clearing an empty slot succeeds.
func (s *SessionService) Logout(ctx context.Context, id Identity) error {
	const op = "sessionauth.Logout"

	if err := s.store.Clear(ctx, string(id)); err != nil {
		return Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Inc(MetricLogout)
	s.audit.record(ctx, AuditLogout, id, true, "")
	return nil
}

// Register creates a user with a hashed password.
func (s *SessionService) Register(ctx context.Context, id Identity, plain string) error {
	const op = "sessionauth.Register"

	if id == "" || plain == "" {
		return Reject(KindBadRequest, MsgCredentialsRequired)
	}
	if s.users == nil || s.hasher == nil {
		return Internal(fmt.Errorf("%s: %w", op, ErrEngineNotReady))
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return Internal(fmt.Errorf("%s: %w", op, err))
	}

	err = s.users.Create(ctx, UserRecord{Email: id, PasswordHash: hash, CreatedAt: s.now().UTC()})
	switch {
	case errors.Is(err, ErrUserExists):
		s.metrics.Inc(MetricRegisterDuplicate)
		s.audit.record(ctx, AuditRegisterDuplicate, id, false, KindConflict.String())
		return &Rejection{Kind: KindConflict, Message: MsgUserExists, Cause: err}
	case err != nil:
		return Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.metrics.Inc(MetricRegisterSuccess)
	s.audit.record(ctx, AuditRegisterSuccess, id, true, "")
	return nil
}

// VerifyCredentials checks plain against the stored hash for id. Unknown users and wrong
// passwords produce the same Unauthorized rejection.
func (s *SessionService) VerifyCredentials(ctx context.Context, id Identity, plain string) (Identity, error) {
	const op = "sessionauth.VerifyCredentials"

	if id == "" || plain == "" {
		return "", Reject(KindBadRequest, MsgCredentialsRequired)
	}
	if s.users == nil || s.hasher == nil {
		return "", Internal(fmt.Errorf("%s: %w", op, ErrEngineNotReady))
	}

	user, err := s.users.FindByIdentity(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return "", s.loginFailed(ctx, id, err)
	}
	if err != nil {
		return "", Internal(fmt.Errorf("%s: %w", op, err))
	}

	ok, err := s.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		return "", Internal(fmt.Errorf("%s: %w", op, err))
	}
	if !ok {
		return "", s.loginFailed(ctx, id, nil)
	}
	return user.Email, nil
}

func (s *SessionService) loginFailed(ctx context.Context, id Identity, cause error) *Rejection {
	s.metrics.Inc(MetricLoginFailure)
	s.audit.record(ctx, AuditLoginFailed, id, false, KindUnauthorized.String())
	return &Rejection{Kind: KindUnauthorized, Message: MsgIncorrectCredentials, Cause: cause}
}

func (s *SessionService) issuePair(id Identity, lt Lifetimes) (TokenPair, error) {
	bearer, err := s.issuer.Issue(jwt.Grant{
		Subject:  string(id),
		Kind:     jwt.KindBearer,
		Lifetime: time.Duration(lt.BearerSeconds) * time.Second,
		ID:       s.newID(),
	})
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.Issue(jwt.Grant{
		Subject:  string(id),
		Kind:     jwt.KindRefresh,
		Lifetime: time.Duration(lt.RefreshSeconds) * time.Second,
		ID:       s.newID(),
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		Bearer:  IssuedToken{Token: bearer, TokenType: TokenTypeBearer, ExpiresIn: lt.BearerSeconds},
		Refresh: IssuedToken{Token: refresh, TokenType: TokenTypeRefresh, ExpiresIn: lt.RefreshSeconds},
	}, nil
}
