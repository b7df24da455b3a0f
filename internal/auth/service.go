package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
)

// Session is an authenticated actor together with the token that proves it.
type Session struct {
	Actor     *Actor    `json:"actor"`
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ServiceAPI interface {
	CheckThrottle(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*Session, error)
	Restore(ctx context.Context) (*Session, error)
	Logout(ctx context.Context, actor *Actor) error
	ActorFromToken(ctx context.Context, token string) (*Actor, error)
}

// Service drives login, session restore and logout. The token store is
// optional; the HTTP transport runs without one.
type Service struct {
	verifier  *Verifier
	accounts  AccountRepository
	tokens    *TokenService
	guard     *Guard
	store     TokenStore
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(accounts AccountRepository, tokens *TokenService, guard *Guard, store TokenStore, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		verifier:  NewVerifier(accounts, logger),
		accounts:  accounts,
		tokens:    tokens,
		guard:     guard,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// CheckThrottle lets an interactive caller refuse a locked identity before
// prompting for a password.
func (s *Service) CheckThrottle(ctx context.Context, email string) error {
	status, err := s.guard.Check(ctx, NormalizeEmail(email))
	if err != nil {
		return internal.NewInternalError("failed to check login throttle", err)
	}
	if !status.Allowed {
		return internal.NewLockedOutError(status.RetryAfter, status.LockedUntil)
	}
	return nil
}

// Login consults the throttle before anything touches the credential store.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	identity := NormalizeEmail(email)
	if identity == "" || password == "" {
		return nil, internal.NewValidationError("email and password are required", internal.ErrCodeValidationFailed)
	}

	if err := s.CheckThrottle(ctx, identity); err != nil {
		if internal.IsType(err, internal.ErrorTypeLocked) {
			loginAttempts.WithLabelValues("locked_out").Inc()
			s.logger.WarnContext(ctx, "login refused: identity locked out", "email", identity)
		}
		return nil, err
	}

	actor, err := s.verifier.Authenticate(ctx, identity, password)
	if err != nil {
		if !errors.Is(err, internal.ErrInvalidCredentials) {
			loginAttempts.WithLabelValues("error").Inc()
			return nil, err
		}
		return nil, s.failed(ctx, identity)
	}

	if err := s.guard.RecordSuccess(ctx, identity); err != nil {
		s.logger.ErrorContext(ctx, "failed to reset login attempts", "error", err, "email", identity)
	}

	token, expiresAt, err := s.tokens.Issue(actor)
	if err != nil {
		loginAttempts.WithLabelValues("error").Inc()
		return nil, internal.NewInternalError("failed to issue session token", err)
	}
	if s.store != nil {
		if err := s.store.Save(token); err != nil {
			return nil, internal.NewInternalError("failed to persist session token", err)
		}
	}

	loginAttempts.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "login succeeded", "user_id", actor.ID, "role", actor.Role)
	s.audit(ctx, events.NewAuditEvent(events.EventTypeLoginSucceeded, actor.Ref(), "user", actor.ID, nil))

	return &Session{Actor: actor, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) failed(ctx context.Context, identity string) error {
	loginAttempts.WithLabelValues("invalid_credentials").Inc()
	status, err := s.guard.RecordFailure(ctx, identity)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure", "error", err, "email", identity)
		return internal.ErrInvalidCredentials
	}

	data := map[string]interface{}{"email": identity, "attempts": status.Attempts}
	s.audit(ctx, events.NewAuditEvent(events.EventTypeLoginFailed, events.ActorRef{}, "user", 0, data))
	if !status.Allowed {
		s.audit(ctx, events.NewAuditEvent(events.EventTypeLockedOut, events.ActorRef{}, "user", 0, data))
	}
	return internal.ErrInvalidCredentials
}

// Restore resumes the stored session. Any token problem means no session;
// a token whose actor is gone or changed id is removed.
func (s *Service) Restore(ctx context.Context) (*Session, error) {
	if s.store == nil {
		return nil, internal.ErrNoSession
	}
	token, ok, err := s.store.Load()
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read stored session token", "error", err)
		sessionRestores.WithLabelValues("none").Inc()
		return nil, internal.ErrNoSession
	}
	if !ok {
		sessionRestores.WithLabelValues("none").Inc()
		return nil, internal.ErrNoSession
	}

	claims, valid := s.tokens.Validate(token)
	if !valid {
		sessionRestores.WithLabelValues("invalid").Inc()
		return nil, internal.ErrNoSession
	}

	actor, err := s.resolve(ctx, claims)
	if err != nil {
		sessionRestores.WithLabelValues("actor_missing").Inc()
		if clearErr := s.store.Clear(); clearErr != nil {
			s.logger.WarnContext(ctx, "failed to clear stale session token", "error", clearErr)
		}
		return nil, internal.ErrNoSession
	}

	sessionRestores.WithLabelValues("restored").Inc()
	return &Session{Actor: actor, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// resolve re-reads the actor so a deleted user or a role change takes effect
// on the next invocation.
func (s *Service) resolve(ctx context.Context, claims *Claims) (*Actor, error) {
	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(claims.Subject))
	if err != nil {
		s.logger.InfoContext(ctx, "session actor not found", "email", claims.Subject, "error", err)
		return nil, internal.ErrNoSession
	}
	if account.ID != claims.UserID {
		s.logger.WarnContext(ctx, "session actor id mismatch", "email", claims.Subject, "token_user_id", claims.UserID, "user_id", account.ID)
		return nil, internal.ErrNoSession
	}
	actor := account.Actor
	return &actor, nil
}

func (s *Service) Logout(ctx context.Context, actor *Actor) error {
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			return internal.NewInternalError("failed to clear session token", err)
		}
	}
	if actor != nil {
		s.logger.InfoContext(ctx, "logged out", "user_id", actor.ID)
		s.audit(ctx, events.NewAuditEvent(events.EventTypeLogout, actor.Ref(), "user", actor.ID, nil))
	}
	return nil
}

// ActorFromToken authenticates a bearer token without touching the store.
func (s *Service) ActorFromToken(ctx context.Context, token string) (*Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		s.logger.InfoContext(ctx, "bearer token rejected", "error", err)
		return nil, internal.ErrInvalidToken
	}
	actor, err := s.resolve(ctx, claims)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	return actor, nil
}

func (s *Service) audit(ctx context.Context, event events.Event) {
	events.Record(ctx, s.publisher, s.logger, event)
}
