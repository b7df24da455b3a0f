package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/frahmantamala/epic-events-crm/internal"
	"golang.org/x/crypto/bcrypt"
)

var ErrAccountNotFound = errors.New("account not found")

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// unknownEmailHash is compared against when the email does not exist so the
// two rejection paths cost the same.
func unknownEmailHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// NormalizeEmail is the identity key used for lookups and throttling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Verifier struct {
	accounts AccountRepository
	logger   *slog.Logger
}

func NewVerifier(accounts AccountRepository, logger *slog.Logger) *Verifier {
	return &Verifier{accounts: accounts, logger: logger}
}

// Authenticate returns the actor for a matching email and password. Unknown
// email and wrong password yield the same ErrInvalidCredentials; only the log
// tells them apart.
func (v *Verifier) Authenticate(ctx context.Context, email, password string) (*Actor, error) {
	email = NormalizeEmail(email)

	account, err := v.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(unknownEmailHash(), []byte(password))
			v.logger.WarnContext(ctx, "login rejected: unknown email", "email", email)
			return nil, internal.ErrInvalidCredentials
		}
		v.logger.ErrorContext(ctx, "failed to look up account", "error", err, "email", email)
		return nil, internal.NewInternalError("failed to look up account", err)
	}

	if !VerifyPassword(account.PasswordHash, password) {
		v.logger.WarnContext(ctx, "login rejected: wrong password", "email", email, "user_id", account.ID)
		return nil, internal.ErrInvalidCredentials
	}

	actor := account.Actor
	return &actor, nil
}
