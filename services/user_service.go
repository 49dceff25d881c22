package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"stashbox/config"
	"stashbox/logger"
	"stashbox/mailer"
	"stashbox/models"
	"stashbox/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const avatarPlaceholderURL = "/static/avatar-placeholder.png"

type CreateAccountInput struct {
	FullName string
	Email    string
}

type CreateAccountOutput struct {
	AccountID string `json:"account_id"`
}

// SignInOutput is a discriminated result: Found=false means the email
// resolves to no account, which is a normal outcome, not an error.
type SignInOutput struct {
	Found     bool   `json:"found"`
	AccountID string `json:"account_id,omitempty"`
}

type UserService interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (CreateAccountOutput, error)
	SignIn(ctx context.Context, email string) (SignInOutput, error)
	VerifyOTP(ctx context.Context, accountID string, code string) (string, error)
	CurrentUser(ctx context.Context, sessionSecret string) (models.User, error)
	SignOut(ctx context.Context, sessionSecret string) error
}

type userService struct {
	txManager repositories.TxManager
	users     repositories.UserRepository
	sessions  repositories.SessionRepository
	otps      repositories.OTPRepository
	mail      mailer.Mailer
}

func NewUserService(
	txManager repositories.TxManager,
	users repositories.UserRepository,
	sessions repositories.SessionRepository,
	otps repositories.OTPRepository,
	mail mailer.Mailer,
) UserService {
	return &userService{
		txManager: txManager,
		users:     users,
		sessions:  sessions,
		otps:      otps,
		mail:      mail,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashOTPCode(code string) string {
	sum := sha256.Sum256([]byte(code + config.AppConfig.Auth.OTPPepper))
	return hex.EncodeToString(sum[:])
}

func newSessionSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// issueOTP generates a fresh passcode, stores only its hash, and mails
// the code. The passcode itself never leaves this function except by
// email.
func (s *userService) issueOTP(ctx context.Context, accountID string, email string) error {
	code, err := generateOTPCode()
	if err != nil {
		return err
	}
	ttl := time.Duration(config.AppConfig.Auth.OTPExpireSeconds) * time.Second
	if err := s.otps.Save(ctx, accountID, hashOTPCode(code), ttl); err != nil {
		return err
	}
	return s.mail.SendOTP(ctx, email, code)
}

// CreateAccount issues a fresh passcode whether or not the email already
// has an account; a user record is only created for new emails. The
// caller gets the account identity back, never the passcode.
func (s *userService) CreateAccount(ctx context.Context, in CreateAccountInput) (CreateAccountOutput, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.users.GetByEmail(ctx, nil, email)
	if err == nil {
		if err := s.issueOTP(ctx, existing.AccountID, email); err != nil {
			return CreateAccountOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to send passcode", err)
		}
		return CreateAccountOutput{AccountID: existing.AccountID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return CreateAccountOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to query user", err)
	}

	accountID := uuid.New().String()
	user := models.User{
		AccountID: accountID,
		FullName:  in.FullName,
		Email:     email,
		Avatar:    avatarPlaceholderURL,
	}
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.users.Create(ctx, tx, &user)
	})
	if err != nil {
		return CreateAccountOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to create user", err)
	}

	if err := s.issueOTP(ctx, accountID, email); err != nil {
		return CreateAccountOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to send passcode", err)
	}
	return CreateAccountOutput{AccountID: accountID}, nil
}

func (s *userService) SignIn(ctx context.Context, email string) (SignInOutput, error) {
	user, err := s.users.GetByEmail(ctx, nil, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SignInOutput{Found: false}, nil
		}
		return SignInOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to query user", err)
	}

	if err := s.issueOTP(ctx, user.AccountID, user.Email); err != nil {
		return SignInOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to send passcode", err)
	}
	return SignInOutput{Found: true, AccountID: user.AccountID}, nil
}

// VerifyOTP exchanges account identity plus passcode for an opaque
// session secret. The stored code is single use and attempt limited.
func (s *userService) VerifyOTP(ctx context.Context, accountID string, code string) (string, error) {
	storedHash, attempts, err := s.otps.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrOTPNotFound) {
			return "", newAppError(http.StatusUnauthorized, KindNotAuthenticated, "passcode expired or never issued", nil)
		}
		return "", newAppError(http.StatusInternalServerError, KindUpstream, "failed to check passcode", err)
	}
	if attempts >= int64(config.AppConfig.Auth.OTPMaxAttempts) {
		return "", newAppError(http.StatusUnauthorized, KindNotAuthenticated, "too many failed attempts", nil)
	}

	candidate := hashOTPCode(code)
	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidate)) != 1 {
		if _, err := s.otps.IncrAttempts(ctx, accountID); err != nil {
			logger.Warnf("failed to record passcode attempt for account %s: %v", accountID, err)
		}
		return "", newAppError(http.StatusUnauthorized, KindNotAuthenticated, "invalid passcode", nil)
	}

	if err := s.otps.Delete(ctx, accountID); err != nil {
		logger.Warnf("failed to discard used passcode for account %s: %v", accountID, err)
	}

	secret, err := newSessionSecret()
	if err != nil {
		return "", newAppError(http.StatusInternalServerError, KindUpstream, "failed to create session", err)
	}
	ttl := time.Duration(config.AppConfig.Auth.SessionExpireHour) * time.Hour
	if err := s.sessions.Create(ctx, secret, accountID, ttl); err != nil {
		return "", newAppError(http.StatusInternalServerError, KindUpstream, "failed to create session", err)
	}
	return secret, nil
}

// CurrentUser resolves a session secret to a user record. An empty
// secret and a session whose user record is gone both return
// ErrNoCurrentUser; an unknown secret is a not-authenticated AppError.
func (s *userService) CurrentUser(ctx context.Context, sessionSecret string) (models.User, error) {
	if sessionSecret == "" {
		return models.User{}, ErrNoCurrentUser
	}

	accountID, err := s.sessions.Resolve(ctx, sessionSecret)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return models.User{}, newAppError(http.StatusUnauthorized, KindNotAuthenticated, "session invalid or expired", nil)
		}
		return models.User{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to resolve session", err)
	}

	user, err := s.users.GetByAccountID(ctx, nil, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNoCurrentUser
		}
		return models.User{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to query user", err)
	}
	return user, nil
}

// SignOut invalidates the session best effort; callers redirect to the
// sign-in entry point regardless of the outcome.
func (s *userService) SignOut(ctx context.Context, sessionSecret string) error {
	if sessionSecret == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionSecret); err != nil {
		logger.Warnf("failed to invalidate session: %v", err)
		return newAppError(http.StatusInternalServerError, KindUpstream, "failed to invalidate session", err)
	}
	return nil
}
