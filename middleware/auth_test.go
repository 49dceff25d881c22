package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stashbox/config"
	"stashbox/models"
	"stashbox/services"

	"github.com/gin-gonic/gin"
)

type stubUserService struct {
	user models.User
	err  error
}

func (s *stubUserService) CreateAccount(context.Context, services.CreateAccountInput) (services.CreateAccountOutput, error) {
	return services.CreateAccountOutput{}, nil
}

func (s *stubUserService) SignIn(context.Context, string) (services.SignInOutput, error) {
	return services.SignInOutput{}, nil
}

func (s *stubUserService) VerifyOTP(context.Context, string, string) (string, error) {
	return "", nil
}

func (s *stubUserService) CurrentUser(context.Context, string) (models.User, error) {
	return s.user, s.err
}

func (s *stubUserService) SignOut(context.Context, string) error {
	return nil
}

func runAuthMiddleware(t *testing.T, stub *stubUserService, inner gin.HandlerFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{Auth: config.AuthConfig{CookieName: "app-session"}}

	nextCalled := false
	r := gin.New()
	r.GET("/api/files", AuthMiddleware(stub), func(c *gin.Context) {
		nextCalled = true
		if inner != nil {
			inner(c)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.AddCookie(&http.Cookie{Name: "app-session", Value: "secret-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, nextCalled
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	stub := &stubUserService{user: models.User{ID: 7, AccountID: "acc-7", Email: "alice@example.com"}}

	var userID uint
	var email, accountID, secret string
	w, nextCalled := runAuthMiddleware(t, stub, func(c *gin.Context) {
		userID = c.GetUint("user_id")
		email = c.GetString("user_email")
		accountID = c.GetString("account_id")
		secret = c.GetString("session_secret")
	})

	if !nextCalled || w.Code != http.StatusOK {
		t.Fatalf("expected the chain to continue, got %d", w.Code)
	}
	if userID != 7 || email != "alice@example.com" {
		t.Fatalf("expected identity in context, got user_id=%d email=%s", userID, email)
	}
	if accountID != "acc-7" || secret != "secret-1" {
		t.Fatalf("expected account id and session secret in context")
	}
}

func TestAuthMiddlewareNoCurrentUser(t *testing.T) {
	stub := &stubUserService{err: services.ErrNoCurrentUser}

	w, nextCalled := runAuthMiddleware(t, stub, nil)
	if nextCalled {
		t.Fatalf("expected the chain to abort")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected HTTP 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareInvalidSession(t *testing.T) {
	stub := &stubUserService{err: &services.AppError{
		HTTPCode: http.StatusUnauthorized,
		Kind:     services.KindNotAuthenticated,
		Message:  "session invalid or expired",
	}}

	w, nextCalled := runAuthMiddleware(t, stub, nil)
	if nextCalled {
		t.Fatalf("expected the chain to abort")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected HTTP 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareUpstreamFailureIsNot401(t *testing.T) {
	stub := &stubUserService{err: &services.AppError{
		HTTPCode: http.StatusInternalServerError,
		Kind:     services.KindUpstream,
		Message:  "failed to resolve session",
	}}

	w, nextCalled := runAuthMiddleware(t, stub, nil)
	if nextCalled {
		t.Fatalf("expected the chain to abort")
	}
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("a session-store outage must surface as 500, got %d", w.Code)
	}
}
