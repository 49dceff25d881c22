package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"stashbox/config"
	"stashbox/models"
	"stashbox/repositories"

	"gorm.io/gorm"
)

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	usersByEmail   map[string]models.User
	usersByAccount map[string]models.User
	nextID         uint
	createErr      error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		usersByEmail:   map[string]models.User{},
		usersByAccount: map[string]models.User{},
		nextID:         1,
	}
}

func (r *fakeUserRepo) add(user models.User) {
	r.usersByEmail[user.Email] = user
	r.usersByAccount[user.AccountID] = user
}

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = r.nextID
	r.nextID++
	r.add(*user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uint) (models.User, error) {
	for _, u := range r.usersByEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, email string) (models.User, error) {
	u, ok := r.usersByEmail[email]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByAccountID(_ context.Context, _ *gorm.DB, accountID string) (models.User, error) {
	u, ok := r.usersByAccount[accountID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeSessionRepo struct {
	sessions map[string]string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]string{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, secret string, accountID string, _ time.Duration) error {
	r.sessions[secret] = accountID
	return nil
}

func (r *fakeSessionRepo) Resolve(_ context.Context, secret string) (string, error) {
	accountID, ok := r.sessions[secret]
	if !ok {
		return "", repositories.ErrSessionNotFound
	}
	return accountID, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, secret string) error {
	delete(r.sessions, secret)
	return nil
}

type fakeOTPRepo struct {
	hashes   map[string]string
	attempts map[string]int64
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{hashes: map[string]string{}, attempts: map[string]int64{}}
}

func (r *fakeOTPRepo) Save(_ context.Context, accountID string, codeHash string, _ time.Duration) error {
	r.hashes[accountID] = codeHash
	r.attempts[accountID] = 0
	return nil
}

func (r *fakeOTPRepo) Get(_ context.Context, accountID string) (string, int64, error) {
	hash, ok := r.hashes[accountID]
	if !ok {
		return "", 0, repositories.ErrOTPNotFound
	}
	return hash, r.attempts[accountID], nil
}

func (r *fakeOTPRepo) IncrAttempts(_ context.Context, accountID string) (int64, error) {
	r.attempts[accountID]++
	return r.attempts[accountID], nil
}

func (r *fakeOTPRepo) Delete(_ context.Context, accountID string) error {
	delete(r.hashes, accountID)
	delete(r.attempts, accountID)
	return nil
}

type recordingMailer struct {
	emails []string
	codes  []string
	err    error
}

func (m *recordingMailer) SendOTP(_ context.Context, email, code string) error {
	if m.err != nil {
		return m.err
	}
	m.emails = append(m.emails, email)
	m.codes = append(m.codes, code)
	return nil
}

func authTestConfig() {
	config.AppConfig = &config.Config{
		Auth: config.AuthConfig{
			CookieName:        "app-session",
			OTPPepper:         "test-pepper",
			OTPExpireSeconds:  300,
			OTPMaxAttempts:    5,
			SessionExpireHour: 168,
		},
	}
}

func newUserServiceForTest() (*userService, *fakeUserRepo, *fakeSessionRepo, *fakeOTPRepo, *recordingMailer) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	otps := newFakeOTPRepo()
	mail := &recordingMailer{}
	svc := NewUserService(fakeTxManager{}, users, sessions, otps, mail).(*userService)
	return svc, users, sessions, otps, mail
}

func TestCreateAccountNewEmail(t *testing.T) {
	authTestConfig()
	svc, users, _, otps, mail := newUserServiceForTest()

	out, err := svc.CreateAccount(context.Background(), CreateAccountInput{FullName: "Alice Doe", Email: "Alice@Example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AccountID == "" {
		t.Fatalf("expected an account id")
	}

	user, ok := users.usersByEmail["alice@example.com"]
	if !ok {
		t.Fatalf("expected user record for normalized email")
	}
	if user.AccountID != out.AccountID {
		t.Fatalf("account id mismatch: %s vs %s", user.AccountID, out.AccountID)
	}
	if user.Avatar == "" {
		t.Fatalf("expected a placeholder avatar")
	}
	if _, ok := otps.hashes[out.AccountID]; !ok {
		t.Fatalf("expected a stored passcode hash")
	}
	if len(mail.emails) != 1 || mail.emails[0] != "alice@example.com" {
		t.Fatalf("expected one passcode email to alice, got %v", mail.emails)
	}
}

func TestCreateAccountExistingEmailReusesAccount(t *testing.T) {
	authTestConfig()
	svc, users, _, otps, mail := newUserServiceForTest()
	users.add(models.User{ID: 7, AccountID: "acc-7", FullName: "Bob", Email: "bob@example.com"})

	out, err := svc.CreateAccount(context.Background(), CreateAccountInput{FullName: "Bobby", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AccountID != "acc-7" {
		t.Fatalf("expected existing account id, got %s", out.AccountID)
	}
	if len(users.usersByEmail) != 1 {
		t.Fatalf("expected no new user record")
	}
	if _, ok := otps.hashes["acc-7"]; !ok {
		t.Fatalf("expected a fresh passcode for the existing account")
	}
	if len(mail.emails) != 1 {
		t.Fatalf("expected one passcode email, got %d", len(mail.emails))
	}
}

func TestSignInUnknownEmailIsNotAnError(t *testing.T) {
	authTestConfig()
	svc, _, _, _, mail := newUserServiceForTest()

	out, err := svc.SignIn(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Found {
		t.Fatalf("expected Found=false for an unknown email")
	}
	if len(mail.emails) != 0 {
		t.Fatalf("expected no passcode email for an unknown email")
	}
}

func TestSignInKnownEmailIssuesPasscode(t *testing.T) {
	authTestConfig()
	svc, users, _, otps, mail := newUserServiceForTest()
	users.add(models.User{ID: 1, AccountID: "acc-1", Email: "carol@example.com"})

	out, err := svc.SignIn(context.Background(), "Carol@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Found || out.AccountID != "acc-1" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if _, ok := otps.hashes["acc-1"]; !ok {
		t.Fatalf("expected a stored passcode hash")
	}
	if len(mail.codes) != 1 || len(mail.codes[0]) != 6 {
		t.Fatalf("expected one six-digit passcode, got %v", mail.codes)
	}
}

func TestVerifyOTPSuccessCreatesSession(t *testing.T) {
	authTestConfig()
	svc, users, sessions, otps, mail := newUserServiceForTest()
	users.add(models.User{ID: 1, AccountID: "acc-1", Email: "dan@example.com"})
	if _, err := svc.SignIn(context.Background(), "dan@example.com"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	secret, err := svc.VerifyOTP(context.Background(), "acc-1", mail.codes[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret == "" {
		t.Fatalf("expected a session secret")
	}
	if sessions.sessions[secret] != "acc-1" {
		t.Fatalf("expected session to resolve to acc-1")
	}
	if _, ok := otps.hashes["acc-1"]; ok {
		t.Fatalf("expected the passcode to be single use")
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	authTestConfig()
	svc, users, sessions, otps, mail := newUserServiceForTest()
	users.add(models.User{ID: 1, AccountID: "acc-1", Email: "eve@example.com"})
	if _, err := svc.SignIn(context.Background(), "eve@example.com"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	wrong := "000000"
	if wrong == mail.codes[0] {
		wrong = "000001"
	}
	_, err := svc.VerifyOTP(context.Background(), "acc-1", wrong)
	if err == nil {
		t.Fatalf("expected an error for a wrong passcode")
	}
	appErr, ok := err.(*AppError)
	if !ok || appErr.HTTPCode != 401 {
		t.Fatalf("expected HTTP 401 AppError, got %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("expected no session after a failed verification")
	}
	if otps.attempts["acc-1"] != 1 {
		t.Fatalf("expected attempt counter 1, got %d", otps.attempts["acc-1"])
	}
}

func TestVerifyOTPTooManyAttempts(t *testing.T) {
	authTestConfig()
	svc, users, _, otps, mail := newUserServiceForTest()
	users.add(models.User{ID: 1, AccountID: "acc-1", Email: "frank@example.com"})
	if _, err := svc.SignIn(context.Background(), "frank@example.com"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	otps.attempts["acc-1"] = 5

	_, err := svc.VerifyOTP(context.Background(), "acc-1", mail.codes[0])
	if err == nil {
		t.Fatalf("expected an error once the attempt limit is reached")
	}
	appErr, ok := err.(*AppError)
	if !ok || appErr.HTTPCode != 401 {
		t.Fatalf("expected HTTP 401 AppError, got %v", err)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	authTestConfig()
	svc, _, _, _, _ := newUserServiceForTest()

	_, err := svc.VerifyOTP(context.Background(), "acc-unknown", "123456")
	appErr, ok := err.(*AppError)
	if !ok || appErr.HTTPCode != 401 {
		t.Fatalf("expected HTTP 401 AppError, got %v", err)
	}
}

func TestCurrentUserNoSession(t *testing.T) {
	authTestConfig()
	svc, _, _, _, _ := newUserServiceForTest()

	_, err := svc.CurrentUser(context.Background(), "")
	if !errors.Is(err, ErrNoCurrentUser) {
		t.Fatalf("expected ErrNoCurrentUser, got %v", err)
	}
}

func TestCurrentUserInvalidSecret(t *testing.T) {
	authTestConfig()
	svc, _, _, _, _ := newUserServiceForTest()

	_, err := svc.CurrentUser(context.Background(), "bogus")
	appErr, ok := err.(*AppError)
	if !ok || appErr.HTTPCode != 401 || appErr.Kind != KindNotAuthenticated {
		t.Fatalf("expected not-authenticated AppError, got %v", err)
	}
}

func TestCurrentUserMissingRecord(t *testing.T) {
	authTestConfig()
	svc, _, sessions, _, _ := newUserServiceForTest()
	sessions.sessions["secret-1"] = "acc-gone"

	_, err := svc.CurrentUser(context.Background(), "secret-1")
	if !errors.Is(err, ErrNoCurrentUser) {
		t.Fatalf("expected ErrNoCurrentUser for a dangling session, got %v", err)
	}
}

func TestCurrentUserSuccess(t *testing.T) {
	authTestConfig()
	svc, users, sessions, _, _ := newUserServiceForTest()
	users.add(models.User{ID: 4, AccountID: "acc-4", FullName: "Grace", Email: "grace@example.com"})
	sessions.sessions["secret-4"] = "acc-4"

	user, err := svc.CurrentUser(context.Background(), "secret-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 4 || user.Email != "grace@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestSignOutRemovesSession(t *testing.T) {
	authTestConfig()
	svc, _, sessions, _, _ := newUserServiceForTest()
	sessions.sessions["secret-9"] = "acc-9"

	if err := svc.SignOut(context.Background(), "secret-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sessions.sessions["secret-9"]; ok {
		t.Fatalf("expected session to be removed")
	}
}

func TestSignOutEmptySecretIsNoop(t *testing.T) {
	authTestConfig()
	svc, _, _, _, _ := newUserServiceForTest()

	if err := svc.SignOut(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
