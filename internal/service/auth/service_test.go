package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type memUserRepo struct {
	user.UserRepository
	users map[string]user.User
	seq   int
}

func newMemUserRepo(seed ...user.User) *memUserRepo {
	m := &memUserRepo{users: map[string]user.User{}}
	for _, u := range seed {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailAlreadyExists
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("new-%d", m.seq)
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memUserRepo) GetByVerificationToken(ctx context.Context, token string) (user.User, error) {
	for _, u := range m.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memUserRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	u := m.users[userID]
	u.PasswordHash = passwordHash
	m.users[userID] = u
	return nil
}

func (m *memUserRepo) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	u := m.users[userID]
	u.VerificationToken = &token
	u.VerificationTokenExpiresAt = &expiresAt
	m.users[userID] = u
	return nil
}

func (m *memUserRepo) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	u := m.users[userID]
	u.EmailVerified = true
	u.EmailVerifiedAt = &at
	u.VerificationToken = nil
	u.VerificationTokenExpiresAt = nil
	m.users[userID] = u
	return nil
}

type memCompanyRepo struct {
	company.CompanyRepository
	companies []company.Company
}

func (m *memCompanyRepo) GetByPublicID(ctx context.Context, publicID string) (company.Company, error) {
	for _, c := range m.companies {
		if c.PublicID == publicID {
			return c, nil
		}
	}
	return company.Company{}, company.ErrCompanyNotFound
}

type fakeDenylist struct {
	revoked map[string]time.Time
	err     error
}

func (f *fakeDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[tokenID] = expiresAt
	return nil
}

func (f *fakeDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := f.revoked[tokenID]
	return ok, nil
}

type sentMail struct {
	to, name, link, expiresAt string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (r *recordingMailer) SendVerification(to, name, link, expiresAt string) error {
	r.sent = append(r.sent, sentMail{to, name, link, expiresAt})
	return r.err
}

type fakeGoogle struct {
	user oauth.GoogleUser
	err  error
}

func (f *fakeGoogle) GenerateState() (string, error) { return "state", nil }

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeGoogle) FetchUser(ctx context.Context, code string) (oauth.GoogleUser, error) {
	return f.user, f.err
}

type fixture struct {
	svc      *AuthServiceImpl
	users    *memUserRepo
	tx       *fakeTx
	denylist *fakeDenylist
	mailer   *recordingMailer
}

func newFixture(t *testing.T, seed ...user.User) fixture {
	t.Helper()
	f := fixture{
		users:    newMemUserRepo(seed...),
		tx:       &fakeTx{},
		denylist: &fakeDenylist{revoked: map[string]time.Time{}},
		mailer:   &recordingMailer{},
	}
	companies := &memCompanyRepo{companies: []company.Company{{ID: "c-1", PublicID: "ACME1234", Name: "Acme"}}}

	svc := NewAuthService(f.tx, f.users, companies, jwt.NewJWTService("test-secret", time.Hour), f.denylist, f.mailer, nil, Options{
		FrontendURL:     "https://app.example.com",
		VerificationTTL: 24 * time.Hour,
	}).(*AuthServiceImpl)
	svc.now = func() time.Time { return testNow }
	svc.dispatch = func(fn func()) { fn() }
	f.svc = svc
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func verifiedEmployee(t *testing.T) user.User {
	companyID := "c-1"
	return user.User{
		ID:            "u-1",
		Email:         "alice@example.com",
		PasswordHash:  hashed(t, "secret123"),
		Name:          "Alice",
		Role:          user.RoleEmployee,
		CompanyID:     &companyID,
		EmailVerified: true,
	}
}

func TestSetup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Setup(ctx, auth.SetupRequest{Email: " Root@Example.com ", Password: "secret123", Name: "Root"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, string(user.RoleSuperAdmin), resp.User.Role)
	assert.Nil(t, resp.User.CompanyID)
	assert.Equal(t, 1, f.tx.calls)

	created, err := f.users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.True(t, created.EmailVerified)

	_, err = f.svc.Setup(ctx, auth.SetupRequest{Email: "other@example.com", Password: "secret123", Name: "Other"})
	assert.ErrorIs(t, err, auth.ErrSetupAlreadyDone)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, auth.RegisterRequest{
		Email:     "bob@example.com",
		Password:  "secret123",
		Name:      "Bob",
		CompanyID: "ACME1234",
	})
	require.NoError(t, err)
	assert.Equal(t, string(user.RoleEmployee), resp.Role)
	assert.False(t, resp.EmailVerified)

	stored, err := f.users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.CompanyID)
	assert.Equal(t, "c-1", *stored.CompanyID)
	require.NotNil(t, stored.VerificationToken)
	assert.Equal(t, testNow.Add(24*time.Hour), *stored.VerificationTokenExpiresAt)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "bob@example.com", f.mailer.sent[0].to)
	assert.Equal(t, "https://app.example.com/verify-email?token="+*stored.VerificationToken, f.mailer.sent[0].link)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "bob@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
}

func TestRegister_UnknownCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), auth.RegisterRequest{
		Email:     "bob@example.com",
		Password:  "secret123",
		Name:      "Bob",
		CompanyID: "NOPE0000",
	})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "companyId")
	assert.Empty(t, f.mailer.sent)
}

func TestRegister_MailFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	_, err := f.svc.Register(context.Background(), auth.RegisterRequest{
		Email:     "bob@example.com",
		Password:  "secret123",
		Name:      "Bob",
		CompanyID: "ACME1234",
	})
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t, verifiedEmployee(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		req     auth.LoginRequest
		wantErr error
	}{
		{"valid", auth.LoginRequest{Email: "ALICE@example.com", Password: "secret123"}, nil},
		{"wrong password", auth.LoginRequest{Email: "alice@example.com", Password: "wrong123"}, auth.ErrInvalidCredentials},
		{"unknown email", auth.LoginRequest{Email: "nobody@example.com", Password: "secret123"}, auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.Login(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u-1", resp.User.ID)
			assert.NotEmpty(t, resp.Token)
			_, err = time.Parse(time.RFC3339, resp.ExpiresAt)
			assert.NoError(t, err)
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	exp := testNow.Add(time.Hour)
	principal := user.Principal{UserID: "u-1", TokenID: "tok-1", ExpiresAt: exp}

	require.NoError(t, f.svc.Logout(context.Background(), principal))
	assert.Equal(t, exp, f.denylist.revoked["tok-1"])

	f.denylist.err = errors.New("redis down")
	assert.Error(t, f.svc.Logout(context.Background(), principal))

	f.svc.denylist = nil
	assert.NoError(t, f.svc.Logout(context.Background(), principal))

	assert.ErrorIs(t, f.svc.Logout(context.Background(), user.Principal{}), user.ErrUnauthenticated)
}

func TestVerifyEmail(t *testing.T) {
	token := "tok-valid"
	expired := "tok-expired"
	future := testNow.Add(time.Hour)
	past := testNow.Add(-time.Hour)
	f := newFixture(t,
		user.User{ID: "u-1", Email: "a@example.com", VerificationToken: &token, VerificationTokenExpiresAt: &future},
		user.User{ID: "u-2", Email: "b@example.com", VerificationToken: &expired, VerificationTokenExpiresAt: &past},
	)
	ctx := context.Background()

	require.NoError(t, f.svc.VerifyEmail(ctx, auth.VerifyEmailRequest{Token: " tok-valid "}))
	assert.True(t, f.users.users["u-1"].EmailVerified)

	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, auth.VerifyEmailRequest{Token: "tok-valid"}), auth.ErrInvalidVerificationToken)
	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, auth.VerifyEmailRequest{Token: "tok-expired"}), auth.ErrInvalidVerificationToken)
	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, auth.VerifyEmailRequest{Token: "missing"}), auth.ErrInvalidVerificationToken)
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t,
		user.User{ID: "u-1", Email: "a@example.com", Name: "A"},
		verifiedEmployee(t),
	)
	ctx := context.Background()

	require.NoError(t, f.svc.ResendVerification(ctx, auth.ResendVerificationRequest{Email: "a@example.com"}))
	require.Len(t, f.mailer.sent, 1)
	require.NotNil(t, f.users.users["u-1"].VerificationToken)
	assert.True(t, strings.HasSuffix(f.mailer.sent[0].link, *f.users.users["u-1"].VerificationToken))

	assert.NoError(t, f.svc.ResendVerification(ctx, auth.ResendVerificationRequest{Email: "ghost@example.com"}))
	assert.Len(t, f.mailer.sent, 1)

	err := f.svc.ResendVerification(ctx, auth.ResendVerificationRequest{Email: "alice@example.com"})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyVerified)
}

func TestProfileAndPassword(t *testing.T) {
	f := newFixture(t, verifiedEmployee(t))
	ctx := context.Background()
	principal := user.Principal{UserID: "u-1", Role: user.RoleEmployee, CompanyID: "c-1"}

	me, err := f.svc.Me(ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Name)

	name := "  Alice Smith "
	updated, err := f.svc.UpdateProfile(ctx, principal, auth.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)

	err = f.svc.ChangePassword(ctx, principal, auth.ChangePasswordRequest{CurrentPassword: "nope1234", NewPassword: "newpass123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCurrentPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, principal, auth.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass123"}))
	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "newpass123"})
	assert.NoError(t, err)

	_, err = f.svc.Me(ctx, user.Principal{})
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestGoogleLogin(t *testing.T) {
	unverified := verifiedEmployee(t)
	unverified.EmailVerified = false
	f := newFixture(t, unverified)
	ctx := context.Background()

	_, err := f.svc.GoogleLoginURL("s")
	assert.ErrorIs(t, err, auth.ErrGoogleLoginDisabled)
	_, err = f.svc.LoginWithGoogle(ctx, "code")
	assert.ErrorIs(t, err, auth.ErrGoogleLoginDisabled)

	google := &fakeGoogle{user: oauth.GoogleUser{GoogleID: "g-1", Email: "Alice@example.com", VerifiedEmail: true}}
	f.svc.google = google

	link, err := f.svc.GoogleLoginURL("s")
	require.NoError(t, err)
	assert.Contains(t, link, "state=s")

	resp, err := f.svc.LoginWithGoogle(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.True(t, f.users.users["u-1"].EmailVerified)

	google.user.Email = "stranger@example.com"
	_, err = f.svc.LoginWithGoogle(ctx, "code")
	assert.ErrorIs(t, err, auth.ErrGoogleAccountNotLinked)

	google.err = oauth.ErrEmailNotVerified
	_, err = f.svc.LoginWithGoogle(ctx, "code")
	assert.ErrorIs(t, err, auth.ErrGoogleAccountNotLinked)
}
