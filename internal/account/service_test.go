package account

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyhung/ecom-api/internal/logging"
	"github.com/huyhung/ecom-api/internal/user"
)

// --- fakes ---

// memStore is an in-memory Store with the same observable semantics as the
// bun-backed repository: snapshot reads, unique email, not-found sentinels.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User

	// when set, Create fails with ErrDuplicateEmail even if the pre-check
	// passed, emulating a racing registration hitting the unique constraint
	dupOnCreate bool
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]*user.User)}
}

func copyUser(u *user.User) *user.User {
	cp := *u
	if u.OTP != nil {
		otp := *u.OTP
		cp.OTP = &otp
	}
	if u.OTPExpiresAt != nil {
		exp := *u.OTPExpiresAt
		cp.OTPExpiresAt = &exp
	}
	return &cp
}

func (s *memStore) Create(ctx context.Context, account user.NewAccount) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dupOnCreate {
		return nil, user.ErrDuplicateEmail
	}
	for _, u := range s.users {
		if u.Email == account.Email {
			return nil, user.ErrDuplicateEmail
		}
	}

	otp := account.OTP
	expiresAt := account.OTPExpiresAt
	u := &user.User{
		ID:           uuid.New(),
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		Name:         account.Name,
		Type:         account.Type,
		IsVerified:   account.IsVerified,
		OTP:          &otp,
		OTPExpiresAt: &expiresAt,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[u.ID] = u

	return copyUser(u), nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *memStore) ListByType(ctx context.Context, role user.Role) ([]*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*user.User
	for _, u := range s.users {
		if u.Type == role {
			result = append(result, copyUser(u))
		}
	}
	return result, nil
}

func (s *memStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.IsVerified = true
	u.OTP = nil
	u.OTPExpiresAt = nil
	return nil
}

func (s *memStore) UpdateOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.OTP = &otp
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (s *memStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *memStore) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Name = name
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return 0, nil
	}
	delete(s.users, id)
	return 1, nil
}

// get returns the stored record for assertions
func (s *memStore) get(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := s.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}

type sentEmail struct {
	kind         string // "verify" or "forgot"
	name         string
	to           string
	otp          string
	tempPassword string
}

// chanMailer records dispatched emails on a channel so tests can wait for
// the fire-and-forget goroutine
type chanMailer struct {
	sent chan sentEmail
}

func newChanMailer() *chanMailer {
	return &chanMailer{sent: make(chan sentEmail, 8)}
}

func (m *chanMailer) SendVerificationEmail(ctx context.Context, name, toEmail, otp string) error {
	m.sent <- sentEmail{kind: "verify", name: name, to: toEmail, otp: otp}
	return nil
}

func (m *chanMailer) SendForgotPasswordEmail(ctx context.Context, name, toEmail, tempPassword string) error {
	m.sent <- sentEmail{kind: "forgot", name: name, to: toEmail, tempPassword: tempPassword}
	return nil
}

func (m *chanMailer) waitForEmail(t *testing.T) sentEmail {
	t.Helper()
	select {
	case e := <-m.sent:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("expected an email to be dispatched")
		return sentEmail{}
	}
}

func (m *chanMailer) expectNoEmail(t *testing.T) {
	t.Helper()
	select {
	case e := <-m.sent:
		t.Fatalf("unexpected email dispatched: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

type fakeTokens struct {
	createErr error
}

func (f *fakeTokens) CreateToken(userID uuid.UUID, role user.Role, duration time.Duration) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return fmt.Sprintf("token-%s-%s", userID, role), nil
}

func (f *fakeTokens) VerifyToken(tokenStr string) (*TokenClaims, error) {
	return nil, ErrInvalidToken
}

const testAdminSecret = "super-secret-admin-token"

func newTestService(t *testing.T) (*Service, *memStore, *chanMailer) {
	t.Helper()
	store := newMemStore()
	mailer := newChanMailer()
	svc := NewService(
		store,
		mailer,
		&fakeTokens{},
		logging.NewLogger(true),
		testAdminSecret,
		time.Hour,
		time.Second,
	)
	return svc, store, mailer
}

func registerCustomer(t *testing.T, svc *Service, mailer *chanMailer, email, password string) sentEmail {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
		Name:     "Test Customer",
		Type:     user.RoleCustomer,
	})
	require.NoError(t, err)
	return mailer.waitForEmail(t)
}

// --- Register ---

func TestRegisterCustomer(t *testing.T) {
	svc, store, mailer := newTestService(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@x.com",
		Password: "p1",
		Name:     "Alice",
		Type:     user.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.Email)
	assert.Equal(t, user.RoleCustomer, result.Type)

	stored := store.get(t, "a@x.com")
	assert.False(t, stored.IsVerified)
	assert.NotEqual(t, "p1", stored.PasswordHash)
	assert.True(t, CheckPassword("p1", stored.PasswordHash))
	require.NotNil(t, stored.OTP)
	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{5}$`), *stored.OTP)
	require.NotNil(t, stored.OTPExpiresAt)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *stored.OTPExpiresAt, time.Minute)

	sent := mailer.waitForEmail(t)
	assert.Equal(t, "verify", sent.kind)
	assert.Equal(t, "a@x.com", sent.to)
	assert.Equal(t, "Alice", sent.name)
	assert.Equal(t, *stored.OTP, sent.otp)
}

func TestRegisterSellerAutoVerifiedAndEmailed(t *testing.T) {
	svc, store, mailer := newTestService(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "s@x.com",
		Password: "sellerpass",
		Name:     "Sam Seller",
		Type:     user.RoleSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleSeller, result.Type)

	stored := store.get(t, "s@x.com")
	assert.True(t, stored.IsVerified)

	// Non-admin staff still receive the verification email
	sent := mailer.waitForEmail(t)
	assert.Equal(t, "verify", sent.kind)
	assert.Equal(t, "s@x.com", sent.to)
}

func TestRegisterAdminWithSecret(t *testing.T) {
	svc, store, mailer := newTestService(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:       "admin@x.com",
		Password:    "adminpass",
		Name:        "Ada Admin",
		Type:        user.RoleAdmin,
		SecretToken: testAdminSecret,
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, result.Type)

	stored := store.get(t, "admin@x.com")
	assert.True(t, stored.IsVerified)

	// Admins never receive a verification email
	mailer.expectNoEmail(t)
}

func TestRegisterAdminWrongSecret(t *testing.T) {
	svc, store, _ := newTestService(t)

	for _, secret := range []string{"", "wrong-secret"} {
		_, err := svc.Register(context.Background(), RegisterInput{
			Email:       "admin@x.com",
			Password:    "adminpass",
			Name:        "Ada Admin",
			Type:        user.RoleAdmin,
			SecretToken: secret,
		})
		require.ErrorIs(t, err, ErrAdminSecretMismatch)
		assert.Equal(t, KindAuthorization, KindOf(err))
	}

	// Nothing was persisted
	_, err := store.GetByEmail(context.Background(), "admin@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, mailer := newTestService(t)

	registerCustomer(t, svc, mailer, "a@x.com", "p1")

	// Repeated attempts fail the same way
	for i := 0; i < 2; i++ {
		_, err := svc.Register(context.Background(), RegisterInput{
			Email:    "a@x.com",
			Password: "other",
			Name:     "Imposter",
			Type:     user.RoleCustomer,
		})
		require.ErrorIs(t, err, ErrUserExists)
		assert.Equal(t, KindConflict, KindOf(err))
	}
}

func TestRegisterDuplicateEmailRace(t *testing.T) {
	svc, store, _ := newTestService(t)

	// The pre-check passes but the insert hits the unique constraint
	store.dupOnCreate = true

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "racer@x.com",
		Password: "p1",
		Name:     "Racer",
		Type:     user.RoleCustomer,
	})
	require.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Password: "p", Name: "n", Type: user.RoleCustomer}},
		{"malformed email", RegisterInput{Email: "not-an-email", Password: "p", Name: "n", Type: user.RoleCustomer}},
		{"missing password", RegisterInput{Email: "a@x.com", Name: "n", Type: user.RoleCustomer}},
		{"missing name", RegisterInput{Email: "a@x.com", Password: "p", Type: user.RoleCustomer}},
		{"unknown type", RegisterInput{Email: "a@x.com", Password: "p", Name: "n", Type: user.Role("superuser")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

// --- Login ---

func TestLoginUnknownEmailAndWrongPasswordLookIdentical(t *testing.T) {
	svc, _, mailer := newTestService(t)

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")
	require.NoError(t, svc.VerifyEmail(context.Background(), "a@x.com", sent.otp))

	_, errUnknown := svc.Login(context.Background(), "nobody@x.com", "p1")
	_, errWrongPass := svc.Login(context.Background(), "a@x.com", "wrong")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.Equal(t, "Invalid email or password", errUnknown.Error())
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.Equal(t, KindAuthentication, KindOf(errUnknown))
}

func TestLoginUnverified(t *testing.T) {
	svc, _, mailer := newTestService(t)

	registerCustomer(t, svc, mailer, "a@x.com", "p1")

	_, err := svc.Login(context.Background(), "a@x.com", "p1")
	require.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Equal(t, "Please verify your email", err.Error())
	assert.Equal(t, KindAuthentication, KindOf(err))
}

func TestLoginSuccess(t *testing.T) {
	svc, store, mailer := newTestService(t)

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")
	require.NoError(t, svc.VerifyEmail(context.Background(), "a@x.com", sent.otp))

	result, err := svc.Login(context.Background(), "a@x.com", "p1")
	require.NoError(t, err)

	stored := store.get(t, "a@x.com")
	assert.Equal(t, stored.ID, result.User.ID)
	assert.Equal(t, "Test Customer", result.User.Name)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.Equal(t, user.RoleCustomer, result.User.Type)
	assert.NotEmpty(t, result.Token)
}

// --- VerifyEmail ---

func TestVerifyEmail(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")

	err := svc.VerifyEmail(ctx, "a@x.com", "000000")
	require.ErrorIs(t, err, ErrInvalidOTP)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.False(t, store.get(t, "a@x.com").IsVerified)

	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))

	stored := store.get(t, "a@x.com")
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTP)
	assert.Nil(t, stored.OTPExpiresAt)

	// The pending code was consumed; replaying it fails
	err = svc.VerifyEmail(ctx, "a@x.com", sent.otp)
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyEmailExpiredOTP(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")

	// Force the code past its expiry; an equal code must still be rejected
	stored := store.get(t, "a@x.com")
	require.NoError(t, store.UpdateOTP(ctx, stored.ID, sent.otp, time.Now().Add(-time.Second)))

	err := svc.VerifyEmail(ctx, "a@x.com", sent.otp)
	require.ErrorIs(t, err, ErrOTPExpired)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.False(t, store.get(t, "a@x.com").IsVerified)
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.VerifyEmail(context.Background(), "nobody@x.com", "123456")
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// --- ResendOTP ---

func TestResendOTP(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	registerCustomer(t, svc, mailer, "a@x.com", "p1")

	// Plant a code the generator cannot produce, then resend
	stored := store.get(t, "a@x.com")
	require.NoError(t, store.UpdateOTP(ctx, stored.ID, "000000", time.Now().Add(10*time.Minute)))

	result, err := svc.ResendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.Email)

	sent := mailer.waitForEmail(t)
	assert.Equal(t, "verify", sent.kind)

	refreshed := store.get(t, "a@x.com")
	require.NotNil(t, refreshed.OTP)
	assert.Equal(t, *refreshed.OTP, sent.otp)
	assert.NotEqual(t, "000000", *refreshed.OTP)

	// The old code is invalid immediately
	err = svc.VerifyEmail(ctx, "a@x.com", "000000")
	require.ErrorIs(t, err, ErrInvalidOTP)

	// The fresh one works
	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))
}

func TestResendOTPAlreadyVerified(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")
	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))

	_, err := svc.ResendOTP(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrAlreadyVerified)
	assert.Equal(t, KindConflict, KindOf(err))
	mailer.expectNoEmail(t)
}

func TestResendOTPUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ResendOTP(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

// --- ForgotPassword ---

func TestForgotPassword(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")
	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))

	result, err := svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.Email)
	assert.Len(t, result.Password, 10)
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{10}$`), result.Password)

	// The emailed password matches the caller-visible one
	forgot := mailer.waitForEmail(t)
	assert.Equal(t, "forgot", forgot.kind)
	assert.Equal(t, result.Password, forgot.tempPassword)

	// Round trip: the plaintext hashes to the stored hash
	stored := store.get(t, "a@x.com")
	assert.True(t, CheckPassword(result.Password, stored.PasswordHash))

	// The old password no longer authenticates, the temporary one does
	_, err = svc.Login(ctx, "a@x.com", "p1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@x.com", result.Password)
	require.NoError(t, err)
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ForgotPassword(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

// --- UpdateProfile ---

func TestUpdateProfileNothingToUpdate(t *testing.T) {
	svc, store, mailer := newTestService(t)

	registerCustomer(t, svc, mailer, "a@x.com", "p1")
	stored := store.get(t, "a@x.com")

	_, err := svc.UpdateProfile(context.Background(), stored.ID, UpdateProfileInput{})
	require.ErrorIs(t, err, ErrNothingToUpdate)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateProfileWrongOldPassword(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")
	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))
	stored := store.get(t, "a@x.com")

	_, err := svc.UpdateProfile(ctx, stored.ID, UpdateProfileInput{
		OldPassword: "wrong",
		NewPassword: "newpass",
	})
	require.ErrorIs(t, err, ErrInvalidCurrentPassword)
	assert.Equal(t, KindAuthorization, KindOf(err))

	// No change was persisted
	_, err = svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")
	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))
	stored := store.get(t, "a@x.com")

	profile, err := svc.UpdateProfile(ctx, stored.ID, UpdateProfileInput{
		OldPassword: "p1",
		NewPassword: "newpass",
	})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, profile.ID)

	_, err = svc.Login(ctx, "a@x.com", "p1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@x.com", "newpass")
	require.NoError(t, err)
}

func TestUpdateProfileNameChange(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	registerCustomer(t, svc, mailer, "a@x.com", "p1")
	stored := store.get(t, "a@x.com")

	profile, err := svc.UpdateProfile(ctx, stored.ID, UpdateProfileInput{Name: "Renamed"})
	require.NoError(t, err)

	// The returned projection reflects the freshly written name
	assert.Equal(t, "Renamed", profile.Name)
	assert.Equal(t, "Renamed", store.get(t, "a@x.com").Name)
}

func TestUpdateProfileNameAndPasswordTogether(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	sent := registerCustomer(t, svc, mailer, "a@x.com", "p1")
	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))
	stored := store.get(t, "a@x.com")

	profile, err := svc.UpdateProfile(ctx, stored.ID, UpdateProfileInput{
		OldPassword: "p1",
		NewPassword: "newpass",
		Name:        "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", profile.Name)

	_, err = svc.Login(ctx, "a@x.com", "newpass")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", store.get(t, "a@x.com").Name)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileInput{Name: "x"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

// --- List / Remove ---

func TestListByType(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	registerCustomer(t, svc, mailer, "c1@x.com", "p1")
	registerCustomer(t, svc, mailer, "c2@x.com", "p2")

	_, err := svc.Register(ctx, RegisterInput{
		Email:       "admin@x.com",
		Password:    "adminpass",
		Name:        "Ada Admin",
		Type:        user.RoleAdmin,
		SecretToken: testAdminSecret,
	})
	require.NoError(t, err)

	customers, err := svc.List(ctx, user.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, customers, 2)

	admins, err := svc.List(ctx, user.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@x.com", admins[0].Email)

	_, err = svc.List(ctx, user.Role("nonsense"))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestRemove(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	registerCustomer(t, svc, mailer, "a@x.com", "p1")
	stored := store.get(t, "a@x.com")

	deleted, err := svc.Remove(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Removal is a hard delete
	_, err = store.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound)

	deleted, err = svc.Remove(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

// --- end-to-end account lifecycle ---

func TestCustomerLifecycle(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "a@x.com",
		Password: "p1",
		Name:     "Alice",
		Type:     user.RoleCustomer,
	})
	require.NoError(t, err)
	mailer.waitForEmail(t)
	assert.False(t, store.get(t, "a@x.com").IsVerified)

	// Unverified account may refresh its OTP
	_, err = svc.ResendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	sent := mailer.waitForEmail(t)

	// Wrong code is rejected, the fresh one verifies
	require.ErrorIs(t, svc.VerifyEmail(ctx, "a@x.com", "999999x"), ErrInvalidOTP)
	require.NoError(t, svc.VerifyEmail(ctx, "a@x.com", sent.otp))
	assert.True(t, store.get(t, "a@x.com").IsVerified)

	result, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}
