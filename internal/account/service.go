package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/huyhung/ecom-api/internal/logging"
	"github.com/huyhung/ecom-api/internal/user"
)

const (
	otpTTL             = 10 * time.Minute
	tempPasswordLength = 10
)

// Store is the persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, account user.NewAccount) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListByType(ctx context.Context, role user.Role) ([]*user.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdateOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// Mailer dispatches templated account emails
type Mailer interface {
	SendVerificationEmail(ctx context.Context, name, toEmail, otp string) error
	SendForgotPasswordEmail(ctx context.Context, name, toEmail, tempPassword string) error
}

// Service owns all account state transitions
type Service struct {
	store            Store
	mailer           Mailer
	tokens           TokenService
	logger           *logging.Logger
	adminSecretToken string
	tokenDuration    time.Duration
	emailTimeout     time.Duration
}

func NewService(
	store Store,
	mailer Mailer,
	tokens TokenService,
	logger *logging.Logger,
	adminSecretToken string,
	tokenDuration time.Duration,
	emailTimeout time.Duration,
) *Service {
	return &Service{
		store:            store,
		mailer:           mailer,
		tokens:           tokens,
		logger:           logger,
		adminSecretToken: adminSecretToken,
		tokenDuration:    tokenDuration,
		emailTimeout:     emailTimeout,
	}
}

// Profile is the subset of a user record safe to return to callers
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Type  user.Role `json:"type"`
}

func profileOf(u *user.User) Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Type:  u.Type,
	}
}

// RegisterInput carries the fields accepted when creating an account
type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	Type        user.Role
	SecretToken string
}

// RegisterResult reports the created account; only the email is exposed
type RegisterResult struct {
	Email string    `json:"email"`
	Type  user.Role `json:"-"`
}

// Register creates a new account. Customers start unverified and receive a
// verification OTP by email; admin and staff accounts are verified
// immediately, and admins require the configured secret token.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	// The hash is computed before the admin gate, matching the original flow
	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if input.Type == user.RoleAdmin {
		if subtle.ConstantTimeCompare([]byte(input.SecretToken), []byte(s.adminSecretToken)) != 1 {
			return nil, ErrAdminSecretMismatch
		}
	}

	// Customers always start unverified regardless of the request flag;
	// staff accounts never go through email verification
	isVerified := input.Type != user.RoleCustomer

	// Fast-path duplicate check; the unique constraint on email is the
	// real guarantee against racing registrations
	if _, err := s.store.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return nil, err
	}

	newUser, err := s.store.Create(ctx, user.NewAccount{
		Email:        input.Email,
		PasswordHash: passwordHash,
		Name:         input.Name,
		Type:         input.Type,
		IsVerified:   isVerified,
		OTP:          otp,
		OTPExpiresAt: time.Now().Add(otpTTL),
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if newUser.Type != user.RoleAdmin {
		s.dispatchEmail(func(emailCtx context.Context) error {
			return s.mailer.SendVerificationEmail(emailCtx, newUser.Name, newUser.Email, otp)
		})
	}

	return &RegisterResult{Email: newUser.Email, Type: newUser.Type}, nil
}

func validateRegisterInput(input RegisterInput) error {
	if input.Email == "" {
		return E(KindValidation, "Email is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return E(KindValidation, "Invalid email format")
	}
	if input.Password == "" {
		return E(KindValidation, "Password is required")
	}
	if input.Name == "" {
		return E(KindValidation, "Name is required")
	}
	if !input.Type.Valid() {
		return E(KindValidation, "Invalid user type")
	}
	return nil
}

// LoginResult carries the public projection and the issued auth token
type LoginResult struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

// Login authenticates a user by email and password and issues an auth token.
// Unknown email and wrong password fail identically so callers cannot tell
// which factor was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existing.IsVerified {
		return nil, ErrEmailNotVerified
	}

	if !CheckPassword(password, existing.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.CreateToken(existing.ID, existing.Type, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &LoginResult{
		User:  profileOf(existing),
		Token: token,
	}, nil
}

// VerifyEmail marks an account as verified when the supplied OTP matches the
// stored one and has not expired. The pending OTP is cleared on success, so
// a repeated call with the same code fails.
func (s *Service) VerifyEmail(ctx context.Context, email, otp string) error {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existing.OTP == nil || *existing.OTP != otp {
		return ErrInvalidOTP
	}

	if existing.OTPExpiresAt == nil || !time.Now().Before(*existing.OTPExpiresAt) {
		return ErrOTPExpired
	}

	if err := s.store.MarkVerified(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to mark user as verified: %w", err)
	}

	return nil
}

// ResendResult reports where the fresh OTP was sent
type ResendResult struct {
	Email string `json:"email"`
}

// ResendOTP regenerates the verification code for an unverified account and
// emails it. The previous code becomes invalid immediately.
func (s *Service) ResendOTP(ctx context.Context, email string) (*ResendResult, error) {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if existing.IsVerified {
		return nil, ErrAlreadyVerified
	}

	otp, err := GenerateOTP()
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateOTP(ctx, existing.ID, otp, time.Now().Add(otpTTL)); err != nil {
		return nil, fmt.Errorf("failed to update otp: %w", err)
	}

	s.dispatchEmail(func(emailCtx context.Context) error {
		return s.mailer.SendVerificationEmail(emailCtx, existing.Name, existing.Email, otp)
	})

	return &ResendResult{Email: existing.Email}, nil
}

// ForgotPasswordResult carries the plaintext temporary password; it matches
// the value delivered by email
type ForgotPasswordResult struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPassword replaces the account password with a system-generated
// temporary one and emails it in plaintext together with the login link
func (s *Service) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tempPassword, err := GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	s.dispatchEmail(func(emailCtx context.Context) error {
		return s.mailer.SendForgotPasswordEmail(emailCtx, existing.Name, existing.Email, tempPassword)
	})

	return &ForgotPasswordResult{Email: existing.Email, Password: tempPassword}, nil
}

// UpdateProfileInput carries the mutable account fields; both a password
// change and a rename may apply in one call
type UpdateProfileInput struct {
	OldPassword string
	NewPassword string
	Name        string
}

// UpdateProfile changes the password, the display name, or both. A password
// change requires the current password to match.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*Profile, error) {
	if input.Name == "" && input.NewPassword == "" {
		return nil, ErrNothingToUpdate
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if input.NewPassword != "" {
		if !CheckPassword(input.OldPassword, existing.PasswordHash) {
			return nil, ErrInvalidCurrentPassword
		}

		passwordHash, err := HashPassword(input.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		if err := s.store.UpdatePassword(ctx, id, passwordHash); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
	}

	profile := profileOf(existing)
	if input.Name != "" {
		if err := s.store.UpdateName(ctx, id, input.Name); err != nil {
			return nil, fmt.Errorf("failed to update name: %w", err)
		}
		// Reflect the freshly written value, not the pre-update snapshot
		profile.Name = input.Name
	}

	return &profile, nil
}

// List returns the public projections of all accounts with the given type
func (s *Service) List(ctx context.Context, role user.Role) ([]Profile, error) {
	if !role.Valid() {
		return nil, E(KindValidation, "Invalid user type")
	}

	users, err := s.store.ListByType(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, profileOf(u))
	}

	return profiles, nil
}

// Remove hard-deletes an account by id and returns the number of deleted rows
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (int64, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	return deleted, nil
}

// dispatchEmail runs an email send in the background. Delivery failures are
// logged and never surface to the caller; the send is bounded by the
// configured timeout.
func (s *Service) dispatchEmail(send func(ctx context.Context) error) {
	go func() {
		emailCtx, cancel := context.WithTimeout(context.Background(), s.emailTimeout)
		defer cancel()

		if err := send(emailCtx); err != nil {
			s.logger.Warn("failed to send email", "error", err)
		}
	}()
}
