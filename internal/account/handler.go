package account

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/huyhung/ecom-api/internal/httputil"
	"github.com/huyhung/ecom-api/internal/logging"
	"github.com/huyhung/ecom-api/internal/user"
)

// Limiter is the request-throttling contract consumed by the handlers
type Limiter interface {
	CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequest(ctx context.Context, ip, purpose string) error
	CheckEmailCooldown(ctx context.Context, email string) (bool, error)
	SetEmailCooldown(ctx context.Context, email string) error
}

// Handler contains HTTP handlers for the account endpoints
type Handler struct {
	service       *Service
	rateLimiter   Limiter
	logger        *logging.Logger
	isProduction  bool
	tokenDuration time.Duration
}

func NewHandler(service *Service, rateLimiter Limiter, logger *logging.Logger, isProduction bool, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       service,
		rateLimiter:   rateLimiter,
		logger:        logger,
		isProduction:  isProduction,
		tokenDuration: tokenDuration,
	}
}

// RegisterRequest represents the account creation request body.
// The isVerified field is accepted for wire compatibility but ignored;
// verification state is derived from the account type.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SecretToken string `json:"secretToken,omitempty"`
	IsVerified  bool   `json:"isVerified,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest represents the email verification request body
type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// UpdateProfileRequest represents the name/password update request body
type UpdateProfileRequest struct {
	OldPassword string `json:"oldPassword,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
	Name        string `json:"name,omitempty"`
}

// statusOf maps a service error kind to an HTTP status code
func statusOf(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError maps a service failure onto the wire, hiding internal
// error details behind a generic message
func respondServiceError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	kind := KindOf(err)
	if kind == KindUnknown {
		logger.Error(op+" failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	logger.Warn(op+" failed", "error", err.Error())
	httputil.RespondError(w, err.Error(), statusOf(kind))
}

// Register handles account creation
// @Summary      Create a user account
// @Description  Register a new user. Customers receive a verification OTP by email; admin creation requires the admin secret token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Account fields"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      403 {object} httputil.ErrorResponse "Wrong admin secret"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Router       /users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleByIP(w, r, "register") {
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid register request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Register(r.Context(), RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Type:        user.Role(req.Type),
		SecretToken: req.SecretToken,
	})
	if err != nil {
		respondServiceError(w, logger, "registration", err)
		return
	}

	logger.Info("user registered", "type", result.Type)

	message := "Please activate your account by verifying your email. We have sent you a email with the otp"
	if result.Type == user.RoleAdmin {
		message = "Admin created successfully"
	}

	httputil.RespondSuccess(w, message, map[string]string{"email": result.Email}, http.StatusCreated)
}

// Login handles user authentication
// @Summary      User login
// @Description  Authenticate with email and password. The auth token is returned in the body and set as an HttpOnly cookie.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.ErrorResponse "Bad credentials or unverified email"
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleByIP(w, r, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, logger, "login", err)
		return
	}

	logger.Info("user logged in", "user_id", result.User.ID)

	SetAuthCookie(w, result.Token, h.isProduction, h.tokenDuration)

	httputil.RespondSuccess(w, "Login successful", result, http.StatusOK)
}

// Logout clears the auth cookie
// @Summary      User logout
// @Tags         users
// @Produce      json
// @Success      200 {object} httputil.Envelope
// @Router       /users/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w)
	httputil.RespondSuccess(w, "Logout successful", nil, http.StatusOK)
}

// VerifyEmail handles OTP-based email verification
// @Summary      Verify email address
// @Description  Verify an account using the OTP sent by email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Email and OTP"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.ErrorResponse "Invalid or expired OTP"
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Router       /users/verify-email [patch]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify email request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.VerifyEmail(r.Context(), req.Email, req.OTP); err != nil {
		respondServiceError(w, logger, "email verification", err)
		return
	}

	logger.Info("email verified")

	httputil.RespondSuccess(w, "Email verified successfully. You can login now", nil, http.StatusOK)
}

// SendOTPEmail regenerates and emails a verification OTP
// @Summary      Resend verification OTP
// @Tags         users
// @Produce      json
// @Param        email path string true "Account email"
// @Success      200 {object} httputil.Envelope
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Failure      409 {object} httputil.ErrorResponse "Already verified"
// @Router       /users/send-otp-email/{email} [get]
func (h *Handler) SendOTPEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := chi.URLParam(r, "email")
	logger = logger.WithFields(map[string]any{"email": email})

	if h.throttleByIP(w, r, "send-otp") || h.throttleByEmail(w, r, email) {
		return
	}

	result, err := h.service.ResendOTP(r.Context(), email)
	if err != nil {
		respondServiceError(w, logger, "otp resend", err)
		return
	}

	logger.Info("otp resent")

	httputil.RespondSuccess(w, "OTP sent successfully", result, http.StatusOK)
}

// ForgotPassword replaces the password with an emailed temporary one
// @Summary      Forgot password
// @Description  Generate a temporary password and email it to the account owner
// @Tags         users
// @Produce      json
// @Param        email path string true "Account email"
// @Success      200 {object} httputil.Envelope
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Router       /users/forgot-password/{email} [get]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := chi.URLParam(r, "email")
	logger = logger.WithFields(map[string]any{"email": email})

	if h.throttleByIP(w, r, "forgot-password") || h.throttleByEmail(w, r, email) {
		return
	}

	result, err := h.service.ForgotPassword(r.Context(), email)
	if err != nil {
		respondServiceError(w, logger, "forgot password", err)
		return
	}

	logger.Info("temporary password issued")

	httputil.RespondSuccess(w, "Password sent to your email", result, http.StatusOK)
}

// UpdateProfile changes the account name, password, or both
// @Summary      Update name or password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User id"
// @Param        request body UpdateProfileRequest true "Fields to update"
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.ErrorResponse "Nothing to update"
// @Failure      403 {object} httputil.ErrorResponse "Wrong current password or foreign account"
// @Failure      404 {object} httputil.ErrorResponse "Unknown account"
// @Router       /users/{id} [patch]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	// A user may only update their own account unless they are an admin
	principalID, _ := GetUserIDFromContext(r.Context())
	principalRole, _ := GetUserRoleFromContext(r.Context())
	if principalID != id && principalRole != user.RoleAdmin {
		httputil.RespondError(w, "Access denied", http.StatusForbidden)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update profile request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), id, UpdateProfileInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
		Name:        req.Name,
	})
	if err != nil {
		respondServiceError(w, logger, "profile update", err)
		return
	}

	logger.Info("user updated", "user_id", id)

	httputil.RespondSuccess(w, "User updated successfully", profile, http.StatusOK)
}

// List returns the public projections of accounts with the requested type
// @Summary      List users by type
// @Tags         users
// @Produce      json
// @Param        type query string true "Account type"
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      403 {object} httputil.ErrorResponse "Admins only"
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	role := user.Role(r.URL.Query().Get("type"))

	profiles, err := h.service.List(r.Context(), role)
	if err != nil {
		respondServiceError(w, logger, "user listing", err)
		return
	}

	httputil.RespondSuccess(w, "Users fetched successfully", profiles, http.StatusOK)
}

// Remove hard-deletes an account
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User id"
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      403 {object} httputil.ErrorResponse "Admins only"
// @Router       /users/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	deleted, err := h.service.Remove(r.Context(), id)
	if err != nil {
		respondServiceError(w, logger, "user removal", err)
		return
	}

	logger.Info("user removed", "user_id", id, "deleted", deleted)

	httputil.RespondSuccess(w, "User deleted successfully", map[string]int64{"deletedCount": deleted}, http.StatusOK)
}

// throttleByIP applies the per-IP fixed-window limit for the given purpose.
// It reports true when the request was rejected. Limiter errors are logged
// and do not block the request.
func (h *Handler) throttleByIP(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondError(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// throttleByEmail applies the per-address cooldown on outbound-mail
// endpoints. It reports true when the request was rejected.
func (h *Handler) throttleByEmail(w http.ResponseWriter, r *http.Request, email string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email on cooldown", "email", email)
		httputil.RespondError(w, "Please wait before requesting another email", http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.SetEmailCooldown(r.Context(), email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	return false
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
