package account

import "errors"

// Kind classifies a service failure so the HTTP boundary can pick a status
// code without parsing message text.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthentication
	KindAuthorization
)

// Error is a service-level failure with a machine-readable kind and a
// caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E builds a service error of the given kind
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the kind from an error chain, KindUnknown if none
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnknown
}

// Message texts are kept compatible with the public API contract; the kind
// carries the semantics.
var (
	ErrInvalidCredentials     = E(KindAuthentication, "Invalid email or password")
	ErrEmailNotVerified       = E(KindAuthentication, "Please verify your email")
	ErrUserNotFound           = E(KindNotFound, "User not found")
	ErrUserExists             = E(KindConflict, "User already exist")
	ErrAlreadyVerified        = E(KindConflict, "Email already verified")
	ErrInvalidOTP             = E(KindValidation, "Invalid Otp")
	ErrOTPExpired             = E(KindValidation, "Otp expired")
	ErrAdminSecretMismatch    = E(KindAuthorization, "Not allowed to create admin")
	ErrInvalidCurrentPassword = E(KindAuthorization, "Invalid current password")
	ErrNothingToUpdate        = E(KindValidation, "Please provide name or password")
)
