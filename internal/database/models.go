package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database model for user accounts.
// The email column carries a unique constraint so concurrent registrations
// for the same address cannot both succeed.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash string     `bun:"password_hash,notnull"`
	Name         string     `bun:"name,notnull"`
	Type         string     `bun:"type,notnull"`
	IsVerified   bool       `bun:"is_verified,notnull,default:false"`
	OTP          *string    `bun:"otp,nullzero"`
	OTPExpiresAt *time.Time `bun:"otp_expires_at,nullzero"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
