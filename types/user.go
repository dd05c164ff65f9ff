package types

import "time"

// User represents an account in the system.
// It contains identity, credential material, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Email is the user's email address. Unique across all users.
	Email string `json:"email" db:"email"`

	// Account is the public profile sub-record attached to the user.
	Account Account `json:"account"`

	// PasswordHash stores the base64-encoded SHA-256 digest of the
	// user's password concatenated with PasswordSalt.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// PasswordSalt is the random salt mixed into the password digest.
	// Rotated together with the hash on every password change.
	PasswordSalt string `json:"-" db:"password_salt"`

	// Token is the opaque bearer credential proving identity on
	// protected routes. Rotated on password change, which invalidates
	// any previously issued token.
	Token string `json:"-" db:"token"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Account is the public-facing part of a user record. It is what other
// users see when a profile or an offer owner is resolved.
type Account struct {
	// Username is the display name chosen by the user.
	Username string `json:"username" db:"username"`

	// Phone is an optional contact number.
	Phone string `json:"phone,omitempty" db:"phone"`

	// Avatar references the profile image in the media store, if any.
	Avatar *ImageRef `json:"avatar,omitempty" db:"avatar"`
}

// Identity is the minimal authenticated principal attached to a request
// context once the bearer token has been matched against a user record.
type Identity struct {
	ID      int64   `json:"id"`
	Account Account `json:"account"`
}

// Profile is the reduced user representation returned by the public
// profile endpoints. Avatar is included only when set.
type Profile struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	Avatar   *ImageRef `json:"avatar,omitempty"`
}

// ProfileOf reduces a full user record to its public profile.
func ProfileOf(u User) Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Account.Username,
		Email:    u.Email,
		Phone:    u.Account.Phone,
		Avatar:   u.Account.Avatar,
	}
}
