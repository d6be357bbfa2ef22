package subscriber

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCouldNotAddEmail is returned when an address fails validation or violates a store constraint.
	ErrCouldNotAddEmail = errors.New("error-could-not-add-email")
	ErrNotFound         = errors.New("subscriber: not found")
	ErrInvalidToken     = errors.New("subscriber: invalid verification token")

	// ErrDuplicateEmail is a unique-key collision on a secondary address. It also matches ErrCouldNotAddEmail.
	ErrDuplicateEmail = fmt.Errorf("%w: address already added", ErrCouldNotAddEmail)
)

// MaxEmailLength mirrors the varchar limit on primary_email and email_addresses.email.
const MaxEmailLength = 255

// Subscriber is the primary account record, unique per email address.
type Subscriber struct {
	ID                       int64     `json:"id" db:"id"`
	PrimaryEmail             string    `json:"primary_email" db:"primary_email"`
	PrimarySHA1              string    `json:"primary_sha1" db:"primary_sha1"`
	PrimaryVerified          bool      `json:"primary_verified" db:"primary_verified"`
	PrimaryVerificationToken uuid.UUID `json:"primary_verification_token" db:"primary_verification_token"`
	BreachesLastShown        time.Time `json:"breaches_last_shown" db:"breaches_last_shown"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// EmailAddress is a secondary address owned by exactly one Subscriber.
type EmailAddress struct {
	ID                int64     `json:"id" db:"id"`
	SubscriberID      int64     `json:"subscriber_id" db:"subscriber_id"`
	Email             string    `json:"email" db:"email"`
	SHA1              string    `json:"sha1" db:"sha1"`
	Verified          bool      `json:"verified" db:"verified"`
	VerificationToken uuid.UUID `json:"verification_token" db:"verification_token"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// IsPending reports whether the address still waits for its token to be confirmed.
func (e *EmailAddress) IsPending() bool {
	return !e.Verified
}

// PurgeResult describes what a cleanup of unverified rows removed.
type PurgeResult struct {
	Subscribers    []*Subscriber
	EmailAddresses int64
}
