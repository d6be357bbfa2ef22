package ports

import (
	"context"
	"time"

	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
	"github.com/google/uuid"
)

// SubscriberRepository defines persistence for subscribers and their secondary addresses.
// Single-row lookups return (nil, nil) when nothing matches.
type SubscriberRepository interface {
	GetSubscriberByID(ctx context.Context, id int64) (*subscriber.Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error)
	GetSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error)
	GetSubscribersByHashes(ctx context.Context, hashes []string) ([]*subscriber.Subscriber, error)
	UpsertSubscriber(ctx context.Context, s *subscriber.Subscriber) (*subscriber.Subscriber, error)
	SetBreachesLastShownNow(ctx context.Context, subscriberID int64) (*subscriber.Subscriber, error)
	DeleteSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error)
	DeleteSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error)

	GetEmailAddressByToken(ctx context.Context, token uuid.UUID) (*subscriber.EmailAddress, error)
	GetEmailAddressesByHashes(ctx context.Context, hashes []string) ([]*subscriber.EmailAddress, error)
	GetEmailAddressesBySubscriber(ctx context.Context, subscriberID int64) ([]*subscriber.EmailAddress, error)
	CreateEmailAddress(ctx context.Context, e *subscriber.EmailAddress) (*subscriber.EmailAddress, error)
	VerifyEmailAddress(ctx context.Context, id int64) (*subscriber.EmailAddress, error)
	DeleteEmailAddress(ctx context.Context, subscriberID, emailID int64) error

	DeleteUnverified(ctx context.Context, createdBefore time.Time) (*subscriber.PurgeResult, error)
}

// SubscriberService exposes the subscriber store operations used by the rest of the system.
type SubscriberService interface {
	AddSubscriber(ctx context.Context, email string) (*subscriber.Subscriber, error)
	GetSubscriberByID(ctx context.Context, id int64) (*subscriber.Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error)
	GetSubscriberByToken(ctx context.Context, token string) (*subscriber.Subscriber, error)
	GetSubscribersByHashes(ctx context.Context, hashes []string) ([]*subscriber.Subscriber, error)
	SetBreachesLastShownNow(ctx context.Context, s *subscriber.Subscriber) (*subscriber.Subscriber, error)
	RemoveSubscriberByEmail(ctx context.Context, email string) error
	RemoveSubscriberByToken(ctx context.Context, token string) (*subscriber.Subscriber, error)

	AddSubscriberUnverifiedEmailHash(ctx context.Context, s *subscriber.Subscriber, email string) (*subscriber.EmailAddress, error)
	VerifyEmailHash(ctx context.Context, token string) (*subscriber.EmailAddress, error)
	GetEmailAddressByToken(ctx context.Context, token string) (*subscriber.EmailAddress, error)
	GetEmailAddressesByHashes(ctx context.Context, hashes []string) ([]*subscriber.EmailAddress, error)
	GetEmailAddressesBySubscriber(ctx context.Context, subscriberID int64) ([]*subscriber.EmailAddress, error)
	RemoveEmailAddress(ctx context.Context, subscriberID, emailID int64) error

	DeleteUnverifiedSubscribers(ctx context.Context, olderThan time.Duration) (*subscriber.PurgeResult, error)
}
