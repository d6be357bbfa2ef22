package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
	"github.com/breachwatch/monitor/internal/core/ports"
	"github.com/breachwatch/monitor/internal/infrastructure/db"
	"github.com/breachwatch/monitor/internal/utils"
)

const (
	subscriberColumns = `id, primary_email, primary_sha1, primary_verified, primary_verification_token,
		breaches_last_shown, created_at, updated_at`
	emailAddressColumns = `id, subscriber_id, email, sha1, verified, verification_token, created_at, updated_at`
)

// SubscriberRepository implements ports.SubscriberRepository on Postgres.
type SubscriberRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

var _ ports.SubscriberRepository = (*SubscriberRepository)(nil)

// NewSubscriberRepository creates a new subscriber repository
func NewSubscriberRepository(database *db.Database, logger *logrus.Logger) *SubscriberRepository {
	return &SubscriberRepository{
		db:     database,
		logger: logger,
	}
}

func (r *SubscriberRepository) logError(fields logrus.Fields, err error, msg string) {
	if r.logger != nil {
		r.logger.WithFields(fields).WithError(err).Error(msg)
	}
}

func (r *SubscriberRepository) logWarn(fields logrus.Fields, err error, msg string) {
	if r.logger != nil {
		r.logger.WithFields(fields).WithError(err).Warn(msg)
	}
}

func (r *SubscriberRepository) logDebug(fields logrus.Fields, msg string) {
	if r.logger != nil {
		r.logger.WithFields(fields).Debug(msg)
	}
}

// getSubscriber runs a single-row subscriber query; no match yields (nil, nil).
func (r *SubscriberRepository) getSubscriber(ctx context.Context, op string, fields logrus.Fields, query string, args ...any) (*subscriber.Subscriber, error) {
	var s subscriber.Subscriber
	if err := r.db.DB.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logDebug(fields, "db: subscriber not found by "+op)
			return nil, nil
		}
		r.logError(fields, err, "db: failed to get subscriber by "+op)
		return nil, fmt.Errorf("failed to get subscriber by %s: %w", op, err)
	}
	return &s, nil
}

// GetSubscriberByID retrieves a subscriber by primary key
func (r *SubscriberRepository) GetSubscriberByID(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1`
	return r.getSubscriber(ctx, "id", logrus.Fields{"subscriber_id": id}, query, id)
}

// GetSubscriberByEmail retrieves a subscriber by primary email
func (r *SubscriberRepository) GetSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE primary_email = $1`
	return r.getSubscriber(ctx, "email", logrus.Fields{"sha1": utils.SHA1(email)}, query, email)
}

// GetSubscriberByToken retrieves a subscriber by its primary verification token
func (r *SubscriberRepository) GetSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE primary_verification_token = $1`
	return r.getSubscriber(ctx, "token", logrus.Fields{"token": token}, query, token)
}

// GetSubscribersByHashes returns verified subscribers whose primary digest is in hashes
func (r *SubscriberRepository) GetSubscribersByHashes(ctx context.Context, hashes []string) ([]*subscriber.Subscriber, error) {
	subs := []*subscriber.Subscriber{}
	if len(hashes) == 0 {
		return subs, nil
	}

	query := `
		SELECT ` + subscriberColumns + `
		FROM subscribers
		WHERE primary_sha1 = ANY($1) AND primary_verified = TRUE`

	if err := r.db.DB.SelectContext(ctx, &subs, query, pq.Array(hashes)); err != nil {
		r.logError(logrus.Fields{"hashes": len(hashes)}, err, "db: failed to get subscribers by hashes")
		return nil, fmt.Errorf("failed to get subscribers by hashes: %w", err)
	}

	return subs, nil
}

// UpsertSubscriber inserts a subscriber or, when the email already exists, refreshes updated_at.
// A verified row never reverts to unverified.
func (r *SubscriberRepository) UpsertSubscriber(ctx context.Context, s *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	query := `
		INSERT INTO subscribers (primary_email, primary_sha1, primary_verified, primary_verification_token)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (primary_email) DO UPDATE
		SET primary_verified = subscribers.primary_verified OR EXCLUDED.primary_verified,
			updated_at = NOW()
		RETURNING ` + subscriberColumns

	fields := logrus.Fields{"sha1": s.PrimarySHA1}
	var saved subscriber.Subscriber
	err := r.db.DB.GetContext(ctx, &saved, query,
		s.PrimaryEmail, s.PrimarySHA1, s.PrimaryVerified, s.PrimaryVerificationToken)
	if err != nil {
		r.logError(fields, err, "db: failed to upsert subscriber")
		if db.IsConstraintViolation(err) {
			return nil, fmt.Errorf("%w: %v", subscriber.ErrCouldNotAddEmail, err)
		}
		return nil, fmt.Errorf("failed to upsert subscriber: %w", err)
	}

	fields["subscriber_id"] = saved.ID
	r.logDebug(fields, "db: subscriber upserted")
	return &saved, nil
}

// SetBreachesLastShownNow stamps breaches_last_shown with the current time
func (r *SubscriberRepository) SetBreachesLastShownNow(ctx context.Context, subscriberID int64) (*subscriber.Subscriber, error) {
	query := `
		UPDATE subscribers
		SET breaches_last_shown = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + subscriberColumns

	var s subscriber.Subscriber
	if err := r.db.DB.GetContext(ctx, &s, query, subscriberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subscriber %d: %w", subscriberID, subscriber.ErrNotFound)
		}
		r.logError(logrus.Fields{"subscriber_id": subscriberID}, err, "db: failed to set breaches_last_shown")
		return nil, fmt.Errorf("failed to set breaches last shown: %w", err)
	}
	return &s, nil
}

// DeleteSubscriberByEmail removes a subscriber and, by cascade, its secondary addresses.
// It returns the removed row, or nil when no subscriber had that email.
func (r *SubscriberRepository) DeleteSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	query := `DELETE FROM subscribers WHERE primary_email = $1 RETURNING ` + subscriberColumns
	return r.deleteSubscriber(ctx, "email", logrus.Fields{"sha1": utils.SHA1(email)}, query, email)
}

// DeleteSubscriberByToken removes the subscriber owning the given primary token
func (r *SubscriberRepository) DeleteSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error) {
	query := `DELETE FROM subscribers WHERE primary_verification_token = $1 RETURNING ` + subscriberColumns
	return r.deleteSubscriber(ctx, "token", logrus.Fields{"token": token}, query, token)
}

func (r *SubscriberRepository) deleteSubscriber(ctx context.Context, op string, fields logrus.Fields, query string, args ...any) (*subscriber.Subscriber, error) {
	var s subscriber.Subscriber
	if err := r.db.DB.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logDebug(fields, "db: delete by "+op+" matched no subscriber")
			return nil, nil
		}
		r.logError(fields, err, "db: failed to delete subscriber by "+op)
		return nil, fmt.Errorf("failed to delete subscriber by %s: %w", op, err)
	}
	fields["subscriber_id"] = s.ID
	if r.logger != nil {
		r.logger.WithFields(fields).Info("db: subscriber removed")
	}
	return &s, nil
}

// GetEmailAddressByToken retrieves a secondary address by its verification token
func (r *SubscriberRepository) GetEmailAddressByToken(ctx context.Context, token uuid.UUID) (*subscriber.EmailAddress, error) {
	var e subscriber.EmailAddress
	query := `SELECT ` + emailAddressColumns + ` FROM email_addresses WHERE verification_token = $1`

	if err := r.db.DB.GetContext(ctx, &e, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logDebug(logrus.Fields{"token": token}, "db: email address not found by token")
			return nil, nil
		}
		r.logError(logrus.Fields{"token": token}, err, "db: failed to get email address by token")
		return nil, fmt.Errorf("failed to get email address by token: %w", err)
	}
	return &e, nil
}

// GetEmailAddressesByHashes returns verified secondary addresses whose digest is in hashes
func (r *SubscriberRepository) GetEmailAddressesByHashes(ctx context.Context, hashes []string) ([]*subscriber.EmailAddress, error) {
	addrs := []*subscriber.EmailAddress{}
	if len(hashes) == 0 {
		return addrs, nil
	}

	query := `
		SELECT ` + emailAddressColumns + `
		FROM email_addresses
		WHERE sha1 = ANY($1) AND verified = TRUE`

	if err := r.db.DB.SelectContext(ctx, &addrs, query, pq.Array(hashes)); err != nil {
		r.logError(logrus.Fields{"hashes": len(hashes)}, err, "db: failed to get email addresses by hashes")
		return nil, fmt.Errorf("failed to get email addresses by hashes: %w", err)
	}
	return addrs, nil
}

// GetEmailAddressesBySubscriber lists every secondary address of a subscriber, pending ones included
func (r *SubscriberRepository) GetEmailAddressesBySubscriber(ctx context.Context, subscriberID int64) ([]*subscriber.EmailAddress, error) {
	addrs := []*subscriber.EmailAddress{}
	query := `
		SELECT ` + emailAddressColumns + `
		FROM email_addresses
		WHERE subscriber_id = $1
		ORDER BY id`

	if err := r.db.DB.SelectContext(ctx, &addrs, query, subscriberID); err != nil {
		r.logError(logrus.Fields{"subscriber_id": subscriberID}, err, "db: failed to list email addresses")
		return nil, fmt.Errorf("failed to list email addresses: %w", err)
	}
	return addrs, nil
}

// CreateEmailAddress inserts a secondary address and returns the stored row.
// Adding the same address to a subscriber twice fails with ErrDuplicateEmail.
func (r *SubscriberRepository) CreateEmailAddress(ctx context.Context, e *subscriber.EmailAddress) (*subscriber.EmailAddress, error) {
	query := `
		INSERT INTO email_addresses (subscriber_id, email, sha1, verified, verification_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + emailAddressColumns

	fields := logrus.Fields{"subscriber_id": e.SubscriberID, "sha1": e.SHA1}
	var saved subscriber.EmailAddress
	err := r.db.DB.GetContext(ctx, &saved, query,
		e.SubscriberID, e.Email, e.SHA1, e.Verified, e.VerificationToken)
	if err != nil {
		if db.IsUniqueViolation(err) {
			r.logWarn(fields, err, "db: email address already added")
			return nil, fmt.Errorf("%w: %v", subscriber.ErrDuplicateEmail, err)
		}
		r.logError(fields, err, "db: failed to create email address")
		if db.IsConstraintViolation(err) {
			return nil, fmt.Errorf("%w: %v", subscriber.ErrCouldNotAddEmail, err)
		}
		return nil, fmt.Errorf("failed to create email address: %w", err)
	}

	r.logDebug(fields, "db: email address created")
	return &saved, nil
}

// VerifyEmailAddress flags a secondary address as verified
func (r *SubscriberRepository) VerifyEmailAddress(ctx context.Context, id int64) (*subscriber.EmailAddress, error) {
	query := `
		UPDATE email_addresses
		SET verified = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + emailAddressColumns

	var e subscriber.EmailAddress
	if err := r.db.DB.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("email address %d: %w", id, subscriber.ErrNotFound)
		}
		r.logError(logrus.Fields{"email_id": id}, err, "db: failed to verify email address")
		return nil, fmt.Errorf("failed to verify email address: %w", err)
	}
	return &e, nil
}

// DeleteEmailAddress removes one secondary address owned by subscriberID
func (r *SubscriberRepository) DeleteEmailAddress(ctx context.Context, subscriberID, emailID int64) error {
	query := `DELETE FROM email_addresses WHERE id = $1 AND subscriber_id = $2`
	fields := logrus.Fields{"subscriber_id": subscriberID, "email_id": emailID}

	result, err := r.db.DB.ExecContext(ctx, query, emailID, subscriberID)
	if err != nil {
		r.logError(fields, err, "db: failed to delete email address")
		return fmt.Errorf("failed to delete email address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logError(fields, err, "db: failed to get rows affected on delete")
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		r.logDebug(fields, "db: delete affected 0 rows - email address not found")
		return fmt.Errorf("email address %d: %w", emailID, subscriber.ErrNotFound)
	}
	return nil
}

// DeleteUnverified removes pending secondary addresses and unverified subscribers created before the cutoff.
func (r *SubscriberRepository) DeleteUnverified(ctx context.Context, createdBefore time.Time) (*subscriber.PurgeResult, error) {
	result := &subscriber.PurgeResult{Subscribers: []*subscriber.Subscriber{}}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM email_addresses WHERE verified = FALSE AND created_at < $1`, createdBefore)
		if err != nil {
			return fmt.Errorf("failed to delete unverified email addresses: %w", err)
		}
		if result.EmailAddresses, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		query := `
			DELETE FROM subscribers
			WHERE primary_verified = FALSE AND created_at < $1
			RETURNING ` + subscriberColumns
		if err := tx.SelectContext(ctx, &result.Subscribers, query, createdBefore); err != nil {
			return fmt.Errorf("failed to delete unverified subscribers: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logError(logrus.Fields{"created_before": createdBefore}, err, "db: failed to purge unverified rows")
		return nil, err
	}

	if r.logger != nil && (result.EmailAddresses > 0 || len(result.Subscribers) > 0) {
		r.logger.WithFields(logrus.Fields{
			"subscribers":     len(result.Subscribers),
			"email_addresses": result.EmailAddresses,
		}).Info("cleaned up unverified subscribers")
	}
	return result, nil
}
