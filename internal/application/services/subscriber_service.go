package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
	"github.com/breachwatch/monitor/internal/core/ports"
	"github.com/breachwatch/monitor/internal/utils"
)

type SubscriberService struct {
	repo     ports.SubscriberRepository
	notifier ports.BreachNotifier
	logger   *logrus.Logger
	now      func() time.Time
}

func NewSubscriberService(repo ports.SubscriberRepository, notifier ports.BreachNotifier, logger *logrus.Logger) *SubscriberService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SubscriberService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

var _ ports.SubscriberService = (*SubscriberService)(nil)

// parseToken treats a malformed token like an unknown one.
func parseToken(token string) (uuid.UUID, bool) {
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// AddSubscriber stores email as a verified subscriber. Adding an existing email
// refreshes its updated_at instead of creating a second row.
func (s *SubscriberService) AddSubscriber(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", subscriber.ErrCouldNotAddEmail, err)
	}

	sub, err := s.repo.UpsertSubscriber(ctx, &subscriber.Subscriber{
		PrimaryEmail:             email,
		PrimarySHA1:              utils.SHA1(email),
		PrimaryVerified:          true,
		PrimaryVerificationToken: uuid.New(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"subscriber_id": sub.ID, "sha1": sub.PrimarySHA1}).Info("subscriber added")
	return sub, nil
}

func (s *SubscriberService) GetSubscriberByID(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	return s.repo.GetSubscriberByID(ctx, id)
}

func (s *SubscriberService) GetSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	return s.repo.GetSubscriberByEmail(ctx, email)
}

func (s *SubscriberService) GetSubscriberByToken(ctx context.Context, token string) (*subscriber.Subscriber, error) {
	id, ok := parseToken(token)
	if !ok {
		return nil, nil
	}
	return s.repo.GetSubscriberByToken(ctx, id)
}

// GetSubscribersByHashes returns only subscribers whose primary address is verified.
func (s *SubscriberService) GetSubscribersByHashes(ctx context.Context, hashes []string) ([]*subscriber.Subscriber, error) {
	return s.repo.GetSubscribersByHashes(ctx, hashes)
}

func (s *SubscriberService) SetBreachesLastShownNow(ctx context.Context, sub *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	if sub == nil {
		return nil, fmt.Errorf("set breaches last shown: %w", subscriber.ErrNotFound)
	}
	return s.repo.SetBreachesLastShownNow(ctx, sub.ID)
}

// RemoveSubscriberByEmail deletes the subscriber and its secondary addresses.
// Removing an unknown email is not an error.
func (s *SubscriberService) RemoveSubscriberByEmail(ctx context.Context, email string) error {
	removed, err := s.repo.DeleteSubscriberByEmail(ctx, email)
	if err != nil {
		return err
	}
	if removed != nil {
		s.logger.WithFields(logrus.Fields{"subscriber_id": removed.ID}).Info("subscriber removed by email")
	}
	return nil
}

func (s *SubscriberService) RemoveSubscriberByToken(ctx context.Context, token string) (*subscriber.Subscriber, error) {
	id, ok := parseToken(token)
	if !ok {
		return nil, nil
	}
	removed, err := s.repo.DeleteSubscriberByToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if removed != nil {
		s.logger.WithFields(logrus.Fields{"subscriber_id": removed.ID}).Info("subscriber removed by token")
	}
	return removed, nil
}

// AddSubscriberUnverifiedEmailHash attaches a pending secondary address to sub.
// The returned row carries the token that VerifyEmailHash later consumes.
func (s *SubscriberService) AddSubscriberUnverifiedEmailHash(ctx context.Context, sub *subscriber.Subscriber, email string) (*subscriber.EmailAddress, error) {
	if sub == nil {
		return nil, fmt.Errorf("add secondary email: %w", subscriber.ErrNotFound)
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", subscriber.ErrCouldNotAddEmail, err)
	}

	addr, err := s.repo.CreateEmailAddress(ctx, &subscriber.EmailAddress{
		SubscriberID:      sub.ID,
		Email:             email,
		SHA1:              utils.SHA1(email),
		Verified:          false,
		VerificationToken: uuid.New(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"subscriber_id": sub.ID, "email_id": addr.ID}).Info("unverified email address added")
	return addr, nil
}

// VerifyEmailHash confirms the secondary address holding token and subscribes its
// digest with the breach provider. The row stays pending if the provider call fails.
// The token is kept afterwards as the address's removal credential.
func (s *SubscriberService) VerifyEmailHash(ctx context.Context, token string) (*subscriber.EmailAddress, error) {
	id, ok := parseToken(token)
	if !ok {
		return nil, subscriber.ErrInvalidToken
	}

	addr, err := s.repo.GetEmailAddressByToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, subscriber.ErrInvalidToken
	}
	if !addr.IsPending() {
		return addr, nil
	}

	if err := s.notifier.SubscribeHash(ctx, addr.SHA1); err != nil {
		s.logger.WithFields(logrus.Fields{"email_id": addr.ID}).WithError(err).Warn("breach subscription failed; address left unverified")
		return nil, fmt.Errorf("failed to subscribe hash: %w", err)
	}

	verified, err := s.repo.VerifyEmailAddress(ctx, addr.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"subscriber_id": verified.SubscriberID, "email_id": verified.ID}).Info("email address verified")
	return verified, nil
}

func (s *SubscriberService) GetEmailAddressByToken(ctx context.Context, token string) (*subscriber.EmailAddress, error) {
	id, ok := parseToken(token)
	if !ok {
		return nil, nil
	}
	return s.repo.GetEmailAddressByToken(ctx, id)
}

// GetEmailAddressesByHashes returns only verified secondary addresses.
func (s *SubscriberService) GetEmailAddressesByHashes(ctx context.Context, hashes []string) ([]*subscriber.EmailAddress, error) {
	return s.repo.GetEmailAddressesByHashes(ctx, hashes)
}

func (s *SubscriberService) GetEmailAddressesBySubscriber(ctx context.Context, subscriberID int64) ([]*subscriber.EmailAddress, error) {
	return s.repo.GetEmailAddressesBySubscriber(ctx, subscriberID)
}

func (s *SubscriberService) RemoveEmailAddress(ctx context.Context, subscriberID, emailID int64) error {
	if err := s.repo.DeleteEmailAddress(ctx, subscriberID, emailID); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"subscriber_id": subscriberID, "email_id": emailID}).Info("email address removed")
	return nil
}

// DeleteUnverifiedSubscribers drops pending rows created more than olderThan ago.
func (s *SubscriberService) DeleteUnverifiedSubscribers(ctx context.Context, olderThan time.Duration) (*subscriber.PurgeResult, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("purge age must be positive, got %s", olderThan)
	}
	return s.repo.DeleteUnverified(ctx, s.now().Add(-olderThan))
}
