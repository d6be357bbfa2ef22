package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
	"github.com/breachwatch/monitor/internal/core/ports"
	"github.com/google/uuid"
)

var (
	_ ports.SubscriberRepository = (*SubscriberRepositoryMock)(nil)
	_ ports.BreachNotifier       = (*BreachNotifierMock)(nil)
	_ ports.HealthChecker        = (*HealthCheckerMock)(nil)
)

// SubscriberRepositoryMock is a lightweight mock for SubscriberRepository.
// Unset functions return empty results.
type SubscriberRepositoryMock struct {
	GetSubscriberByIDFn             func(ctx context.Context, id int64) (*subscriber.Subscriber, error)
	GetSubscriberByEmailFn          func(ctx context.Context, email string) (*subscriber.Subscriber, error)
	GetSubscriberByTokenFn          func(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error)
	GetSubscribersByHashesFn        func(ctx context.Context, hashes []string) ([]*subscriber.Subscriber, error)
	UpsertSubscriberFn              func(ctx context.Context, s *subscriber.Subscriber) (*subscriber.Subscriber, error)
	SetBreachesLastShownNowFn       func(ctx context.Context, subscriberID int64) (*subscriber.Subscriber, error)
	DeleteSubscriberByEmailFn       func(ctx context.Context, email string) (*subscriber.Subscriber, error)
	DeleteSubscriberByTokenFn       func(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error)
	GetEmailAddressByTokenFn        func(ctx context.Context, token uuid.UUID) (*subscriber.EmailAddress, error)
	GetEmailAddressesByHashesFn     func(ctx context.Context, hashes []string) ([]*subscriber.EmailAddress, error)
	GetEmailAddressesBySubscriberFn func(ctx context.Context, subscriberID int64) ([]*subscriber.EmailAddress, error)
	CreateEmailAddressFn            func(ctx context.Context, e *subscriber.EmailAddress) (*subscriber.EmailAddress, error)
	VerifyEmailAddressFn            func(ctx context.Context, id int64) (*subscriber.EmailAddress, error)
	DeleteEmailAddressFn            func(ctx context.Context, subscriberID, emailID int64) error
	DeleteUnverifiedFn              func(ctx context.Context, createdBefore time.Time) (*subscriber.PurgeResult, error)

	mu    sync.Mutex
	Calls map[string]int
}

func (m *SubscriberRepositoryMock) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[name]++
}

// CallCount returns how many times the named method was invoked.
func (m *SubscriberRepositoryMock) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *SubscriberRepositoryMock) GetSubscriberByID(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	m.record("GetSubscriberByID")
	if m.GetSubscriberByIDFn != nil {
		return m.GetSubscriberByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *SubscriberRepositoryMock) GetSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	m.record("GetSubscriberByEmail")
	if m.GetSubscriberByEmailFn != nil {
		return m.GetSubscriberByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *SubscriberRepositoryMock) GetSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error) {
	m.record("GetSubscriberByToken")
	if m.GetSubscriberByTokenFn != nil {
		return m.GetSubscriberByTokenFn(ctx, token)
	}
	return nil, nil
}
func (m *SubscriberRepositoryMock) GetSubscribersByHashes(ctx context.Context, hashes []string) ([]*subscriber.Subscriber, error) {
	m.record("GetSubscribersByHashes")
	if m.GetSubscribersByHashesFn != nil {
		return m.GetSubscribersByHashesFn(ctx, hashes)
	}
	return []*subscriber.Subscriber{}, nil
}
func (m *SubscriberRepositoryMock) UpsertSubscriber(ctx context.Context, s *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	m.record("UpsertSubscriber")
	if m.UpsertSubscriberFn != nil {
		return m.UpsertSubscriberFn(ctx, s)
	}
	return s, nil
}
func (m *SubscriberRepositoryMock) SetBreachesLastShownNow(ctx context.Context, subscriberID int64) (*subscriber.Subscriber, error) {
	m.record("SetBreachesLastShownNow")
	if m.SetBreachesLastShownNowFn != nil {
		return m.SetBreachesLastShownNowFn(ctx, subscriberID)
	}
	return &subscriber.Subscriber{ID: subscriberID, BreachesLastShown: time.Now()}, nil
}
func (m *SubscriberRepositoryMock) DeleteSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	m.record("DeleteSubscriberByEmail")
	if m.DeleteSubscriberByEmailFn != nil {
		return m.DeleteSubscriberByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *SubscriberRepositoryMock) DeleteSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error) {
	m.record("DeleteSubscriberByToken")
	if m.DeleteSubscriberByTokenFn != nil {
		return m.DeleteSubscriberByTokenFn(ctx, token)
	}
	return nil, nil
}
func (m *SubscriberRepositoryMock) GetEmailAddressByToken(ctx context.Context, token uuid.UUID) (*subscriber.EmailAddress, error) {
	m.record("GetEmailAddressByToken")
	if m.GetEmailAddressByTokenFn != nil {
		return m.GetEmailAddressByTokenFn(ctx, token)
	}
	return nil, nil
}
func (m *SubscriberRepositoryMock) GetEmailAddressesByHashes(ctx context.Context, hashes []string) ([]*subscriber.EmailAddress, error) {
	m.record("GetEmailAddressesByHashes")
	if m.GetEmailAddressesByHashesFn != nil {
		return m.GetEmailAddressesByHashesFn(ctx, hashes)
	}
	return []*subscriber.EmailAddress{}, nil
}
func (m *SubscriberRepositoryMock) GetEmailAddressesBySubscriber(ctx context.Context, subscriberID int64) ([]*subscriber.EmailAddress, error) {
	m.record("GetEmailAddressesBySubscriber")
	if m.GetEmailAddressesBySubscriberFn != nil {
		return m.GetEmailAddressesBySubscriberFn(ctx, subscriberID)
	}
	return []*subscriber.EmailAddress{}, nil
}
func (m *SubscriberRepositoryMock) CreateEmailAddress(ctx context.Context, e *subscriber.EmailAddress) (*subscriber.EmailAddress, error) {
	m.record("CreateEmailAddress")
	if m.CreateEmailAddressFn != nil {
		return m.CreateEmailAddressFn(ctx, e)
	}
	return e, nil
}
func (m *SubscriberRepositoryMock) VerifyEmailAddress(ctx context.Context, id int64) (*subscriber.EmailAddress, error) {
	m.record("VerifyEmailAddress")
	if m.VerifyEmailAddressFn != nil {
		return m.VerifyEmailAddressFn(ctx, id)
	}
	return &subscriber.EmailAddress{ID: id, Verified: true}, nil
}
func (m *SubscriberRepositoryMock) DeleteEmailAddress(ctx context.Context, subscriberID, emailID int64) error {
	m.record("DeleteEmailAddress")
	if m.DeleteEmailAddressFn != nil {
		return m.DeleteEmailAddressFn(ctx, subscriberID, emailID)
	}
	return nil
}
func (m *SubscriberRepositoryMock) DeleteUnverified(ctx context.Context, createdBefore time.Time) (*subscriber.PurgeResult, error) {
	m.record("DeleteUnverified")
	if m.DeleteUnverifiedFn != nil {
		return m.DeleteUnverifiedFn(ctx, createdBefore)
	}
	return &subscriber.PurgeResult{}, nil
}

// BreachNotifierMock records every hash it was asked to subscribe.
type BreachNotifierMock struct {
	SubscribeHashFn func(ctx context.Context, sha1 string) error

	mu     sync.Mutex
	Hashes []string
}

func (m *BreachNotifierMock) SubscribeHash(ctx context.Context, sha1 string) error {
	m.mu.Lock()
	m.Hashes = append(m.Hashes, sha1)
	m.mu.Unlock()
	if m.SubscribeHashFn != nil {
		return m.SubscribeHashFn(ctx, sha1)
	}
	return nil
}

// HealthCheckerMock is a named health check with a configurable result.
type HealthCheckerMock struct {
	NameValue string
	Err       error
}

func (m *HealthCheckerMock) Name() string                    { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error { return m.Err }
