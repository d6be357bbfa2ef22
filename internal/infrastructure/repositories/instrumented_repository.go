package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
	"github.com/breachwatch/monitor/internal/core/ports"
)

var (
	storeOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriber_store_operations_total",
			Help: "The total number of subscriber store operations",
		},
		[]string{"operation", "status"},
	)

	storeOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subscriber_store_operation_duration_seconds",
			Help:    "Subscriber store operation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(storeOperationsTotal)
	prometheus.MustRegister(storeOperationDuration)
}

// InstrumentedSubscriberRepository records a counter and latency histogram for every call.
type InstrumentedSubscriberRepository struct {
	inner    ports.SubscriberRepository
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ ports.SubscriberRepository = (*InstrumentedSubscriberRepository)(nil)

func NewInstrumentedSubscriberRepository(inner ports.SubscriberRepository) *InstrumentedSubscriberRepository {
	return &InstrumentedSubscriberRepository{inner: inner, total: storeOperationsTotal, duration: storeOperationDuration}
}

func (r *InstrumentedSubscriberRepository) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.total.WithLabelValues(op, status).Inc()
	r.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (r *InstrumentedSubscriberRepository) GetSubscriberByID(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	start := time.Now()
	s, err := r.inner.GetSubscriberByID(ctx, id)
	r.observe("get_subscriber_by_id", start, err)
	return s, err
}

func (r *InstrumentedSubscriberRepository) GetSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	start := time.Now()
	s, err := r.inner.GetSubscriberByEmail(ctx, email)
	r.observe("get_subscriber_by_email", start, err)
	return s, err
}

func (r *InstrumentedSubscriberRepository) GetSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error) {
	start := time.Now()
	s, err := r.inner.GetSubscriberByToken(ctx, token)
	r.observe("get_subscriber_by_token", start, err)
	return s, err
}

func (r *InstrumentedSubscriberRepository) GetSubscribersByHashes(ctx context.Context, hashes []string) ([]*subscriber.Subscriber, error) {
	start := time.Now()
	subs, err := r.inner.GetSubscribersByHashes(ctx, hashes)
	r.observe("get_subscribers_by_hashes", start, err)
	return subs, err
}

func (r *InstrumentedSubscriberRepository) UpsertSubscriber(ctx context.Context, s *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	start := time.Now()
	saved, err := r.inner.UpsertSubscriber(ctx, s)
	r.observe("upsert_subscriber", start, err)
	return saved, err
}

func (r *InstrumentedSubscriberRepository) SetBreachesLastShownNow(ctx context.Context, subscriberID int64) (*subscriber.Subscriber, error) {
	start := time.Now()
	s, err := r.inner.SetBreachesLastShownNow(ctx, subscriberID)
	r.observe("set_breaches_last_shown", start, err)
	return s, err
}

func (r *InstrumentedSubscriberRepository) DeleteSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	start := time.Now()
	s, err := r.inner.DeleteSubscriberByEmail(ctx, email)
	r.observe("delete_subscriber_by_email", start, err)
	return s, err
}

func (r *InstrumentedSubscriberRepository) DeleteSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error) {
	start := time.Now()
	s, err := r.inner.DeleteSubscriberByToken(ctx, token)
	r.observe("delete_subscriber_by_token", start, err)
	return s, err
}

func (r *InstrumentedSubscriberRepository) GetEmailAddressByToken(ctx context.Context, token uuid.UUID) (*subscriber.EmailAddress, error) {
	start := time.Now()
	e, err := r.inner.GetEmailAddressByToken(ctx, token)
	r.observe("get_email_address_by_token", start, err)
	return e, err
}

func (r *InstrumentedSubscriberRepository) GetEmailAddressesByHashes(ctx context.Context, hashes []string) ([]*subscriber.EmailAddress, error) {
	start := time.Now()
	addrs, err := r.inner.GetEmailAddressesByHashes(ctx, hashes)
	r.observe("get_email_addresses_by_hashes", start, err)
	return addrs, err
}

func (r *InstrumentedSubscriberRepository) GetEmailAddressesBySubscriber(ctx context.Context, subscriberID int64) ([]*subscriber.EmailAddress, error) {
	start := time.Now()
	addrs, err := r.inner.GetEmailAddressesBySubscriber(ctx, subscriberID)
	r.observe("get_email_addresses_by_subscriber", start, err)
	return addrs, err
}

func (r *InstrumentedSubscriberRepository) CreateEmailAddress(ctx context.Context, e *subscriber.EmailAddress) (*subscriber.EmailAddress, error) {
	start := time.Now()
	saved, err := r.inner.CreateEmailAddress(ctx, e)
	r.observe("create_email_address", start, err)
	return saved, err
}

func (r *InstrumentedSubscriberRepository) VerifyEmailAddress(ctx context.Context, id int64) (*subscriber.EmailAddress, error) {
	start := time.Now()
	e, err := r.inner.VerifyEmailAddress(ctx, id)
	r.observe("verify_email_address", start, err)
	return e, err
}

func (r *InstrumentedSubscriberRepository) DeleteEmailAddress(ctx context.Context, subscriberID, emailID int64) error {
	start := time.Now()
	err := r.inner.DeleteEmailAddress(ctx, subscriberID, emailID)
	r.observe("delete_email_address", start, err)
	return err
}

func (r *InstrumentedSubscriberRepository) DeleteUnverified(ctx context.Context, createdBefore time.Time) (*subscriber.PurgeResult, error) {
	start := time.Now()
	res, err := r.inner.DeleteUnverified(ctx, createdBefore)
	r.observe("delete_unverified", start, err)
	return res, err
}
