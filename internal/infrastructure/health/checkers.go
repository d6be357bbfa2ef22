package health

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/breachwatch/monitor/internal/core/ports"
	infraDB "github.com/breachwatch/monitor/internal/infrastructure/db"
)

var errNotConfigured = errors.New("not configured")

// dbHealthChecker pings the subscriber database.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error {
	if d.db == nil || d.db.DB == nil {
		return errNotConfigured
	}
	return d.db.DB.PingContext(ctx)
}

// redisHealthChecker pings the subscriber cache.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error {
	if r.client == nil {
		return errNotConfigured
	}
	return r.client.Ping(ctx).Err()
}

func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}
