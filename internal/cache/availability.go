// Package cache provides a Redis read-through cache for schedule seat
// availability.  Availability is the hottest read in the system and
// tolerates short staleness, so it is served from Redis with a small
// TTL and invalidated eagerly whenever a domain event touches the
// schedule.  A nil Redis client disables the cache; callers always
// fall back to the loader.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
)

// defaultTTL bounds staleness when an invalidation is lost.
const defaultTTL = 30 * time.Second

// defaultPrefix namespaces the Redis keys.
const defaultPrefix = "schedule"

// Loader fetches the authoritative available-seat count for a schedule.
type Loader func(ctx context.Context, scheduleID int64) (int, error)

// Availability caches available-seat counts per schedule.
type Availability struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	load   Loader
	log    *zap.Logger
}

// NewAvailability constructs the cache.  rdb may be nil, in which case
// every Get goes straight to the loader.  Non-positive ttl and empty
// prefix fall back to defaults.
func NewAvailability(rdb *redis.Client, ttl time.Duration, prefix string, load Loader, log *zap.Logger) *Availability {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Availability{rdb: rdb, ttl: ttl, prefix: prefix, load: load, log: log}
}

func (a *Availability) key(scheduleID int64) string {
	return fmt.Sprintf("%s:%d:available", a.prefix, scheduleID)
}

// Get returns the available-seat count for the schedule, serving from
// Redis when possible.  Cache failures degrade to the loader; only
// loader errors propagate.
func (a *Availability) Get(ctx context.Context, scheduleID int64) (int, error) {
	if a.rdb != nil {
		val, err := a.rdb.Get(ctx, a.key(scheduleID)).Result()
		if err == nil {
			if n, convErr := strconv.Atoi(val); convErr == nil {
				return n, nil
			}
		} else if err != redis.Nil {
			a.log.Warn("availability cache read failed", zap.Int64("schedule_id", scheduleID), zap.Error(err))
		}
	}

	n, err := a.load(ctx, scheduleID)
	if err != nil {
		return 0, err
	}
	if a.rdb != nil {
		if err := a.rdb.Set(ctx, a.key(scheduleID), n, a.ttl).Err(); err != nil {
			a.log.Warn("availability cache write failed", zap.Int64("schedule_id", scheduleID), zap.Error(err))
		}
	}
	return n, nil
}

// HandleEvent implements the event bus subscriber contract.  Any event
// that can change a schedule's availability drops the cached entry.
func (a *Availability) HandleEvent(ev event.Event) error {
	if a.rdb == nil || ev.ScheduleID == 0 {
		return nil
	}
	switch ev.Type {
	case event.TypeScheduleCreated, event.TypeScheduleUpdated, event.TypeScheduleCancelled,
		event.TypeBookingCreated, event.TypeBookingCancelled:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.rdb.Del(ctx, a.key(ev.ScheduleID)).Err(); err != nil {
			a.log.Warn("availability cache invalidation failed", zap.Int64("schedule_id", ev.ScheduleID), zap.Error(err))
		}
	}
	return nil
}
