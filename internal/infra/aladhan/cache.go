package aladhan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zakerny_bot/internal/domain/prayer"

	"github.com/sirupsen/logrus"
)

type fetcher interface {
	timingsByCity(ctx context.Context, city, country string) (map[string]string, error)
}

type cacheKey struct {
	topic prayer.Topic
	date  string
}

// Cache memoizes one day's schedule per (topic, date). A failed fetch is not
// cached, so the next lookup retries. Entries for past dates are discarded on
// rollover; there is no stale-data fallback across days.
type Cache struct {
	client fetcher
	logger *logrus.Entry

	mu        sync.Mutex
	snapshots map[cacheKey]*prayer.Snapshot
}

func NewCache(client *Client, logger *logrus.Entry) *Cache {
	return &Cache{
		client:    client,
		logger:    logger,
		snapshots: make(map[cacheKey]*prayer.Snapshot),
	}
}

// Timings implements prayer.Provider.
func (c *Cache) Timings(ctx context.Context, topic prayer.Topic, date time.Time) (*prayer.Snapshot, error) {
	city, ok := prayer.CityFor(topic)
	if !ok {
		return nil, fmt.Errorf("unsupported topic %q", topic)
	}

	key := cacheKey{topic: topic, date: date.Format("2006-01-02")}

	c.mu.Lock()
	defer c.mu.Unlock()

	if snap, ok := c.snapshots[key]; ok {
		return snap, nil
	}

	raw, err := c.client.timingsByCity(ctx, city, string(topic))
	if err != nil {
		c.logger.WithFields(logrus.Fields{"topic": topic, "date": key.date}).WithError(err).Warn("Schedule fetch failed; will retry on next lookup")
		return nil, err
	}

	// Keep only the events the bot works with; the service reports extra
	// markers (Imsak, Midnight, thirds of the night) that are never used.
	times := make(map[string]string, len(prayer.EventOrder))
	for _, ev := range prayer.EventOrder {
		if v, ok := raw[ev]; ok {
			times[ev] = v
		}
	}

	snap := &prayer.Snapshot{Topic: topic, Date: key.date, Times: times}

	// Date rollover: drop schedules from previous days before storing.
	for k := range c.snapshots {
		if k.date != key.date {
			delete(c.snapshots, k)
		}
	}
	c.snapshots[key] = snap

	c.logger.WithFields(logrus.Fields{"topic": topic, "city": city, "date": key.date}).Debug("Schedule cached")
	return snap, nil
}
