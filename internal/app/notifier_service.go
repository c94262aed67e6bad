package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zakerny_bot/internal/domain/group"
	"zakerny_bot/internal/domain/messenger"
	"zakerny_bot/internal/domain/prayer"
	"zakerny_bot/internal/domain/subscription"

	"github.com/sirupsen/logrus"
)

const notificationPrefix = "⏰"

// notificationText is the shape of every scheduler output message. Cleanup
// relies on the prefix to tell notifications apart from other bot output.
func notificationText(topic prayer.Topic, city, event string) string {
	return fmt.Sprintf("%s It's time for *%s* in %s! (%s subscribers)", notificationPrefix, event, city, topic)
}

// IsNotificationOutput reports whether a message was produced by the
// scheduler.
func IsNotificationOutput(text string) bool {
	return strings.HasPrefix(text, notificationPrefix)
}

// Cleaner prunes a channel's history after the end-of-day notification.
type Cleaner interface {
	Clean(ctx context.Context, chatID, anchorMessageID int64, keepCount int) error
}

// NotifierService runs the per-minute notification pass. It holds no state
// across ticks: group configuration, subscriptions and schedules are read
// fresh every time, so toggles landing mid-tick are simply picked up on the
// next one.
type NotifierService struct {
	groups    group.Repository
	subs      subscription.Repository
	provider  prayer.Provider
	client    messenger.Client
	cleaner   Cleaner
	keepCount int
	logger    *logrus.Entry
	now       func() time.Time
}

func NewNotifierService(
	groups group.Repository,
	subs subscription.Repository,
	provider prayer.Provider,
	client messenger.Client,
	cleaner Cleaner,
	keepCount int,
	logger *logrus.Entry,
) *NotifierService {
	return &NotifierService{
		groups:    groups,
		subs:      subs,
		provider:  provider,
		client:    client,
		cleaner:   cleaner,
		keepCount: keepCount,
		logger:    logger,
		now:       time.Now,
	}
}

// Tick evaluates every configured group against the current wall-clock
// minute. An event fires at most once per tick because each (topic, event)
// pair is visited exactly once; missed minutes are never replayed.
func (s *NotifierService) Tick(ctx context.Context) {
	now := s.now()
	minute := now.Format("15:04")

	groups, err := s.groups.ListConfigured(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list configured groups; skipping tick")
		return
	}

	for _, g := range groups {
		s.processGroup(ctx, g, now, minute)
	}
}

func (s *NotifierService) processGroup(ctx context.Context, g *group.Group, now time.Time, minute string) {
	log := s.logger.WithField("group_id", g.ID)

	topics, err := s.subs.ListActiveTopics(ctx, g.ID)
	if err != nil {
		log.WithError(err).Error("Failed to list active topics; group skipped this tick")
		return
	}

	for _, topic := range topics {
		s.processTopic(ctx, g, topic, now, minute, log)
	}
}

// processTopic isolates failures: a fetch or send error for one (group,
// topic) pair never aborts the remaining pairs of the tick.
func (s *NotifierService) processTopic(ctx context.Context, g *group.Group, topic prayer.Topic, now time.Time, minute string, log *logrus.Entry) {
	log = log.WithField("topic", topic)

	snap, err := s.provider.Timings(ctx, topic, now)
	if err != nil {
		log.WithError(err).Warn("No schedule available; topic skipped this tick")
		return
	}

	city, _ := prayer.CityFor(topic)

	for _, event := range snap.Events() {
		if prayer.IsMarker(event) {
			continue
		}
		if snap.Times[event] != minute {
			continue
		}

		if _, err := s.client.SendMessage(g.ChannelID.Int64, notificationText(topic, city, event), nil); err != nil {
			log.WithError(err).WithField("event", event).Error("Failed to send notification")
			continue
		}
		log.WithField("event", event).Info("Notification sent")

		if event == prayer.EndOfDayEvent {
			var anchorID int64
			if g.AnchorMessageID.Valid {
				anchorID = g.AnchorMessageID.Int64
			}
			if err := s.cleaner.Clean(ctx, g.ChannelID.Int64, anchorID, s.keepCount); err != nil {
				log.WithError(err).Warn("Channel cleanup failed")
			}
		}
	}
}
