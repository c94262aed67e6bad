package app

import (
	"context"
	"fmt"

	"zakerny_bot/internal/domain/prayer"
	"zakerny_bot/internal/domain/subscription"
	idb "zakerny_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the subscription service
var ErrNoSubscription = fmt.Errorf("member has not selected a country yet")
var ErrUnsupportedTopic = fmt.Errorf("country is not supported")

type SubscriptionService struct {
	subs   subscription.Repository
	logger *logrus.Entry
}

func NewSubscriptionService(subs subscription.Repository, logger *logrus.Entry) *SubscriptionService {
	return &SubscriptionService{subs: subs, logger: logger}
}

// ChooseTopic stores the member's country choice. The subscription always
// comes back deactivated: activation is an explicit confirmation against the
// current topic, done through the anchor toggle.
func (s *SubscriptionService) ChooseTopic(ctx context.Context, memberID, groupID int64, topic prayer.Topic) error {
	if _, ok := prayer.CityFor(topic); !ok {
		return ErrUnsupportedTopic
	}

	if err := s.subs.UpsertTopic(ctx, memberID, groupID, topic); err != nil {
		return fmt.Errorf("failed to store topic choice: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"group_id":  groupID,
		"topic":     topic,
	}).Info("Topic selected; awaiting activation")
	return nil
}

// Toggle flips the member's activation state and returns the updated
// subscription. A member who never chose a topic gets ErrNoSubscription; no
// row is created.
func (s *SubscriptionService) Toggle(ctx context.Context, memberID, groupID int64) (*subscription.Subscription, error) {
	if _, err := s.subs.ToggleActive(ctx, memberID, groupID); err != nil {
		if err == idb.ErrSubscriptionNotFound {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("failed to toggle subscription: %w", err)
	}

	sub, err := s.subs.Get(ctx, memberID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription after toggle: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"group_id":  groupID,
		"topic":     sub.Topic,
		"active":    sub.Active,
	}).Info("Subscription toggled")
	return sub, nil
}

// Current returns the member's subscription for display purposes.
func (s *SubscriptionService) Current(ctx context.Context, memberID, groupID int64) (*subscription.Subscription, error) {
	sub, err := s.subs.Get(ctx, memberID, groupID)
	if err != nil {
		if err == idb.ErrSubscriptionNotFound {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub, nil
}

// Clear removes the member's subscription entirely and returns the topic
// that was dropped.
func (s *SubscriptionService) Clear(ctx context.Context, memberID, groupID int64) (prayer.Topic, error) {
	sub, err := s.subs.Get(ctx, memberID, groupID)
	if err != nil {
		if err == idb.ErrSubscriptionNotFound {
			return "", ErrNoSubscription
		}
		return "", fmt.Errorf("failed to load subscription for clearing: %w", err)
	}

	if err := s.subs.Clear(ctx, memberID, groupID); err != nil {
		if err == idb.ErrSubscriptionNotFound {
			return "", ErrNoSubscription
		}
		return "", fmt.Errorf("failed to clear subscription: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"group_id":  groupID,
		"topic":     sub.Topic,
	}).Info("Subscription cleared")
	return sub.Topic, nil
}
