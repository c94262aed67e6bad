package subscription

import (
	"context"

	"zakerny_bot/internal/domain/prayer"
)

// Repository defines the operations for persisting member subscriptions.
// All mutations are single-row and idempotent under retry.
type Repository interface {
	// UpsertTopic sets the member's topic and forces Active to false.
	// Activation is a deliberate re-confirmation step tied to the current
	// topic, so a topic change never silently reactivates notifications.
	UpsertTopic(ctx context.Context, memberID, groupID int64, topic prayer.Topic) error

	// ToggleActive flips the active flag and returns the new state.
	// Fails with ErrSubscriptionNotFound if the member never chose a topic.
	ToggleActive(ctx context.Context, memberID, groupID int64) (bool, error)

	Get(ctx context.Context, memberID, groupID int64) (*Subscription, error)

	// ListActiveTopics returns the full distinct set of active topics in a
	// group. Every one of them is evaluated independently each tick.
	ListActiveTopics(ctx context.Context, groupID int64) ([]prayer.Topic, error)

	// Clear removes the member's subscription row.
	Clear(ctx context.Context, memberID, groupID int64) error
}
