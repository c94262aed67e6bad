package subscription

import (
	"time"

	"zakerny_bot/internal/domain/prayer"
)

// Subscription links a member to the topic they receive notifications for
// within one group. At most one row exists per (member, group); choosing a
// new topic overwrites the old one.
type Subscription struct {
	MemberID  int64
	GroupID   int64
	Topic     prayer.Topic
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
