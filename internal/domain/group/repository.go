package group

import "context"

// Repository defines the operations for persisting group configuration.
type Repository interface {
	Get(ctx context.Context, id int64) (*Group, error)

	// SetConfig upserts the group's output channel and anchor message in one
	// statement, so the anchor reference is never persisted without its
	// channel.
	SetConfig(ctx context.Context, id, channelID, anchorMessageID int64) error

	// ClearAnchor drops the anchor reference, flagging the group as needing
	// re-setup. The channel binding is kept.
	ClearAnchor(ctx context.Context, id int64) error

	// ListConfigured returns every group with an output channel bound.
	ListConfigured(ctx context.Context) ([]*Group, error)
}
