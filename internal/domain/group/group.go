package group

import (
	"database/sql"
	"time"
)

// Group is one community the bot serves: its output channel and the anchor
// control message posted there. Both references are nullable until /setup
// runs; a stale anchor is detected lazily and cleared, never auto-recreated.
type Group struct {
	ID              int64
	ChannelID       sql.NullInt64
	AnchorMessageID sql.NullInt64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Configured reports whether the group has an output channel bound.
func (g *Group) Configured() bool {
	return g.ChannelID.Valid
}
