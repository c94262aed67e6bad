package database

import (
	"context"
	"database/sql"
	"fmt"

	"zakerny_bot/internal/domain/group"
)

// Custom errors
var ErrGroupNotFound = fmt.Errorf("group not found")

type PostgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) Get(ctx context.Context, id int64) (*group.Group, error) {
	query := `SELECT group_id, channel_id, anchor_message_id, created_at, updated_at
              FROM groups WHERE group_id = $1`
	g := &group.Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.ChannelID, &g.AnchorMessageID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("error getting group by ID: %w", err)
	}
	return g, nil
}

func (r *PostgresGroupRepository) SetConfig(ctx context.Context, id, channelID, anchorMessageID int64) error {
	query := `INSERT INTO groups (group_id, channel_id, anchor_message_id)
              VALUES ($1, $2, $3)
              ON CONFLICT (group_id)
              DO UPDATE SET channel_id = $2, anchor_message_id = $3, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, id, channelID, anchorMessageID); err != nil {
		return fmt.Errorf("error setting group config: %w", err)
	}
	return nil
}

func (r *PostgresGroupRepository) ClearAnchor(ctx context.Context, id int64) error {
	query := `UPDATE groups SET anchor_message_id = NULL, updated_at = NOW() WHERE group_id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error clearing group anchor: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) ListConfigured(ctx context.Context) ([]*group.Group, error) {
	query := `SELECT group_id, channel_id, anchor_message_id, created_at, updated_at
              FROM groups WHERE channel_id IS NOT NULL ORDER BY group_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing configured groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*group.Group, 0)
	for rows.Next() {
		g := &group.Group{}
		if err := rows.Scan(&g.ID, &g.ChannelID, &g.AnchorMessageID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning configured group: %w", err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating configured groups: %w", err)
	}
	return groups, nil
}
