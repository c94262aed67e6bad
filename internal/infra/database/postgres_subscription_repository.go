package database

import (
	"context"
	"database/sql"
	"fmt"

	"zakerny_bot/internal/domain/prayer"
	"zakerny_bot/internal/domain/subscription"
)

// Custom errors
var ErrSubscriptionNotFound = fmt.Errorf("subscription not found")

type PostgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// UpsertTopic writes the member's topic choice. Active is forced to false on
// both paths, so a topic change always requires re-confirmation via toggle.
func (r *PostgresSubscriptionRepository) UpsertTopic(ctx context.Context, memberID, groupID int64, topic prayer.Topic) error {
	query := `INSERT INTO subscriptions (member_id, group_id, topic, active)
              VALUES ($1, $2, $3, FALSE)
              ON CONFLICT (member_id, group_id)
              DO UPDATE SET topic = $3, active = FALSE, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, memberID, groupID, string(topic)); err != nil {
		return fmt.Errorf("error upserting subscription topic: %w", err)
	}
	return nil
}

// ToggleActive flips the active flag in a single statement and returns the
// new state.
func (r *PostgresSubscriptionRepository) ToggleActive(ctx context.Context, memberID, groupID int64) (bool, error) {
	query := `UPDATE subscriptions SET active = NOT active, updated_at = NOW()
              WHERE member_id = $1 AND group_id = $2
              RETURNING active`
	var active bool
	err := r.db.QueryRowContext(ctx, query, memberID, groupID).Scan(&active)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrSubscriptionNotFound
		}
		return false, fmt.Errorf("error toggling subscription: %w", err)
	}
	return active, nil
}

func (r *PostgresSubscriptionRepository) Get(ctx context.Context, memberID, groupID int64) (*subscription.Subscription, error) {
	query := `SELECT member_id, group_id, topic, active, created_at, updated_at
              FROM subscriptions WHERE member_id = $1 AND group_id = $2`
	s := &subscription.Subscription{}
	var topic string
	err := r.db.QueryRowContext(ctx, query, memberID, groupID).Scan(&s.MemberID, &s.GroupID, &topic, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error getting subscription: %w", err)
	}
	s.Topic = prayer.Topic(topic)
	return s, nil
}

// ListActiveTopics returns every distinct active topic in the group. The
// scheduler notifies each of them independently; collapsing to one row would
// drop notifications for the others.
func (r *PostgresSubscriptionRepository) ListActiveTopics(ctx context.Context, groupID int64) ([]prayer.Topic, error) {
	query := `SELECT DISTINCT topic FROM subscriptions
              WHERE group_id = $1 AND active = TRUE ORDER BY topic`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("error listing active topics: %w", err)
	}
	defer rows.Close()

	topics := make([]prayer.Topic, 0)
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("error scanning active topic: %w", err)
		}
		topics = append(topics, prayer.Topic(topic))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active topics: %w", err)
	}
	return topics, nil
}

func (r *PostgresSubscriptionRepository) Clear(ctx context.Context, memberID, groupID int64) error {
	query := `DELETE FROM subscriptions WHERE member_id = $1 AND group_id = $2`
	res, err := r.db.ExecContext(ctx, query, memberID, groupID)
	if err != nil {
		return fmt.Errorf("error clearing subscription: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
