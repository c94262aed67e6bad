package app

import (
	"context"
	"errors"
	"fmt"

	"zakerny_bot/internal/domain/group"
	"zakerny_bot/internal/domain/messenger"
	idb "zakerny_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

var ErrAlreadyConfigured = fmt.Errorf("group already has a live control message")

const anchorText = "Tap the button below to activate or deactivate prayer time notifications.\n\n" +
	"Note: pick your country with /countries first."

// ToggleMarkup builds the inline keyboard hosted on the anchor message.
func ToggleMarkup() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	btn := markup.Data("🔔 Activate / Deactivate", "toggle_sub")
	markup.Inline(markup.Row(btn))
	return markup
}

// AnchorService owns the lifecycle of the per-group anchor message: creation
// on setup, rebinding after a restart, and replacement once the old one is
// confirmed gone. The persisted reference is the source of truth; the live
// keyboard binding is derived from it.
type AnchorService struct {
	groups group.Repository
	client messenger.Client
	logger *logrus.Entry
}

func NewAnchorService(groups group.Repository, client messenger.Client, logger *logrus.Entry) *AnchorService {
	return &AnchorService{groups: groups, client: client, logger: logger}
}

// Setup binds chatID as the group's output channel and posts the anchor
// message there. If a live anchor already exists it is left alone and
// ErrAlreadyConfigured is returned; only a confirmed-missing anchor is
// replaced. The new reference is persisted together with the channel right
// after the send.
func (s *AnchorService) Setup(ctx context.Context, groupID, chatID int64) (int64, error) {
	log := s.logger.WithFields(logrus.Fields{"group_id": groupID, "chat_id": chatID})

	g, err := s.groups.Get(ctx, groupID)
	if err != nil && err != idb.ErrGroupNotFound {
		return 0, fmt.Errorf("failed to load group config: %w", err)
	}

	if g != nil && g.Configured() && g.AnchorMessageID.Valid {
		probeErr := s.client.EditMessage(g.ChannelID.Int64, g.AnchorMessageID.Int64, anchorText, ToggleMarkup())
		if probeErr == nil {
			return g.AnchorMessageID.Int64, ErrAlreadyConfigured
		}
		if !errors.Is(probeErr, messenger.ErrNotFound) {
			return 0, fmt.Errorf("could not verify existing control message: %w", probeErr)
		}
		log.Warn("Persisted control message is gone; posting a new one")
	}

	msgID, err := s.client.SendMessage(chatID, anchorText, ToggleMarkup())
	if err != nil {
		return 0, fmt.Errorf("failed to post control message: %w", err)
	}

	if err := s.client.Pin(chatID, msgID); err != nil {
		log.WithError(err).Warn("Could not pin control message")
	}

	if err := s.groups.SetConfig(ctx, groupID, chatID, msgID); err != nil {
		return 0, fmt.Errorf("control message %d sent but config not persisted: %w", msgID, err)
	}

	log.WithField("anchor_message_id", msgID).Info("Group configured; control message posted")
	return msgID, nil
}

// ReconcileAll runs once at startup. Every persisted anchor is rebound in
// place by re-editing it with a fresh keyboard. A confirmed-missing anchor or
// channel flags the group for re-setup; it is never recreated here, so a
// transient lookup failure cannot cause message spam. One broken group never
// stops the others.
func (s *AnchorService) ReconcileAll(ctx context.Context) error {
	groups, err := s.groups.ListConfigured(ctx)
	if err != nil {
		return fmt.Errorf("failed to list groups for reconciliation: %w", err)
	}

	for _, g := range groups {
		log := s.logger.WithField("group_id", g.ID)

		if !g.AnchorMessageID.Valid {
			log.Info("Group has no control message; waiting for /setup")
			continue
		}

		err := s.client.EditMessage(g.ChannelID.Int64, g.AnchorMessageID.Int64, anchorText, ToggleMarkup())
		switch {
		case err == nil:
			log.WithField("anchor_message_id", g.AnchorMessageID.Int64).Info("Control message rebound")
		case errors.Is(err, messenger.ErrNotFound):
			log.Warn("Control message or channel is gone; group flagged for re-setup")
			if clearErr := s.groups.ClearAnchor(ctx, g.ID); clearErr != nil {
				log.WithError(clearErr).Error("Failed to flag group for re-setup")
			}
		default:
			// Transient failures keep the persisted reference untouched.
			log.WithError(err).Warn("Could not verify control message; keeping reference")
		}
	}
	return nil
}
