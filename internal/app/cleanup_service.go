package app

import (
	"context"
	"fmt"

	"zakerny_bot/internal/domain/messenger"

	"github.com/sirupsen/logrus"
)

// CleanupService prunes a channel's notification history after the
// end-of-day event. The scan is bounded, the anchor message is never
// touched, and a run over an already-clean channel deletes nothing.
type CleanupService struct {
	client    messenger.Client
	logger    *logrus.Entry
	scanLimit int
	batchSize int
}

func NewCleanupService(client messenger.Client, scanLimit int, logger *logrus.Entry) *CleanupService {
	if scanLimit <= 0 {
		scanLimit = 200
	}
	return &CleanupService{
		client:    client,
		logger:    logger,
		scanLimit: scanLimit,
		batchSize: messenger.MaxDeleteBatch,
	}
}

// Clean partitions the channel's recent history into the anchor (kept), the
// keepCount most recent notification outputs (kept), and everything else
// (deleted in capped batches). A failed batch aborts the remaining ones; the
// caller logs the error and the main loop carries on.
func (s *CleanupService) Clean(ctx context.Context, chatID, anchorMessageID int64, keepCount int) error {
	history, err := s.client.FetchRecentHistory(chatID, s.scanLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch channel history: %w", err)
	}

	kept := 0
	var doomed []int64
	for _, m := range history { // most recent first
		if anchorMessageID != 0 && m.ID == anchorMessageID {
			continue
		}
		if IsNotificationOutput(m.Text) && kept < keepCount {
			kept++
			continue
		}
		doomed = append(doomed, m.ID)
	}

	if len(doomed) == 0 {
		return nil
	}

	for start := 0; start < len(doomed); start += s.batchSize {
		end := start + s.batchSize
		if end > len(doomed) {
			end = len(doomed)
		}
		if err := s.client.DeleteMessages(chatID, doomed[start:end]); err != nil {
			return fmt.Errorf("failed to delete cleanup batch: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"deleted": len(doomed),
		"kept":    kept,
	}).Info("Channel history pruned")
	return nil
}
