package app

import (
	"context"
	"testing"

	"zakerny_bot/internal/domain/messenger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChat = int64(100)

// seedHistory fills the fake channel with, most recent first: two chatter
// messages, eight notification outputs, and the anchor at the bottom.
func seedHistory(client *fakeMessenger, anchorID int64) {
	history := []messenger.Message{
		{ID: 21, ChatID: testChat, Text: "hello"},
		{ID: 20, ChatID: testChat, Text: "anyone here?"},
	}
	for id := int64(17); id >= 10; id-- {
		history = append(history, messenger.Message{
			ID:     id,
			ChatID: testChat,
			Text:   notificationText("Egypt", "Cairo", "Fajr"),
		})
	}
	history = append(history, messenger.Message{ID: anchorID, ChatID: testChat, Text: anchorText})
	client.history[testChat] = history
}

func TestCleanKeepsAnchorAndRecentNotifications(t *testing.T) {
	client := newFakeMessenger()
	seedHistory(client, 1)
	svc := NewCleanupService(client, 200, testLogger())

	require.NoError(t, svc.Clean(context.Background(), testChat, 1, 3))

	var deletedIDs []int64
	for _, batch := range client.deleteBatches(testChat) {
		deletedIDs = append(deletedIDs, batch...)
	}

	// Two chatter messages plus the five notification outputs beyond the
	// keep window.
	assert.Len(t, deletedIDs, 7)
	assert.NotContains(t, deletedIDs, int64(1), "anchor must never be deleted")

	kept := 0
	for _, m := range client.history[testChat] {
		if IsNotificationOutput(m.Text) {
			kept++
		}
	}
	assert.Equal(t, 3, kept)
}

func TestCleanIsIdempotent(t *testing.T) {
	client := newFakeMessenger()
	seedHistory(client, 1)
	svc := NewCleanupService(client, 200, testLogger())

	require.NoError(t, svc.Clean(context.Background(), testChat, 1, 3))
	firstRun := len(client.deleteBatches(testChat))

	require.NoError(t, svc.Clean(context.Background(), testChat, 1, 3))
	assert.Equal(t, firstRun, len(client.deleteBatches(testChat)), "second run must delete nothing")
}

func TestCleanBatchesDeletes(t *testing.T) {
	client := newFakeMessenger()
	seedHistory(client, 1)
	svc := NewCleanupService(client, 200, testLogger())
	svc.batchSize = 3

	require.NoError(t, svc.Clean(context.Background(), testChat, 1, 3))

	batches := client.deleteBatches(testChat)
	require.Len(t, batches, 3) // 7 deletions in batches of 3, 3, 1
	for _, batch := range batches {
		assert.LessOrEqual(t, len(batch), 3)
	}
}

func TestCleanAbortsOnPermissionError(t *testing.T) {
	client := newFakeMessenger()
	seedHistory(client, 1)
	client.deleteErr = messenger.ErrForbidden
	svc := NewCleanupService(client, 200, testLogger())

	err := svc.Clean(context.Background(), testChat, 1, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, messenger.ErrForbidden)
	assert.Empty(t, client.deleteBatches(testChat))
}

func TestCleanEmptyChannelIsNoOp(t *testing.T) {
	client := newFakeMessenger()
	svc := NewCleanupService(client, 200, testLogger())

	require.NoError(t, svc.Clean(context.Background(), testChat, 1, 3))
	assert.Empty(t, client.deleteBatches(testChat))
}
