package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"zakerny_bot/internal/domain/group"
	"zakerny_bot/internal/domain/messenger"
	"zakerny_bot/internal/domain/prayer"
	"zakerny_bot/internal/domain/subscription"
	idb "zakerny_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func configuredGroup(id, channelID, anchorID int64) *group.Group {
	g := &group.Group{ID: id}
	g.ChannelID.Int64, g.ChannelID.Valid = channelID, true
	if anchorID != 0 {
		g.AnchorMessageID.Int64, g.AnchorMessageID.Valid = anchorID, true
	}
	return g
}

// --- group.Repository fake ---

type fakeGroupRepo struct {
	groups         []*group.Group
	clearedAnchors []int64
	setConfigs     []setConfigCall
	listErr        error
}

type setConfigCall struct {
	groupID, channelID, anchorID int64
}

func (f *fakeGroupRepo) Get(_ context.Context, id int64) (*group.Group, error) {
	for _, g := range f.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, idb.ErrGroupNotFound
}

func (f *fakeGroupRepo) SetConfig(_ context.Context, id, channelID, anchorID int64) error {
	f.setConfigs = append(f.setConfigs, setConfigCall{id, channelID, anchorID})
	for _, g := range f.groups {
		if g.ID == id {
			g.ChannelID.Int64, g.ChannelID.Valid = channelID, true
			g.AnchorMessageID.Int64, g.AnchorMessageID.Valid = anchorID, true
			return nil
		}
	}
	f.groups = append(f.groups, configuredGroup(id, channelID, anchorID))
	return nil
}

func (f *fakeGroupRepo) ClearAnchor(_ context.Context, id int64) error {
	f.clearedAnchors = append(f.clearedAnchors, id)
	for _, g := range f.groups {
		if g.ID == id {
			g.AnchorMessageID = sql.NullInt64{}
			return nil
		}
	}
	return idb.ErrGroupNotFound
}

func (f *fakeGroupRepo) ListConfigured(_ context.Context) ([]*group.Group, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*group.Group, 0, len(f.groups))
	for _, g := range f.groups {
		if g.Configured() {
			out = append(out, g)
		}
	}
	return out, nil
}

// --- subscription.Repository fake ---

type upsertCall struct {
	memberID, groupID int64
	topic             prayer.Topic
}

type fakeSubRepo struct {
	subs         map[string]*subscription.Subscription
	activeTopics map[int64][]prayer.Topic
	topicErrs    map[int64]error
	upserts      []upsertCall
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{
		subs:         make(map[string]*subscription.Subscription),
		activeTopics: make(map[int64][]prayer.Topic),
		topicErrs:    make(map[int64]error),
	}
}

func subKey(memberID, groupID int64) string {
	return fmt.Sprintf("%d/%d", memberID, groupID)
}

func (f *fakeSubRepo) UpsertTopic(_ context.Context, memberID, groupID int64, topic prayer.Topic) error {
	f.upserts = append(f.upserts, upsertCall{memberID, groupID, topic})
	f.subs[subKey(memberID, groupID)] = &subscription.Subscription{
		MemberID: memberID,
		GroupID:  groupID,
		Topic:    topic,
		Active:   false,
	}
	return nil
}

func (f *fakeSubRepo) ToggleActive(_ context.Context, memberID, groupID int64) (bool, error) {
	sub, ok := f.subs[subKey(memberID, groupID)]
	if !ok {
		return false, idb.ErrSubscriptionNotFound
	}
	sub.Active = !sub.Active
	return sub.Active, nil
}

func (f *fakeSubRepo) Get(_ context.Context, memberID, groupID int64) (*subscription.Subscription, error) {
	sub, ok := f.subs[subKey(memberID, groupID)]
	if !ok {
		return nil, idb.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (f *fakeSubRepo) ListActiveTopics(_ context.Context, groupID int64) ([]prayer.Topic, error) {
	if err := f.topicErrs[groupID]; err != nil {
		return nil, err
	}
	return f.activeTopics[groupID], nil
}

func (f *fakeSubRepo) Clear(_ context.Context, memberID, groupID int64) error {
	key := subKey(memberID, groupID)
	if _, ok := f.subs[key]; !ok {
		return idb.ErrSubscriptionNotFound
	}
	delete(f.subs, key)
	return nil
}

// --- prayer.Provider fake ---

type fakeProvider struct {
	snaps map[prayer.Topic]*prayer.Snapshot
	errs  map[prayer.Topic]error
}

func (f *fakeProvider) Timings(_ context.Context, topic prayer.Topic, _ time.Time) (*prayer.Snapshot, error) {
	if err := f.errs[topic]; err != nil {
		return nil, err
	}
	if snap, ok := f.snaps[topic]; ok {
		return snap, nil
	}
	return nil, prayer.ErrFetchFailed
}

func snapshotFor(topic prayer.Topic, times map[string]string) *prayer.Snapshot {
	return &prayer.Snapshot{Topic: topic, Date: "2025-06-01", Times: times}
}

// --- messenger.Client fake ---

type sentMessage struct {
	chatID int64
	text   string
}

type editCall struct {
	chatID, messageID int64
}

type fakeMessenger struct {
	sent    []sentMessage
	edits   []editCall
	deleted map[int64][][]int64
	history map[int64][]messenger.Message // most recent first
	pinned  []int64

	nextID    int64
	sendErr   error
	editErrs  map[int64]error // keyed by message ID
	deleteErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		deleted:  make(map[int64][][]int64),
		history:  make(map[int64][]messenger.Message),
		editErrs: make(map[int64]error),
		nextID:   1000,
	}
}

func (f *fakeMessenger) SendMessage(chatID int64, text string, _ *telebot.ReplyMarkup) (int64, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{chatID, text})
	f.history[chatID] = append([]messenger.Message{{ID: f.nextID, ChatID: chatID, Text: text}}, f.history[chatID]...)
	return f.nextID, nil
}

func (f *fakeMessenger) EditMessage(chatID, messageID int64, _ string, _ *telebot.ReplyMarkup) error {
	if err := f.editErrs[messageID]; err != nil {
		return err
	}
	f.edits = append(f.edits, editCall{chatID, messageID})
	return nil
}

func (f *fakeMessenger) DeleteMessages(chatID int64, messageIDs []int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	batch := append([]int64(nil), messageIDs...)
	f.deleted[chatID] = append(f.deleted[chatID], batch)

	remaining := f.history[chatID][:0]
	for _, m := range f.history[chatID] {
		doomed := false
		for _, id := range messageIDs {
			if m.ID == id {
				doomed = true
				break
			}
		}
		if !doomed {
			remaining = append(remaining, m)
		}
	}
	f.history[chatID] = remaining
	return nil
}

func (f *fakeMessenger) FetchRecentHistory(chatID int64, limit int) ([]messenger.Message, error) {
	msgs := f.history[chatID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return append([]messenger.Message(nil), msgs...), nil
}

func (f *fakeMessenger) Pin(_, messageID int64) error {
	f.pinned = append(f.pinned, messageID)
	return nil
}

func (f *fakeMessenger) deleteBatches(chatID int64) [][]int64 {
	return f.deleted[chatID]
}

// --- Cleaner fake ---

type cleanCall struct {
	chatID, anchorID int64
	keepCount        int
}

type fakeCleaner struct {
	calls []cleanCall
}

func (f *fakeCleaner) Clean(_ context.Context, chatID, anchorID int64, keepCount int) error {
	f.calls = append(f.calls, cleanCall{chatID, anchorID, keepCount})
	return nil
}
