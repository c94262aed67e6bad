package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"zakerny_bot/internal/domain/messenger"

	"gopkg.in/telebot.v3"
)

// historyCap bounds the per-chat output index the adapter keeps for cleanup
// scans. Telegram bots cannot read arbitrary chat history, so the adapter
// remembers what it sent; bot output is the only thing cleanup may delete
// anyway.
const historyCap = 500

// TelebotAdapter implements messenger.Client using gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot

	mu   sync.Mutex
	sent map[int64][]messenger.Message // per chat, oldest first
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b, sent: make(map[int64][]messenger.Message)}
}

func (a *TelebotAdapter) SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) (int64, error) {
	opts := &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}
	if markup != nil {
		opts.ReplyMarkup = markup
	}

	msg, err := a.bot.Send(&telebot.Chat{ID: chatID}, text, opts)
	if err != nil {
		return 0, mapError(err)
	}

	a.record(messenger.Message{ID: int64(msg.ID), ChatID: chatID, Text: text})
	return int64(msg.ID), nil
}

func (a *TelebotAdapter) EditMessage(chatID, messageID int64, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}
	if markup != nil {
		opts.ReplyMarkup = markup
	}

	_, err := a.bot.Edit(stored(chatID, messageID), text, opts)
	if errors.Is(err, telebot.ErrSameMessageContent) {
		// The message exists and already shows the wanted content; for
		// rebinding purposes that is a success.
		return nil
	}
	return mapError(err)
}

func (a *TelebotAdapter) DeleteMessages(chatID int64, messageIDs []int64) error {
	for _, id := range messageIDs {
		if err := a.bot.Delete(stored(chatID, id)); err != nil {
			mapped := mapError(err)
			// An already-deleted message is fine; cleanup is idempotent.
			if errors.Is(mapped, messenger.ErrNotFound) {
				a.forget(chatID, id)
				continue
			}
			return mapped
		}
		a.forget(chatID, id)
	}
	return nil
}

func (a *TelebotAdapter) FetchRecentHistory(chatID int64, limit int) ([]messenger.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	msgs := a.sent[chatID]
	out := make([]messenger.Message, 0, limit)
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- { // most recent first
		out = append(out, msgs[i])
	}
	return out, nil
}

func (a *TelebotAdapter) Pin(chatID, messageID int64) error {
	return mapError(a.bot.Pin(stored(chatID, messageID)))
}

func (a *TelebotAdapter) record(m messenger.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	msgs := append(a.sent[m.ChatID], m)
	if len(msgs) > historyCap {
		msgs = msgs[len(msgs)-historyCap:]
	}
	a.sent[m.ChatID] = msgs
}

func (a *TelebotAdapter) forget(chatID, messageID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	msgs := a.sent[chatID]
	for i, m := range msgs {
		if m.ID == messageID {
			a.sent[chatID] = append(msgs[:i], msgs[i+1:]...)
			return
		}
	}
}

func stored(chatID, messageID int64) telebot.Editable {
	return &telebot.StoredMessage{MessageID: strconv.FormatInt(messageID, 10), ChatID: chatID}
}

// mapError translates telebot failures into the two boundary errors the core
// understands. Everything else passes through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, telebot.ErrChatNotFound) {
		return fmt.Errorf("%w: %v", messenger.ErrNotFound, err)
	}

	var apiErr *telebot.Error
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Description)
		switch {
		case apiErr.Code == 403:
			return fmt.Errorf("%w: %s", messenger.ErrForbidden, apiErr.Description)
		case apiErr.Code == 404 || strings.Contains(desc, "not found"):
			return fmt.Errorf("%w: %s", messenger.ErrNotFound, apiErr.Description)
		}
	}
	return err
}
