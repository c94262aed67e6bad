package messenger

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

// Boundary errors. Both are non-fatal to the core: the affected group or
// topic is skipped for the current tick and retried on the next.
var (
	ErrNotFound  = fmt.Errorf("messenger: referenced chat or message not found")
	ErrForbidden = fmt.Errorf("messenger: missing permission")
)

// MaxDeleteBatch caps how many messages one bulk delete call may carry.
const MaxDeleteBatch = 100

// Message is the minimal view of a channel message the core needs.
type Message struct {
	ID     int64
	ChatID int64
	Text   string
}

// Client decouples the core from the bot library. Implementations map
// platform errors to ErrNotFound / ErrForbidden.
type Client interface {
	// SendMessage posts text to a chat and returns the new message's ID.
	SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) (int64, error)

	// EditMessage replaces a message's text and keyboard in place.
	EditMessage(chatID, messageID int64, text string, markup *telebot.ReplyMarkup) error

	// DeleteMessages removes the given messages from a chat. Callers keep
	// batches within MaxDeleteBatch.
	DeleteMessages(chatID int64, messageIDs []int64) error

	// FetchRecentHistory returns up to limit of the bot's output in a chat,
	// most recent first.
	FetchRecentHistory(chatID int64, limit int) ([]Message, error)

	// Pin pins a message so the control surface stays visible.
	Pin(chatID, messageID int64) error
}
