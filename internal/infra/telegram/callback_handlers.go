package telegram

import (
	"context"
	"fmt"
	"strings"

	"zakerny_bot/internal/app"
	"zakerny_bot/internal/domain/prayer"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterCallbackHandlers wires the inline-keyboard callbacks: country
// selection from /countries and the activation toggle on the anchor message.
func RegisterCallbackHandlers(ctx context.Context, b *telebot.Bot, subService *app.SubscriptionService, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimPrefix(c.Callback().Data, "\f")
		if idx := strings.Index(data, "|"); idx >= 0 {
			data = data[:idx]
		}

		callbackLogger := baseLogger.WithFields(logrus.Fields{
			"callback":  data,
			"sender_id": c.Sender().ID,
			"group_id":  c.Chat().ID,
		})

		switch {
		case strings.HasPrefix(data, "topic_"):
			topic := prayer.Topic(strings.TrimPrefix(data, "topic_"))

			if err := subService.ChooseTopic(ctx, c.Sender().ID, c.Chat().ID, topic); err != nil {
				if err == app.ErrUnsupportedTopic {
					callbackLogger.Warn("Unsupported topic in callback")
					return c.Respond(&telebot.CallbackResponse{Text: "That country is not supported."})
				}
				callbackLogger.WithError(err).Error("Failed to store topic choice")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong. Please try again."})
			}

			return c.Respond(&telebot.CallbackResponse{
				Text: fmt.Sprintf("%s selected! Activate notifications with the pinned button.", topic),
			})

		case data == "toggle_sub":
			sub, err := subService.Toggle(ctx, c.Sender().ID, c.Chat().ID)
			if err != nil {
				if err == app.ErrNoSubscription {
					return c.Respond(&telebot.CallbackResponse{Text: "Select a country with /countries first."})
				}
				callbackLogger.WithError(err).Error("Failed to toggle subscription")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong. Please try again."})
			}

			status := "deactivated"
			if sub.Active {
				status = "activated"
			}
			return c.Respond(&telebot.CallbackResponse{
				Text: fmt.Sprintf("%s notifications %s.", sub.Topic, status),
			})
		}

		callbackLogger.Warn("Unhandled callback")
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
	})
}
