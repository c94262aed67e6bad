package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zakerny_bot/internal/app"
	"zakerny_bot/internal/domain/prayer"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// CountryMarkup builds the inline country-selection keyboard, two topics per
// row.
func CountryMarkup() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	topics := prayer.Topics()

	var rows []telebot.Row
	for i := 0; i < len(topics); i += 2 {
		btns := []telebot.Btn{markup.Data(string(topics[i]), "topic_"+string(topics[i]))}
		if i+1 < len(topics) {
			btns = append(btns, markup.Data(string(topics[i+1]), "topic_"+string(topics[i+1])))
		}
		rows = append(rows, markup.Row(btns...))
	}
	markup.Inline(rows...)
	return markup
}

// RegisterBotCommands wires the user-facing commands. User-visible errors
// stay generic; detail goes to the logs.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	subService *app.SubscriptionService,
	anchorService *app.AnchorService,
	provider prayer.Provider,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		return c.Send("Hi! I post prayer time notifications for your community.\n" +
			"Use /countries to pick your country, then activate notifications with the pinned button.\n" +
			"Use /help for the full command list.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		var help strings.Builder
		help.WriteString("Available commands:\n\n")
		help.WriteString("/countries - Select your country for prayer time notifications.\n")
		help.WriteString("/prayers - Show today's prayer times for your country.\n")
		help.WriteString("/clear - Remove your subscription.\n")
		help.WriteString("/setup - (admins) Bind this chat as the notification channel and post the activation button.\n")
		help.WriteString("/help - Show this message.")
		return c.Send(help.String())
	})

	b.Handle("/countries", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{
			"handler":   "/countries",
			"sender_id": c.Sender().ID,
		}).Info("Command received")
		return c.Send("Please select your country:", CountryMarkup())
	})

	b.Handle("/prayers", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/prayers",
			"sender_id": c.Sender().ID,
			"group_id":  c.Chat().ID,
		})

		sub, err := subService.Current(ctx, c.Sender().ID, c.Chat().ID)
		if err != nil {
			if err == app.ErrNoSubscription {
				return c.Send("You haven't selected a country yet. Use /countries to select one.")
			}
			handlerLogger.WithError(err).Error("Failed to load subscription")
			return c.Send("Something went wrong. Please try again later.")
		}

		snap, err := provider.Timings(ctx, sub.Topic, time.Now())
		if err != nil {
			handlerLogger.WithError(err).WithField("topic", sub.Topic).Warn("Schedule unavailable")
			return c.Send("Failed to fetch prayer times. Please try again later.")
		}

		city, _ := prayer.CityFor(sub.Topic)
		var reply strings.Builder
		reply.WriteString(fmt.Sprintf("🕌 Prayer times for %s, %s today:\n\n", city, sub.Topic))
		for _, event := range snap.Events() {
			reply.WriteString(fmt.Sprintf("%s: %s\n", event, prayer.To12Hour(snap.Times[event])))
		}
		return c.Send(reply.String())
	})

	b.Handle("/setup", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/setup",
			"sender_id": c.Sender().ID,
			"group_id":  c.Chat().ID,
		})
		handlerLogger.Info("Command received")

		if !isChatAdmin(b, c) {
			handlerLogger.Warn("Unauthorized setup attempt")
			return c.Send("You must be a chat administrator to use this command.")
		}

		_, err := anchorService.Setup(ctx, c.Chat().ID, c.Chat().ID)
		if err != nil {
			if err == app.ErrAlreadyConfigured {
				return c.Send("This chat is already set up. The activation button is pinned above.")
			}
			handlerLogger.WithError(err).Error("Setup failed")
			return c.Send("Failed to set up the notification channel. Please check my permissions and try again.")
		}

		handlerLogger.Info("Group configured")
		return c.Send("Notification channel configured. Members can pick a country with /countries and activate with the pinned button.")
	})

	b.Handle("/clear", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/clear",
			"sender_id": c.Sender().ID,
			"group_id":  c.Chat().ID,
		})

		topic, err := subService.Clear(ctx, c.Sender().ID, c.Chat().ID)
		if err != nil {
			if err == app.ErrNoSubscription {
				return c.Send("You don't have a subscription to remove.")
			}
			handlerLogger.WithError(err).Error("Failed to clear subscription")
			return c.Send("Something went wrong. Please try again later.")
		}

		handlerLogger.WithField("topic", topic).Info("Subscription cleared")
		return c.Send(fmt.Sprintf("Your %s subscription has been removed.", topic))
	})
}

// isChatAdmin reports whether the sender may run configuration commands. A
// private chat is always its own admin.
func isChatAdmin(b *telebot.Bot, c telebot.Context) bool {
	if c.Chat().Type == telebot.ChatPrivate {
		return true
	}
	member, err := b.ChatMemberOf(c.Chat(), c.Sender())
	if err != nil {
		return false
	}
	return member.Role == telebot.Creator || member.Role == telebot.Administrator
}
