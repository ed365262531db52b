// Package telegram adapts the Telegram Bot API to the transport contract and
// runs the long-polling update loop.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/config"
	"github.com/AzielCF/az-giveaway/domains/transport"
)

// Handler consumes the normalized events produced by the polling loop.
type Handler interface {
	HandleEvent(ctx context.Context, ev transport.Event)
}

type Client struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	httpClient  *http.Client
}

func NewClient(cfg config.TelegramConfig) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	logrus.Infof("[TELEGRAM] Authorized as @%s", api.Self.UserName)

	timeout := cfg.PollTimeoutSec
	if timeout <= 0 {
		timeout = 30
	}

	return &Client{
		api:         api,
		pollTimeout: timeout,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Run polls for updates and dispatches them to the handler until the context
// is cancelled. Each update is handled synchronously; Telegram queues updates
// server-side, so a slow extraction only delays that one user.
func (c *Client) Run(ctx context.Context, handler Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := c.api.GetUpdatesChan(u)

	logrus.Info("[TELEGRAM] Update loop started")
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			logrus.Info("[TELEGRAM] Update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if ev, ok := toEvent(update); ok {
				handler.HandleEvent(ctx, ev)
			}
		}
	}
}

// toEvent normalizes a Telegram update. Updates the bot has no use for
// (edits, channel posts, stickers) are dropped.
func toEvent(update tgbotapi.Update) (transport.Event, bool) {
	if update.CallbackQuery != nil {
		cb := update.CallbackQuery
		ev := transport.Event{
			Kind:         transport.EventCallback,
			UserID:       cb.From.ID,
			CallbackID:   cb.ID,
			CallbackData: cb.Data,
		}
		if cb.Message != nil {
			ev.ChatID = cb.Message.Chat.ID
			ev.MessageID = cb.Message.MessageID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return transport.Event{}, false
	}

	ev := transport.Event{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	}

	switch {
	case msg.IsCommand():
		ev.Kind = transport.EventCommand
		ev.Command = msg.Command()
		ev.Text = msg.CommandArguments()
	case len(msg.Photo) > 0:
		ev.Kind = transport.EventPhoto
		// Sizes arrive smallest first; the last is the full resolution.
		ev.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
		ev.Text = msg.Caption
	case msg.Text != "":
		ev.Kind = transport.EventText
		ev.Text = msg.Text
	default:
		return transport.Event{}, false
	}
	return ev, true
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *transport.SendOptions) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup := inlineKeyboard(opts); markup != nil {
		msg.ReplyMarkup = *markup
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts *transport.SendOptions) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = inlineKeyboard(opts)

	if _, err := c.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// DownloadPhoto fetches the file bytes for the given Telegram file id.
func (c *Client) DownloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(c.api.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func inlineKeyboard(opts *transport.SendOptions) *tgbotapi.InlineKeyboardMarkup {
	if opts == nil || len(opts.Keyboard) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(opts.Keyboard))
	for _, row := range opts.Keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
