package telegram

import (
	"context"
	"fmt"
	"time"
	"visuall/cmd/internal/announce"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.telegram.org"

// Sharer posts shared reminders to a Telegram chat through the Bot API.
type Sharer struct {
	client   *resty.Client
	botToken string
	chatID   string
}

func NewSharer(botToken, chatID string) *Sharer {
	return NewSharerWithBaseURL(defaultBaseURL, botToken, chatID)
}

func NewSharerWithBaseURL(baseURL, botToken, chatID string) *Sharer {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	return &Sharer{client: c, botToken: botToken, chatID: chatID}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type botResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (s *Sharer) Share(ctx context.Context, title, text string) error {
	if s.botToken == "" || s.chatID == "" {
		return announce.ErrCapabilityUnavailable
	}

	var out botResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("token", s.botToken).
		SetBody(&sendMessageRequest{ChatID: s.chatID, Text: title + "\n\n" + text}).
		SetResult(&out).
		SetError(&out).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode(), out.Description)
	}
	return nil
}
