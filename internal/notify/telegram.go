package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const telegramAPI = "https://api.telegram.org"

// TelegramSink forwards notices to a chat via the Telegram Bot API.
type TelegramSink struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
	logger   *zap.Logger
}

// NewTelegramSink creates a new Telegram sink.
func NewTelegramSink(botToken, chatID string, logger *zap.Logger) *TelegramSink {
	return &TelegramSink{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  telegramAPI,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.Named("telegram"),
	}
}

type telegramSendRequest struct {
	ChatID              string `json:"chat_id"`
	Text                string `json:"text"`
	ParseMode           string `json:"parse_mode"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Show sends the notice; failures are logged since popups have no caller
// to report to.
func (t *TelegramSink) Show(n Notice) {
	text := fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(n.Title), html.EscapeString(n.Message))
	if err := t.SendMessage(text, n.Severity == SeverityInfo); err != nil {
		t.logger.Warn("failed to forward notice", zap.String("title", n.Title), zap.Error(err))
	}
}

// SendMessage sends an HTML message to the configured chat.
func (t *TelegramSink) SendMessage(text string, silent bool) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	payload := telegramSendRequest{
		ChatID:              t.chatID,
		Text:                text,
		ParseMode:           "HTML",
		DisableNotification: silent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	resp, err := t.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(respBody, &tgResp); err != nil {
		return fmt.Errorf("failed to parse telegram response: %w", err)
	}

	if !tgResp.OK {
		return fmt.Errorf("telegram API error: %s", tgResp.Description)
	}

	return nil
}
