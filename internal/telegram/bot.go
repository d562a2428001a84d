package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Bot is a minimal Telegram Bot API client covering what the receipt flow
// needs: messages with inline keyboards, callback answers and file
// downloads.
type Bot struct {
	token  string
	client *http.Client
}

func NewBot(token string) *Bot {
	return &Bot{
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (b *Bot) call(method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := b.client.Post(
		fmt.Sprintf("https://api.telegram.org/bot%s/%s", b.token, method),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("telegram %s: %s", method, api.Description)
	}
	if out != nil {
		return json.Unmarshal(api.Result, out)
	}
	return nil
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

func (b *Bot) SendMessage(chatID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return b.call("sendMessage", payload, nil)
}

func (b *Bot) EditMessageText(chatID int64, messageID int64, text string) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	return b.call("editMessageText", payload, nil)
}

func (b *Bot) AnswerCallbackQuery(callbackID, text string) error {
	payload := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	return b.call("answerCallbackQuery", payload, nil)
}

type fileInfo struct {
	FilePath string `json:"file_path"`
}

// DownloadFile fetches the content of a file previously sent to the bot.
func (b *Bot) DownloadFile(fileID string) ([]byte, error) {
	var info fileInfo
	if err := b.call("getFile", map[string]any{"file_id": fileID}, &info); err != nil {
		return nil, err
	}

	resp, err := b.client.Get(fmt.Sprintf(
		"https://api.telegram.org/file/bot%s/%s",
		b.token, url.PathEscape(info.FilePath),
	))
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram download: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
