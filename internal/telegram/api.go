package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tunebot/internal/media"
	"github.com/desertthunder/tunebot/internal/shared"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Update is one item from getUpdates. Exactly one of Message and
// CallbackQuery is set for the updates this bot subscribes to.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is the subset of a Telegram message the bot reads and sends.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      *Chat  `json:"chat,omitempty"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies where a message was sent.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"` // private|group|supergroup|channel
}

// User identifies who sent a message or pressed a button.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// CallbackQuery arrives when a user presses an inline keyboard button.
// Data carries the opaque token the button was created with.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// InlineKeyboardMarkup renders selection buttons under a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one pressable button; Data round-trips through
// the callback query untouched.
type InlineKeyboardButton struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// BotAPI is an HTTP client for the Bot API methods tunebot uses.
type BotAPI struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// BotAPIOpts contains configuration options for creating a BotAPI.
type BotAPIOpts struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

// NewBotAPI creates a BotAPI, filling unset options with defaults.
// The token is required.
func NewBotAPI(opts BotAPIOpts) (*BotAPI, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("%w: bot token", shared.ErrMissingCredentials)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 90 * time.Second}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	return &BotAPI{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// call posts a JSON payload to one Bot API method and unmarshals the result
// into out when out is non-nil. All failures wrap [shared.ErrTransport].
func (api *BotAPI) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrTransport, method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build %s request: %v", shared.ErrTransport, method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return api.do(req, method, out)
}

// do executes a prepared request and decodes the Bot API envelope.
func (api *BotAPI) do(req *http.Request, method string, out any) error {
	resp, err := api.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrTransport, method, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("%w: read %s response: %v", shared.ErrTransport, method, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: http %d: %s", shared.ErrTransport, method, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", shared.ErrTransport, method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%w: %s: %s", shared.ErrTransport, method, orUnknown(envelope.Description))
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("%w: decode %s result: %v", shared.ErrTransport, method, err)
		}
	}
	return nil
}

func (api *BotAPI) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", api.baseURL, api.token, method)
}

func orUnknown(description string) string {
	if description == "" {
		return "ok=false"
	}
	return description
}

// GetMe fetches the bot's own identity, which doubles as a token check.
func (api *BotAPI) GetMe(ctx context.Context) (*User, error) {
	var me User
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.methodURL("getMe"), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build getMe request: %v", shared.ErrTransport, err)
	}
	if err := api.do(req, "getMe", &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for new updates past offset and returns them along
// with the next offset to acknowledge everything received.
func (api *BotAPI) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 30
	}

	params := url.Values{}
	params.Set("timeout", strconv.Itoa(secs))
	params.Set("allowed_updates", `["message","callback_query"]`)
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}
	pollURL := api.methodURL("getUpdates") + "?" + params.Encode()

	// The server holds the request up to the poll timeout; give the HTTP
	// layer slack past that before giving up.
	reqCtx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pollURL, nil)
	if err != nil {
		return nil, offset, fmt.Errorf("%w: build getUpdates request: %v", shared.ErrTransport, err)
	}

	var updates []Update
	if err := api.do(req, "getUpdates", &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

type sendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends a plain-text message, optionally with selection buttons,
// and returns the sent message so it can be edited later.
func (api *BotAPI) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) (*Message, error) {
	var sent Message
	payload := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
		ReplyMarkup:           keyboard,
	}
	if err := api.call(ctx, "sendMessage", payload, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

type editMessageTextRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageText rewrites a previously sent message in place. The results
// list replaces the "Searching..." placeholder this way.
func (api *BotAPI) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *InlineKeyboardMarkup) error {
	payload := editMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	}
	return api.call(ctx, "editMessageText", payload, nil)
}

type answerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing its progress spinner.
func (api *BotAPI) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	return api.call(ctx, "answerCallbackQuery", answerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	}, nil)
}

// SendAudio uploads fetched audio as a multipart sendAudio request, with
// title and performer so clients show proper track metadata.
func (api *BotAPI) SendAudio(ctx context.Context, chatID int64, audio *media.Audio, caption string) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		defer mw.Close()

		_ = mw.WriteField("chat_id", strconv.FormatInt(chatID, 10))
		if audio.Title != "" {
			_ = mw.WriteField("title", audio.Title)
		}
		if audio.Performer != "" {
			_ = mw.WriteField("performer", audio.Performer)
		}
		if caption != "" {
			_ = mw.WriteField("caption", caption)
		}

		part, err := mw.CreateFormFile("audio", audio.FileName)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := part.Write(audio.Data); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.methodURL("sendAudio"), pr)
	if err != nil {
		return fmt.Errorf("%w: build sendAudio request: %v", shared.ErrTransport, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return api.do(req, "sendAudio", nil)
}
