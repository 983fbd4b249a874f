package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunebot/internal/session"
	"github.com/desertthunder/tunebot/internal/shared"
	"github.com/desertthunder/tunebot/internal/tasks"
)

const (
	defaultPollTimeout = 30 * time.Second
	workerQueueSize    = 16

	searchingText = "Searching..."
	startText     = "Hi! Send me a song name or artist and I'll find it for you."
	helpText      = "Send any text to search the catalog. You'll get up to five matches; pick one and I'll fetch the audio. Commands: /start, /help."
)

// Orchestrator is the engine surface the bot drives. Implemented by
// [tasks.Engine].
type Orchestrator interface {
	Search(ctx context.Context, key session.Key, text string) (*tasks.SearchResult, error)
	Select(ctx context.Context, key session.Key, token string) *tasks.SelectResult
}

// Bot runs the long-poll loop and routes updates to per-chat workers.
type Bot struct {
	api         *BotAPI
	engine      Orchestrator
	logger      *log.Logger
	pollTimeout time.Duration

	mu      sync.Mutex
	workers map[int64]chan Update
	wg      sync.WaitGroup
}

// BotOpts contains configuration options for creating a Bot.
// API and Engine are required.
type BotOpts struct {
	API         *BotAPI
	Engine      Orchestrator
	Logger      *log.Logger
	PollTimeout time.Duration
}

// NewBot creates a Bot, filling unset options with defaults.
func NewBot(opts BotOpts) (*Bot, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("%w: bot API client", shared.ErrMissingArgument)
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: engine", shared.ErrMissingArgument)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}

	return &Bot{
		api:         opts.API,
		engine:      opts.Engine,
		logger:      opts.Logger,
		pollTimeout: opts.PollTimeout,
		workers:     make(map[int64]chan Update),
	}, nil
}

// Run polls for updates until ctx is cancelled. Each chat gets its own
// worker goroutine so updates within a chat are handled in order while
// chats never wait on each other. Run returns after all workers drain.
func (b *Bot) Run(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}
	b.logger.Info("bot started", "username", me.Username, "id", me.ID)

	var offset int64
	for {
		updates, next, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			b.logger.Error("poll failed", "error", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
			}
			continue
		}
		offset = next

		for _, update := range updates {
			b.dispatch(ctx, update)
		}
	}

	b.logger.Info("bot stopping, waiting for workers")
	b.wg.Wait()
	return nil
}

// dispatch routes one update to its chat's worker, spawning the worker on
// first contact. Updates for a saturated chat are dropped with a log line
// rather than stalling the poll loop.
func (b *Bot) dispatch(ctx context.Context, update Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}

	b.mu.Lock()
	queue, exists := b.workers[chatID]
	if !exists {
		queue = make(chan Update, workerQueueSize)
		b.workers[chatID] = queue
		b.wg.Add(1)
		go b.worker(ctx, chatID, queue)
	}
	b.mu.Unlock()

	select {
	case queue <- update:
	default:
		b.logger.Warn("dropping update, chat queue full", "chat", chatID, "update", update.UpdateID)
	}
}

func (b *Bot) worker(ctx context.Context, _ int64, queue chan Update) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-queue:
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// handleMessage runs the search flow: command replies for /start and /help,
// otherwise a "Searching..." placeholder that is edited into the result.
// Blank messages are dropped without any reply.
func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if msg.Chat == nil || (msg.From != nil && msg.From.IsBot) {
		return
	}
	chatID := msg.Chat.ID

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch command(text) {
	case "start":
		b.reply(ctx, chatID, startText)
		return
	case "help":
		b.reply(ctx, chatID, helpText)
		return
	}

	key := conversationKey(msg.Chat, msg.From)

	placeholder, err := b.api.SendMessage(ctx, chatID, searchingText, nil)
	if err != nil {
		b.logger.Error("failed to send placeholder", "chat", chatID, "error", err)
		placeholder = nil
	}

	result, err := b.engine.Search(ctx, key, text)
	if err != nil {
		b.logger.Error("search flow failed", "chat", chatID, "error", err)
		return
	}
	if result == nil {
		return
	}

	keyboard := buildKeyboard(result.Items)
	if placeholder != nil {
		err := b.api.EditMessageText(ctx, chatID, placeholder.MessageID, result.Text, keyboard)
		if err == nil {
			return
		}
		b.logger.Warn("failed to edit placeholder, sending fresh message", "chat", chatID, "error", err)
	}
	if _, err := b.api.SendMessage(ctx, chatID, result.Text, keyboard); err != nil {
		b.logger.Error("failed to send results", "chat", chatID, "error", err)
	}
}

// handleCallback runs the selection flow: acknowledge the press, resolve and
// fetch through the engine, then deliver audio, a link, or a failure note.
func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		_ = b.api.AnswerCallbackQuery(ctx, cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	key := conversationKey(cb.Message.Chat, cb.From)

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, ""); err != nil {
		b.logger.Warn("failed to acknowledge callback", "chat", chatID, "error", err)
	}

	result := b.engine.Select(ctx, key, cb.Data)
	switch result.Status {
	case tasks.StatusDelivered:
		if err := b.api.SendAudio(ctx, chatID, result.Audio, ""); err != nil {
			b.logger.Error("failed to send audio", "chat", chatID, "error", err)
			b.reply(ctx, chatID, "Couldn't upload the audio, please try again.")
		}
	case tasks.StatusLinkOnly, tasks.StatusFailed:
		b.reply(ctx, chatID, result.Message)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, chatID, text, nil); err != nil {
		b.logger.Error("failed to send message", "chat", chatID, "error", err)
	}
}

// buildKeyboard lays selection buttons out one per row, in list order.
func buildKeyboard(items []tasks.SearchItem) *InlineKeyboardMarkup {
	if len(items) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, len(items))
	for i, item := range items {
		rows[i] = []InlineKeyboardButton{{Text: item.Label, Data: item.Token}}
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// conversationKey scopes candidate lists to one user within one chat, so in
// group chats two users searching at once can't consume each other's lists.
func conversationKey(chat *Chat, from *User) session.Key {
	var userID int64
	if from != nil {
		userID = from.ID
	}
	return session.Key(fmt.Sprintf("chat:%d:user:%d", chat.ID, userID))
}

// command extracts a bot command name from message text, stripping any
// @botname suffix. Returns "" for ordinary text.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.Fields(text)[0][1:]
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name)
}

func updateChatID(update Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}
