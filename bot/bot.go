package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parcel-tax-scraper/scraper"
)

// telegram rejects messages longer than this
const maxMessageLen = 4096

const sourceTelegram = "telegram"

const helpText = "Commands:\n/start - Start the bot\n/help - Show this help\n/parcel <account> - Look up a parcel's tax record\n\nYou can also just send me a parcel account number."

// RequestLog records each lookup the bot runs.
type RequestLog interface {
	StartRequest(ctx context.Context, account, source string) (uuid.UUID, error)
	FinishRequest(ctx context.Context, id uuid.UUID, lookupErr error) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers parcel lookups over Telegram.
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	searcher scraper.Searcher
	requests RequestLog
	allowed  map[int64]bool
	wg       sync.WaitGroup
}

// Option configures a Bot.
type Option func(*Bot)

// WithRequestLog records every lookup in l.
func WithRequestLog(l RequestLog) Option {
	return func(b *Bot) { b.requests = l }
}

// New authorizes against the Telegram API. An empty allowed list lets everyone in.
func New(token string, allowed []int64, searcher scraper.Searcher, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, eris.New("bot: telegram token is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, eris.Wrap(err, "bot: authorize")
	}
	zap.L().Info("authorized on telegram", zap.String("username", api.Self.UserName))

	b := newBot(api, allowed, searcher, opts...)
	b.api = api
	return b, nil
}

func newBot(s sender, allowed []int64, searcher scraper.Searcher, opts ...Option) *Bot {
	b := &Bot{
		sender:   s,
		searcher: searcher,
		allowed:  make(map[int64]bool, len(allowed)),
	}
	for _, id := range allowed {
		b.allowed[id] = true
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run polls for updates until ctx is canceled. Each message is handled on its own
// goroutine; Run waits for them before returning.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1

	updates := b.api.GetUpdatesChan(updateConfig)
	defer b.wg.Wait()
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("telegram bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			msg := update.Message
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

func (b *Bot) authorized(userID int64) bool {
	return len(b.allowed) == 0 || b.allowed[userID]
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if !b.authorized(msg.From.ID) {
		zap.L().Warn("unauthorized telegram user", zap.Int64("user_id", msg.From.ID))
		b.reply(chatID, "Sorry, you are not authorized to use this bot.")
		return
	}

	account := strings.TrimSpace(msg.Text)
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.reply(chatID, "Welcome! Send me a parcel account number to look up its tax record.")
			return
		case "help":
			b.reply(chatID, helpText)
			return
		case "parcel":
			account = strings.TrimSpace(msg.CommandArguments())
		default:
			b.reply(chatID, "Unknown command. Use /help to see available commands.")
			return
		}
	}

	if account == "" {
		b.reply(chatID, "Usage: /parcel <account>")
		return
	}

	b.reply(chatID, "Looking up parcel "+account+"...")
	b.lookup(ctx, chatID, account)
}

func (b *Bot) lookup(ctx context.Context, chatID int64, account string) {
	var logID uuid.UUID
	if b.requests != nil {
		id, err := b.requests.StartRequest(ctx, account, sourceTelegram)
		if err != nil {
			zap.L().Warn("failed to record request", zap.String("account", account), zap.Error(err))
		}
		logID = id
	}

	record, err := b.searcher.Search(ctx, account)

	if b.requests != nil && logID != uuid.Nil {
		if ferr := b.requests.FinishRequest(ctx, logID, err); ferr != nil {
			zap.L().Warn("failed to finish request record", zap.Stringer("id", logID), zap.Error(ferr))
		}
	}

	if err != nil {
		b.reply(chatID, "Lookup failed: "+err.Error())
		return
	}

	for _, part := range splitMessage(FormatRecord(record), maxMessageLen) {
		b.reply(chatID, part)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		zap.L().Warn("failed to send telegram message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
