package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/MaksimYurchanka/pump-monitor/internal/config"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
)

const queueCapacity = 256

// TelegramNotifier delivers alerts to a single chat through one ordered
// queue, pacing sends so the bot stays under Telegram rate limits.
type TelegramNotifier struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	sendDelay time.Duration

	mu      sync.Mutex
	stopped bool
	queue   chan string
	done    chan struct{}
}

func New(cfg *config.TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	n := &TelegramNotifier{
		bot:       bot,
		chatID:    cfg.AlertChatID,
		sendDelay: cfg.SendDelay,
		queue:     make(chan string, queueCapacity),
		done:      make(chan struct{}),
	}
	go n.run()

	return n, nil
}

func (n *TelegramNotifier) Ping(ctx context.Context) error {
	_, err := n.bot.GetMe()
	if err != nil {
		return fmt.Errorf("telegram bot unreachable: %w", err)
	}
	return nil
}

// EnqueueMessage queues text for delivery. When the queue is full or the
// notifier is stopped the message is dropped with a log instead of blocking
// the caller.
func (n *TelegramNotifier) EnqueueMessage(text string) {
	if text == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		log.Warn().Msg("notifier stopped, dropping message")
		return
	}

	select {
	case n.queue <- text:
	default:
		metrics.IncAlertSendError()
		log.Warn().Msg("notifier queue full, dropping message")
	}
}

// Stop closes the queue and waits for queued messages to be delivered.
func (n *TelegramNotifier) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	close(n.queue)
	n.mu.Unlock()

	<-n.done
}

func (n *TelegramNotifier) run() {
	defer close(n.done)

	for text := range n.queue {
		n.deliver(text)
		time.Sleep(n.sendDelay)
	}
}

// deliver splits the text into chunks under the Telegram length cap and sends
// them in order. A "too long" rejection triggers one rechunk at half the cap;
// a chunk rejected again is dropped.
func (n *TelegramNotifier) deliver(text string) {
	for _, chunk := range SplitMessage(text, MaxMessageLen) {
		if err := n.sendChunk(chunk); err == nil {
			continue
		} else if !isTooLong(err) {
			metrics.IncAlertSendError()
			log.Error().Err(err).Msg("failed to send telegram message")
			continue
		}

		for _, half := range SplitMessage(chunk, MaxMessageLen/2) {
			if err := n.sendChunk(half); err != nil {
				metrics.IncAlertSendError()
				log.Error().Err(err).Msg("failed to send telegram message after rechunk, dropping")
			}
		}
	}
}

func (n *TelegramNotifier) sendChunk(chunk string) error {
	msg := tgbotapi.NewMessage(n.chatID, chunk)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	_, err := n.bot.Send(msg)
	if err != nil {
		return err
	}
	metrics.IncAlertsSent()
	return nil
}

func isTooLong(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "message is too long")
}

// ListenCommands consumes updates from the alert chat and answers bot
// commands with whatever handle returns. Blocks until ctx is done.
func (n *TelegramNotifier) ListenCommands(ctx context.Context, handle func(command string) string) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := n.bot.GetUpdatesChan(u)
	log.Info().Int64("chat_id", n.chatID).Msg("telegram command handler started")

	for {
		select {
		case <-ctx.Done():
			n.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if update.Message.Chat.ID != n.chatID {
				continue
			}

			reply := handle(update.Message.Command())
			if reply == "" {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			msg.ParseMode = tgbotapi.ModeHTML
			msg.ReplyToMessageID = update.Message.MessageID
			if _, err := n.bot.Send(msg); err != nil {
				log.Error().Err(err).Msg("failed to reply to command")
			}
		}
	}
}
