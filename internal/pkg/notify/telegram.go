package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

// Min interval between any two Telegram messages to the same chat to avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// maxAnalysisRunes keeps messages well under Telegram's 4096 character limit.
const maxAnalysisRunes = 3000

// sender is the part of tgbotapi.BotAPI the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier publishes served predictions to a Telegram chat
type TelegramNotifier struct {
	bot          sender
	chatID       int64
	sendInterval time.Duration

	queue  chan models.PredictionRecord
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewTelegramNotifier connects to the Bot API and starts the sender goroutine.
func NewTelegramNotifier(cfg *config.TelegramConfig) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram bot_token and chat_id are required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	n := newTelegramNotifier(bot, cfg.ChatID, telegramSendInterval)
	slog.Info("Telegram notifier initialized", "chat_id", cfg.ChatID, "bot", bot.Self.UserName)
	return n, nil
}

func newTelegramNotifier(bot sender, chatID int64, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:          bot,
		chatID:       chatID,
		sendInterval: interval,
		queue:        make(chan models.PredictionRecord, 100), // Buffer up to 100 messages
		ctx:          ctx,
		cancel:       cancel,
	}

	n.wg.Add(1)
	go n.messageSender()
	return n
}

// NotifyPrediction queues rec for publication. Never blocks: when the queue
// is full or the notifier is closed the message is dropped and counted.
func (n *TelegramNotifier) NotifyPrediction(rec models.PredictionRecord) {
	if n == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		n.dropped++
		slog.Warn("Telegram notifier closed, dropping prediction", "match", rec.HomeTeam+" vs "+rec.AwayTeam)
		return
	}

	select {
	case n.queue <- rec:
	default:
		n.dropped++
		slog.Warn("Telegram queue full, dropping prediction", "match", rec.HomeTeam+" vs "+rec.AwayTeam)
	}
}

// Dropped returns how many messages were discarded unsent.
func (n *TelegramNotifier) Dropped() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}

// Close stops accepting messages, sends what is queued and waits for the sender.
func (n *TelegramNotifier) Close() error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	n.cancel()
	n.wg.Wait()
	return nil
}

// messageSender runs in background and sends queued messages with proper intervals
func (n *TelegramNotifier) messageSender() {
	defer n.wg.Done()

	var lastSend time.Time
	send := func(rec models.PredictionRecord) {
		if wait := n.sendInterval - time.Since(lastSend); wait > 0 {
			time.Sleep(wait)
		}
		msg := tgbotapi.NewMessage(n.chatID, FormatPrediction(rec))
		if _, err := n.bot.Send(msg); err != nil {
			slog.Error("Failed to send telegram message", "error", err)
		}
		lastSend = time.Now()
	}

	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining messages before exit
			for {
				select {
				case rec := <-n.queue:
					send(rec)
				default:
					return
				}
			}
		case rec := <-n.queue:
			send(rec)
		}
	}
}

// FormatPrediction renders a prediction as a plain-text Telegram message.
func FormatPrediction(rec models.PredictionRecord) string {
	var b strings.Builder
	b.WriteString("⚽ ")
	b.WriteString(rec.HomeTeam)
	b.WriteString(" vs ")
	b.WriteString(rec.AwayTeam)
	b.WriteString("\n")

	p := rec.Prediction
	if p.Total() == 0 {
		b.WriteString("Home - | Draw - | Away -\n")
	} else {
		fmt.Fprintf(&b, "Home %s%% | Draw %s%% | Away %s%%\n",
			formatPercent(p.HomeWin), formatPercent(p.Draw), formatPercent(p.AwayWin))
	}

	if analysis := strings.TrimSpace(p.Analysis); analysis != "" {
		runes := []rune(analysis)
		if len(runes) > maxAnalysisRunes {
			analysis = string(runes[:maxAnalysisRunes]) + "…"
		}
		b.WriteString("\n")
		b.WriteString(analysis)
	}
	return b.String()
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
