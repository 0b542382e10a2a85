package notify

import (
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/matchpredict/internal/pkg/config"
	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

type fakeBot struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tgbotapi.MessageConfig, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestFormatPrediction(t *testing.T) {
	rec := models.PredictionRecord{
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		Prediction: models.Prediction{HomeWin: 50, Draw: 20, AwayWin: 30.5, Analysis: "X"},
	}
	got := FormatPrediction(rec)
	want := "⚽ Arsenal vs Chelsea\nHome 50% | Draw 20% | Away 30.5%\n\nX"
	if got != want {
		t.Errorf("FormatPrediction() = %q, want %q", got, want)
	}

	rec.Prediction = models.Prediction{Analysis: "prediction failed: boom"}
	got = FormatPrediction(rec)
	if !strings.Contains(got, "Home - | Draw - | Away -") {
		t.Errorf("zero prediction should use placeholders, got %q", got)
	}
}

func TestFormatPrediction_TruncatesAnalysis(t *testing.T) {
	rec := models.PredictionRecord{
		HomeTeam:   "A",
		AwayTeam:   "B",
		Prediction: models.Prediction{HomeWin: 1, Analysis: strings.Repeat("あ", maxAnalysisRunes+10)},
	}
	got := FormatPrediction(rec)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("long analysis should be truncated")
	}
	if n := len([]rune(got)); n > maxAnalysisRunes+100 {
		t.Errorf("message too long: %d runes", n)
	}
}

func TestTelegramNotifier_SendsQueuedOnClose(t *testing.T) {
	bot := &fakeBot{}
	n := newTelegramNotifier(bot, 42, time.Millisecond)

	n.NotifyPrediction(models.PredictionRecord{HomeTeam: "A", AwayTeam: "B", Prediction: models.Prediction{HomeWin: 40, Draw: 30, AwayWin: 30}})
	n.NotifyPrediction(models.PredictionRecord{HomeTeam: "C", AwayTeam: "D", Prediction: models.Prediction{HomeWin: 10, Draw: 10, AwayWin: 80}})

	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	sent := bot.messages()
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sent))
	}
	if sent[0].ChatID != 42 {
		t.Errorf("chat id = %d, want 42", sent[0].ChatID)
	}
	if !strings.Contains(sent[1].Text, "C vs D") {
		t.Errorf("second message = %q", sent[1].Text)
	}

	// After Close nothing is queued
	n.NotifyPrediction(models.PredictionRecord{HomeTeam: "E", AwayTeam: "F"})
	if len(bot.messages()) != 2 {
		t.Errorf("messages after Close should be ignored")
	}
	if got := len(n.queue); got != 0 {
		t.Errorf("queue after Close holds %d messages, want 0", got)
	}
	if got := n.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
}

func TestTelegramNotifier_DropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	bot := &blockingBot{release: block}
	n := newTelegramNotifier(bot, 42, 0)

	// the sender holds one record while blocked, the rest fill the buffer
	for i := 0; i < cap(n.queue)+5; i++ {
		n.NotifyPrediction(models.PredictionRecord{HomeTeam: "A", AwayTeam: "B"})
	}
	if got := n.Dropped(); got < 4 {
		t.Errorf("Dropped() = %d, want at least 4", got)
	}

	close(block)
	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

type blockingBot struct {
	release chan struct{}
}

func (b *blockingBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	<-b.release
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier_NilSafe(t *testing.T) {
	var n *TelegramNotifier
	n.NotifyPrediction(models.PredictionRecord{})
	if err := n.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}
}

func TestNewTelegramNotifier_RequiresConfig(t *testing.T) {
	if _, err := NewTelegramNotifier(&config.TelegramConfig{}); err == nil {
		t.Error("expected error without token and chat id")
	}
}
