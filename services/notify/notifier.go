package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"market_signal_bot/models"
	"market_signal_bot/services/evaluation"
)

// MaxMessageRunes is the messaging sink's hard text limit
const MaxMessageRunes = 4096

// Section caps for one scan message
const (
	maxRisingEntries    = 5
	maxEquityEntries    = 3
	maxPotentialEntries = 5
)

// Notifier formats scan results and position closures into bounded chat
// messages. Exactly one message is dispatched per scan tick; an empty
// scan still produces an explicit heartbeat.
type Notifier struct {
	sender Sender
}

// NewNotifier creates a notifier on top of a message sender
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// NotifyScan dispatches the scan summary. Delivery failure is logged and
// not retried; the next tick produces a fresh message.
func (n *Notifier) NotifyScan(res *models.ScanResult, nextTick time.Time) error {
	text := BuildScanMessage(res, nextTick)
	if err := n.sender.Send(text); err != nil {
		log.Printf("Scan message not delivered: %v", err)
		return err
	}
	return nil
}

// NotifyClosures dispatches a summary after the evaluation tick closed
// at least one position
func (n *Notifier) NotifyClosures(closed []evaluation.ClosedPosition, report models.AccuracyReport) error {
	if len(closed) == 0 {
		return nil
	}
	text := BuildClosureMessage(closed, report)
	if err := n.sender.Send(text); err != nil {
		log.Printf("Closure message not delivered: %v", err)
		return err
	}
	return nil
}

// BuildScanMessage renders one scan result into the bounded message text
func BuildScanMessage(res *models.ScanResult, nextTick time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Piyasa Taraması — %s\n", res.GeneratedAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "⏭ Sonraki tarama: %s\n", nextTick.Format("15:04"))

	if res.CryptoCount == 0 {
		b.WriteString("\n⚠️ Kripto verisi alınamadı\n")
	}
	if res.EquityCount == 0 {
		b.WriteString("⚠️ Hisse verisi alınamadı\n")
	}

	rising := eligibleOnly(res.Rising, maxRisingEntries)
	equity := eligibleOnly(res.Equity, maxEquityEntries)
	potential := eligibleOnly(res.Potential, maxPotentialEntries)

	if len(rising) == 0 && len(equity) == 0 && len(potential) == 0 {
		b.WriteString("\nBu taramada filtrelerden geçen sinyal yok.\n")
		return truncate(b.String())
	}

	if len(rising) > 0 {
		b.WriteString("\n🚀 Yükselen Kriptolar\n")
		for _, c := range rising {
			writeEntry(&b, c)
		}
	}
	if len(equity) > 0 {
		b.WriteString("\n📈 Hisseler\n")
		for _, c := range equity {
			writeEntry(&b, c)
		}
	}
	if len(potential) > 0 {
		b.WriteString("\n👀 Potansiyel\n")
		for _, c := range potential {
			writeEntry(&b, c)
		}
	}

	return truncate(b.String())
}

// BuildClosureMessage renders closed positions plus the rolling accuracy
func BuildClosureMessage(closed []evaluation.ClosedPosition, report models.AccuracyReport) string {
	var b strings.Builder

	b.WriteString("🔔 Pozisyon Güncellemesi\n")
	for _, cp := range closed {
		emoji := "✅"
		switch cp.Status {
		case models.StatusLoss:
			emoji = "🛑"
		case models.StatusExpired:
			emoji = "⏰"
		}
		fmt.Fprintf(&b, "%s %s #%d %s: %%%s\n",
			emoji, cp.Signal.Symbol, cp.Signal.ID, cp.Status, cp.ResultPct.StringFixed(2))
	}

	fmt.Fprintf(&b, "\n📊 Genel başarı: %%%.1f (%dW / %dL / %dE)\n",
		report.WinRate, report.Wins, report.Losses, report.Expired)
	if report.ProfitFactor > 0 {
		fmt.Fprintf(&b, "Kar faktörü: %.2f\n", report.ProfitFactor)
	}

	return truncate(b.String())
}

func writeEntry(b *strings.Builder, c models.Candidate) {
	fmt.Fprintf(b, "• %s — %s (%%%.1f) | Skor: %.1f\n",
		c.Snapshot.Symbol, formatPrice(c.Snapshot.Price), c.Snapshot.ChangePct24h, c.FinalScore)
	if c.Class != models.SignalHold {
		fmt.Fprintf(b, "   🎯 +%%%.1f | ⛔ %%%.1f\n", c.TargetPct, c.StopPct)
	}
	if len(c.Signals) > 0 {
		reasons := c.Signals
		if len(reasons) > 3 {
			reasons = reasons[:3]
		}
		fmt.Fprintf(b, "   %s\n", strings.Join(reasons, ", "))
	}
}

func eligibleOnly(candidates []models.Candidate, limit int) []models.Candidate {
	out := make([]models.Candidate, 0, limit)
	for _, c := range candidates {
		if !c.Eligible || c.Class == models.SignalHold {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

func formatPrice(p float64) string {
	if p >= 100 {
		return fmt.Sprintf("%.2f", p)
	}
	return fmt.Sprintf("%.4f", p)
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxMessageRunes {
		return text
	}
	return string(runes[:MaxMessageRunes-1]) + "…"
}
