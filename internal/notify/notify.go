// Package notify delivers postings to a person.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobsniper/internal/domain"
)

const maxKeyPoints = 4

type Notifier interface {
	Send(ctx context.Context, p domain.Posting) error
}

// Deliver sends each posting in order. Failures are logged and skipped; the
// number of postings sent is returned.
func Deliver(ctx context.Context, n Notifier, ps []domain.Posting) int {
	sent := 0
	for i, p := range ps {
		if err := ctx.Err(); err != nil {
			log.Printf("[notify] stopped after %d/%d: %v", sent, len(ps), err)
			break
		}
		if err := n.Send(ctx, p); err != nil {
			log.Printf("[notify] %d/%d failed %q @ %s: %v", i+1, len(ps), p.Title, p.Company, err)
			continue
		}
		sent++
		log.Printf("[notify] %d/%d sent %q @ %s", i+1, len(ps), p.Title, p.Company)
	}
	return sent
}

// Format renders p as a Telegram Markdown message.
func Format(p domain.Posting) string {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }

	var b strings.Builder
	fmt.Fprintf(&b, "💼 *%s*\n", esc(p.Title))
	fmt.Fprintf(&b, "🏢 %s\n\n", esc(p.Company))

	if p.Reranked() {
		fmt.Fprintf(&b, "🤖 *AI Analysis:*\n_%s_\n\n", esc(p.AIReasoning))
	} else {
		fmt.Fprintf(&b, "🔎 *Keyword Score:* %d\n\n", p.Score)
	}

	loc := p.Location
	if loc == "" {
		loc = domain.LocationRemote
	}
	fmt.Fprintf(&b, "📍 *Location:* %s\n", esc(loc))
	if p.Salary != "" && p.Salary != domain.SalaryNotListed {
		fmt.Fprintf(&b, "💰 *Salary:* %s\n", esc(p.Salary))
	}

	b.WriteString("\n📋 *Key Points:*\n")
	for _, kp := range keyPoints(p) {
		fmt.Fprintf(&b, "  • %s\n", esc(kp))
	}

	if p.Reranked() {
		fmt.Fprintf(&b, "\n🎯 *Match Rating:* %d/10 %s\n", p.AIScore, stars(p.AIScore))
	}
	fmt.Fprintf(&b, "\n🔗 [Apply Here](%s)", p.URL)
	return b.String()
}

func keyPoints(p domain.Posting) []string {
	pts := p.AIRequirements
	if len(pts) == 0 {
		pts = p.AIHighlights
	}
	if len(pts) == 0 {
		return []string{"See full listing for details"}
	}
	return pts[:min(len(pts), maxKeyPoints)]
}

func stars(score int) string {
	if score <= 0 {
		return "N/A"
	}
	return strings.Repeat("⭐", min(score, 10))
}

// ConsoleNotifier prints messages instead of sending them.
type ConsoleNotifier struct {
	W io.Writer
}

func (c ConsoleNotifier) Send(_ context.Context, p domain.Posting) error {
	_, err := fmt.Fprintf(c.W, "%s\n%s\n", Format(p), strings.Repeat("-", 40))
	return err
}

func messageFor(chatID, text string) (tgbotapi.MessageConfig, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return tgbotapi.MessageConfig{}, fmt.Errorf("telegram chat id is empty")
	}
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text), nil
	}
	if !strings.HasPrefix(chatID, "@") {
		chatID = "@" + chatID
	}
	return tgbotapi.NewMessageToChannel(chatID, text), nil
}
