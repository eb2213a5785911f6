package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockPulse/internal/display"
	"StockPulse/internal/model"
)

// FormatSuggestion formats a suggestion change into a Telegram message.
func FormatSuggestion(symbol, priceText, barTime string, s model.Suggestion) string {
	var b strings.Builder
	icon := "📉"
	if s.Action == model.ActionBuy {
		icon = "📈"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n\n", icon, html.EscapeString(symbol), html.EscapeString(barTime)))
	b.WriteString(html.EscapeString(priceText) + "\n")
	b.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(s.Text)))
	return b.String()
}

// FormatBoard renders the dashboard texts for a chat reply.
func FormatBoard(snap display.Snapshot) string {
	texts := snap.SortedTexts()
	if len(texts) == 0 {
		return "No data yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>StockPulse</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	for _, t := range texts {
		b.WriteString(html.EscapeString(t.Text) + "\n")
	}
	return b.String()
}
