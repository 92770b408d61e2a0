package telegram

import (
	"fmt"
	"sort"
	"strings"

	"golang-stock-sentiment/internal/analyzer/dto"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FormatSentimentResult renders an analysis result as a Markdown Telegram message.
func FormatSentimentResult(result *dto.AnalysisResult) string {
	var b strings.Builder

	var icon, mood string
	switch {
	case result.Score >= 0.6:
		icon, mood = "😊", "Bullish"
	case result.Score <= 0.4:
		icon, mood = "😟", "Bearish"
	default:
		icon, mood = "😐", "Neutral"
	}

	b.WriteString(fmt.Sprintf("📈 *Crowd Sentiment $%s*\n\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, strings.ToUpper(result.Ticker))))
	b.WriteString(fmt.Sprintf("%s *Mood:* %s\n", icon, mood))
	b.WriteString(fmt.Sprintf("🎯 *Score:* %.4f\n", result.Score))
	b.WriteString(fmt.Sprintf("🗂 *Posts:* %d\n", result.SampleSize))

	if len(result.Methods) > 0 {
		methods := make([]string, 0, len(result.Methods))
		for m := range result.Methods {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		parts := make([]string, 0, len(methods))
		for _, m := range methods {
			parts = append(parts, fmt.Sprintf("%s %d", m, result.Methods[m]))
		}
		b.WriteString(fmt.Sprintf("🧮 *Scored by:* %s\n", strings.Join(parts, ", ")))
	}

	if result.Cached {
		b.WriteString("♻️ _cached result_\n")
	}
	b.WriteString(fmt.Sprintf("🕒 %s", result.ComputedAt.UTC().Format("2006-01-02 15:04 MST")))

	return b.String()
}
