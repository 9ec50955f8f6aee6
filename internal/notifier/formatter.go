package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"CryptoPulse/internal/analysis"
	"CryptoPulse/internal/model"
)

var directionIcon = map[model.SignalType]string{
	model.SignalLong:    "🟢",
	model.SignalShort:   "🔴",
	model.SignalNeutral: "⚪",
}

// FormatDigest formats the top entries of an analysis report as a Telegram message.
func FormatDigest(report *analysis.Report, top int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>CryptoPulse digest</b> | %s\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("Source: %s | Analyzed: %d | Signals: %d\n\n",
		html.EscapeString(report.DataSource), report.TotalAnalyzed, len(report.Results)))

	results := report.Results
	if top > 0 && len(results) > top {
		results = results[:top]
	}
	if len(results) == 0 {
		b.WriteString("No coin cleared the score threshold.\n")
	}
	for i, r := range results {
		b.WriteString(fmt.Sprintf("%d. %s <b>%s</b> %s\n", i+1, directionIcon[r.Type], html.EscapeString(r.Symbol), r.Type))
		b.WriteString(fmt.Sprintf("   Price: $%s (%+.2f%%)\n", formatPrice(r.CurrentPrice), r.PriceChange24h))
		b.WriteString(fmt.Sprintf("   Score: %.0f%% | Target: +%.1f%%\n", r.Score*100, r.PotentialGain))
	}

	if len(report.Degraded) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Metadata only: %s\n", html.EscapeString(strings.Join(report.Degraded, ", "))))
	}
	if report.DataSource == "fallback" {
		b.WriteString("\n⚠️ Live providers unavailable, figures come from the static fallback dataset.\n")
	}
	b.WriteString("\n<i>Heuristic indicators, not investment advice.</i>")
	return b.String()
}

// FormatSignal formats one ranked result with its full description.
func FormatSignal(r model.RankedResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> (%s)\n", directionIcon[r.Type], html.EscapeString(r.Symbol), html.EscapeString(r.Name)))
	b.WriteString(html.EscapeString(r.Signal))
	if l := r.Levels; l != nil {
		b.WriteString(fmt.Sprintf("\n\nEntry: $%s · Leverage: %dx\n", formatPrice(l.Entry), l.Leverage))
		b.WriteString(fmt.Sprintf("TP1 $%s · TP2 $%s · TP3 $%s · TP4 $%s\n",
			formatPrice(l.TakeProfit[0]), formatPrice(l.TakeProfit[1]), formatPrice(l.TakeProfit[2]), formatPrice(l.TakeProfit[3])))
		b.WriteString(fmt.Sprintf("SL $%s · Safe SL $%s", formatPrice(l.StopLoss), formatPrice(l.SafeStopLoss)))
	}
	return b.String()
}

// Status is a snapshot of the service state for the /status command.
type Status struct {
	Providers  []string
	Limiter    string
	LastRun    time.Time
	LastSource string
	LastCount  int
	NextDigest time.Time
}

// FormatStatus formats the service status for display.
func FormatStatus(s Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>CryptoPulse status</b>\n\n")
	b.WriteString(fmt.Sprintf("Providers: %s\n", html.EscapeString(strings.Join(s.Providers, " → "))))
	b.WriteString(fmt.Sprintf("Rate limiter: %s\n", html.EscapeString(s.Limiter)))
	if s.LastRun.IsZero() {
		b.WriteString("Last analysis: never\n")
	} else {
		b.WriteString(fmt.Sprintf("Last analysis: %s (%s, %d signals)\n",
			s.LastRun.UTC().Format("2006-01-02 15:04"), html.EscapeString(s.LastSource), s.LastCount))
	}
	if !s.NextDigest.IsZero() {
		b.WriteString(fmt.Sprintf("Next digest: %s\n", s.NextDigest.UTC().Format("2006-01-02 15:04")))
	}
	return b.String()
}

// formatPrice keeps more decimals for sub-dollar coins.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.0f", p)
	case p >= 1:
		return fmt.Sprintf("%.2f", p)
	default:
		return fmt.Sprintf("%.4f", p)
	}
}
