// Package render draws analysis results as terminal cards.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"CryptoPulse/internal/model"
)

var (
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	errorColor     = lipgloss.Color("#cc3300")
	successColor   = lipgloss.Color("#33cc33")
	warningColor   = lipgloss.Color("#cccc00")
	mutedColor     = lipgloss.Color("#999999")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
	symbolStyle = lipgloss.NewStyle().Bold(true)
	gainStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Foreground(errorColor).
			Padding(0, 1)
)

// DefaultWidth is the card width used when the terminal size is unknown.
const DefaultWidth = 64

// Title renders the application banner.
func Title() string {
	return titleStyle.Render("CryptoPulse · crypto signal scanner")
}

// Card renders one ranked result. rank starts at 1.
func Card(rank int, r model.RankedResult, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	header := fmt.Sprintf("#%d %s/USDT", rank, symbolStyle.Render(r.Symbol))
	badge := Badge(r.Type)
	gap := width - 4 - lipgloss.Width(header) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}

	lines := []string{
		header + strings.Repeat(" ", gap) + badge,
		mutedStyle.Render(fmt.Sprintf("%s · $%s · 24h %s", r.Name, Price(r.CurrentPrice), Change(r.PriceChange24h))),
		gainStyle.Render(fmt.Sprintf("Potential: +%.1f%%", r.PotentialGain)) +
			mutedStyle.Render(fmt.Sprintf("   Confidence: %d%%", int(r.Score*100+0.5))),
	}
	if l := r.Levels; l != nil {
		lines = append(lines,
			fmt.Sprintf("Entry $%s · SL $%s · safe $%s · %dx", Price(l.Entry), Price(l.StopLoss), Price(l.SafeStopLoss), l.Leverage),
			fmt.Sprintf("TP $%s / $%s / $%s / $%s", Price(l.TakeProfit[0]), Price(l.TakeProfit[1]), Price(l.TakeProfit[2]), Price(l.TakeProfit[3])))
	}
	if r.Signal != "" {
		lines = append(lines, "", r.Signal)
	}
	return cardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// Cards renders every result stacked vertically.
func Cards(results []model.RankedResult, width int) string {
	cards := make([]string, 0, len(results))
	for i, r := range results {
		cards = append(cards, Card(i+1, r, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// Badge renders the direction label with its colour.
func Badge(t model.SignalType) string {
	switch t {
	case model.SignalLong:
		return lipgloss.NewStyle().Foreground(successColor).Bold(true).Render("▲ LONG")
	case model.SignalShort:
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true).Render("▼ SHORT")
	default:
		return lipgloss.NewStyle().Foreground(warningColor).Render("■ NEUTRAL")
	}
}

// Summary renders the footer describing the analysis.
func Summary(total, shown int, source, timestamp string) string {
	lines := []string{
		fmt.Sprintf("Analyzed: %d coins · Top %d selected", total, shown),
		fmt.Sprintf("Source: %s · %s", source, timestamp),
	}
	if source == "fallback" {
		lines = append(lines, lipgloss.NewStyle().Foreground(warningColor).
			Render("Live providers were unavailable; figures come from the static fallback dataset."))
	}
	lines = append(lines, mutedStyle.Render("Heuristic indicators, not investment advice."))
	return strings.Join(lines, "\n")
}

// Error renders an error box.
func Error(msg string) string {
	return errorStyle.Render("Error: " + msg)
}

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Loading renders one frame of the loading line.
func Loading(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return lipgloss.NewStyle().Foreground(primaryColor).Render(spinner[frame%len(spinner)]) +
		" Analyzing the market..."
}

// Price formats a price with more decimals for sub-dollar coins.
func Price(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.0f", p)
	case p >= 1:
		return fmt.Sprintf("%.2f", p)
	default:
		return fmt.Sprintf("%.4f", p)
	}
}

// Change formats a percentage change with its colour.
func Change(pct float64) string {
	style := lipgloss.NewStyle().Foreground(successColor)
	if pct < 0 {
		style = lipgloss.NewStyle().Foreground(errorColor)
	}
	return style.Render(fmt.Sprintf("%+.2f%%", pct))
}
