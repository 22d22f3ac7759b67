package cli

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/globotrack/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// formatINR renders an amount with Indian digit grouping, e.g. ₹45,000.
func formatINR(v float64) string {
	return "₹" + inrPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func transportIcon(t models.TransportType) string {
	switch t {
	case models.TransportFlight:
		return "✈"
	case models.TransportTrain:
		return "🚆"
	case models.TransportBus:
		return "🚌"
	case models.TransportFerry:
		return "⛴"
	default:
		return "•"
	}
}

func transportLabel(t models.TransportType) string {
	switch t {
	case models.TransportFlight:
		return "Flight"
	case models.TransportTrain:
		return "Train"
	case models.TransportBus:
		return "Bus"
	case models.TransportFerry:
		return "Ferry"
	default:
		return "Transit"
	}
}

func pluralTransfers(n int) string {
	if n == 1 {
		return "1 transfer"
	}
	return fmt.Sprintf("%d transfers", n)
}

// renderRoute formats a route card. index > 0 prefixes the title with it so
// search results can be saved by number.
func renderRoute(r models.TravelRoute, index int, saved bool, theme Theme) string {
	var b strings.Builder

	title := r.Name
	if index > 0 {
		title = fmt.Sprintf("%d. %s", index, r.Name)
	}
	b.WriteString(theme.titleStyle().Render(title))
	b.WriteString("  ")
	b.WriteString(theme.priceStyle().Render(formatINR(r.TotalCost)))
	b.WriteString("\n")

	meta := fmt.Sprintf("   %s • %s", r.TotalDuration, pluralTransfers(r.Transfers))
	if r.ID != "" {
		meta += " • id " + r.ID
	}
	b.WriteString(theme.hintStyle().Render(meta))
	b.WriteString("\n")

	if saved {
		b.WriteString("   " + theme.successStyle().Render("Saved to Profile") + "\n")
	}

	for _, leg := range r.Legs {
		carrier := leg.Carrier
		if carrier == "" {
			carrier = "Standard"
		}
		fmt.Fprintf(&b, "   %s %s → %s  %s\n", transportIcon(leg.Type), leg.From, leg.To, formatINR(leg.Cost))
		fmt.Fprintf(&b, "     %s • %s • %s\n", transportLabel(leg.Type), carrier, leg.Duration)
	}

	if len(r.BookingOptions) > 0 {
		b.WriteString("   Compare & Book on:\n")
		for _, opt := range r.BookingOptions {
			fmt.Fprintf(&b, "     %s | %s  %s\n", opt.Platform, formatINR(opt.Price), opt.URL)
		}
	}
	return b.String()
}
