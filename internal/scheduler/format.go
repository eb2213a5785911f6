package scheduler

import (
	"fmt"
	"time"

	"StockPulse/internal/calculator"

	"github.com/shopspring/decimal"
)

const barTimeLayout = "2006-01-02 15:04:05"

// FormatPriceLine renders "Price: $101.00 (1.00%)".
func FormatPriceLine(open decimal.Decimal, change float64) string {
	return fmt.Sprintf("Price: $%s (%s%%)", calculator.FormatPrice(open), calculator.FormatPercent(change))
}

// FormatLastUpdated renders the bar time as a wall-clock time of day. The
// provider time has no zone, so it is shown as-is rather than converted.
func FormatLastUpdated(barTime string) string {
	t, err := time.Parse(barTimeLayout, barTime)
	if err != nil {
		return "Last updated: " + barTime
	}
	return "Last updated: " + t.Format("3:04:05 PM")
}

// FormatPrediction renders a predicted price.
func FormatPrediction(price float64) string {
	return "Predicted Price: $" + decimal.NewFromFloat(price).StringFixed(2)
}
