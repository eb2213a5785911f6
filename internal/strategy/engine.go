package strategy

import "StockPulse/internal/model"

const (
	BuyText  = "Buy: the stock is trending upwards"
	SellText = "Sell: the stock is trending downwards"
)

// Suggest maps the sign of a percent change to a suggestion. Only a strictly
// positive change is a Buy; zero, negative and NaN all fall to Sell.
func Suggest(change float64) model.Suggestion {
	if change > 0 {
		return model.Suggestion{Action: model.ActionBuy, Text: BuyText}
	}
	return model.Suggestion{Action: model.ActionSell, Text: SellText}
}
