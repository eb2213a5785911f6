package strategy

import (
	"math"
	"testing"

	"StockPulse/internal/model"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		change float64
		action model.Action
		text   string
	}{
		{1.00, model.ActionBuy, "Buy: the stock is trending upwards"},
		{0.0001, model.ActionBuy, BuyText},
		{math.Inf(1), model.ActionBuy, BuyText},
		{0, model.ActionSell, "Sell: the stock is trending downwards"},
		{-0.5, model.ActionSell, SellText},
		{math.Inf(-1), model.ActionSell, SellText},
		{math.NaN(), model.ActionSell, SellText},
	}
	for _, tt := range tests {
		got := Suggest(tt.change)
		if got.Action != tt.action || got.Text != tt.text {
			t.Errorf("change %v: expected %s %q, got %s %q", tt.change, tt.action, tt.text, got.Action, got.Text)
		}
	}
}

// The suggestion follows the unrounded change, so a move that displays as
// 0.00% can still be a Buy or a Sell.
func TestSuggest_UsesUnroundedChange(t *testing.T) {
	if got := Suggest(0.004); got.Action != model.ActionBuy {
		t.Errorf("change 0.004: expected BUY, got %s", got.Action)
	}
	if got := Suggest(-0.004); got.Action != model.ActionSell {
		t.Errorf("change -0.004: expected SELL, got %s", got.Action)
	}
}
