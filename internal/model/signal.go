package model

// Action is the direction of a suggestion.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Suggestion is the output of the suggestion engine.
type Suggestion struct {
	Action Action
	Text   string
}

// Prediction is a predicted price returned by the prediction service.
type Prediction struct {
	Symbol         string  `json:"stock_symbol"`
	PredictedPrice float64 `json:"predicted_price"`
}
