package recorder

// QuoteEvent holds the outcome of one successful refresh tick.
type QuoteEvent struct {
	Symbol        string
	BarTime       string // provider-local, unzoned
	Open          float64
	PreviousClose float64
	PercentChange float64
	Action        string // "BUY" or "SELL"
	Bars          int
}

// FailureEvent records an abandoned refresh tick.
type FailureEvent struct {
	Symbol string
	Kind   string // see quote.Kind
	Detail string
}

// PredictionEvent records one prediction service call.
type PredictionEvent struct {
	Symbol         string
	PredictedPrice float64
	Error          string // empty on success
}

// Recorder persists history for later analysis.
type Recorder interface {
	RecordQuote(evt *QuoteEvent) error
	RecordFailure(evt *FailureEvent) error
	RecordPrediction(evt *PredictionEvent) error
	Close() error
}
