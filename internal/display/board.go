// Package display holds the dashboard state. Board is the only way to change
// what the page shows: every text write names its source pipeline and is
// checked against a field ownership table, and every accepted change is
// published as an Event to subscribers (the WebSocket hub).
package display

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"StockPulse/internal/chart"
)

// Field names a text region of the page.
type Field string

const (
	FieldStockName   Field = "stockName"
	FieldStockPrice  Field = "stockPrice"
	FieldLastUpdated Field = "lastUpdated"
	FieldSuggestion  Field = "suggestionText"
	FieldPrediction  Field = "predictionText"
)

// RegionChart is the chart region of the page.
const RegionChart = "stockChart"

// Source names the pipeline that writes to the board.
type Source string

const (
	SourceQuote      Source = "quote"
	SourcePrediction Source = "prediction"
)

// Fields lists every text region in page order.
var Fields = []Field{FieldStockName, FieldStockPrice, FieldLastUpdated, FieldSuggestion, FieldPrediction}

// DefaultOwners gives the quote pipeline the four quote fields and the
// prediction pipeline its own field.
func DefaultOwners() map[Field]Source {
	return map[Field]Source{
		FieldStockName:   SourceQuote,
		FieldStockPrice:  SourceQuote,
		FieldLastUpdated: SourceQuote,
		FieldSuggestion:  SourceQuote,
		FieldPrediction:  SourcePrediction,
	}
}

// ParseOwners overlays a configured field->source table on DefaultOwners.
func ParseOwners(raw map[string]string) (map[Field]Source, error) {
	owners := DefaultOwners()
	for k, v := range raw {
		f := Field(k)
		if _, ok := owners[f]; !ok {
			return nil, fmt.Errorf("unknown display field %q", k)
		}
		switch s := Source(v); s {
		case SourceQuote, SourcePrediction:
			owners[f] = s
		default:
			return nil, fmt.Errorf("display field %q: unknown source %q", k, v)
		}
	}
	return owners, nil
}

// TextUpdate is one field write.
type TextUpdate struct {
	Field Field
	Text  string
}

// Snapshot is a point-in-time copy of the board.
type Snapshot struct {
	Texts map[Field]string `json:"texts"`
	Chart *chart.Chart     `json:"chart,omitempty"`
	Seq   int64            `json:"seq"`

	// Alert is the last alert still pending, shown to viewers who connect
	// after it was raised. AlertSeq is the seq it was published with.
	Alert    string `json:"alert,omitempty"`
	AlertSeq int64  `json:"alert_seq,omitempty"`
}

// Board is the single display-update interface.
type Board struct {
	mu     sync.RWMutex
	owners map[Field]Source
	texts  map[Field]string
	chart  *chart.Chart
	seq    int64
	alert  *Event

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewBoard creates a Board. A nil owners table means DefaultOwners.
func NewBoard(owners map[Field]Source) *Board {
	if owners == nil {
		owners = DefaultOwners()
	}
	return &Board{
		owners: owners,
		texts:  make(map[Field]string),
		subs:   make(map[int]chan Event),
	}
}

// Owner returns the source allowed to write f.
func (b *Board) Owner(f Field) Source {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.owners[f]
}

// OwnedFields returns the fields owned by src in page order.
func (b *Board) OwnedFields(src Source) []Field {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Field
	for _, f := range Fields {
		if b.owners[f] == src {
			out = append(out, f)
		}
	}
	return out
}

// SetTexts applies updates from src atomically with respect to other writers.
// Writes to fields src does not own are dropped. It returns the fields that
// were applied.
func (b *Board) SetTexts(src Source, updates ...TextUpdate) []Field {
	b.mu.Lock()
	defer b.mu.Unlock()
	applied := make([]Field, 0, len(updates))
	now := time.Now()
	for _, u := range updates {
		owner, ok := b.owners[u.Field]
		if !ok || owner != src {
			log.Printf("[WARN] display: %s write to %s dropped (owner %q)", src, u.Field, owner)
			continue
		}
		b.texts[u.Field] = u.Text
		b.seq++
		applied = append(applied, u.Field)
		b.publish(Event{Type: EventText, Field: u.Field, Text: u.Text, Source: src, Seq: b.seq, At: now})
	}
	if len(applied) > 0 && b.alert != nil && b.alert.Source == src {
		b.alert = nil
	}
	return applied
}

// SetText is SetTexts for a single field.
func (b *Board) SetText(src Source, f Field, text string) bool {
	return len(b.SetTexts(src, TextUpdate{Field: f, Text: text})) == 1
}

// Text returns the current text of f.
func (b *Board) Text(f Field) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.texts[f]
}

// Alert publishes a blocking user-facing alert. The latest alert stays in
// snapshots until src next writes a text field.
func (b *Board) Alert(src Source, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	e := Event{Type: EventAlert, Text: message, Source: src, Seq: b.seq, At: time.Now()}
	b.alert = &e
	b.publish(e)
}

// CreateChart implements chart.Target.
func (b *Board) CreateChart(c chart.Chart) { b.setChart(EventChartCreate, c) }

// UpdateChart implements chart.Target.
func (b *Board) UpdateChart(c chart.Chart) { b.setChart(EventChartUpdate, c) }

func (b *Board) setChart(typ EventType, c chart.Chart) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chart = &c
	b.seq++
	b.publish(Event{Type: typ, Chart: &c, Source: SourceQuote, Seq: b.seq, At: time.Now()})
}

// Snapshot returns a copy of the current board.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	texts := make(map[Field]string, len(b.texts))
	for k, v := range b.texts {
		texts[k] = v
	}
	var c *chart.Chart
	if b.chart != nil {
		cp := *b.chart
		c = &cp
	}
	snap := Snapshot{Texts: texts, Chart: c, Seq: b.seq}
	if b.alert != nil {
		snap.Alert = b.alert.Text
		snap.AlertSeq = b.alert.Seq
	}
	return snap
}

// SortedTexts returns the snapshot texts in page order, skipping empty fields.
func (s Snapshot) SortedTexts() []TextUpdate {
	out := make([]TextUpdate, 0, len(s.Texts))
	for f, text := range s.Texts {
		if text != "" {
			out = append(out, TextUpdate{Field: f, Text: text})
		}
	}
	order := make(map[Field]int, len(Fields))
	for i, f := range Fields {
		order[f] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].Field] < order[out[j].Field] })
	return out
}
