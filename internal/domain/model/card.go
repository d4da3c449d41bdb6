package model

import "time"

// CardState is the display state of one day-card.
type CardState string

const (
	StateFuture    CardState = "future"
	StateAvailable CardState = "available"
	StateOpened    CardState = "opened"
	StatePast      CardState = "past"
)

// CardStates lists every state, in display order.
var CardStates = []CardState{StateFuture, StateAvailable, StateOpened, StatePast}

// Card is the outcome of classifying one day. Only the fields relevant to
// State are populated.
type Card struct {
	Day   Day       `json:"day"`
	State CardState `json:"state"`

	// Opened
	Text string `json:"text,omitempty"`

	// Past
	PreviewText   string `json:"preview_text,omitempty"`
	PreviewDetail string `json:"preview_detail,omitempty"`

	// Future
	UnlockDate time.Time `json:"unlock_date,omitzero"`
	UnlockHint string    `json:"unlock_hint,omitempty"`
}

// Board is one full evaluation of the calendar.
type Board struct {
	AllowedDay AllowedDay `json:"allowed_day"`
	Banner     string     `json:"banner"`
	Cards      []Card     `json:"cards"`
}

// Card returns the card for d, if present.
func (b *Board) Card(d Day) (Card, bool) {
	for _, c := range b.Cards {
		if c.Day == d {
			return c, true
		}
	}
	return Card{}, false
}
