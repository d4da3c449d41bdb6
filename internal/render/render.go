// Package render projects classified cards onto card view-models. It makes
// no decisions: every field it sets comes straight from a model.Card.
package render

import "advent-calendar/internal/domain/model"

// Visual state markers, one per card at a time.
const (
	ClassFuture    = "day-card--future"
	ClassAvailable = "day-card--available"
	ClassOpened    = "day-card--opened"
	ClassPast      = "day-card--past"
)

var stateClass = map[model.CardState]string{
	model.StateFuture:    ClassFuture,
	model.StateAvailable: ClassAvailable,
	model.StateOpened:    ClassOpened,
	model.StatePast:      ClassPast,
}

// CardView is everything a template needs to draw one day-card.
type CardView struct {
	Day        model.Day       `json:"day"`
	State      model.CardState `json:"state"`
	StateClass string          `json:"state_class"`

	// open action
	OpenEnabled bool `json:"open_enabled"`

	// locked indicator
	LockedTitle string `json:"locked_title,omitempty"`

	// full content region
	ContentHidden bool   `json:"content_hidden"`
	ContentText   string `json:"content_text,omitempty"`

	// preview region
	PreviewHidden bool   `json:"preview_hidden"`
	PreviewText   string `json:"preview_text,omitempty"`
	PreviewTitle  string `json:"preview_title,omitempty"`
}

// NewCardViews returns one blank view per calendar day.
func NewCardViews() []*CardView {
	views := make([]*CardView, 0, model.DaysCount)
	for _, d := range model.AllDays() {
		v := &CardView{Day: d}
		v.reset()
		views = append(views, v)
	}
	return views
}

// reset returns v to the inert state: no marker, action disabled, both
// regions hidden, no titles.
func (v *CardView) reset() {
	day := v.Day
	*v = CardView{
		Day:           day,
		ContentHidden: true,
		PreviewHidden: true,
	}
}

// Apply resets v and projects card onto it.
func (v *CardView) Apply(card model.Card) {
	v.reset()
	v.State = card.State
	v.StateClass = stateClass[card.State]

	switch card.State {
	case model.StateFuture:
		v.LockedTitle = card.UnlockHint
	case model.StatePast:
		v.PreviewHidden = false
		v.PreviewText = card.PreviewText
		v.PreviewTitle = card.PreviewDetail
	case model.StateOpened:
		v.ContentHidden = false
		v.ContentText = card.Text
	case model.StateAvailable:
		v.OpenEnabled = true
	}
}

// Render applies each card to the view tagged with the same day. Views
// without a matching card are reset.
func Render(views []*CardView, cards []model.Card) {
	byDay := make(map[model.Day]model.Card, len(cards))
	for _, c := range cards {
		byDay[c.Day] = c
	}
	for _, v := range views {
		if c, ok := byDay[v.Day]; ok {
			v.Apply(c)
		} else {
			v.reset()
		}
	}
}

// Banner renders the "today" banner.
func Banner(allowed model.AllowedDay, placeholder string) string {
	if d, ok := allowed.Get(); ok {
		return d.String()
	}
	return placeholder
}
