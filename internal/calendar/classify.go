package calendar

import (
	"time"

	"advent-calendar/internal/domain/model"
)

// Phrasebook provides the locale-dependent strings attached to cards.
type Phrasebook interface {
	UnlockHint(date time.Time) string
	PastPlaceholder() string
}

const ellipsis = "…"

// Classifier turns (day, allowed day, opened set) into a Card.
type Classifier struct {
	settings Settings
	offers   Offers
	phrases  Phrasebook
}

func NewClassifier(settings Settings, offers Offers, phrases Phrasebook) *Classifier {
	if settings.PreviewLimit <= 0 {
		settings.PreviewLimit = DefaultPreviewLimit
	}
	return &Classifier{settings: settings, offers: offers, phrases: phrases}
}

// Classify evaluates one day. Rules are checked in order; the first match
// wins.
func (c *Classifier) Classify(day model.Day, allowed model.AllowedDay, opened model.OpenedSet) model.Card {
	today, open := allowed.Get()
	switch {
	case !open:
		return c.future(day)
	case day < today:
		return c.past(day, opened.Has(day))
	case day == today && opened.Has(day):
		return model.Card{Day: day, State: model.StateOpened, Text: c.offers.Text(day)}
	case day == today:
		return model.Card{Day: day, State: model.StateAvailable}
	default:
		return c.future(day)
	}
}

// ClassifyAll evaluates every day of the calendar.
func (c *Classifier) ClassifyAll(allowed model.AllowedDay, opened model.OpenedSet) []model.Card {
	cards := make([]model.Card, 0, model.DaysCount)
	for _, d := range model.AllDays() {
		cards = append(cards, c.Classify(d, allowed, opened))
	}
	return cards
}

func (c *Classifier) future(day model.Day) model.Card {
	date := c.settings.UnlockDate(day)
	return model.Card{
		Day:        day,
		State:      model.StateFuture,
		UnlockDate: date,
		UnlockHint: c.phrases.UnlockHint(date),
	}
}

func (c *Classifier) past(day model.Day, wasOpened bool) model.Card {
	card := model.Card{Day: day, State: model.StatePast}
	if !wasOpened {
		card.PreviewText = c.phrases.PastPlaceholder()
		return card
	}
	text := c.offers.Text(day)
	card.PreviewText = Truncate(text, c.settings.PreviewLimit)
	card.PreviewDetail = text
	return card
}

// Truncate shortens s to limit characters, appending an ellipsis when
// anything was cut.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + ellipsis
}
