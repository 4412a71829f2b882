package render

import (
	"fmt"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

// Area is the console's single results area. Every Replace discards the
// previous card; concurrent writers resolve last-writer-wins.
type Area struct {
	mu       sync.Mutex
	card     *Card
	onChange func(*Card)
}

// NewArea returns an empty area. onChange, if set, receives a copy of the
// card after every change.
func NewArea(onChange func(*Card)) *Area {
	return &Area{onChange: onChange}
}

// Replace swaps in card.
func (a *Area) Replace(card *Card) {
	a.mu.Lock()
	a.card = card
	snapshot := card.clone()
	a.mu.Unlock()
	a.notify(snapshot)
}

// Current returns a copy of the displayed card, or nil before the first render.
func (a *Area) Current() *Card {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.card.clone()
}

// SetExpanded opens or closes the block named key.
func (a *Area) SetExpanded(key BlockKey, expanded bool) error {
	a.mu.Lock()
	if a.card == nil {
		a.mu.Unlock()
		return apperrors.New(apperrors.ErrInvalidInput, 400, "nothing rendered yet")
	}
	idx := -1
	for i := range a.card.Blocks {
		if a.card.Blocks[i].Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return apperrors.New(apperrors.ErrInvalidInput, 400, fmt.Sprintf("block %q not shown", key))
	}
	a.card.Blocks[idx].Expanded = expanded
	snapshot := a.card.clone()
	a.mu.Unlock()
	a.notify(snapshot)
	return nil
}

func (a *Area) notify(card *Card) {
	if a.onChange != nil {
		a.onChange(card)
	}
}
