package server

import (
	"math/rand"
	"sync"
)

type Card struct {
	ID   int
	Text string
}

// Deck deals hands from a fixed card pool. Each Deal shuffles the whole
// pool and slices it, so hands within one deal never overlap; cards are
// not consumed across deals. The rng is injectable so tests can seed it.
type Deck struct {
	mu    sync.Mutex
	cards []Card
	byID  map[int]string
	rng   *rand.Rand
}

func NewDeck(cards []Card, rng *rand.Rand) *Deck {
	byID := make(map[int]string, len(cards))
	for _, card := range cards {
		byID[card.ID] = card.Text
	}
	return &Deck{cards: cards, byID: byID, rng: rng}
}

func (d *Deck) Size() int {
	return len(d.cards)
}

func (d *Deck) CardText(id int) (string, bool) {
	text, ok := d.byID[id]
	return text, ok
}

// Deal returns a hand of handSize card IDs per player, disjoint across the
// given players. Player order does not influence which cards exist in the
// shuffled pool, only which contiguous slice each player receives.
func (d *Deck) Deal(playerIDs []int, handSize int) (map[int][]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	need := handSize * len(playerIDs)
	if need > len(d.cards) {
		return nil, resourceExhausted("not enough cards to deal this round")
	}

	ids := make([]int, len(d.cards))
	for i, card := range d.cards {
		ids[i] = card.ID
	}
	d.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	hands := make(map[int][]int, len(playerIDs))
	for i, playerID := range playerIDs {
		hand := make([]int, handSize)
		copy(hand, ids[i*handSize:(i+1)*handSize])
		hands[playerID] = hand
	}
	return hands, nil
}
