package server

import (
	"math/rand"
	"testing"
)

func testCards(count int) []Card {
	cards := make([]Card, count)
	for i := range cards {
		cards[i] = Card{ID: i + 1, Text: "card"}
	}
	return cards
}

func TestDealHandsAreDisjoint(t *testing.T) {
	deck := NewDeck(testCards(40), rand.New(rand.NewSource(7)))
	if deck.Size() != 40 {
		t.Fatalf("expected pool of 40, got %d", deck.Size())
	}
	hands, err := deck.Deal([]int{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	seen := make(map[int]int)
	for playerID, hand := range hands {
		if len(hand) != 5 {
			t.Fatalf("expected 5 cards for player %d, got %d", playerID, len(hand))
		}
		for _, cardID := range hand {
			if owner, dup := seen[cardID]; dup {
				t.Fatalf("card %d dealt to players %d and %d", cardID, owner, playerID)
			}
			seen[cardID] = playerID
			if _, ok := deck.CardText(cardID); !ok {
				t.Fatalf("dealt unknown card %d", cardID)
			}
		}
	}
}

func TestDealIsDeterministicWithSeed(t *testing.T) {
	first := NewDeck(testCards(40), rand.New(rand.NewSource(42)))
	second := NewDeck(testCards(40), rand.New(rand.NewSource(42)))

	handsA, err := first.Deal([]int{1, 2}, 5)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	handsB, err := second.Deal([]int{1, 2}, 5)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	for playerID, hand := range handsA {
		other := handsB[playerID]
		for i := range hand {
			if hand[i] != other[i] {
				t.Fatalf("expected identical hands for seed, got %v and %v", hand, other)
			}
		}
	}
}

func TestDealFailsWhenPoolTooSmall(t *testing.T) {
	deck := NewDeck(testCards(9), rand.New(rand.NewSource(1)))
	if _, err := deck.Deal([]int{1, 2}, 5); err == nil {
		t.Fatal("expected an error dealing 10 cards from a pool of 9")
	} else if errorStatus(err) != 503 {
		t.Fatalf("expected resource exhausted status 503, got %d", errorStatus(err))
	}
}

func TestDealDoesNotConsumeCards(t *testing.T) {
	deck := NewDeck(testCards(10), rand.New(rand.NewSource(1)))
	if _, err := deck.Deal([]int{1, 2}, 5); err != nil {
		t.Fatalf("first deal: %v", err)
	}
	if _, err := deck.Deal([]int{1, 2}, 5); err != nil {
		t.Fatalf("second deal: %v", err)
	}
}
