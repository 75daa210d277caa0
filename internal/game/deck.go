package game

import mrand "math/rand"

// ShuffledDeck returns a uniform Fisher-Yates permutation of the catalog ids.
func (c *Catalog) ShuffledDeck() []string {
	return Shuffle(c.CardIDs())
}

// Shuffle permutes a copy of the given ids, leaving the input untouched.
// Next-hand redeals reshuffle the previous deck rather than reading the
// catalog again.
func Shuffle(cardIDs []string) []string {
	deck := make([]string, len(cardIDs))
	copy(deck, cardIDs)
	mrand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Deal splits the first n cards off the deck. Pure: no side effects on deck.
func Deal(deck []string, n int) (hand, rest []string) {
	if n > len(deck) {
		n = len(deck)
	}
	hand = make([]string, n)
	copy(hand, deck[:n])
	rest = make([]string, len(deck)-n)
	copy(rest, deck[n:])
	return hand, rest
}

// HandForSeat is how the original deals: seat 0 takes deck[0:3], seat 1
// takes deck[3:6], the rest of the deck stays unused.
func HandForSeat(deck []string, seat int) []string {
	start := seat * HandSize
	if start+HandSize > len(deck) {
		return nil
	}
	hand := make([]string, HandSize)
	copy(hand, deck[start:start+HandSize])
	return hand
}
