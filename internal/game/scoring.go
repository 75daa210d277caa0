package game

import (
	"fmt"
	"sort"

	apperr "github.com/robklaiss/truco/pkg/errors"
)

// Comparison result of two cards by truco power.
type Comparison int

const (
	Less    Comparison = -1
	Equal   Comparison = 0
	Greater Comparison = 1
)

// Compare orders two cards by truco power. Equal powers are a parda and are
// resolved by the hand-winner cascade, never re-rolled.
func (c *Catalog) Compare(cardA, cardB string) (Comparison, error) {
	a, err := c.Lookup(cardA)
	if err != nil {
		return Equal, err
	}
	b, err := c.Lookup(cardB)
	if err != nil {
		return Equal, err
	}
	switch {
	case a.TrucoPower < b.TrucoPower:
		return Less, nil
	case a.TrucoPower > b.TrucoPower:
		return Greater, nil
	default:
		return Equal, nil
	}
}

// EnvidoValue computes the envido score of a full 3-card hand: 20 plus the
// two highest envido values of any suit held twice or more, else the single
// highest envido value.
func (c *Catalog) EnvidoValue(hand []string) (int, error) {
	if len(hand) != HandSize {
		return 0, apperr.ErrInvalidHand
	}

	bySuit := make(map[string][]int)
	maxSingle := 0
	for _, id := range hand {
		card, err := c.Lookup(id)
		if err != nil {
			return 0, err
		}
		bySuit[card.Suit] = append(bySuit[card.Suit], card.EnvidoValue)
		if card.EnvidoValue > maxSingle {
			maxSingle = card.EnvidoValue
		}
	}

	best := 0
	for _, vals := range bySuit {
		if len(vals) < 2 {
			continue
		}
		sort.Sort(sort.Reverse(sort.IntSlice(vals)))
		if v := 20 + vals[0] + vals[1]; v > best {
			best = v
		}
	}
	if best > 0 {
		return best, nil
	}
	return maxSingle, nil
}

// HasFlor reports whether all three cards share one suit.
func (c *Catalog) HasFlor(hand []string) bool {
	if len(hand) != HandSize {
		return false
	}
	suit := ""
	for _, id := range hand {
		card, err := c.Lookup(id)
		if err != nil {
			return false
		}
		if suit == "" {
			suit = card.Suit
		} else if card.Suit != suit {
			return false
		}
	}
	return true
}

// FlorValue is 20 plus the sum of all three envido values.
func (c *Catalog) FlorValue(hand []string) (int, error) {
	if !c.HasFlor(hand) {
		return 0, fmt.Errorf("%w: no flor", apperr.ErrInvalidHand)
	}
	sum := 0
	for _, id := range hand {
		card, err := c.Lookup(id)
		if err != nil {
			return 0, err
		}
		sum += card.EnvidoValue
	}
	return 20 + sum, nil
}

// Paraguayan variant bonus hands.
const (
	SpecialFlorChaquena = "flor_chaquena" // three fours, any suits
	SpecialFlor38       = "flor_38"       // 5-6-7 of oros
)

// SpecialFlor detects the variant bonus hands, empty string when none apply.
func (c *Catalog) SpecialFlor(hand []string) string {
	if len(hand) != HandSize {
		return ""
	}
	ranks := make([]int, 0, HandSize)
	allOros := true
	for _, id := range hand {
		card, err := c.Lookup(id)
		if err != nil {
			return ""
		}
		ranks = append(ranks, card.Rank)
		if card.Suit != SuitOros {
			allOros = false
		}
	}
	sort.Ints(ranks)

	if ranks[0] == 4 && ranks[1] == 4 && ranks[2] == 4 {
		return SpecialFlorChaquena
	}
	if allOros && ranks[0] == 5 && ranks[1] == 6 && ranks[2] == 7 {
		return SpecialFlor38
	}
	return ""
}

// ResolveHandWinner applies the traditional parda cascade over up to three
// trick winners (empty string marks a drawn trick):
//
//	trick 1 won: same winner or parda on trick 2 keeps it; parda on trick 3
//	keeps it; otherwise trick 3 decides. Trick 1 parda falls through to
//	trick 2, then trick 3, then the mano.
func ResolveHandWinner(manoUID string, trickWinners []string) string {
	w := func(i int) string {
		if i < len(trickWinners) {
			return trickWinners[i]
		}
		return ""
	}
	t1, t2, t3 := w(0), w(1), w(2)

	if t1 != "" {
		if t2 == t1 {
			return t1
		}
		if t2 == "" {
			return t1
		}
		if t3 == "" {
			return t1
		}
		return t3
	}
	if t2 != "" {
		return t2
	}
	if t3 != "" {
		return t3
	}
	return manoUID
}
