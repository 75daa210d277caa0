package game

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	_ "embed"

	apperr "github.com/robklaiss/truco/pkg/errors"
)

// Spanish-deck suits used by the 40-card Truco deck.
const (
	SuitBastos  = "bastos"
	SuitCopas   = "copas"
	SuitEspadas = "espadas"
	SuitOros    = "oros"
)

// Card is one immutable catalog entry. TrucoPower totally orders combat
// strength (higher beats lower, equal is a parda). EnvidoValue is the rank
// for 1-7 and zero for the face cards.
type Card struct {
	CardID      string `json:"cardId"`
	Suit        string `json:"suit"`
	Rank        int    `json:"rank"`
	TrucoPower  int    `json:"trucoPower"`
	EnvidoValue int    `json:"envidoValue"`
}

// Catalog is the fixed 40-card table, loaded once at startup and read-only
// afterwards.
type Catalog struct {
	byID    map[string]Card
	ordered []Card
}

//go:embed resources/cards.json
var defaultCardsJSON []byte

const catalogSize = 40

// NewCatalog validates raw card records and builds the lookup table.
func NewCatalog(cards []Card) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, apperr.ErrMissingCatalog
	}
	byID := make(map[string]Card, len(cards))
	for _, c := range cards {
		if c.CardID == "" || c.Suit == "" {
			return nil, fmt.Errorf("%w: empty cardId or suit", apperr.ErrInvalidCatalog)
		}
		if c.Rank < 1 || c.Rank > 12 {
			return nil, fmt.Errorf("%w: card %s rank %d", apperr.ErrInvalidCatalog, c.CardID, c.Rank)
		}
		if c.TrucoPower < 0 || c.TrucoPower > 12 {
			return nil, fmt.Errorf("%w: card %s trucoPower %d", apperr.ErrInvalidCatalog, c.CardID, c.TrucoPower)
		}
		if c.EnvidoValue < 0 || c.EnvidoValue > 7 {
			return nil, fmt.Errorf("%w: card %s envidoValue %d", apperr.ErrInvalidCatalog, c.CardID, c.EnvidoValue)
		}
		if _, dup := byID[c.CardID]; dup {
			return nil, fmt.Errorf("%w: duplicate card %s", apperr.ErrInvalidCatalog, c.CardID)
		}
		byID[c.CardID] = c
	}
	if len(byID) != catalogSize {
		return nil, fmt.Errorf("%w: expected %d cards, got %d", apperr.ErrInvalidCatalog, catalogSize, len(byID))
	}

	ordered := make([]Card, 0, len(byID))
	for _, c := range byID {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].CardID < ordered[j].CardID })

	return &Catalog{byID: byID, ordered: ordered}, nil
}

// DefaultCatalog loads the embedded card table.
func DefaultCatalog() (*Catalog, error) {
	return parseCatalog(defaultCardsJSON)
}

// LoadCatalogFile loads an external card table, for deployments that version
// the catalog separately from the binary.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMissingCatalog, err)
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*Catalog, error) {
	if len(raw) == 0 {
		return nil, apperr.ErrMissingCatalog
	}
	var cards []Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidCatalog, err)
	}
	return NewCatalog(cards)
}

// Lookup fails with ErrUnknownCard for ids outside the catalog.
func (c *Catalog) Lookup(cardID string) (Card, error) {
	card, ok := c.byID[cardID]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", apperr.ErrUnknownCard, cardID)
	}
	return card, nil
}

// Power returns a card's truco power, zero for unknown ids. Engine callers
// validate ids against the private hand first.
func (c *Catalog) Power(cardID string) int {
	return c.byID[cardID].TrucoPower
}

// AllCards returns the catalog in deterministic (cardId-sorted) order.
func (c *Catalog) AllCards() []Card {
	out := make([]Card, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// CardIDs returns the sorted ids, the seed sequence for a fresh deck.
func (c *Catalog) CardIDs() []string {
	out := make([]string, len(c.ordered))
	for i, card := range c.ordered {
		out[i] = card.CardID
	}
	return out
}

func (c *Catalog) Size() int { return len(c.ordered) }
