// Package query implements the local search path: scan the card store,
// match a term against the searchable fields, and order results
// deterministically.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/internal/store"
	"github.com/cardbox-tools/cardbox/models"
)

// ErrStore wraps card-store failures surfaced through the search path.
var ErrStore = errors.New("card store failure")

// Engine answers search queries against a [store.CardRepository].
type Engine struct {
	repo   store.CardRepository
	logger *logger.Logger
}

// NewEngine constructs a search engine over the given repository.
func NewEngine(repo store.CardRepository, logger *logger.Logger) *Engine {
	return &Engine{
		repo:   repo,
		logger: logger,
	}
}

// Search returns every card matching q, ordered by (lower-cased display
// name, id) so output is reproducible across runs.
//
// Matching is a case-insensitive substring OR across display name, phone
// values and email values; an empty term matches the whole store. The
// projection carried by q only affects rendering downstream, never which
// cards match. No matches is not an error.
func (e *Engine) Search(ctx context.Context, q models.SearchQuery) ([]models.Card, error) {
	log := logger.FromContext(ctx)

	it, err := e.repo.Scan(ctx)
	if err != nil {
		log.Err(err).
			Str("func", "Engine.Search").
			Str("term", q.Term).
			Msg("failed to scan card store")
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	defer it.Close()

	matched := make([]models.Card, 0, 16)
	for {
		card, ok := it.Next()
		if !ok {
			break
		}
		if Matches(card, q.Term) {
			matched = append(matched, card)
		}
	}
	if err = it.Err(); err != nil {
		log.Err(err).
			Str("func", "Engine.Search").
			Str("term", q.Term).
			Msg("card scan failed during iteration")
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	sortCards(matched)

	log.Debug().
		Str("func", "Engine.Search").
		Str("term", q.Term).
		Str("projection", q.Projection.String()).
		Int("matches", len(matched)).
		Msg("search completed")

	return matched, nil
}

// Matches reports whether the card contains term (case-insensitive) in its
// display name, any phone value, or any email value. An empty term matches
// every card.
func Matches(card models.Card, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)

	if strings.Contains(strings.ToLower(card.Name), needle) {
		return true
	}
	for _, tv := range card.Phones {
		if strings.Contains(strings.ToLower(tv.Value), needle) {
			return true
		}
	}
	for _, tv := range card.Emails {
		if strings.Contains(strings.ToLower(tv.Value), needle) {
			return true
		}
	}

	return false
}

func sortCards(cards []models.Card) {
	sort.Slice(cards, func(i, j int) bool {
		ni, nj := strings.ToLower(cards[i].Name), strings.ToLower(cards[j].Name)
		if ni != nj {
			return ni < nj
		}
		return cards[i].ID < cards[j].ID
	})
}
