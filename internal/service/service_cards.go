package service

import (
	"context"
	"fmt"
	"io"

	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/internal/query"
	"github.com/cardbox-tools/cardbox/internal/store"
	"github.com/cardbox-tools/cardbox/internal/vcard"
	"github.com/cardbox-tools/cardbox/models"
)

// CardService implements the local mutation and export commands: import,
// backup and delete. All of them operate on the local store only; the
// remote side is never contacted here.
type CardService struct {
	repo         store.CardRepository
	engine       *query.Engine
	writeSupport bool
	logger       *logger.Logger
}

// NewCardService constructs a [CardService]. Mutating operations (import,
// delete) refuse to run unless writeSupport is enabled.
func NewCardService(repo store.CardRepository, engine *query.Engine, writeSupport bool, logger *logger.Logger) *CardService {
	return &CardService{
		repo:         repo,
		engine:       engine,
		writeSupport: writeSupport,
		logger:       logger,
	}
}

// Import reads one serialized contact from r and stores it locally.
//
// The record is marked locally modified because the remote side has not
// seen it; a later sync run reports rather than discards it. On parse
// failure the store is left untouched and the [vcard.ParseError] is
// surfaced as-is.
func (s *CardService) Import(ctx context.Context, r io.Reader) (models.Card, error) {
	log := logger.FromContext(ctx)

	if !s.writeSupport {
		return models.Card{}, ErrWriteSupportDisabled
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return models.Card{}, fmt.Errorf("read import payload: %w", err)
	}

	card, err := vcard.Parse(raw)
	if err != nil {
		log.Warn().
			Err(err).
			Str("func", "CardService.Import").
			Int("payload_size", len(raw)).
			Msg("import payload rejected")
		return models.Card{}, err
	}

	card.LocalModified = true

	if err = s.repo.Put(ctx, card); err != nil {
		return models.Card{}, fmt.Errorf("store imported card %s: %w", card.ID, err)
	}

	log.Info().
		Str("func", "CardService.Import").
		Str("card_id", card.ID).
		Str("name", card.Name).
		Msg("card imported locally")

	return card, nil
}

// Backup writes the serialized payloads of every card matching term to w.
// An empty term backs up the whole store. It returns the number of cards
// written.
func (s *CardService) Backup(ctx context.Context, term string, w io.Writer) (int, error) {
	log := logger.FromContext(ctx)

	payloads, err := s.repo.Export(ctx, func(card models.Card) bool {
		return query.Matches(card, term)
	})
	if err != nil {
		return 0, fmt.Errorf("export cards: %w", err)
	}

	written := 0
	for _, payload := range payloads {
		if _, err = w.Write(payload); err != nil {
			return written, fmt.Errorf("write backup payload: %w", err)
		}
		written++
	}

	log.Info().
		Str("func", "CardService.Backup").
		Str("term", term).
		Int("cards", written).
		Msg("backup written")

	return written, nil
}

// DeleteLocal removes every card matching term from the local store and
// returns the removed ids in deterministic search order.
//
// The term must match at least one record ([ErrNoMatches] otherwise).
// Nothing is propagated to the remote side; a card the remote still holds
// reappears on the next sync run.
func (s *CardService) DeleteLocal(ctx context.Context, term string) ([]string, error) {
	log := logger.FromContext(ctx)

	if !s.writeSupport {
		return nil, ErrWriteSupportDisabled
	}

	matches, err := s.engine.Search(ctx, models.SearchQuery{Term: term})
	if err != nil {
		return nil, fmt.Errorf("search cards to delete: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatches, term)
	}

	removed := make([]string, 0, len(matches))
	for _, card := range matches {
		ok, delErr := s.repo.Delete(ctx, card.ID)
		if delErr != nil {
			return removed, fmt.Errorf("delete card %s: %w", card.ID, delErr)
		}
		if ok {
			removed = append(removed, card.ID)
		}
	}

	log.Info().
		Str("func", "CardService.DeleteLocal").
		Str("term", term).
		Strs("card_ids", removed).
		Msg("cards deleted locally")

	return removed, nil
}
