package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/internal/vcard"
	"github.com/cardbox-tools/cardbox/models"
)

// cardRepository is the SQLite-backed implementation of [CardRepository].
// It executes all card CRUD operations directly against the "cards" table
// using the embedded [*DB] connection.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (card id, payload size, etc.).
type cardRepository struct {
	*DB
	logger *logger.Logger
}

// NewCardRepository constructs a [CardRepository] backed by the provided
// database connection and logger.
func NewCardRepository(db *DB, logger *logger.Logger) CardRepository {
	return &cardRepository{
		DB:     db,
		logger: logger,
	}
}

// Get returns the card with the given id, or [ErrCardNotFound] when no such
// record exists.
func (r *cardRepository) Get(ctx context.Context, id string) (models.Card, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectCardQuery(id)
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.Get").
			Str("card_id", id).
			Msg("failed to build select query")
		return models.Card{}, err
	}

	row := r.DB.QueryRowContext(ctx, query, args...)

	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Card{}, ErrCardNotFound
		}
		log.Err(err).
			Str("func", "cardRepository.Get").
			Str("card_id", id).
			Msg("failed to scan card row")
		return models.Card{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return card, nil
}

// Put upserts a card by id.
//
// The write is a read-compare-write inside one transaction:
//   - no stored record → INSERT;
//   - stored payload and sync metadata (etag, synced etag, local-modified
//     flag) equal the incoming ones → no-op;
//   - payload differs → UPDATE with the card's etag (or a content-derived
//     etag when the caller left it empty);
//   - payload identical but metadata differs → UPDATE, so a sync
//     confirmation over unchanged bytes still lands.
//
// The transaction commits before Put returns, so an accepted write is
// durable.
func (r *cardRepository) Put(ctx context.Context, card models.Card) error {
	return r.put(ctx, card, nil)
}

// PutGuarded behaves like [Put] but verifies the stored etag against
// expectedEtag first. A mismatch returns [ErrEtagConflict]; a non-empty
// expectedEtag against a missing record returns [ErrCardNotFound].
func (r *cardRepository) PutGuarded(ctx context.Context, card models.Card, expectedEtag string) error {
	return r.put(ctx, card, &expectedEtag)
}

func (r *cardRepository) put(ctx context.Context, card models.Card, expectedEtag *string) error {
	log := logger.FromContext(ctx)

	if card.Etag == "" {
		card.Etag = vcard.Etag(card.Raw)
	}

	phones, emails, err := encodeFields(card)
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.put").
			Str("card_id", card.ID).
			Msg("failed to encode phone/email lists")
		return fmt.Errorf("%w: %w", ErrEncodingFields, err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.put").
			Str("card_id", card.ID).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var (
		storedEtag     string
		storedSynced   string
		storedModified bool
		storedRaw      []byte
	)
	exists := true

	err = tx.QueryRowContext(ctx, selectCardMeta, card.ID).
		Scan(&storedEtag, &storedSynced, &storedModified, &storedRaw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
	case err != nil:
		log.Err(err).
			Str("func", "cardRepository.put").
			Str("card_id", card.ID).
			Msg("failed to read stored card meta")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if expectedEtag != nil {
		if !exists && *expectedEtag != "" {
			log.Warn().
				Str("func", "cardRepository.put").
				Str("card_id", card.ID).
				Msg("guarded write targets a missing record")
			return ErrCardNotFound
		}
		if exists && storedEtag != *expectedEtag {
			log.Warn().
				Str("func", "cardRepository.put").
				Str("card_id", card.ID).
				Str("stored_etag", storedEtag).
				Str("expected_etag", *expectedEtag).
				Msg("guarded write failed: etag mismatch")
			return ErrEtagConflict
		}
	}

	sameMeta := storedEtag == card.Etag &&
		storedSynced == card.SyncedEtag &&
		storedModified == card.LocalModified

	switch {
	case !exists:
		_, err = tx.ExecContext(ctx, insertCard,
			card.ID,
			card.Name,
			phones,
			emails,
			card.Raw,
			card.Etag,
			card.SyncedEtag,
			card.LocalModified,
		)
	case string(storedRaw) != string(card.Raw) || !sameMeta:
		_, err = tx.ExecContext(ctx, updateCard,
			card.Name,
			phones,
			emails,
			card.Raw,
			card.Etag,
			card.SyncedEtag,
			card.LocalModified,
			card.ID,
		)
	default:
		// identical payload and metadata: nothing to write
		return nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.put").
			Str("card_id", card.ID).
			Msg("failed to write card")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "cardRepository.put").
			Str("card_id", card.ID).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommittingTransaction, commitErr)
	}

	log.Debug().
		Str("func", "cardRepository.put").
		Str("card_id", card.ID).
		Bool("created", !exists).
		Msg("card persisted")

	return nil
}

// Delete removes a card by id. The boolean result reports whether a record
// was actually removed.
func (r *cardRepository) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, deleteCard, id)
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.Delete").
			Str("card_id", id).
			Msg("failed to execute delete query")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.Delete").
			Str("card_id", id).
			Msg("failed to read affected rows")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return affected > 0, nil
}

// Scan starts a new iteration over the current store state. Every call
// re-reads the table, so a restarted scan observes writes made since the
// previous one.
func (r *cardRepository) Scan(ctx context.Context) (*CardIterator, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildScanQuery()
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.Scan").
			Msg("failed to build scan query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.Scan").
			Msg("failed to execute scan query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return &CardIterator{rows: rows}, nil
}

// States returns the lightweight sync descriptor of every stored card.
func (r *cardRepository) States(ctx context.Context) ([]models.CardState, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildStatesQuery()
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.States").
			Msg("failed to build states query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "cardRepository.States").
			Msg("failed to execute states query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	states := make([]models.CardState, 0, 50)

	for rows.Next() {
		var st models.CardState

		if scanErr := rows.Scan(&st.ID, &st.Etag, &st.SyncedEtag, &st.LocalModified); scanErr != nil {
			log.Err(scanErr).
				Str("func", "cardRepository.States").
				Msg("failed to scan card state row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		states = append(states, st)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "cardRepository.States").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return states, nil
}

// Export collects the serialized payloads of every card the predicate
// accepts. A nil predicate matches all records.
func (r *cardRepository) Export(ctx context.Context, match func(models.Card) bool) ([][]byte, error) {
	it, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	payloads := make([][]byte, 0, 50)
	for {
		card, ok := it.Next()
		if !ok {
			break
		}
		if match == nil || match(card) {
			payloads = append(payloads, card.Raw)
		}
	}
	if err = it.Err(); err != nil {
		return nil, err
	}

	return payloads, nil
}

func encodeFields(card models.Card) (phones, emails []byte, err error) {
	phones, err = json.Marshal(orEmpty(card.Phones))
	if err != nil {
		return nil, nil, err
	}
	emails, err = json.Marshal(orEmpty(card.Emails))
	if err != nil {
		return nil, nil, err
	}
	return phones, emails, nil
}

func orEmpty(values []models.TypedValue) []models.TypedValue {
	if values == nil {
		return []models.TypedValue{}
	}
	return values
}
