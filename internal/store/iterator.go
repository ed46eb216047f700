package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardbox-tools/cardbox/models"
)

// CardIterator walks one result set produced by [CardRepository.Scan].
// It is finite and single-use; start a new Scan to observe current state
// again.
type CardIterator struct {
	rows   *sql.Rows
	err    error
	closed bool
}

// Next returns the next card. The second result is false once the iterator
// is exhausted or an error occurred; check Err afterwards.
func (it *CardIterator) Next() (models.Card, bool) {
	if it.err != nil || it.closed {
		return models.Card{}, false
	}

	if !it.rows.Next() {
		if rowsErr := it.rows.Err(); rowsErr != nil {
			it.err = fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
		}
		it.Close()
		return models.Card{}, false
	}

	card, err := scanCard(it.rows)
	if err != nil {
		it.err = fmt.Errorf("%w: %w", ErrScanningRow, err)
		it.Close()
		return models.Card{}, false
	}

	return card, true
}

// Err returns the first error encountered during iteration, if any.
func (it *CardIterator) Err() error {
	return it.err
}

// Close releases the underlying result set. Calling it more than once is
// safe; a fully drained iterator closes itself.
func (it *CardIterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.rows.Close()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCard.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var (
		card          models.Card
		phones        []byte
		emails        []byte
		localModified bool
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(
		&card.ID,
		&card.Name,
		&phones,
		&emails,
		&card.Raw,
		&card.Etag,
		&card.SyncedEtag,
		&localModified,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.Card{}, err
	}

	if err = json.Unmarshal(phones, &card.Phones); err != nil {
		return models.Card{}, fmt.Errorf("decode phones: %w", err)
	}
	if err = json.Unmarshal(emails, &card.Emails); err != nil {
		return models.Card{}, fmt.Errorf("decode emails: %w", err)
	}
	if len(card.Phones) == 0 {
		card.Phones = nil
	}
	if len(card.Emails) == 0 {
		card.Emails = nil
	}

	card.LocalModified = localModified
	card.CreatedAt = &createdAt
	card.UpdatedAt = &updatedAt

	return card, nil
}
