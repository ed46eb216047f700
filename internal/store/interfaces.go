package store

import (
	"context"

	"github.com/cardbox-tools/cardbox/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/card_repository_mock.go -package=mock

// CardRepository is the persistence contract for contact cards. It is the
// only component allowed to mutate stored records; sync and command services
// go through it so that store invariants (unique ids, etag-follows-payload)
// hold in one place.
type CardRepository interface {
	// Get returns the card with the given id or [ErrCardNotFound].
	Get(ctx context.Context, id string) (models.Card, error)

	// Put upserts a card by id. The etag is bumped only when the raw
	// payload actually differs from the stored one; writing an identical
	// payload with unchanged sync metadata leaves the record untouched,
	// while metadata-only changes (synced etag, local-modified flag) are
	// still persisted.
	Put(ctx context.Context, card models.Card) error

	// PutGuarded behaves like Put but fails with [ErrEtagConflict] when the
	// stored etag no longer matches expectedEtag. An empty expectedEtag
	// asserts the record does not exist yet.
	PutGuarded(ctx context.Context, card models.Card, expectedEtag string) error

	// Delete removes a card. It reports false when no such id was stored.
	Delete(ctx context.Context, id string) (bool, error)

	// Scan starts a fresh iteration over the current store state. Ordering
	// is stable within one call only.
	Scan(ctx context.Context) (*CardIterator, error)

	// States returns lightweight sync descriptors for every stored card.
	States(ctx context.Context) ([]models.CardState, error)

	// Export returns the serialized payloads of every card matching the
	// predicate. A nil predicate matches all records.
	Export(ctx context.Context, match func(models.Card) bool) ([][]byte, error)
}
