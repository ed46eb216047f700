package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const (
	insertCard = `
		INSERT INTO cards (
			id,
			name,
			phones,
			emails,
			raw,
			etag,
			synced_etag,
			local_modified,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);`

	updateCard = `
		UPDATE cards SET
			name           = ?,
			phones         = ?,
			emails         = ?,
			raw            = ?,
			etag           = ?,
			synced_etag    = ?,
			local_modified = ?,
			updated_at     = CURRENT_TIMESTAMP
		WHERE id = ?;`

	selectCardMeta = `
		SELECT etag, synced_etag, local_modified, raw FROM cards WHERE id = ?;`

	deleteCard = `
		DELETE FROM cards WHERE id = ?;`
)

var cardColumns = []string{
	"id",
	"name",
	"phones",
	"emails",
	"raw",
	"etag",
	"synced_etag",
	"local_modified",
	"created_at",
	"updated_at",
}

// buildSelectCardQuery builds the point-lookup SELECT for one card id.
func buildSelectCardQuery(id string) (string, []any, error) {
	query, args, err := sq.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildScanQuery builds the full-scan SELECT used by Scan and Export.
// The id ordering is an implementation detail that keeps a single scan
// stable; callers must not rely on it across calls.
func buildScanQuery() (string, []any, error) {
	query, args, err := sq.Select(cardColumns...).
		From("cards").
		OrderBy("id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildStatesQuery builds the lightweight sync-state SELECT.
func buildStatesQuery() (string, []any, error) {
	query, args, err := sq.Select("id", "etag", "synced_etag", "local_modified").
		From("cards").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
