package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_buildSelectCardQuery_SQLContainsParts(t *testing.T) {
	query, args, err := buildSelectCardQuery("ann-1")
	require.NoError(t, err)

	// args checks
	require.Len(t, args, 1)
	require.Equal(t, "ann-1", args[0])

	// query checks (contains parts)
	q := strings.ToLower(query)

	require.Contains(t, q, "select")
	require.Contains(t, q, "from cards")
	require.Contains(t, q, "where")
	require.Contains(t, q, "id")

	// placeholder format should be ? (SQLite)
	require.Contains(t, query, "?")
}

func Test_buildSelectCardQuery_SelectsAllExpectedColumns(t *testing.T) {
	query, _, err := buildSelectCardQuery("x")
	require.NoError(t, err)

	q := strings.ToLower(query)

	// Check that all expected columns are present in the SELECT section.
	// This is a "contains" check; it does not enforce order but catches
	// regressions quickly.
	for _, col := range cardColumns {
		require.Contains(t, q, col)
	}
}

func Test_buildScanQuery_IsOrderedAndUnfiltered(t *testing.T) {
	query, args, err := buildScanQuery()
	require.NoError(t, err)

	require.Empty(t, args)

	q := strings.ToLower(query)
	require.Contains(t, q, "from cards")
	require.Contains(t, q, "order by id")
	require.NotContains(t, q, "where")
}

func Test_buildStatesQuery_SelectsSyncColumnsOnly(t *testing.T) {
	query, args, err := buildStatesQuery()
	require.NoError(t, err)

	require.Empty(t, args)

	q := strings.ToLower(query)
	require.Contains(t, q, "id")
	require.Contains(t, q, "etag")
	require.Contains(t, q, "synced_etag")
	require.Contains(t, q, "local_modified")
	require.NotContains(t, q, "raw", "states must not drag payloads along")
}
