package service

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cardbox-tools/cardbox/internal/logger"
	"github.com/cardbox-tools/cardbox/internal/mock"
	"github.com/cardbox-tools/cardbox/internal/query"
	"github.com/cardbox-tools/cardbox/internal/store"
	"github.com/cardbox-tools/cardbox/internal/vcard"
	"github.com/cardbox-tools/cardbox/models"
)

func newCardService(t *testing.T, writeSupport bool) (*CardService, *mock.MockCardRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mock.NewMockCardRepository(ctrl)
	engine := query.NewEngine(repo, logger.Nop())

	return NewCardService(repo, engine, writeSupport, logger.Nop()), repo
}

func TestImport(t *testing.T) {
	raw := rawCard("imported", "New Person")

	t.Run("stores the card marked locally modified", func(t *testing.T) {
		svc, repo := newCardService(t, true)

		var stored models.Card
		repo.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, card models.Card) error {
				stored = card
				return nil
			})

		card, err := svc.Import(testContext(), bytes.NewReader(raw))
		require.NoError(t, err)

		assert.Equal(t, "imported", card.ID)
		assert.Equal(t, "New Person", card.Name)
		assert.True(t, stored.LocalModified)
		assert.Equal(t, raw, stored.Raw)
	})

	t.Run("refused without write support", func(t *testing.T) {
		svc, _ := newCardService(t, false)

		_, err := svc.Import(testContext(), bytes.NewReader(raw))
		require.ErrorIs(t, err, ErrWriteSupportDisabled)
	})

	t.Run("parse failure leaves the store untouched", func(t *testing.T) {
		svc, _ := newCardService(t, true)

		_, err := svc.Import(testContext(), bytes.NewReader([]byte("garbage")))

		var parseErr *vcard.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("stream with multiple cards is rejected", func(t *testing.T) {
		svc, _ := newCardService(t, true)

		stream := append(append([]byte{}, rawCard("one", "First")...), rawCard("two", "Second")...)
		_, err := svc.Import(testContext(), bytes.NewReader(stream))

		var parseErr *vcard.ParseError
		require.ErrorAs(t, err, &parseErr)
	})
}

func TestBackup(t *testing.T) {
	payloads := [][]byte{
		[]byte("card-one\n"),
		[]byte("card-two\n"),
	}

	t.Run("writes every exported payload", func(t *testing.T) {
		svc, repo := newCardService(t, false) // backup needs no write support

		repo.EXPECT().Export(gomock.Any(), gomock.Any()).Return(payloads, nil)

		var buf bytes.Buffer
		n, err := svc.Backup(testContext(), "", &buf)
		require.NoError(t, err)

		assert.Equal(t, 2, n)
		assert.Equal(t, "card-one\ncard-two\n", buf.String())
	})

	t.Run("export failure is surfaced", func(t *testing.T) {
		svc, repo := newCardService(t, false)

		repo.EXPECT().Export(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk io"))

		var buf bytes.Buffer
		_, err := svc.Backup(testContext(), "", &buf)
		require.Error(t, err)
		assert.Zero(t, buf.Len())
	})

	t.Run("predicate filters by search term", func(t *testing.T) {
		svc, repo := newCardService(t, false)

		repo.EXPECT().Export(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, match func(models.Card) bool) ([][]byte, error) {
				ann := models.Card{Name: "Ann Lee", Raw: []byte("raw-ann")}
				bob := models.Card{Name: "bob ray", Raw: []byte("raw-bob")}

				var out [][]byte
				for _, c := range []models.Card{ann, bob} {
					if match(c) {
						out = append(out, c.Raw)
					}
				}
				return out, nil
			})

		var buf bytes.Buffer
		n, err := svc.Backup(testContext(), "ray", &buf)
		require.NoError(t, err)

		assert.Equal(t, 1, n)
		assert.Equal(t, "raw-bob", buf.String())
	})
}

// DeleteLocal drives the real search path, so it is exercised against a
// sqlmock-backed repository instead of a generated one.
func newSQLCardService(t *testing.T, writeSupport bool) (*CardService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := store.NewCardRepository(store.NewDB(db, logger.Nop()), logger.Nop())
	engine := query.NewEngine(repo, logger.Nop())

	return NewCardService(repo, engine, writeSupport, logger.Nop()), mock
}

func storedCardRow(t *testing.T, id, name string) []driver.Value {
	t.Helper()

	empty, err := json.Marshal([]models.TypedValue{})
	require.NoError(t, err)

	now := time.Now()
	return []driver.Value{
		id, name, empty, empty, []byte("raw-" + id),
		"v1", "v1", false, now, now,
	}
}

func TestDeleteLocal(t *testing.T) {
	scanQuery := regexp.QuoteMeta("FROM cards ORDER BY id")
	deleteQuery := regexp.QuoteMeta("DELETE FROM cards WHERE id = ?")
	columns := []string{
		"id", "name", "phones", "emails", "raw",
		"etag", "synced_etag", "local_modified", "created_at", "updated_at",
	}

	t.Run("removes every matching card", func(t *testing.T) {
		svc, mock := newSQLCardService(t, true)

		mock.ExpectQuery(scanQuery).WillReturnRows(sqlmock.NewRows(columns).
			AddRow(storedCardRow(t, "id-1", "Ann Lee")...).
			AddRow(storedCardRow(t, "id-2", "Ann Other")...).
			AddRow(storedCardRow(t, "id-3", "bob ray")...))
		mock.ExpectExec(deleteQuery).WithArgs("id-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(deleteQuery).WithArgs("id-2").WillReturnResult(sqlmock.NewResult(0, 1))

		removed, err := svc.DeleteLocal(testContext(), "ann")
		require.NoError(t, err)

		assert.Equal(t, []string{"id-1", "id-2"}, removed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matches is an error", func(t *testing.T) {
		svc, mock := newSQLCardService(t, true)

		mock.ExpectQuery(scanQuery).WillReturnRows(sqlmock.NewRows(columns).
			AddRow(storedCardRow(t, "id-1", "Ann Lee")...))

		_, err := svc.DeleteLocal(testContext(), "zelda")
		require.ErrorIs(t, err, ErrNoMatches)
		assert.Contains(t, err.Error(), `"zelda"`)
	})

	t.Run("refused without write support", func(t *testing.T) {
		svc, _ := newSQLCardService(t, false)

		_, err := svc.DeleteLocal(testContext(), "ann")
		require.ErrorIs(t, err, ErrWriteSupportDisabled)
	})
}
