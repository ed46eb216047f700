package vcard

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbox-tools/cardbox/models"
)

const sampleCard = "BEGIN:VCARD\r\n" +
	"VERSION:4.0\r\n" +
	"UID:ann-1\r\n" +
	"FN:Ann Lee\r\n" +
	"TEL;TYPE=cell:555-1\r\n" +
	"TEL;TYPE=work:555-2\r\n" +
	"EMAIL;TYPE=home:ann@x.com\r\n" +
	"X-CUSTOM-PROP:kept verbatim\r\n" +
	"END:VCARD\r\n"

func TestParse(t *testing.T) {
	card, err := Parse([]byte(sampleCard))
	require.NoError(t, err)

	assert.Equal(t, "ann-1", card.ID)
	assert.Equal(t, "Ann Lee", card.Name)
	assert.Equal(t, []models.TypedValue{
		{Type: "cell", Value: "555-1"},
		{Type: "work", Value: "555-2"},
	}, card.Phones)
	assert.Equal(t, []models.TypedValue{
		{Type: "home", Value: "ann@x.com"},
	}, card.Emails)

	// unknown properties survive in the raw payload
	assert.Contains(t, string(card.Raw), "X-CUSTOM-PROP:kept verbatim")
	assert.Equal(t, Etag(card.Raw), card.Etag)
}

func TestParse_MissingUID(t *testing.T) {
	raw := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:No Id\r\nEND:VCARD\r\n"

	_, err := Parse([]byte(raw))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Reason, "UID")
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "unterminated card", raw: "BEGIN:VCARD\r\nVERSION:4.0\r\nUID:x\r\n"},
		{name: "property without separator", raw: "BEGIN:VCARD\r\nVERSION:4.0\r\nBROKENLINE\r\nEND:VCARD\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))

			var parseErr *ParseError
			require.Error(t, err)
			assert.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
		})
	}
}

func TestParse_RejectsTrailingCards(t *testing.T) {
	second := "BEGIN:VCARD\r\n" +
		"VERSION:4.0\r\n" +
		"UID:bob-2\r\n" +
		"FN:bob ray\r\n" +
		"END:VCARD\r\n"

	_, err := Parse([]byte(sampleCard + second))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Reason, "more than one card")
}

func TestSerialize_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		card models.Card
	}{
		{
			name: "card built in memory",
			card: models.Card{
				ID:   "bob-2",
				Name: "bob ray",
				Phones: []models.TypedValue{
					{Type: "cell", Value: "555-9"},
				},
				Emails: []models.TypedValue{
					{Value: "bob@x.com"},
				},
			},
		},
		{
			name: "card without phones or emails",
			card: models.Card{ID: "carl-3", Name: "Carl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Serialize(tt.card)
			require.NoError(t, err)

			got, err := Parse(raw)
			require.NoError(t, err)

			assert.Equal(t, tt.card.ID, got.ID)
			assert.Equal(t, tt.card.Name, got.Name)
			assert.Equal(t, tt.card.Phones, got.Phones)
			assert.Equal(t, tt.card.Emails, got.Emails)
		})
	}
}

func TestSerialize_PreservesUnknownProperties(t *testing.T) {
	card, err := Parse([]byte(sampleCard))
	require.NoError(t, err)

	// simulate a local edit on a modeled field
	card.Name = "Ann B. Lee"

	raw, err := Serialize(card)
	require.NoError(t, err)

	assert.Contains(t, string(raw), "X-CUSTOM-PROP")

	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Ann B. Lee", got.Name)
	assert.Equal(t, card.Phones, got.Phones)
	assert.Equal(t, card.Emails, got.Emails)
}

func TestEtag(t *testing.T) {
	a := Etag([]byte("payload-a"))
	b := Etag([]byte("payload-b"))

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b, "different payloads must produce different etags")
	assert.Equal(t, a, Etag([]byte("payload-a")), "etag must be deterministic")
	assert.Equal(t, strings.ToLower(a), a)
}
