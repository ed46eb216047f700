// Package vcard is the codec between serialized contact payloads and the
// in-memory [models.Card]. Only the fields cardbox searches and displays
// (UID, FN, TEL, EMAIL) are modeled; every other property travels inside
// Card.Raw and is re-emitted on serialization, so a store round-trip never
// loses data it does not understand.
package vcard

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	govcard "github.com/emersion/go-vcard"

	"github.com/cardbox-tools/cardbox/models"
)

// ParseError reports a structurally malformed contact payload. Unknown or
// extra properties are never a parse error.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse card: " + e.Reason
}

// Parse decodes a single serialized contact into a [models.Card].
//
// Failure cases are structural only: undecodable vCard syntax, a missing
// UID property (cards without a stable identifier cannot be stored), or
// trailing data after the first card. Raw keeps the whole input, so a
// multi-card payload accepted here would smuggle the extra cards through
// every later export. The input bytes are kept verbatim in Card.Raw.
func Parse(raw []byte) (models.Card, error) {
	dec := govcard.NewDecoder(bytes.NewReader(raw))

	card, err := dec.Decode()
	if err != nil {
		return models.Card{}, &ParseError{Reason: err.Error()}
	}

	if _, err = dec.Decode(); !errors.Is(err, io.EOF) {
		return models.Card{}, &ParseError{Reason: "payload contains more than one card"}
	}

	uid := card.Value(govcard.FieldUID)
	if uid == "" {
		return models.Card{}, &ParseError{Reason: "missing UID property"}
	}

	out := models.Card{
		ID:   uid,
		Name: card.Value(govcard.FieldFormattedName),
		Raw:  append([]byte(nil), raw...),
	}

	for _, f := range card[govcard.FieldTelephone] {
		out.Phones = append(out.Phones, typedValue(f))
	}
	for _, f := range card[govcard.FieldEmail] {
		out.Emails = append(out.Emails, typedValue(f))
	}

	out.Etag = Etag(out.Raw)

	return out, nil
}

// Serialize encodes a [models.Card] back to vCard bytes.
//
// When the card carries a raw payload, that payload is decoded and the
// modeled fields are overlaid on top of it, preserving every property the
// model does not know about. Cards built in memory (no raw payload) are
// encoded from the modeled fields alone.
//
// Parse(Serialize(c)) reconstructs c on all modeled fields; byte-for-byte
// identity with an externally sourced original is not guaranteed.
func Serialize(c models.Card) ([]byte, error) {
	card := make(govcard.Card)

	if len(c.Raw) > 0 {
		decoded, err := govcard.NewDecoder(bytes.NewReader(c.Raw)).Decode()
		if err != nil {
			return nil, &ParseError{Reason: "re-encode raw payload: " + err.Error()}
		}
		card = decoded
	}

	card.SetValue(govcard.FieldUID, c.ID)
	card.SetValue(govcard.FieldFormattedName, c.Name)

	delete(card, govcard.FieldTelephone)
	for _, tv := range c.Phones {
		card.Add(govcard.FieldTelephone, field(tv))
	}

	delete(card, govcard.FieldEmail)
	for _, tv := range c.Emails {
		card.Add(govcard.FieldEmail, field(tv))
	}

	govcard.ToV4(card)

	var buf bytes.Buffer
	if err := govcard.NewEncoder(&buf).Encode(card); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Etag derives the opaque version token for a payload. Any payload change
// yields a new token.
func Etag(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func typedValue(f *govcard.Field) models.TypedValue {
	tv := models.TypedValue{Value: f.Value}
	if f.Params != nil {
		tv.Type = strings.ToLower(f.Params.Get(govcard.ParamType))
	}
	return tv
}

func field(tv models.TypedValue) *govcard.Field {
	f := &govcard.Field{Value: tv.Value}
	if tv.Type != "" {
		f.Params = govcard.Params{govcard.ParamType: []string{tv.Type}}
	}
	return f
}
