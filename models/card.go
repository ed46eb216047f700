package models

import "time"

// TypedValue is a single labelled contact field, e.g. a phone number with
// its TYPE parameter ("cell", "work"). Order is preserved as it appears in
// the source payload.
type TypedValue struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// Card represents a single contact record.
// The modeled fields (ID, Name, Phones, Emails) are what search and display
// operate on; Raw keeps the full serialized payload so that properties the
// model does not know about survive a store round-trip untouched.
type Card struct {
	// ID is the stable unique identifier of the contact (vCard UID).
	ID string `json:"id"`

	// Name is the display name of the contact (vCard FN).
	Name string `json:"name"`

	// Phones holds the contact's phone numbers in source order.
	Phones []TypedValue `json:"phones,omitempty"`

	// Emails holds the contact's email addresses in source order.
	Emails []TypedValue `json:"emails,omitempty"`

	// Raw is the serialized payload the card was parsed from.
	// It is the authoritative source for backup/export output.
	Raw []byte `json:"raw"`

	// Etag is the opaque version token of the current payload.
	// It changes whenever Raw changes.
	Etag string `json:"etag"`

	// SyncedEtag is the etag last confirmed against the remote side.
	// Empty for records that have never been synced (local imports).
	SyncedEtag string `json:"synced_etag,omitempty"`

	// LocalModified marks records carrying local edits that the remote
	// side has not seen yet.
	LocalModified bool `json:"local_modified"`

	// CreatedAt is the timestamp when the record entered the store.
	CreatedAt *time.Time `json:"created_at,omitempty"`

	// UpdatedAt is the timestamp of the last store mutation.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CardState is a lightweight descriptor used during sync delta computation.
// It carries only identity and change-detection fields, never the payload.
type CardState struct {
	ID            string `json:"id"`
	Etag          string `json:"etag"`
	SyncedEtag    string `json:"synced_etag,omitempty"`
	LocalModified bool   `json:"local_modified"`
}
