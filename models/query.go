package models

// Projection selects which fields of a matched card are rendered.
// It never influences matching itself.
type Projection int

const (
	// ProjectionFull renders the whole record.
	ProjectionFull Projection = iota

	// ProjectionEmails renders email addresses only.
	ProjectionEmails

	// ProjectionPhones renders phone numbers only.
	ProjectionPhones
)

// String returns a human-readable projection name.
func (p Projection) String() string {
	switch p {
	case ProjectionEmails:
		return "emails"
	case ProjectionPhones:
		return "phones"
	default:
		return "full"
	}
}

// SearchQuery is one search invocation: a term and an output projection.
// An empty term matches every record in the store.
type SearchQuery struct {
	Term       string
	Projection Projection
}
