package adapter

import "errors"

var (
	// ErrRemoteFetch is returned (wrapped) when the remote address book
	// cannot be reached or answers with an unexpected status. A sync run
	// hitting it aborts before any local mutation.
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrUnauthorized is returned when the remote side rejects the
	// configured credentials.
	ErrUnauthorized = errors.New("remote authorization failed")

	// ErrCardMissing is returned when a card listed in a snapshot has
	// disappeared by the time it is fetched.
	ErrCardMissing = errors.New("remote card missing")
)
