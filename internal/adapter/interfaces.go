package adapter

import (
	"context"

	"github.com/cardbox-tools/cardbox/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter is the read boundary to the remote address book. It is the
// collaborator layer the sync coordinator depends on; the full CardDAV
// protocol stack lives behind implementations of this interface.
type RemoteAdapter interface {
	// Snapshot lists the id and etag of every card the remote side
	// currently holds.
	Snapshot(ctx context.Context) ([]models.RemoteState, error)

	// Fetch downloads the raw payloads of the given card ids.
	Fetch(ctx context.Context, ids []string) ([]models.RemoteCard, error)
}
