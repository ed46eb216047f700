package service

import (
	"sort"

	"github.com/cardbox-tools/cardbox/models"
)

// BuildDelta computes the difference between the local store state and a
// remote snapshot.
//
// Classification rules:
//   - remote id absent locally → Added;
//   - local id absent remotely → Deleted, unless the record carries
//     unsynced local edits, in which case it is a Conflict (applying the
//     deletion would silently discard those edits);
//   - id present on both sides with a remote etag differing from the last
//     synced one → Changed.
//
// The result slices are sorted so that applying the same snapshot twice
// walks records in the same order and produces the same report.
func BuildDelta(local []models.CardState, remote []models.RemoteState) models.SyncDelta {
	localIdx := make(map[string]models.CardState, len(local))
	for _, st := range local {
		localIdx[st.ID] = st
	}
	remoteIdx := make(map[string]models.RemoteState, len(remote))
	for _, st := range remote {
		remoteIdx[st.ID] = st
	}

	var delta models.SyncDelta

	for _, rs := range remote {
		ls, ok := localIdx[rs.ID]
		if !ok {
			delta.Added = append(delta.Added, rs.ID)
			continue
		}
		if ls.SyncedEtag != rs.Etag {
			delta.Changed = append(delta.Changed, rs.ID)
		}
	}

	for _, ls := range local {
		if _, ok := remoteIdx[ls.ID]; ok {
			continue
		}
		if ls.LocalModified {
			delta.Conflicts = append(delta.Conflicts, ls.ID)
			continue
		}
		delta.Deleted = append(delta.Deleted, ls.ID)
	}

	sort.Strings(delta.Added)
	sort.Strings(delta.Changed)
	sort.Strings(delta.Deleted)
	sort.Strings(delta.Conflicts)

	return delta
}
