package models

// RemoteState is one entry of a remote address-book snapshot: the identifier
// of a card and the etag of its current remote revision.
type RemoteState struct {
	ID   string `json:"id"`
	Etag string `json:"etag"`
}

// RemoteCard is a full card as fetched from the remote side.
type RemoteCard struct {
	ID   string `json:"id"`
	Etag string `json:"etag"`
	Raw  []byte `json:"raw"`
}

// SyncDelta is the computed difference between the local store and a remote
// snapshot. It is transient: built once per sync run and consumed by the
// apply phase immediately.
type SyncDelta struct {
	// Added lists remote ids missing from the local store.
	Added []string `json:"added,omitempty"`

	// Changed lists ids present on both sides whose etags differ.
	Changed []string `json:"changed,omitempty"`

	// Deleted lists local ids the remote snapshot no longer contains.
	Deleted []string `json:"deleted,omitempty"`

	// Conflicts lists local ids the remote snapshot no longer contains
	// but which carry unsynced local edits. They are reported, never
	// deleted automatically.
	Conflicts []string `json:"conflicts,omitempty"`
}

// Empty reports whether the delta requires no apply work at all.
func (d SyncDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Deleted) == 0 && len(d.Conflicts) == 0
}

// RecordFailure describes a single record that could not be applied during
// a sync run. The run continues past individual failures; callers inspect
// the full set afterwards.
type RecordFailure struct {
	ID  string `json:"id"`
	Op  string `json:"op"`
	Err string `json:"err"`
}

// SyncReport is the structured outcome of one sync run.
type SyncReport struct {
	RunID     string          `json:"run_id"`
	Added     int             `json:"added"`
	Changed   int             `json:"changed"`
	Deleted   int             `json:"deleted"`
	Conflicts []string        `json:"conflicts,omitempty"`
	Failures  []RecordFailure `json:"failures,omitempty"`
}

// Clean reports whether the run applied its whole delta without per-record
// failures or unresolved conflicts.
func (r SyncReport) Clean() bool {
	return len(r.Failures) == 0 && len(r.Conflicts) == 0
}
