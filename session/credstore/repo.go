package credstore

// Pair holds the persisted credential pair. Both values are opaque to the
// client: the access credential authorizes API calls, the refresh credential
// is exchanged for a new access credential when the access one is rejected.
//
// Invariant: both values are present or both are absent. A refresh replaces
// only the access value (see Store.SetAccess).
type Pair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Empty reports whether no credential pair is stored, which is equivalent to
// "no session".
func (p Pair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store persists the credential pair between runs. The session store is the
// single writer; everything else only reads through it.
type Store interface {
	// Load returns the stored pair, or a zero Pair when nothing is stored.
	Load() (Pair, error)
	// Save stores a complete pair, replacing any existing one.
	Save(pair Pair) error
	// SetAccess replaces only the access credential, leaving the refresh
	// credential untouched.
	SetAccess(access string) error
	// Clear removes the stored pair. Clearing an empty store is not an error.
	Clear() error
}
