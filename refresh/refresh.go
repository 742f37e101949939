// This file defines the "refresh hook": what the cache does when a reader
// volunteers an entry for early recomputation but should not pay for the
// recomputation itself.

package refresh

import "github.com/probcache/xfetch"

/*
Hook is the contract for handling early-expiration volunteers.

When a reader's probabilistic expiration test fires before the entry's hard
deadline, the cache has a choice: let that reader recompute inline (the
XFetch paper's behavior), or hand the key to a hook and keep serving the
current value until the refresh lands. A configured Hook selects the second
behavior.

OnVolunteer runs on the read path, so it MUST be fast and non-blocking.
*/
type Hook[V any] interface {

	// OnVolunteer is called with the key and the still-valid entry that a
	// reader volunteered to refresh.
	OnVolunteer(key string, ent *xfetch.Entry[V])

	// Close stops the hook and waits for any in-flight refreshes to finish.
	Close()
}
