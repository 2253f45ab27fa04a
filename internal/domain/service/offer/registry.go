package offer

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	sessionTTL      = 30 * time.Minute
	sessionSweepTTL = 10 * time.Minute
)

// Registry holds one tracker per seller with a live session. Sessions
// expire after inactivity and take their marker cache with them; the
// read_markers table remains the arbitration point across sessions.
type Registry struct {
	mu       sync.Mutex
	sessions *cache.Cache
	markers  MarkerStore
}

func NewRegistry(markers MarkerStore) *Registry {
	return &Registry{
		sessions: cache.New(sessionTTL, sessionSweepTTL),
		markers:  markers,
	}
}

// For returns the seller's tracker, constructing one on first use and
// bumping the session TTL on every call.
func (r *Registry) For(sellerID string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.sessions.Get(sellerID); ok {
		tracker := v.(*Tracker)
		r.sessions.SetDefault(sellerID, tracker)
		return tracker
	}

	tracker := NewTracker(sellerID, NewMarkerCache(), r.markers)
	r.sessions.SetDefault(sellerID, tracker)

	return tracker
}

// Lookup returns the tracker only if the seller has a live session.
// The bid feed uses this so bids for offline sellers don't pin state.
func (r *Registry) Lookup(sellerID string) (*Tracker, bool) {
	v, ok := r.sessions.Get(sellerID)
	if !ok {
		return nil, false
	}

	return v.(*Tracker), true
}
