package offer

import (
	"context"
	"sync"
	"time"

	"bid_market/internal/domain/entity"
	"bid_market/pkg/logx"
)

// MarkerStore persists read markers. The asynq-backed implementation
// only enqueues the upsert, so calls return fast; failures are treated
// as non-fatal by the tracker either way.
type MarkerStore interface {
	Upsert(ctx context.Context, marker entity.ReadMarker) error
}

// UnreadState is the per-listing view the tracker maintains for one
// seller session. It lives in memory only; the persisted counterpart
// is the read marker.
type UnreadState struct {
	TotalBids  int
	HighestBid *int64
	Unread     int
}

type listingState struct {
	totalBids  int
	highestBid *int64
	unread     int
	lastSeen   int
}

// Tracker reconciles three inputs into one unread badge per listing:
// the last full listings fetch, the session marker cache and live bid
// events. One tracker serves one seller session; the feed goroutine
// and HTTP handlers share it, hence the mutex.
type Tracker struct {
	sellerID string
	cache    *MarkerCache
	markers  MarkerStore

	mu       sync.Mutex
	listings map[string]*listingState
}

func NewTracker(sellerID string, cache *MarkerCache, markers MarkerStore) *Tracker {
	return &Tracker{
		sellerID: sellerID,
		cache:    cache,
		markers:  markers,
		listings: make(map[string]*listingState),
	}
}

func (t *Tracker) SellerID() string {
	return t.sellerID
}

// Initialize reconciles a full listings fetch with the stored markers
// and returns the unread count per listing ID.
//
// The base for each listing is, in order of preference: the server
// marker, the session cache marker, or the current bid count itself —
// unknown history defaults to nothing unread, so a first load never
// shows a spurious badge. The resolved base is written back to the
// cache, and upserted server-side when the server had no marker yet.
func (t *Tracker) Initialize(
	ctx context.Context,
	stats []entity.ListingStats,
	serverMarkers map[string]int,
) map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	unread := make(map[string]int, len(stats))

	for _, ls := range stats {
		base, fromServer := serverMarkers[ls.ID]
		if !fromServer {
			if cached, ok := t.cache.Get(ls.ID); ok {
				base = cached
			} else {
				base = ls.BidCount
			}
		}

		count := max(0, ls.BidCount-base)

		t.listings[ls.ID] = &listingState{
			totalBids:  ls.BidCount,
			highestBid: ls.HighestBid,
			unread:     count,
			lastSeen:   base,
		}

		t.cache.Put(ls.ID, base)

		if !fromServer {
			t.persistMarker(ctx, ls.ID, base)
		}

		unread[ls.ID] = count
	}

	return unread
}

// OnBidInserted applies one realtime bid event. In-memory only: the
// read marker advances on MarkSeen, not here. The channel is
// at-least-once with no dedup key, so a duplicate delivery counts
// twice; the next Initialize straightens that out.
func (t *Tracker) OnBidInserted(ctx context.Context, ev entity.BidEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.listings[ev.ListingID]
	if !ok {
		// A bid on a listing the session has not fetched yet.
		state = &listingState{}
		t.listings[ev.ListingID] = state
	}

	state.totalBids++
	state.unread++

	if state.highestBid == nil || ev.Amount > *state.highestBid {
		amount := ev.Amount
		state.highestBid = &amount
	}

	logger(ctx).Debug(
		"bid event applied",
		"listing-id", ev.ListingID,
		"total", state.totalBids,
		"unread", state.unread,
	)
}

// MarkSeen zeroes the unread badge for a listing. The zero is visible
// immediately; persisting the marker is write-through and best-effort.
// A failed upsert is logged and swallowed — the session cache stays
// authoritative until the next Initialize reconciles against whatever
// the server ended up with.
func (t *Tracker) MarkSeen(ctx context.Context, listingID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.listings[listingID]
	if !ok {
		return
	}

	state.unread = 0
	state.lastSeen = state.totalBids

	t.cache.Put(listingID, state.totalBids)
	t.persistMarker(ctx, listingID, state.totalBids)
}

// ObserveFetch folds a direct bid-list fetch into the tracked state,
// for sessions that open a bid list without a prior full Initialize.
// The total only moves up here: realtime events may already have
// counted past what the fetch saw.
func (t *Tracker) ObserveFetch(ctx context.Context, listingID string, total int, highest *int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.listings[listingID]
	if !ok {
		base := total
		if cached, okc := t.cache.Get(listingID); okc {
			base = cached
		}

		t.listings[listingID] = &listingState{
			totalBids:  total,
			highestBid: highest,
			unread:     max(0, total-base),
			lastSeen:   base,
		}

		return
	}

	if total > state.totalBids {
		state.unread += total - state.totalBids
		state.totalBids = total
	}

	if highest != nil && (state.highestBid == nil || *highest > *state.highestBid) {
		state.highestBid = highest
	}

	logger(ctx).Debug("bid list fetch observed", "listing-id", listingID, "total", state.totalBids)
}

// Unread returns the current unread count for a listing, zero when the
// listing is not tracked.
func (t *Tracker) Unread(listingID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.listings[listingID]; ok {
		return state.unread
	}
	return 0
}

// Snapshot returns a copy of the tracked state for all listings.
func (t *Tracker) Snapshot() map[string]UnreadState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]UnreadState, len(t.listings))
	for id, state := range t.listings {
		out[id] = UnreadState{
			TotalBids:  state.totalBids,
			HighestBid: state.highestBid,
			Unread:     state.unread,
		}
	}

	return out
}

// persistMarker is called with t.mu held.
func (t *Tracker) persistMarker(ctx context.Context, listingID string, count int) {
	marker := entity.ReadMarker{
		UserID:        t.sellerID,
		ListingID:     listingID,
		LastSeenCount: count,
		LastSeenAt:    time.Now(),
	}

	if err := t.markers.Upsert(ctx, marker); err != nil {
		logger(ctx).Warn(
			"read marker upsert failed, session state stays local",
			"listing-id", listingID,
			logx.Error(err),
		)
	}
}
